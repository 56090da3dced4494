package fastview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait = time.Second
	// flushInterval bounds how often coalesced state goes out to the page.
	flushInterval = 100 * time.Millisecond
	pingInterval  = 200 * time.Millisecond
	// The number of pings to tolerate losing before concluding the page is gone.
	pongWait = pingInterval * 4
	// The page only sends control frames.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{}

// ErrPongDeadlineExceeded is returned when the page stops answering pings.
var ErrPongDeadlineExceeded error = errors.New("client disconnect, pong deadline exceeded")

// FrameEncoder turns an episode frame into the payload of one binary message.
type FrameEncoder func(*image.RGBA) ([]byte, error)

// Stream pushes the live state of one page over a websocket: element updates as
// JSON text messages, and the latest episode frame as a binary message.
//
// Both are coalesced between flushes. Updates are keyed by element id so only the
// newest value per element is written, and only the newest frame is encoded, so a
// slow page sees fewer messages but never a stale final state.
type Stream struct {
	conn    *websocket.Conn
	updates <-chan []EleUpdate
	frames  <-chan *image.RGBA
	encode  FrameEncoder

	// Owned by the write loop once Run starts.
	pending map[string]EleUpdate
	frame   *image.RGBA
}

// NewStream upgrades the request to a websocket streaming updates and frames.
// A nil frames chan streams updates only.
func NewStream(
	w http.ResponseWriter,
	r *http.Request,
	updates <-chan []EleUpdate,
	frames <-chan *image.RGBA,
	encode FrameEncoder,
) (*Stream, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		return nil, err
	}

	return &Stream{
		conn:    conn,
		updates: updates,
		frames:  frames,
		encode:  encode,
		pending: map[string]EleUpdate{},
	}, nil
}

// Seed queues a frame for the first flush, so a page opened after a run catches up.
// It must be called before Run.
func (st *Stream) Seed(frame *image.RGBA) {
	if frame != nil {
		st.frame = frame
	}
}

// Run streams until ctx is done, the page disconnects or a write fails.
// It returns nil on disconnect and closes the websocket before returning.
func (st *Stream) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		defer cancel()
		return st.readLoop(groupCtx)
	})
	group.Go(func() error {
		defer cancel()
		return st.writeLoop(groupCtx)
	})
	// The reader only unblocks once the connection closes.
	group.Go(func() error {
		<-groupCtx.Done()
		st.close()
		return nil
	})

	return group.Wait()
}

// readLoop services control frames; pongs extend the read deadline.
func (st *Stream) readLoop(ctx context.Context) error {
	st.conn.SetReadLimit(maxMessageSize)
	_ = st.conn.SetReadDeadline(time.Now().Add(pongWait))
	st.conn.SetPongHandler(func(string) error {
		return st.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := st.conn.ReadMessage()
		if err == nil {
			continue
		}
		if ctx.Err() != nil || isClosure(err) {
			return nil
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ErrPongDeadlineExceeded
		}
		return fmt.Errorf("read: %w", err)
	}
}

// writeLoop is the only writer of data messages.
func (st *Stream) writeLoop(ctx context.Context) error {
	flush := channerics.NewTicker(ctx.Done(), flushInterval)
	ping := channerics.NewTicker(ctx.Done(), pingInterval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case updates, ok := <-st.updates:
			if !ok {
				return nil
			}
			for _, update := range updates {
				st.pending[update.EleId] = update
			}
		case frame, ok := <-st.frames:
			if !ok {
				return nil
			}
			if frame != nil {
				st.frame = frame
			}
		case <-flush:
			if err := st.flush(); err != nil {
				return err
			}
		case <-ping:
			err := st.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			if err = unexpected(err); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

// flush writes the pending updates, then the pending frame.
func (st *Stream) flush() error {
	if len(st.pending) > 0 {
		batch := make([]EleUpdate, 0, len(st.pending))
		for _, update := range st.pending {
			batch = append(batch, update)
		}
		st.pending = map[string]EleUpdate{}

		_ = st.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := unexpected(st.conn.WriteJSON(batch)); err != nil {
			return fmt.Errorf("publish updates: %w", err)
		}
	}

	if st.frame == nil || st.encode == nil {
		return nil
	}
	data, err := st.encode(st.frame)
	st.frame = nil
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	_ = st.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err = unexpected(st.conn.WriteMessage(websocket.BinaryMessage, data)); err != nil {
		return fmt.Errorf("publish frame: %w", err)
	}
	return nil
}

// close sends a close frame and closes the connection.
func (st *Stream) close() {
	_ = st.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	st.conn.Close()
}

// unexpected filters out the errors of a page that has gone away normally.
func unexpected(err error) error {
	if err == nil || isClosure(err) || errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}
