package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"iconclick/rollout"
	"iconclick/server/episode_views"
	"iconclick/server/fastview"
	"iconclick/server/root_view"

	"github.com/gorilla/mux"
)

const shutdownGracePeriod = 5 * time.Second

// Server serves a single page showing live rollout progress: the running statistics,
// the last task and its terminal frame. View updates and frames are pushed over a
// websocket; a page opened later catches up from the latest progress.
//
// The update and frame channels are listened to by one websocket at a time; a second
// open page competes with the first.
type Server struct {
	addr     string
	rootView *root_view.RootView
	progress chan rollout.Progress

	mu     sync.Mutex
	latest rollout.Progress
}

// NewServer initializes all of the views and returns a server.
func NewServer(
	ctx context.Context,
	addr string,
) *Server {
	progress := make(chan rollout.Progress)
	return &Server{
		addr:     addr,
		rootView: root_view.NewRootView(ctx, progress),
		progress: progress,
	}
}

// Publish records the latest progress and offers it to the views. It is a
// rollout.ProgressFunc and never blocks: progress arriving while the views are
// busy is dropped, since each one supersedes the last.
func (server *Server) Publish(ctx context.Context, p rollout.Progress) {
	server.mu.Lock()
	server.latest = p
	server.mu.Unlock()

	select {
	case server.progress <- p:
	case <-ctx.Done():
	default:
	}
}

func (server *Server) snapshot() rollout.Progress {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.latest
}

// Handler returns the routes of the server.
func (server *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)
	return router
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (server *Server) Serve(ctx context.Context) (err error) {
	srv := &http.Server{
		Addr:    server.addr,
		Handler: server.Handler(),
		// Hijacked websockets outlive Shutdown; their request ctx ends with ours.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("serving on %s", server.addr)
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// serveWebsocket streams view updates and frames to the page, starting from the latest frame.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	stream, err := fastview.NewStream(
		w, r,
		server.rootView.Updates(),
		server.rootView.Frames(),
		episode_views.EncodeFrame)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}

	stream.Seed(episode_views.LastFrame(server.snapshot()))
	if err = stream.Run(r.Context()); err != nil {
		log.Println("stream:", err)
	}
}

// serveIndex serves the main page, rendered with the latest progress.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	summary := episode_views.Convert(server.snapshot())
	if err := renderTemplate(w, server.rootView, summary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}
