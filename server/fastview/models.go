// fastview holds the pieces of a server-side live page: view components
// that turn a view-model stream into element updates, and the Stream that
// pushes those updates and episode frames to the browser over a websocket.
package fastview

import (
	"html/template"
)

// EleUpdate is an element identifier and a set of operations to apply to its attributes/content.
type EleUpdate struct {
	// The id by which to find the element
	EleId string
	// Op keys are attrib keys or 'textContent', values are the strings to which these are set.
	// Example: ('src','data:...') means 'set attribute src'. 'textContent' is a reserved key:
	// ('textContent','abc') means 'set ele.textContent to abc'.
	Ops []Op
}

// Op is a key and value. For example an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// TextContent is the reserved Op key for replacing an element's text.
const TextContent = "textContent"

// SetText returns an update replacing the text of element id.
func SetText(id, text string) EleUpdate {
	return EleUpdate{EleId: id, Ops: []Op{{Key: TextContent, Value: text}}}
}

// ViewComponent implements server side views: Parse to add their initial form
// to the page template and Updates to obtain the chan by which ele-updates are notified.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	// Parse parses the view-component and adds it to the passed parent template, thus inheriting
	// or possibly extending its definition (func-map, etc). It returns the defined template name.
	Parse(*template.Template) (string, error)
}
