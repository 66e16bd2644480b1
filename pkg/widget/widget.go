// Package widget defines the dashboard's content panels, the ordered registry
// they are resolved from, and the mounter that inserts them into a page's grid
// at most once.
package widget

import (
	"html/template"

	"github.com/odvcencio/earthcontrol/pkg/page"
)

// Size is a widget's footprint in the grid.
type Size string

const (
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Widget is one content panel.
type Widget interface {
	// ID is the unique fragment ID inside the grid.
	ID() string
	Title() string
	Size() Size
	Position() page.Position
	// Render returns the widget body markup.
	Render() (template.HTML, error)
	// Styles returns the widget's style block and the key it is injected
	// under. Widgets sharing a key share a block. An empty key means none.
	Styles() (key string, css string)
}

// Info is the JSON-friendly description of a widget.
type Info struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Size     Size   `json:"size"`
	Position string `json:"position"`
	StyleKey string `json:"style_key,omitempty"`
}

// Describe returns w's Info.
func Describe(w Widget) Info {
	key, _ := w.Styles()
	return Info{
		ID:       w.ID(),
		Title:    w.Title(),
		Size:     w.Size(),
		Position: w.Position().String(),
		StyleKey: key,
	}
}
