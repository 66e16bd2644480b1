// Package page holds the in-memory document a dashboard renders from: the
// single grid container, the widget fragments inside it, and the head's
// style blocks. Documents are not safe for concurrent use; the owning
// dashboard serialises access.
package page

import (
	"html/template"
	"sort"
)

// Position says where a fragment enters the grid.
type Position int

const (
	Append Position = iota
	Prepend
)

func (p Position) String() string {
	if p == Prepend {
		return "prepend"
	}
	return "append"
}

// ViewMode is the grid's presentation.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// Valid reports whether v is a known mode.
func (v ViewMode) Valid() bool {
	return v == ViewGrid || v == ViewList
}

// Fragment is one widget's markup inside the grid.
type Fragment struct {
	ID    string
	Title string
	Size  string // "medium" or "large"
	Body  template.HTML
}

// StyleBlock is a keyed <style> element in the head.
type StyleBlock struct {
	Key string
	CSS template.CSS
}

// Grid is the shared container widgets mount into.
type Grid struct {
	Title      string
	fragments  []Fragment
	view       ViewMode
	refreshing bool
	inline     map[string]string
}

// Document is the whole page model.
type Document struct {
	grid   *Grid
	styles []StyleBlock
}

// NewDocument returns an empty document with no grid.
func NewDocument() *Document {
	return &Document{}
}

// HasGrid reports whether the grid container exists.
func (d *Document) HasGrid() bool {
	return d.grid != nil
}

// CreateGrid creates the grid container if absent. It reports whether a new
// container was created.
func (d *Document) CreateGrid(title string) bool {
	if d.grid != nil {
		return false
	}
	d.grid = &Grid{Title: title, view: ViewGrid, inline: make(map[string]string)}
	return true
}

// Grid returns the grid container, or nil before CreateGrid.
func (d *Document) Grid() *Grid {
	return d.grid
}

// InjectStyle adds a style block under key unless one already exists. It
// reports whether the block was added.
func (d *Document) InjectStyle(key, css string) bool {
	for _, b := range d.styles {
		if b.Key == key {
			return false
		}
	}
	d.styles = append(d.styles, StyleBlock{Key: key, CSS: template.CSS(css)})
	return true
}

// ReplaceStyle sets the block under key, keeping its position when it
// already exists and appending it otherwise. It reports whether the block
// was newly added.
func (d *Document) ReplaceStyle(key, css string) bool {
	for i, b := range d.styles {
		if b.Key == key {
			d.styles[i].CSS = template.CSS(css)
			return false
		}
	}
	d.styles = append(d.styles, StyleBlock{Key: key, CSS: template.CSS(css)})
	return true
}

// Styles returns the style blocks in document order.
func (d *Document) Styles() []StyleBlock {
	return append([]StyleBlock(nil), d.styles...)
}

// StyleKeys returns the keys of all style blocks in document order.
func (d *Document) StyleKeys() []string {
	keys := make([]string, len(d.styles))
	for i, b := range d.styles {
		keys[i] = b.Key
	}
	return keys
}

// Insert places f at pos unless a fragment with the same ID is present. It
// reports whether f was inserted.
func (g *Grid) Insert(f Fragment, pos Position) bool {
	if g.Has(f.ID) {
		return false
	}
	if pos == Prepend {
		g.fragments = append([]Fragment{f}, g.fragments...)
	} else {
		g.fragments = append(g.fragments, f)
	}
	return true
}

// Has reports whether a fragment with id is in the grid.
func (g *Grid) Has(id string) bool {
	for _, f := range g.fragments {
		if f.ID == id {
			return true
		}
	}
	return false
}

// Count returns how many fragments carry id.
func (g *Grid) Count(id string) int {
	n := 0
	for _, f := range g.fragments {
		if f.ID == id {
			n++
		}
	}
	return n
}

// Fragments returns the fragments in display order.
func (g *Grid) Fragments() []Fragment {
	return append([]Fragment(nil), g.fragments...)
}

// IDs returns fragment IDs in display order.
func (g *Grid) IDs() []string {
	ids := make([]string, len(g.fragments))
	for i, f := range g.fragments {
		ids[i] = f.ID
	}
	return ids
}

// View returns the current view mode.
func (g *Grid) View() ViewMode {
	return g.view
}

// SetView switches the view mode.
func (g *Grid) SetView(v ViewMode) {
	g.view = v
}

// Refreshing reports whether the refresh indicator is lit.
func (g *Grid) Refreshing() bool {
	return g.refreshing
}

// SetRefreshing sets the refresh indicator.
func (g *Grid) SetRefreshing(on bool) {
	g.refreshing = on
}

// SetInlineStyle sets an inline style property on the grid element.
func (g *Grid) SetInlineStyle(property, value string) {
	if g.inline == nil {
		g.inline = make(map[string]string)
	}
	g.inline[property] = value
}

// InlineStyle returns an inline style property.
func (g *Grid) InlineStyle(property string) string {
	return g.inline[property]
}

// inlineCSS renders inline properties in a stable order.
func (g *Grid) inlineCSS() template.CSS {
	if len(g.inline) == 0 {
		return ""
	}
	props := make([]string, 0, len(g.inline))
	for p := range g.inline {
		props = append(props, p)
	}
	sort.Strings(props)
	out := ""
	for _, p := range props {
		out += p + ": " + g.inline[p] + ";"
	}
	return template.CSS(out)
}
