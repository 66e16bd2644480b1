// Package layout forces the dashboard grid into a single full-width column.
package layout

import (
	_ "embed"
	"time"

	"golang.org/x/time/rate"

	"github.com/odvcencio/earthcontrol/pkg/bus"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/page"
)

//go:embed full_width.css
var fullWidthCSS string

const (
	// StyleKey identifies the override block. There is only ever one.
	StyleKey = "layout-full-width"

	// DefaultResizeThrottle bounds how often Resize touches the grid.
	DefaultResizeThrottle = 100 * time.Millisecond
)

// Adjuster applies the full-width override to a document. Calls are
// serialised by the owning dashboard.
type Adjuster struct {
	doc    *page.Document
	logger *logging.Logger
	resize *rate.Sometimes

	applies int
	resizes int

	// OnApplied runs after each Apply with the running apply count.
	OnApplied func(applies int)
}

// New returns an adjuster for doc. A non-positive throttle uses the default.
func New(doc *page.Document, throttle time.Duration, logger *logging.Logger) *Adjuster {
	if throttle <= 0 {
		throttle = DefaultResizeThrottle
	}
	return &Adjuster{
		doc:    doc,
		logger: logger,
		resize: &rate.Sometimes{Interval: throttle},
	}
}

// Bind applies at once when the grid already exists and otherwise waits for
// Initialized. Refresh re-applies and Resize re-forces the column template.
func (a *Adjuster) Bind(b *bus.Bus) {
	if a.doc.HasGrid() {
		a.Apply()
	} else {
		b.Subscribe(bus.Initialized, func(bus.Signal) { a.Apply() })
	}
	b.Subscribe(bus.Refresh, func(bus.Signal) { a.Apply() })
	b.Subscribe(bus.Resize, func(bus.Signal) { a.Resize() })
}

// Apply installs or replaces the override block.
func (a *Adjuster) Apply() {
	added := a.doc.ReplaceStyle(StyleKey, fullWidthCSS)
	a.applies++
	a.logger.Debug(logging.CategoryLayout, "layout.applied", "full-width layout applied", map[string]any{
		"applies": a.applies,
		"added":   added,
	})
	if a.OnApplied != nil {
		a.OnApplied(a.applies)
	}
}

// Resize sets the grid's inline column template to a single column. Calls
// inside the throttle interval are dropped; the value written never changes
// so nothing is lost. It reports whether the grid was touched.
func (a *Adjuster) Resize() bool {
	grid := a.doc.Grid()
	if grid == nil {
		return false
	}
	touched := false
	a.resize.Do(func() {
		grid.SetInlineStyle("grid-template-columns", "1fr")
		a.resizes++
		touched = true
	})
	return touched
}

// Applies returns how many times Apply has run.
func (a *Adjuster) Applies() int {
	return a.applies
}

// Resizes returns how many resize events reached the grid.
func (a *Adjuster) Resizes() int {
	return a.resizes
}
