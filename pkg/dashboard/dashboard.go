// Package dashboard wires one page's bus, shell, widget mounter and layout
// adjuster together and serialises every operation on that page.
package dashboard

import (
	"io"
	"sync"
	"time"

	"github.com/odvcencio/earthcontrol/pkg/bus"
	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/layout"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/page"
	"github.com/odvcencio/earthcontrol/pkg/shell"
	"github.com/odvcencio/earthcontrol/pkg/telemetry"
	"github.com/odvcencio/earthcontrol/pkg/widget"
)

// Options configures a Dashboard. Zero values pick defaults.
type Options struct {
	PageID           string
	Title            string
	RefreshIndicator time.Duration
	ResizeThrottle   time.Duration
	DefaultView      page.ViewMode
	Registry         *widget.Registry
	Logger           *logging.Logger
	Metrics          *telemetry.Metrics
	Events           *telemetry.Hub
}

// State is a point-in-time snapshot of a page.
type State struct {
	PageID        string        `json:"pageId"`
	Mounted       bool          `json:"mounted"`
	Widgets       []string      `json:"widgets"`
	View          page.ViewMode `json:"view"`
	Refreshing    bool          `json:"refreshing"`
	StyleKeys     []string      `json:"styleKeys"`
	LayoutApplies int           `json:"layoutApplies"`
	Resizes       int           `json:"resizes"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Dashboard is one page's dashboard. All methods are safe for concurrent use.
type Dashboard struct {
	mu      sync.Mutex
	id      string
	created time.Time

	doc     *page.Document
	bus     *bus.Bus
	shell   *shell.Shell
	mounter *widget.Mounter
	layout  *layout.Adjuster

	logger  *logging.Logger
	metrics *telemetry.Metrics
	events  *telemetry.Hub
}

// New builds an unmounted dashboard. Subscribers are registered in a fixed
// order: widget mounter first, then layout adjuster, so layout always runs
// after widgets are in place for the same signal.
func New(opts Options) *Dashboard {
	if opts.Registry == nil {
		opts.Registry = widget.DefaultRegistry()
	}
	logger := opts.Logger.WithPage(opts.PageID)

	d := &Dashboard{
		id:      opts.PageID,
		created: time.Now(),
		doc:     page.NewDocument(),
		bus:     bus.New(),
		logger:  logger,
		metrics: opts.Metrics,
		events:  opts.Events,
	}

	d.bus.Observe(func(sig bus.Signal, delivered int) {
		d.metrics.Signal(sig.String())
		d.emit(telemetry.EventSignalPublished, map[string]any{
			"signal":      sig.String(),
			"subscribers": delivered,
		})
	})

	d.shell = shell.New(d.doc, d.bus, shell.Options{
		Title:            opts.Title,
		RefreshIndicator: opts.RefreshIndicator,
		DefaultView:      opts.DefaultView,
		Logger:           logger,
		Locker:           &d.mu,
		OnRefreshCleared: func() {
			d.emit(telemetry.EventRefreshCleared, nil)
		},
	})

	d.mounter = widget.NewMounter(d.doc, opts.Registry, logger)
	d.mounter.OnMounted = func(info widget.Info) {
		d.metrics.WidgetMounted(info.ID)
		d.emit(telemetry.EventWidgetMounted, map[string]any{
			"widget":   info.ID,
			"position": info.Position,
		})
	}
	d.mounter.Bind(d.bus)

	d.layout = layout.New(d.doc, opts.ResizeThrottle, logger)
	d.layout.OnApplied = func(applies int) {
		d.metrics.LayoutApplied()
		d.emit(telemetry.EventLayoutApplied, map[string]any{"applies": applies})
	}
	d.layout.Bind(d.bus)

	return d
}

func (d *Dashboard) emit(kind telemetry.EventType, data map[string]any) {
	d.events.Publish(telemetry.Event{Type: kind, PageID: d.id, Data: data})
}

// ID returns the page ID.
func (d *Dashboard) ID() string {
	return d.id
}

// Mount creates the shell container, which publishes Initialized and mounts
// every widget. Repeated calls do nothing.
func (d *Dashboard) Mount() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shell.Mount()
}

// Refresh activates the refresh control.
func (d *Dashboard) Refresh() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shell.Refresh()
}

// PublishRefresh publishes Refresh without touching the refresh indicator.
// Used for refreshes that originate elsewhere.
func (d *Dashboard) PublishRefresh() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bus.Publish(bus.Refresh)
}

// SetView switches the grid between grid and list view.
func (d *Dashboard) SetView(mode page.ViewMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.shell.SetView(mode); err != nil {
		return err
	}
	d.emit(telemetry.EventViewChanged, map[string]any{"view": string(mode)})
	return nil
}

// Resize publishes Resize, as a browser window resize would.
func (d *Dashboard) Resize() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bus.Publish(bus.Resize)
}

// Publish publishes sig on the page bus.
func (d *Dashboard) Publish(sig bus.Signal) error {
	if !sig.Valid() {
		return apperrors.Newf(apperrors.ErrCodeInvalidInput, "unknown signal %d", int(sig))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bus.Publish(sig)
	return nil
}

// State returns a snapshot.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := State{
		PageID:        d.id,
		Mounted:       d.shell.Mounted(),
		Widgets:       []string{},
		View:          d.shell.View(),
		Refreshing:    d.shell.Refreshing(),
		StyleKeys:     d.doc.StyleKeys(),
		LayoutApplies: d.layout.Applies(),
		Resizes:       d.layout.Resizes(),
		CreatedAt:     d.created,
	}
	if grid := d.doc.Grid(); grid != nil {
		st.Widgets = grid.IDs()
	}
	return st
}

// Render writes the full page.
func (d *Dashboard) Render(w io.Writer, meta page.Meta) error {
	started := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	meta.PageID = d.id
	if err := page.Render(w, d.doc, meta); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodePageRender, "render page").WithContext("page_id", d.id)
	}
	d.metrics.ObserveRender("page", started)
	return nil
}

// RenderShell writes only the dashboard container.
func (d *Dashboard) RenderShell(w io.Writer) error {
	started := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := page.RenderShell(w, d.doc); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodePageRender, "render shell").WithContext("page_id", d.id)
	}
	d.metrics.ObserveRender("shell", started)
	return nil
}

// Close stops the refresh indicator timer.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shell.Stop()
}
