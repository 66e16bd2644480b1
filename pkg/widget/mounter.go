package widget

import (
	"errors"

	"github.com/odvcencio/earthcontrol/pkg/bus"
	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/logging"
	"github.com/odvcencio/earthcontrol/pkg/page"
)

// Mounter inserts registry widgets into a document's grid. Mount state is
// tracked here, never inferred from the rendered document. Not safe for
// concurrent use; the owning dashboard serialises calls.
type Mounter struct {
	doc      *page.Document
	registry *Registry
	logger   *logging.Logger

	mounted   []string
	isMounted map[string]bool
	styled    map[string]bool

	// OnMounted runs after a widget is inserted.
	OnMounted func(Info)
}

// NewMounter returns a mounter for doc drawing from registry.
func NewMounter(doc *page.Document, registry *Registry, logger *logging.Logger) *Mounter {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Mounter{
		doc:       doc,
		registry:  registry,
		logger:    logger,
		isMounted: make(map[string]bool),
		styled:    make(map[string]bool),
	}
}

// EnsureMounted inserts w into the grid unless it is already mounted. It
// reports whether w was inserted. With no grid it logs and does nothing.
func (m *Mounter) EnsureMounted(w Widget) (bool, error) {
	id := w.ID()
	if m.isMounted[id] {
		return false, nil
	}
	grid := m.doc.Grid()
	if grid == nil {
		m.logger.Warn(logging.CategoryWidget, "widget.grid_missing", "dashboard grid not found", map[string]any{
			"widget_id": id,
		})
		return false, nil
	}

	body, err := w.Render()
	if err != nil {
		m.logger.Error(logging.CategoryWidget, "widget.render_failed", err.Error(), map[string]any{
			"widget_id": id,
		})
		return false, apperrors.Wrap(err, apperrors.ErrCodeWidgetRender, "render widget").
			WithContext("widget_id", id)
	}

	grid.Insert(page.Fragment{
		ID:    id,
		Title: w.Title(),
		Size:  string(w.Size()),
		Body:  body,
	}, w.Position())
	m.isMounted[id] = true
	m.mounted = append(m.mounted, id)

	if key, css := w.Styles(); key != "" && !m.styled[key] {
		m.doc.InjectStyle(key, css)
		m.styled[key] = true
	}

	info := Describe(w)
	m.logger.Info(logging.CategoryWidget, "widget.mounted", "widget mounted", map[string]any{
		"widget_id": id,
		"position":  info.Position,
	})
	if m.OnMounted != nil {
		m.OnMounted(info)
	}
	return true, nil
}

// EnsureAll mounts every registry widget in order. Render failures do not
// stop later widgets; they are joined into the returned error.
func (m *Mounter) EnsureAll() error {
	var errs []error
	for _, w := range m.registry.All() {
		if _, err := m.EnsureMounted(w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Bind subscribes EnsureAll to Initialized and Refresh.
func (m *Mounter) Bind(b *bus.Bus) {
	handler := func(bus.Signal) {
		_ = m.EnsureAll()
	}
	b.Subscribe(bus.Initialized, handler)
	b.Subscribe(bus.Refresh, handler)
}

// Mounted reports whether id has been mounted.
func (m *Mounter) Mounted(id string) bool {
	return m.isMounted[id]
}

// MountedIDs returns mounted widget IDs in mount order.
func (m *Mounter) MountedIDs() []string {
	return append([]string(nil), m.mounted...)
}

// StyleCount reports how many distinct style blocks the mounter injected.
func (m *Mounter) StyleCount() int {
	return len(m.styled)
}

// Registry returns the registry the mounter draws from.
func (m *Mounter) Registry() *Registry {
	return m.registry
}
