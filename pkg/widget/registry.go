package widget

import (
	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
)

// Registry is the ordered set of widgets a dashboard mounts. Order is the
// mount order.
type Registry struct {
	widgets []Widget
	index   map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends w. Duplicate IDs are rejected.
func (r *Registry) Register(w Widget) error {
	if w == nil || w.ID() == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "widget must have an id")
	}
	if _, ok := r.index[w.ID()]; ok {
		return apperrors.Newf(apperrors.ErrCodeWidgetDuplicate, "widget %q already registered", w.ID()).
			WithContext("widget_id", w.ID())
	}
	r.index[w.ID()] = len(r.widgets)
	r.widgets = append(r.widgets, w)
	return nil
}

// MustRegister is Register that panics on error. For static registries.
func (r *Registry) MustRegister(widgets ...Widget) *Registry {
	for _, w := range widgets {
		if err := r.Register(w); err != nil {
			panic(err)
		}
	}
	return r
}

// Get returns the widget registered under id.
func (r *Registry) Get(id string) (Widget, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.widgets[i], true
}

// All returns the widgets in registration order.
func (r *Registry) All() []Widget {
	return append([]Widget(nil), r.widgets...)
}

// Len returns the number of registered widgets.
func (r *Registry) Len() int {
	return len(r.widgets)
}

// Describe lists every widget's Info in order.
func (r *Registry) Describe() []Info {
	out := make([]Info, len(r.widgets))
	for i, w := range r.widgets {
		out[i] = Describe(w)
	}
	return out
}

// DefaultRegistry returns the standard dashboard line-up: the manifesto, the
// data panels, then the founder card.
func DefaultRegistry() *Registry {
	return NewRegistry().MustRegister(
		NewManifesto(),
		NewCarbonMarket(),
		NewClimateMigration(),
		NewEnergyMix(),
		NewSpeciesExtinction(),
		NewDataCenter(),
		NewMaterialFlow(),
		NewDoomsdayClock(),
		NewGlobalMarket(),
		NewInnovationGeography(),
		NewFounder(),
	)
}
