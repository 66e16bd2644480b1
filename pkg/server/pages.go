package server

import (
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/odvcencio/earthcontrol/pkg/dashboard"
	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
	"github.com/odvcencio/earthcontrol/pkg/telemetry"
)

// DefaultMaxPages bounds a PageStore built with a non-positive limit.
const DefaultMaxPages = 512

// PageStore holds live dashboards keyed by ULID. Once full, creating a page
// evicts the oldest one. Nothing is persisted.
type PageStore struct {
	mu    sync.Mutex
	pages map[string]*dashboard.Dashboard
	order []string
	max   int

	build   func(id string) *dashboard.Dashboard
	metrics *telemetry.Metrics
	events  *telemetry.Hub
}

// NewPageStore creates a store that builds dashboards with build.
func NewPageStore(max int, build func(id string) *dashboard.Dashboard, metrics *telemetry.Metrics, events *telemetry.Hub) *PageStore {
	if max <= 0 {
		max = DefaultMaxPages
	}
	return &PageStore{
		pages:   make(map[string]*dashboard.Dashboard),
		max:     max,
		build:   build,
		metrics: metrics,
		events:  events,
	}
}

// Create builds and stores a new, unmounted dashboard.
func (s *PageStore) Create() *dashboard.Dashboard {
	id := ulid.Make().String()
	d := s.build(id)

	s.mu.Lock()
	var evicted []*dashboard.Dashboard
	for len(s.order) >= s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		evicted = append(evicted, s.pages[oldest])
		delete(s.pages, oldest)
	}
	s.pages[id] = d
	s.order = append(s.order, id)
	active := len(s.pages)
	s.mu.Unlock()

	for _, old := range evicted {
		old.Close()
		if s.metrics != nil {
			s.metrics.PagesEvicted.Inc()
		}
		s.events.Publish(telemetry.Event{Type: telemetry.EventPageEvicted, PageID: old.ID()})
	}
	if s.metrics != nil {
		s.metrics.PagesActive.Set(float64(active))
	}
	s.events.Publish(telemetry.Event{Type: telemetry.EventPageCreated, PageID: id})
	return d
}

// Get returns the page with id.
func (s *PageStore) Get(id string) (*dashboard.Dashboard, error) {
	s.mu.Lock()
	d, ok := s.pages[id]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodePageNotFound, "page %q not found", id).
			WithUserMessage("This dashboard page has expired.").
			WithRemediation("Reload / to open a fresh dashboard.")
	}
	return d, nil
}

// Len returns the number of live pages.
func (s *PageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// All returns the live pages, oldest first.
func (s *PageStore) All() []*dashboard.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*dashboard.Dashboard, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.pages[id])
	}
	return out
}

// Close stops every page and empties the store.
func (s *PageStore) Close() {
	s.mu.Lock()
	pages := s.pages
	s.pages = make(map[string]*dashboard.Dashboard)
	s.order = nil
	s.mu.Unlock()

	for _, d := range pages {
		d.Close()
	}
	if s.metrics != nil {
		s.metrics.PagesActive.Set(0)
	}
}
