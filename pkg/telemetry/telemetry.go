package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType identifies the kind of page event.
type EventType string

const (
	EventSignalPublished EventType = "signal.published"
	EventWidgetMounted   EventType = "widget.mounted"
	EventLayoutApplied   EventType = "layout.applied"
	EventViewChanged     EventType = "view.changed"
	EventRefreshCleared  EventType = "refresh.cleared"
	EventAssetsChanged   EventType = "assets.changed"
	EventPageCreated     EventType = "page.created"
	EventPageEvicted     EventType = "page.evicted"
)

// DefaultSubscriberBuffer is the per-subscriber channel depth.
const DefaultSubscriberBuffer = 64

// Event describes something that happened to a page. Events with no PageID
// concern every page.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	PageID    string         `json:"pageId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

type subscriber struct {
	pageID string
}

// Hub fan-outs events to any number of subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]subscriber
	closed      bool
	dropped     atomic.Uint64
}

// NewHub constructs a hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan Event]subscriber)}
}

// Publish notifies matching subscribers. Non-blocking; drops if a buffer is full.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	for ch, sub := range h.subscribers {
		if sub.pageID != "" && event.PageID != "" && sub.pageID != event.PageID {
			continue
		}
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber's
// buffer was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Subscribe returns a channel receiving every future event and a cleanup func.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	return h.subscribe("")
}

// SubscribePage returns a channel receiving events for pageID plus events
// that concern every page.
func (h *Hub) SubscribePage(pageID string) (<-chan Event, func()) {
	return h.subscribe(pageID)
}

func (h *Hub) subscribe(pageID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		empty := make(chan Event)
		close(empty)
		return empty, func() {}
	}
	ch := make(chan Event, DefaultSubscriberBuffer)
	h.subscribers[ch] = subscriber{pageID: pageID}
	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close unsubscribes all listeners and prevents future publications.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, ch)
	}
}
