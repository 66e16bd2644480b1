// Package bus provides the dashboard signal bus: a typed, synchronous
// publish/subscribe channel scoped to a single page. Handlers run in
// registration order on the publishing goroutine. A NATS bridge can mirror
// selected signals across server replicas.
package bus

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrUnknownSignal is returned when a signal name does not map to a Signal.
	ErrUnknownSignal = errors.New("unknown signal")

	// ErrClosed is returned when operating on a closed bridge.
	ErrClosed = errors.New("bus bridge closed")
)

// Signal is a named, payload-less dashboard event.
type Signal int

const (
	// Initialized fires once the shell has created the grid container.
	Initialized Signal = iota + 1
	// Refresh fires on every refresh control activation.
	Refresh
	// Resize fires when the viewport changes size.
	Resize
)

const signalPrefix = "dashboard:"

var signalNames = map[Signal]string{
	Initialized: "initialized",
	Refresh:     "refresh",
	Resize:      "resize",
}

// Signals lists every known signal in declaration order.
func Signals() []Signal {
	return []Signal{Initialized, Refresh, Resize}
}

// Name returns the short name, e.g. "refresh".
func (s Signal) Name() string {
	if name, ok := signalNames[s]; ok {
		return name
	}
	return fmt.Sprintf("signal(%d)", int(s))
}

// String returns the wire name, e.g. "dashboard:refresh".
func (s Signal) String() string {
	return signalPrefix + s.Name()
}

// Valid reports whether s is a declared signal.
func (s Signal) Valid() bool {
	_, ok := signalNames[s]
	return ok
}

// ParseSignal accepts either the wire name or the short name.
func ParseSignal(name string) (Signal, error) {
	short := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), signalPrefix)
	for sig, n := range signalNames {
		if n == short {
			return sig, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
}

// Handler reacts to a signal. Handlers must be idempotent; there is no
// unsubscribe.
type Handler func(Signal)

// Observer is notified after every publish with the number of handlers run.
type Observer func(sig Signal, delivered int)

// Bus is a synchronous signal bus. The zero value is ready to use.
type Bus struct {
	mu       sync.Mutex
	handlers map[Signal][]Handler
	observer Observer
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{handlers: make(map[Signal][]Handler)}
}

// Observe installs a publish observer, replacing any previous one.
func (b *Bus) Observe(fn Observer) {
	b.mu.Lock()
	b.observer = fn
	b.mu.Unlock()
}

// Subscribe registers handler for sig for the lifetime of the bus.
func (b *Bus) Subscribe(sig Signal, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	if b.handlers == nil {
		b.handlers = make(map[Signal][]Handler)
	}
	b.handlers[sig] = append(b.handlers[sig], handler)
	b.mu.Unlock()
}

// Publish runs every handler currently subscribed to sig, in registration
// order, before returning. Handlers subscribed during the publish are not run
// for it. Publishing with no subscribers is a no-op.
func (b *Bus) Publish(sig Signal) {
	b.mu.Lock()
	handlers := append([]Handler(nil), b.handlers[sig]...)
	observer := b.observer
	b.mu.Unlock()

	for _, h := range handlers {
		h(sig)
	}
	if observer != nil {
		observer(sig, len(handlers))
	}
}

// Subscribers returns the number of handlers registered for sig.
func (b *Bus) Subscribers(sig Signal) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[sig])
}
