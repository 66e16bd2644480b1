package bus

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
)

// RemoteConfig configures the NATS bridge.
type RemoteConfig struct {
	// URL is the NATS server URL (e.g., "nats://localhost:4222").
	URL string

	// Name is a client identifier for debugging/monitoring.
	Name string

	// SubjectPrefix namespaces the mirrored signals.
	SubjectPrefix string

	// Timeout bounds the initial connect.
	Timeout time.Duration
}

// DefaultRemoteConfig returns a RemoteConfig with sensible defaults.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		URL:           nats.DefaultURL,
		Name:          "earthcontrol",
		SubjectPrefix: "earthcontrol.dashboard",
		Timeout:       5 * time.Second,
	}
}

// envelope is the wire payload; signals carry no data of their own.
type envelope struct {
	Signal string    `json:"signal"`
	Origin string    `json:"origin,omitempty"`
	SentAt time.Time `json:"sentAt"`
}

// NATSBridge mirrors signals between server replicas. Announce publishes a
// signal to NATS; Listen invokes a callback when another replica announces
// one. Echo of the bridge's own announcements is suppressed by the
// connection.
type NATSBridge struct {
	conn   *nats.Conn
	prefix string
	origin string
	owned  bool

	mu     sync.Mutex
	subs   []*nats.Subscription
	closed atomic.Bool
}

// NewNATSBridge dials NATS and returns a bridge that owns the connection.
func NewNATSBridge(cfg RemoteConfig) (*NATSBridge, error) {
	defaults := DefaultRemoteConfig()
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = defaults.URL
	}
	if cfg.Name == "" {
		cfg.Name = defaults.Name
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.NoEcho(),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	b := NewNATSBridgeFromConn(conn, cfg.SubjectPrefix, cfg.Name)
	b.owned = true
	return b, nil
}

// NewNATSBridgeFromConn wraps an existing connection. The caller keeps
// ownership of conn.
func NewNATSBridgeFromConn(conn *nats.Conn, prefix, origin string) *NATSBridge {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultRemoteConfig().SubjectPrefix
	}
	return &NATSBridge{conn: conn, prefix: prefix, origin: origin}
}

// Subject returns the NATS subject used for sig.
func (b *NATSBridge) Subject(sig Signal) string {
	return b.prefix + "." + sig.Name()
}

// Announce publishes sig to every other replica.
func (b *NATSBridge) Announce(sig Signal) error {
	if b.closed.Load() || b.conn == nil {
		return ErrClosed
	}
	data, err := json.Marshal(envelope{Signal: sig.String(), Origin: b.origin, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return b.conn.Publish(b.Subject(sig), data)
}

// Listen calls fn whenever another replica announces sig. Malformed
// payloads are dropped.
func (b *NATSBridge) Listen(sig Signal, fn func(Signal)) error {
	if b.closed.Load() || b.conn == nil {
		return ErrClosed
	}
	sub, err := b.conn.Subscribe(b.Subject(sig), func(msg *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			return
		}
		got, err := ParseSignal(env.Signal)
		if err != nil || got != sig {
			return
		}
		fn(got)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", b.Subject(sig), err)
	}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return nil
}

// Close drops subscriptions and, if the bridge dialed it, the connection.
func (b *NATSBridge) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, sub := range subs {
		_ = sub.Unsubscribe()
	}
	if b.owned && b.conn != nil {
		b.conn.Close()
	}
	return nil
}
