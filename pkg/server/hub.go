package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/odvcencio/earthcontrol/pkg/telemetry"
)

const (
	clientSendBuffer = 64
	wsWriteTimeout   = 15 * time.Second
	wsPingInterval   = 20 * time.Second
	wsPingTimeout    = 5 * time.Second
	maxWSReadBytes   = 4 << 10
)

// eventPong answers a client {"type":"ping"} message.
const eventPong telemetry.EventType = "server.pong"

// Hub fans page events out to connected WebSocket clients, dropping slow
// consumers.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	onCount func(int)
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast sends an event to every interested client. A client whose
// buffer is full is disconnected.
func (h *Hub) Broadcast(event telemetry.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.enqueue(event) {
			go h.removeClient(c)
		}
	}
}

// sendTo queues event for one client if it is still registered.
func (h *Hub) sendTo(c *client, event telemetry.Event) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	return c.enqueue(event)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// register adds a client that receives events accepted by filter.
func (h *Hub) register(conn wsConn, filter func(telemetry.Event) bool) *client {
	c := &client{
		conn:   conn,
		send:   make(chan telemetry.Event, clientSendBuffer),
		filter: filter,
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	if h.onCount != nil {
		h.onCount(n)
	}
	return c
}

// removeClient disconnects and removes a client.
func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok && h.onCount != nil {
		h.onCount(n)
	}
}

type wsConn interface {
	Write(ctx context.Context, msgType websocket.MessageType, data []byte) error
	Close(status websocket.StatusCode, reason string) error
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
}

type client struct {
	conn   wsConn
	send   chan telemetry.Event
	filter func(telemetry.Event) bool
}

func (c *client) enqueue(event telemetry.Event) bool {
	if c.filter != nil && !c.filter(event) {
		return true
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

func (c *client) writeLoop(ctx context.Context) error {
	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return nil
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err = c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *client) close(status websocket.StatusCode, reason string) {
	_ = c.conn.Close(status, reason)
}

// pageFilter accepts events for pageID and page-less broadcasts.
func pageFilter(pageID string) func(telemetry.Event) bool {
	return func(event telemetry.Event) bool {
		return event.PageID == "" || event.PageID == pageID
	}
}

func startWSPing(ctx context.Context, conn *websocket.Conn) {
	if conn == nil {
		return
	}
	ticker := time.NewTicker(wsPingInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, wsPingTimeout)
				_ = conn.Ping(pingCtx)
				cancel()
			}
		}
	}()
}
