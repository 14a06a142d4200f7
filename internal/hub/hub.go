// Package hub pushes store events to live dashboard connections.
//
// Every client owns a bounded outbound queue. Broadcast never blocks: a
// client whose queue is full is dropped and has to reconnect, so one slow
// browser cannot stall the store.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"sentinel/internal/events"
	"sentinel/internal/store"
)

// ErrClosed is returned when attaching to a hub that has shut down
var ErrClosed = errors.New("hub closed")

// Source hands a consistent snapshot to a new subscriber
type Source interface {
	Subscribe(ctx context.Context, fn func(store.Snapshot)) error
}

// Config tunes live delivery
type Config struct {
	ClientBuffer  int
	KeepAlive     time.Duration
	ReconnectHint time.Duration
	WriteTimeout  time.Duration
}

// DefaultConfig returns the standard live settings
func DefaultConfig() Config {
	return Config{
		ClientBuffer:  64,
		KeepAlive:     30 * time.Second,
		ReconnectHint: 3 * time.Second,
		WriteTimeout:  10 * time.Second,
	}
}

// Client is one live connection
type Client struct {
	id        string
	transport string
	events    chan []byte
}

// ID returns the client identifier used in logs
func (c *Client) ID() string { return c.id }

// Events yields serialized frames. It is closed when the hub drops the
// client or shuts down.
func (c *Client) Events() <-chan []byte { return c.events }

// Hub manages live client connections
type Hub struct {
	cfg    Config
	source Source

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// New creates a Hub that takes initial snapshots from source
func New(cfg Config, source Source) *Hub {
	def := DefaultConfig()
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = def.ClientBuffer
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = def.KeepAlive
	}
	if cfg.ReconnectHint <= 0 {
		cfg.ReconnectHint = def.ReconnectHint
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	return &Hub{
		cfg:     cfg,
		source:  source,
		clients: make(map[*Client]struct{}),
	}
}

// initialData is the payload of the first frame a client receives
type initialData struct {
	store.Snapshot
	ReconnectMs int64 `json:"reconnectMs"`
}

// Attach registers a client. The initial snapshot is queued before the
// client becomes visible to Broadcast, and both happen inside the store's
// serialized section, so the client sees every later event exactly once.
func (h *Hub) Attach(ctx context.Context, transport string) (*Client, error) {
	c := &Client{
		id:        uuid.NewString(),
		transport: transport,
		events:    make(chan []byte, h.cfg.ClientBuffer),
	}

	var attachErr error
	err := h.source.Subscribe(ctx, func(snap store.Snapshot) {
		data, err := json.Marshal(events.New(events.TypeInitial, initialData{
			Snapshot:    snap,
			ReconnectMs: h.cfg.ReconnectHint.Milliseconds(),
		}))
		if err != nil {
			attachErr = fmt.Errorf("marshal initial snapshot: %w", err)
			return
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed {
			attachErr = ErrClosed
			return
		}
		c.events <- data
		h.clients[c] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	if attachErr != nil {
		return nil, attachErr
	}

	log.WithFields(log.Fields{"client": c.id, "transport": transport, "total": h.ClientCount()}).Info("Live client connected")
	return c, nil
}

// Detach removes a client; it is safe to call more than once
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.events)
	}
	h.mu.Unlock()

	if ok {
		log.WithFields(log.Fields{"client": c.id, "total": h.ClientCount()}).Info("Live client disconnected")
	}
}

// Broadcast serializes ev once and queues it for every client
func (h *Hub) Broadcast(ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).WithField("type", ev.Type).Error("Failed to marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.events <- data:
		default:
			delete(h.clients, c)
			close(c.events)
			log.WithField("client", c.id).Warn("Live client too slow, dropping")
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.events)
	}
}
