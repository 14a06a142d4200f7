// Package events defines the messages pushed to live dashboard clients and
// the bus that carries them from the store to the broadcaster.
package events

import (
	"sync"
	"time"
)

// Type names a live event
type Type string

const (
	TypeInitial            Type = "initial"
	TypeHostDiscovered     Type = "host_discovered"
	TypeScanStarted        Type = "scan_started"
	TypeScanComplete       Type = "scan_complete"
	TypeLog                Type = "log"
	TypeRemediationApplied Type = "remediation_applied"
	TypePolicyCreated      Type = "policy_created"
)

// Event is the frame sent to subscribers
type Event struct {
	Type      Type      `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New stamps an event with the current time
func New(t Type, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now().UTC()}
}

// Handler receives published events. Handlers run on the publisher's
// goroutine and must not block.
type Handler func(Event)

// Bus fans published events out to registered handlers in order
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make([]Handler, 0)}
}

// Subscribe adds a handler
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers ev to every handler
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		h(ev)
	}
}
