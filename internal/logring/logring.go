// Package logring holds the bounded activity log served to the dashboard.
//
// A Ring is not safe for concurrent use. The store actor owns the only
// instance and serialises access to it.
package logring

import "sentinel/internal/domain"

const DefaultCapacity = 1000

// Ring is a fixed-capacity FIFO of log entries. Appending to a full ring
// evicts the oldest entry.
type Ring struct {
	buf   []domain.LogEntry
	start int
	size  int
}

// New creates a ring holding at most capacity entries
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]domain.LogEntry, capacity)}
}

// Append adds an entry, evicting the oldest one when full.
// It reports whether an entry was evicted.
func (r *Ring) Append(e domain.LogEntry) bool {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = e
		r.size++
		return false
	}
	r.buf[r.start] = e
	r.start = (r.start + 1) % len(r.buf)
	return true
}

func (r *Ring) Len() int { return r.size }

func (r *Ring) Cap() int { return len(r.buf) }

func (r *Ring) at(i int) domain.LogEntry {
	return r.buf[(r.start+i)%len(r.buf)]
}

// Snapshot returns all entries, oldest first
func (r *Ring) Snapshot() []domain.LogEntry {
	out := make([]domain.LogEntry, r.size)
	for i := range out {
		out[i] = r.at(i)
	}
	return out
}

// Recent returns the newest n entries, oldest first
func (r *Ring) Recent(n int) []domain.LogEntry {
	if n <= 0 || n > r.size {
		n = r.size
	}
	out := make([]domain.LogEntry, n)
	offset := r.size - n
	for i := range out {
		out[i] = r.at(offset + i)
	}
	return out
}

// Filter narrows a Query. Zero values match everything.
type Filter struct {
	Level domain.LogLevel
	// Limit keeps only the newest matching entries
	Limit int
}

// Query returns matching entries, oldest first
func (r *Ring) Query(f Filter) []domain.LogEntry {
	out := make([]domain.LogEntry, 0, r.size)
	for i := 0; i < r.size; i++ {
		e := r.at(i)
		if f.Level != "" && e.Level != f.Level {
			continue
		}
		out = append(out, e)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}
