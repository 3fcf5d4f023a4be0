// Package events fans pipeline outcomes out to in-process observers such as
// telemetry and tests. Publishing never blocks the pipeline.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Outcome types.
const (
	TypeAccepted    = "charter.accepted"
	TypeStored      = "charter.stored"
	TypeDropped     = "charter.dropped"
	TypeSinkFailed  = "charter.sink_failed"
	TypeQueueFull   = "charter.queue_full"
	TypeQuarantined = "charter.quarantined"
)

// Outcome describes what happened to one delivery. Fields not relevant to the
// event type are left empty.
type Outcome struct {
	DeliveryID    string        `json:"delivery_id"`
	CharterID     string        `json:"charter_id,omitempty"`
	CellsWritten  int           `json:"cells_written,omitempty"`
	MissingFields []string      `json:"missing_fields,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration,omitempty"`
}

// Event is one published outcome.
type Event struct {
	ID   int64     `json:"id"`
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data Outcome   `json:"data"`
}

// Hub is an in-memory pub/sub with a ring buffer of recent events.
type Hub struct {
	nextID atomic.Int64

	mu    sync.Mutex
	ring  []Event
	start int
	size  int

	subs      map[int]chan Event
	nextSubID int
}

// NewHub creates a hub remembering the last capacity events (default 100).
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 100
	}
	return &Hub{
		ring: make([]Event, capacity),
		subs: make(map[int]chan Event),
	}
}

// Publish records an event and offers it to every subscriber. A nil Hub
// discards events.
func (h *Hub) Publish(eventType string, data Outcome) {
	if h == nil {
		return
	}

	ev := Event{
		ID:   h.nextID.Add(1),
		Type: eventType,
		At:   time.Now().UTC(),
		Data: data,
	}

	h.mu.Lock()
	h.pushLocked(ev)
	for _, ch := range h.subs {
		// Slow subscribers miss events.
		select {
		case ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
}

// Subscribe returns a channel of new events and a cancel func that closes it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSubID
	h.nextSubID++
	ch := make(chan Event, 128)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// SnapshotSince returns buffered events with ID > lastID, oldest first.
func (h *Hub) SnapshotSince(lastID int64) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Event, 0, h.size)
	for i := 0; i < h.size; i++ {
		ev := h.ring[(h.start+i)%len(h.ring)]
		if ev.ID > lastID {
			out = append(out, ev)
		}
	}
	return out
}

// Count returns how many buffered events have the given type.
func (h *Hub) Count(eventType string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for i := 0; i < h.size; i++ {
		if h.ring[(h.start+i)%len(h.ring)].Type == eventType {
			n++
		}
	}
	return n
}

func (h *Hub) pushLocked(ev Event) {
	capacity := len(h.ring)
	if h.size < capacity {
		h.ring[(h.start+h.size)%capacity] = ev
		h.size++
		return
	}

	// Overwrite oldest.
	h.ring[h.start] = ev
	h.start = (h.start + 1) % capacity
}
