package memory

import (
	"context"
	"sync"

	appoutbox "holidaze/internal/app/outbox"
)

// DefaultOutboxCapacity bounds the in-memory outbox when no relay drains it.
const DefaultOutboxCapacity = 256

// Outbox keeps the most recent event records in a fixed-size ring; used when
// Mongo is not configured. Once full, each Add evicts the oldest record.
type Outbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
	head    int
	size    int
	dropped int
}

// NewOutbox returns an outbox holding at most capacity records. A
// non-positive capacity selects DefaultOutboxCapacity.
func NewOutbox(capacity int) *Outbox {
	if capacity <= 0 {
		capacity = DefaultOutboxCapacity
	}
	return &Outbox{records: make([]appoutbox.EventRecord, capacity)}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	idx := (o.head + o.size) % len(o.records)
	if o.size == len(o.records) {
		o.head = (o.head + 1) % len(o.records)
		o.dropped++
	} else {
		o.size++
	}
	o.records[idx] = record
	return nil
}

// Drain returns the buffered events oldest first and clears the buffer.
func (o *Outbox) Drain() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, 0, o.size)
	for i := 0; i < o.size; i++ {
		idx := (o.head + i) % len(o.records)
		out = append(out, o.records[idx])
		o.records[idx] = appoutbox.EventRecord{}
	}
	o.head, o.size = 0, 0
	return out
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.size
}

// Dropped counts records evicted because the ring was full.
func (o *Outbox) Dropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}

var _ appoutbox.Outbox = (*Outbox)(nil)
