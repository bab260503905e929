package shared

import "sync"

// EventBuffer collects the events returned by aggregate methods until the
// aggregate has been persisted and the events published.
type EventBuffer struct {
	mu     sync.Mutex
	events []DomainEvent
}

// Record appends events, ignoring nils
func (b *EventBuffer) Record(events ...DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range events {
		if e != nil {
			b.events = append(b.events, e)
		}
	}
}

// Pending returns a snapshot of the buffered events in the order recorded.
// Modifying the returned slice does not affect the buffer.
func (b *EventBuffer) Pending() []DomainEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]DomainEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Len returns the number of buffered events
func (b *EventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Clear drops all buffered events
func (b *EventBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}
