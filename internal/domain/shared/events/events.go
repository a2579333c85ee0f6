package events

import "time"

// DomainEvent is raised by aggregates when something notable happens.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder collects pending events on an aggregate until the application
// layer drains them into the outbox. Embed it by value.
type EventRecorder struct {
	pending []DomainEvent
}

// Record appends an event to the pending list.
func (r *EventRecorder) Record(event DomainEvent) {
	r.pending = append(r.pending, event)
}

// PendingEvents returns events recorded since the last clear.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	return r.pending
}

// ClearEvents drops all pending events.
func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}
