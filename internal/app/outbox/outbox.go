package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"seabreeze/internal/domain/shared/events"
)

// EventRecord is a serialized domain event queued for publication.
type EventRecord struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
}

// Outbox buffers event records until the surrounding transaction commits and
// the middleware flushes them toward the broker.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// EventEncoder turns a domain event into a transportable record.
type EventEncoder interface {
	Encode(event events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals event structs as JSON payloads.
type JSONEventEncoder struct{}

func (JSONEventEncoder) Encode(event events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return EventRecord{}, err
	}
	return EventRecord{
		ID:         uuid.NewString(),
		Name:       event.EventName(),
		Aggregate:  event.AggregateID(),
		Payload:    payload,
		OccurredAt: event.OccurredAt(),
	}, nil
}

// RecordDomainEvents encodes and queues every pending event.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, pending []events.DomainEvent) error {
	if box == nil || len(pending) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, event := range pending {
		record, err := encoder.Encode(event)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
