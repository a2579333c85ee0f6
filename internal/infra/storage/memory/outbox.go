package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "seabreeze/internal/app/outbox"
	infraoutbox "seabreeze/internal/infra/outbox"
)

// Outbox queues event records in memory for the worker. There is no
// transaction to hide behind, so entries are claimable as soon as Add
// returns.
type Outbox struct {
	mu      sync.Mutex
	entries []*entry
}

type entry struct {
	event       infraoutbox.Event
	state       string
	nextAttempt time.Time
	claimedAt   time.Time
}

const (
	entryNew     = "NEW"
	entryClaimed = "CLAIMED"
	entrySent    = "SENT"
	entryFailed  = "FAILED"
)

// claimLease bounds how long a claimed entry stays invisible. A worker that
// dies before MarkSent or MarkFailed loses its claim when the lease runs out
// and the entry is handed out again.
const claimLease = 30 * time.Second

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &entry{
		event: infraoutbox.Event{
			ID:         record.ID,
			Name:       record.Name,
			Aggregate:  record.Aggregate,
			Payload:    record.Payload,
			Headers:    record.Headers,
			OccurredAt: record.OccurredAt,
		},
		state:       entryNew,
		nextAttempt: time.Now().UTC(),
	})
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Event, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, e := range o.entries {
		pending := (e.state == entryNew || e.state == entryFailed) && !e.nextAttempt.After(now)
		expired := e.state == entryClaimed && now.Sub(e.claimedAt) > claimLease
		if pending || expired {
			e.state = entryClaimed
			e.claimedAt = now
			event := e.event
			return &event, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, e := range o.entries {
		if e.event.ID == id {
			e.state = entrySent
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.entries {
		if e.event.ID == id {
			e.state = entryFailed
			e.nextAttempt = next
			e.event.Attempts++
			return nil
		}
	}
	return nil
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)
