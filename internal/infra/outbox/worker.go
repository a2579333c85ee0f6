package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

// Event is a claimed outbox entry on its way to the broker.
type Event struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
	Attempts   int
}

// Store is the claim side of the outbox. Claim must hand each entry to at
// most one worker at a time.
type Store interface {
	Claim(ctx context.Context, workerID string) (*Event, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

// Producer publishes an already serialized event to the broker.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker drains the outbox store toward the broker, wrapping each payload
// into a CloudEvents envelope. Publish failures reschedule the entry with
// the configured backoff; the worker itself keeps running.
type Worker struct {
	Store       Store
	Producer    Producer
	Logger      *slog.Logger
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) processOnce(ctx context.Context) error {
	event, err := w.Store.Claim(ctx, w.workerID())
	if err != nil || event == nil {
		return err
	}
	payload, headers, err := w.formatPayload(event)
	if err != nil {
		w.logFailure(event, err)
		_ = w.Store.MarkFailed(ctx, event.ID, w.nextRetry(event.Attempts), err.Error())
		return nil
	}
	topic := w.topicFor(event.Name)
	if err := w.Producer.Publish(ctx, topic, event.Aggregate, payload, headers); err != nil {
		w.logFailure(event, err)
		_ = w.Store.MarkFailed(ctx, event.ID, w.nextRetry(event.Attempts), err.Error())
		return nil
	}
	return w.Store.MarkSent(ctx, event.ID)
}

func (w *Worker) formatPayload(event *Event) ([]byte, map[string]string, error) {
	if event.Headers == nil {
		event.Headers = map[string]string{}
	}
	data := map[string]any{}
	if err := json.Unmarshal(event.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            event.Name + ".v1",
		"source":          w.source(),
		"time":            event.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := event.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range event.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	topic := base + ".events.v1"
	if w.TopicPrefix != "" {
		topic = w.TopicPrefix + "." + topic
	}
	return topic
}

func (w *Worker) logFailure(event *Event, err error) {
	if w.Logger == nil {
		return
	}
	w.Logger.Warn("outbox publish failed", "event", event.Name, "id", event.ID, "attempts", event.Attempts, "error", err)
}

func (w *Worker) workerID() string {
	if w.ID != "" {
		return w.ID
	}
	return uuid.NewString()
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://seabreeze"
}
