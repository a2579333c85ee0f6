package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"seabreeze/internal/app/commands"
)

// IdempotentCommand is implemented by commands that want replay protection.
// ResultPrototype must return a pointer to the handler's result type.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency replays the stored outcome for a previously seen key instead of
// re-executing the command. Failures are recorded too, so a retried failing
// request keeps failing the same way.
func Idempotency(store IdempotencyStore) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				if rec.Error != "" {
					return nil, errors.New(rec.Error)
				}
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := json.Unmarshal(rec.Payload, proto); err != nil {
					return nil, err
				}
				return proto, nil
			}

			result, err := next.Dispatch(ctx, cmd)
			record := IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
			if err != nil {
				record.Error = err.Error()
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				if record.Payload, err = json.Marshal(result); err != nil {
					return nil, err
				}
			}
			if err := store.Save(ctx, record); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}

// OutboxFlusher is the part of the outbox the command pipeline drives.
type OutboxFlusher interface {
	Flush(ctx context.Context) error
}

// OutboxFlush pushes buffered event records after a successful command.
func OutboxFlush(box OutboxFlusher) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
