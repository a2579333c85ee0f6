package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seabreeze/internal/app/commands"
)

type fakeResult struct {
	Value string `json:"value"`
}

type fakeCommand struct {
	key       string
	requestID string
}

func (c fakeCommand) Key() string            { return c.key }
func (c fakeCommand) IdempotencyKey() string { return c.requestID }
func (c fakeCommand) ResultPrototype() any   { return &fakeResult{} }

type plainCommand struct{}

func (plainCommand) Key() string { return "plain" }

type countingBus struct {
	calls  int
	result any
	err    error
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	return b.result, b.err
}

type mapStore struct {
	records map[string]IdempotencyRecord
}

func newMapStore() *mapStore {
	return &mapStore{records: make(map[string]IdempotencyRecord)}
}

func (s *mapStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *mapStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s.records[rec.Key] = rec
	return nil
}

func TestIdempotencyReplaysResult(t *testing.T) {
	inner := &countingBus{result: &fakeResult{Value: "first"}}
	bus := ChainCommands(inner, Idempotency(newMapStore()))
	cmd := fakeCommand{key: "cmd", requestID: "req-1"}

	first, err := bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, &fakeResult{Value: "first"}, first)
	assert.Equal(t, 1, inner.calls)

	// The handler result changes, but the replayed outcome must not.
	inner.result = &fakeResult{Value: "second"}
	replayed, err := bus.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, &fakeResult{Value: "first"}, replayed)
	assert.Equal(t, 1, inner.calls, "replay must not re-execute")
}

func TestIdempotencyReplaysFailure(t *testing.T) {
	inner := &countingBus{err: errors.New("unit taken")}
	bus := ChainCommands(inner, Idempotency(newMapStore()))
	cmd := fakeCommand{key: "cmd", requestID: "req-1"}

	_, err := bus.Dispatch(context.Background(), cmd)
	require.EqualError(t, err, "unit taken")

	inner.err = nil
	inner.result = &fakeResult{Value: "would succeed now"}
	_, err = bus.Dispatch(context.Background(), cmd)
	require.EqualError(t, err, "unit taken", "a retried failing request keeps failing the same way")
	assert.Equal(t, 1, inner.calls)
}

func TestIdempotencyBypass(t *testing.T) {
	inner := &countingBus{result: &fakeResult{Value: "ok"}}
	bus := ChainCommands(inner, Idempotency(newMapStore()))

	t.Run("commands without the interface", func(t *testing.T) {
		_, err := bus.Dispatch(context.Background(), plainCommand{})
		require.NoError(t, err)
		_, err = bus.Dispatch(context.Background(), plainCommand{})
		require.NoError(t, err)
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("empty key", func(t *testing.T) {
		inner.calls = 0
		cmd := fakeCommand{key: "cmd"}
		_, err := bus.Dispatch(context.Background(), cmd)
		require.NoError(t, err)
		_, err = bus.Dispatch(context.Background(), cmd)
		require.NoError(t, err)
		assert.Equal(t, 2, inner.calls)
	})
}

type flushRecorder struct {
	flushes int
}

func (f *flushRecorder) Flush(ctx context.Context) error {
	f.flushes++
	return nil
}

func TestOutboxFlush(t *testing.T) {
	box := &flushRecorder{}

	t.Run("flushes after success", func(t *testing.T) {
		inner := &countingBus{result: "done"}
		bus := ChainCommands(inner, OutboxFlush(box))
		_, err := bus.Dispatch(context.Background(), plainCommand{})
		require.NoError(t, err)
		assert.Equal(t, 1, box.flushes)
	})

	t.Run("skips flush on failure", func(t *testing.T) {
		inner := &countingBus{err: errors.New("boom")}
		bus := ChainCommands(inner, OutboxFlush(box))
		_, err := bus.Dispatch(context.Background(), plainCommand{})
		require.Error(t, err)
		assert.Equal(t, 1, box.flushes)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}

	bus := ChainCommands(&countingBus{}, tag("outer"), tag("inner"))
	_, err := bus.Dispatch(context.Background(), plainCommand{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}
