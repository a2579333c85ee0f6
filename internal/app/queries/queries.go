package queries

import (
	"context"
	"errors"
	"sync"
)

// Query is a read request routed by key.
type Query interface {
	Key() string
}

// Handler handles a query and produces a result.
type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// Bus routes queries to registered handlers.
type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("queries: handler not found")
	ErrInvalidQuery    = errors.New("queries: invalid query for handler")
	ErrResultType      = errors.New("queries: result type mismatch")
	ErrNilBus          = errors.New("queries: nil bus")
)

// Ask runs the query through the provided bus, returning a typed result.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	value, ok := res.(R)
	if !ok {
		return zero, ErrResultType
	}
	return value, nil
}

// InMemoryBus is a map-backed query router.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]func(ctx context.Context, query Query) (any, error)
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string]func(ctx context.Context, query Query) (any, error))}
}

// RegisterHandler binds a typed handler to a query key on the bus.
func RegisterHandler[Q Query, R any](bus *InMemoryBus, key string, handler Handler[Q, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[key] = func(ctx context.Context, query Query) (any, error) {
		typed, ok := query.(Q)
		if !ok {
			return nil, ErrInvalidQuery
		}
		return handler.Handle(ctx, typed)
	}
}

func (b *InMemoryBus) Ask(ctx context.Context, query Query) (any, error) {
	b.mu.RLock()
	handle, ok := b.handlers[query.Key()]
	b.mu.RUnlock()
	if !ok {
		return nil, ErrHandlerNotFound
	}
	return handle(ctx, query)
}
