package commands

import (
	"context"
	"errors"
	"sync"
)

// Command is a state-changing request routed by key.
type Command interface {
	Key() string
}

// Handler executes a command and produces a result.
type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// Bus routes commands to registered handlers.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// Dispatch runs the command through the provided bus, returning a typed result.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
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

// InMemoryBus is a map-backed command router.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]func(ctx context.Context, cmd Command) (any, error)
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string]func(ctx context.Context, cmd Command) (any, error))}
}

// RegisterHandler binds a typed handler to a command key on the bus.
func RegisterHandler[C Command, R any](bus *InMemoryBus, key string, handler Handler[C, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[key] = func(ctx context.Context, cmd Command) (any, error) {
		typed, ok := cmd.(C)
		if !ok {
			return nil, ErrInvalidCommand
		}
		return handler.Handle(ctx, typed)
	}
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	b.mu.RLock()
	handle, ok := b.handlers[cmd.Key()]
	b.mu.RUnlock()
	if !ok {
		return nil, ErrHandlerNotFound
	}
	return handle(ctx, cmd)
}
