package middleware

import (
	"context"

	"seabreeze/internal/app/commands"
	"seabreeze/internal/app/uow"
)

// ContextInjector lets transactional unit-of-work implementations thread
// their session into the context seen by repositories.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}

// Transaction opens a unit of work around every command: commit on success,
// rollback on any error, so no command ever half-applies.
func Transaction(factory uow.Factory) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			unit, err := factory.Begin(ctx, uow.TxOptions{})
			if err != nil {
				return nil, err
			}
			execCtx := ctx
			if injector, ok := unit.(ContextInjector); ok {
				execCtx = injector.InjectContext(ctx)
			}
			execCtx = uow.ContextWithUnitOfWork(execCtx, unit)

			committed := false
			defer func() {
				if !committed {
					_ = unit.Rollback(execCtx)
				}
			}()

			res, err := next.Dispatch(execCtx, cmd)
			if err != nil {
				return nil, err
			}
			if err := unit.Commit(execCtx); err != nil {
				return nil, err
			}
			committed = true
			return res, nil
		})
	}
}
