package support

import (
	"context"

	"seabreeze/internal/app/middleware"
	"seabreeze/internal/app/uow"
)

// BeginReadOnlyUnit reuses the ambient unit of work when one is in flight and
// otherwise opens a read-only one, returning its cleanup.
func BeginReadOnlyUnit(ctx context.Context, factory uow.Factory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := ctx
	if injector, ok := unit.(middleware.ContextInjector); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	cleanup := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, cleanup, nil
}

// WithUnit runs fn inside the ambient unit of work when the transaction
// middleware already opened one, and otherwise manages its own: commit when
// fn succeeds, rollback when it fails.
func WithUnit(ctx context.Context, factory uow.Factory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	if unit, ok := uow.FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	execCtx := ctx
	if injector, ok := unit.(middleware.ContextInjector); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	if err := fn(execCtx, unit); err != nil {
		_ = unit.Rollback(execCtx)
		return err
	}
	return unit.Commit(execCtx)
}
