package uow

import (
	"context"
	"errors"

	domainbooking "seabreeze/internal/domain/booking"
	domaincatalog "seabreeze/internal/domain/catalog"
	domainrebooking "seabreeze/internal/domain/rebooking"
)

// UnitOfWork coordinates repositories inside one transaction boundary. The
// quote-then-persist path and the rebooking merge-back both rely on it: no
// partial write may ever become visible to other readers.
type UnitOfWork interface {
	Catalog() domaincatalog.Repository
	Bookings() domainbooking.Repository
	Rebookings() domainrebooking.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

type ctxKey struct{}

// ContextWithUnitOfWork stores the provided unit of work in context.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

// FromContext retrieves a unit of work from context if present.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	val := ctx.Value(ctxKey{})
	if val == nil {
		return nil, false
	}
	unit, ok := val.(UnitOfWork)
	return unit, ok
}
