package memory

import (
	"context"

	"seabreeze/internal/app/uow"
	domainbooking "seabreeze/internal/domain/booking"
	domaincatalog "seabreeze/internal/domain/catalog"
	domainrebooking "seabreeze/internal/domain/rebooking"
)

// Factory hands out units of work over the shared in-memory repositories.
// There is no transaction to speak of; the repositories' own locks and the
// atomic rebooking Create carry the invariants instead.
type Factory struct {
	CatalogRepo   domaincatalog.Repository
	BookingRepo   domainbooking.Repository
	RebookingRepo domainrebooking.Repository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return &Unit{
		catalog:    f.CatalogRepo,
		bookings:   f.BookingRepo,
		rebookings: f.RebookingRepo,
	}, nil
}

type Unit struct {
	catalog    domaincatalog.Repository
	bookings   domainbooking.Repository
	rebookings domainrebooking.Repository
}

func (u *Unit) Catalog() domaincatalog.Repository      { return u.catalog }
func (u *Unit) Bookings() domainbooking.Repository     { return u.bookings }
func (u *Unit) Rebookings() domainrebooking.Repository { return u.rebookings }
func (u *Unit) Commit(ctx context.Context) error       { return nil }
func (u *Unit) Rollback(ctx context.Context) error     { return nil }

var _ uow.Factory = Factory{}
