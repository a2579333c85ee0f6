package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"seabreeze/internal/app/uow"
	domainbooking "seabreeze/internal/domain/booking"
	domaincatalog "seabreeze/internal/domain/catalog"
	domainrebooking "seabreeze/internal/domain/rebooking"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface. The
// rebooking single-outstanding guard and the merge-back both depend on the
// session transaction spanning every repository call.
type Factory struct {
	DB *mongo.Database

	CatalogRepo   domaincatalog.Repository
	BookingRepo   domainbooking.Repository
	RebookingRepo domainrebooking.Repository
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:         f.DB,
		session:    session,
		catalog:    f.CatalogRepo,
		bookings:   f.BookingRepo,
		rebookings: f.RebookingRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

	catalog    domaincatalog.Repository
	bookings   domainbooking.Repository
	rebookings domainrebooking.Repository
}

func (u *Unit) Catalog() domaincatalog.Repository {
	return u.catalog
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Rebookings() domainrebooking.Repository {
	return u.rebookings
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session visible to downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
