package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "seabreeze/internal/domain/booking"
	domaincatalog "seabreeze/internal/domain/catalog"
	domainpricing "seabreeze/internal/domain/pricing"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

var occupyingStatuses = []string{
	string(domainbooking.StatusPending),
	string(domainbooking.StatusConfirmed),
	string(domainbooking.StatusCheckedIn),
}

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "mode", Value: 1}, {Key: "price.lines.unit_id", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListOccupying(ctx context.Context, unit domaincatalog.UnitID, mode domaincatalog.BookingMode) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"status":              bson.M{"$in": occupyingStatuses},
		"mode":                string(mode),
		"price.lines.unit_id": string(unit),
	}
	return r.find(ctx, filter)
}

func (r *BookingRepository) List(ctx context.Context, scope domainbooking.Scope) ([]*domainbooking.Booking, error) {
	filter := bson.M{}
	if scope.GuestID != "" {
		filter["guest_id"] = scope.GuestID
	}
	return r.find(ctx, filter)
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var found []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		found = append(found, doc.toAggregate())
	}
	return found, cursor.Err()
}

type bookingDocument struct {
	ID        string                  `bson:"_id"`
	GuestID   string                  `bson:"guest_id"`
	Mode      string                  `bson:"mode"`
	Stay      stayDocument            `bson:"stay"`
	Adults    int                     `bson:"adults"`
	Children  int                     `bson:"children"`
	Price     domainpricing.Breakdown `bson:"price"`
	Paid      money.Money             `bson:"paid"`
	Balance   money.Money             `bson:"balance"`
	FullyPaid bool                    `bson:"fully_paid"`
	Status    string                  `bson:"status"`
	CreatedAt int64                   `bson:"created_at"`
	UpdatedAt int64                   `bson:"updated_at"`
	Version   int64                   `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:        string(b.ID),
		GuestID:   b.GuestID,
		Mode:      string(b.Mode),
		Stay:      newStayDocument(b.Stay),
		Adults:    b.Adults,
		Children:  b.Children,
		Price:     b.Price,
		Paid:      b.Paid,
		Balance:   b.Balance,
		FullyPaid: b.FullyPaid,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		GuestID:   d.GuestID,
		Mode:      domaincatalog.BookingMode(d.Mode),
		Stay:      d.Stay.toStay(),
		Adults:    d.Adults,
		Children:  d.Children,
		Price:     d.Price,
		Paid:      d.Paid,
		Balance:   d.Balance,
		FullyPaid: d.FullyPaid,
		Status:    domainbooking.Status(d.Status),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}

type stayDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
	Open     bool  `bson:"open"`
}

func newStayDocument(stay daterange.Stay) stayDocument {
	doc := stayDocument{CheckIn: stay.CheckIn.UnixMilli(), Open: stay.Open}
	if !stay.Open {
		doc.CheckOut = stay.CheckOut.UnixMilli()
	}
	return doc
}

func (d stayDocument) toStay() daterange.Stay {
	if d.Open {
		return daterange.OpenEnded(timestampToTime(d.CheckIn))
	}
	return daterange.Stay{CheckIn: timestampToTime(d.CheckIn), CheckOut: timestampToTime(d.CheckOut)}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
