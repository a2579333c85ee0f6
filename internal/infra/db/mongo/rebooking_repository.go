package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "seabreeze/internal/domain/booking"
	domaincatalog "seabreeze/internal/domain/catalog"
	domainpricing "seabreeze/internal/domain/pricing"
	domainrebooking "seabreeze/internal/domain/rebooking"
	"seabreeze/internal/domain/shared/money"
)

var outstandingStatuses = []string{
	string(domainrebooking.StatusPending),
	string(domainrebooking.StatusApproved),
}

type RebookingRepository struct {
	col *mongo.Collection
}

func NewRebookingRepository(db *mongo.Database) *RebookingRepository {
	col := db.Collection("agg_rebooking")
	_, _ = col.Indexes().CreateOne(context.Background(), outstandingProposalIndex())
	return &RebookingRepository{col: col}
}

// outstandingProposalIndex enforces at most one PENDING or APPROVED proposal
// per booking at the storage layer. The partial filter keeps settled
// proposals out of the uniqueness scope, so history accumulates freely.
func outstandingProposalIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "booking_id", Value: 1}},
		Options: options.Index().
			SetName("uniq_outstanding_per_booking").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": bson.M{"$in": outstandingStatuses}}),
	}
}

func (r *RebookingRepository) ByID(ctx context.Context, id domainrebooking.RebookingID) (*domainrebooking.Rebooking, error) {
	var doc rebookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainrebooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Create inserts a new proposal. The unique partial index turns a concurrent
// second insert into a duplicate key error, so the guard holds without a
// read-then-write race between snapshot transactions.
func (r *RebookingRepository) Create(ctx context.Context, reb *domainrebooking.Rebooking) error {
	doc := newRebookingDocument(reb)
	doc.Version = reb.Version + 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainrebooking.ErrOutstandingExists
		}
		return err
	}
	reb.Version = doc.Version
	return nil
}

func (r *RebookingRepository) Save(ctx context.Context, reb *domainrebooking.Rebooking) error {
	doc := newRebookingDocument(reb)
	filter := bson.M{"_id": doc.ID, "version": reb.Version}
	doc.Version = reb.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	reb.Version = doc.Version
	return nil
}

func (r *RebookingRepository) OutstandingForBooking(ctx context.Context, id domainbooking.BookingID) (*domainrebooking.Rebooking, error) {
	filter := bson.M{"booking_id": string(id), "status": bson.M{"$in": outstandingStatuses}}
	var doc rebookingDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainrebooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

type rebookingDocument struct {
	ID        string                  `bson:"_id"`
	BookingID string                  `bson:"booking_id"`
	Mode      string                  `bson:"mode"`
	Stay      stayDocument            `bson:"stay"`
	Adults    int                     `bson:"adults"`
	Children  int                     `bson:"children"`
	Price     domainpricing.Breakdown `bson:"price"`

	OriginalAmount   money.Money `bson:"original_amount"`
	NewAmount        money.Money `bson:"new_amount"`
	AmountDifference money.Money `bson:"amount_difference"`
	Fee              money.Money `bson:"fee"`
	TotalAdjustment  money.Money `bson:"total_adjustment"`

	Status      string `bson:"status"`
	CreatedAt   int64  `bson:"created_at"`
	UpdatedAt   int64  `bson:"updated_at"`
	ApprovedAt  int64  `bson:"approved_at"`
	CompletedAt int64  `bson:"completed_at"`
	Version     int64  `bson:"version"`
}

func newRebookingDocument(reb *domainrebooking.Rebooking) rebookingDocument {
	doc := rebookingDocument{
		ID:               string(reb.ID),
		BookingID:        string(reb.BookingID),
		Mode:             string(reb.Mode),
		Stay:             newStayDocument(reb.Stay),
		Adults:           reb.Adults,
		Children:         reb.Children,
		Price:            reb.Price,
		OriginalAmount:   reb.OriginalAmount,
		NewAmount:        reb.NewAmount,
		AmountDifference: reb.AmountDifference,
		Fee:              reb.Fee,
		TotalAdjustment:  reb.TotalAdjustment,
		Status:           string(reb.Status),
		CreatedAt:        reb.CreatedAt.UnixMilli(),
		UpdatedAt:        reb.UpdatedAt.UnixMilli(),
		Version:          reb.Version,
	}
	if !reb.ApprovedAt.IsZero() {
		doc.ApprovedAt = reb.ApprovedAt.UnixMilli()
	}
	if !reb.CompletedAt.IsZero() {
		doc.CompletedAt = reb.CompletedAt.UnixMilli()
	}
	return doc
}

func (d rebookingDocument) toAggregate() *domainrebooking.Rebooking {
	reb := &domainrebooking.Rebooking{
		ID:               domainrebooking.RebookingID(d.ID),
		BookingID:        domainbooking.BookingID(d.BookingID),
		Mode:             domaincatalog.BookingMode(d.Mode),
		Stay:             d.Stay.toStay(),
		Adults:           d.Adults,
		Children:         d.Children,
		Price:            d.Price,
		OriginalAmount:   d.OriginalAmount,
		NewAmount:        d.NewAmount,
		AmountDifference: d.AmountDifference,
		Fee:              d.Fee,
		TotalAdjustment:  d.TotalAdjustment,
		Status:           domainrebooking.Status(d.Status),
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
		Version:          d.Version,
	}
	if d.ApprovedAt != 0 {
		reb.ApprovedAt = timestampToTime(d.ApprovedAt)
	}
	if d.CompletedAt != 0 {
		reb.CompletedAt = timestampToTime(d.CompletedAt)
	}
	return reb
}

var _ domainrebooking.Repository = (*RebookingRepository)(nil)
