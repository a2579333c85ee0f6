package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincatalog "seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/shared/money"
)

type CatalogRepository struct {
	units *mongo.Collection
	rates *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	rates := db.Collection("cat_rates")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "mode", Value: 1}, {Key: "created_at", Value: 1}}}
	_, _ = rates.Indexes().CreateOne(context.Background(), idx)
	return &CatalogRepository{units: db.Collection("cat_units"), rates: rates}
}

func (r *CatalogRepository) UnitByID(ctx context.Context, id domaincatalog.UnitID) (*domaincatalog.Unit, error) {
	var doc unitDocument
	if err := r.units.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domaincatalog.ErrUnitNotFound
		}
		return nil, err
	}
	return doc.toUnit(), nil
}

func (r *CatalogRepository) RateByID(ctx context.Context, id domaincatalog.RateID) (*domaincatalog.RateRecord, error) {
	var doc rateDocument
	if err := r.rates.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domaincatalog.ErrRateNotFound
		}
		return nil, err
	}
	return doc.toRate(), nil
}

// ActiveRate returns the oldest active rate for the unit and mode, matching
// the in-memory first-match behavior.
func (r *CatalogRepository) ActiveRate(ctx context.Context, unit domaincatalog.UnitID, mode domaincatalog.BookingMode) (*domaincatalog.RateRecord, error) {
	filter := bson.M{"unit_id": unit, "mode": mode, "active": true}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	var doc rateDocument
	if err := r.rates.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domaincatalog.ErrRateNotFound
		}
		return nil, err
	}
	return doc.toRate(), nil
}

func (r *CatalogRepository) ListActiveUnits(ctx context.Context) ([]*domaincatalog.Unit, error) {
	cursor, err := r.units.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var units []*domaincatalog.Unit
	for cursor.Next(ctx) {
		var doc unitDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		units = append(units, doc.toUnit())
	}
	return units, cursor.Err()
}

func (r *CatalogRepository) SaveUnit(ctx context.Context, unit *domaincatalog.Unit) error {
	doc := unitDocument{
		ID:          string(unit.ID),
		Name:        unit.Name,
		MinCapacity: unit.MinCapacity,
		MaxCapacity: unit.MaxCapacity,
		Active:      unit.Active,
	}
	_, err := r.units.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *CatalogRepository) SaveRate(ctx context.Context, rate *domaincatalog.RateRecord) error {
	doc := newRateDocument(rate)
	update := bson.M{
		"$set":         doc,
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}
	_, err := r.rates.UpdateByID(ctx, doc.ID, update, options.Update().SetUpsert(true))
	return err
}

type unitDocument struct {
	ID          string `bson:"_id"`
	Name        string `bson:"name"`
	MinCapacity *int   `bson:"min_capacity,omitempty"`
	MaxCapacity int    `bson:"max_capacity"`
	Active      bool   `bson:"active"`
}

func (d unitDocument) toUnit() *domaincatalog.Unit {
	return &domaincatalog.Unit{
		ID:          domaincatalog.UnitID(d.ID),
		Name:        d.Name,
		MinCapacity: d.MinCapacity,
		MaxCapacity: d.MaxCapacity,
		Active:      d.Active,
	}
}

type rateDocument struct {
	ID                     string       `bson:"_id"`
	UnitID                 string       `bson:"unit_id"`
	Mode                   string       `bson:"mode"`
	BaseRate               money.Money  `bson:"base_rate"`
	AdditionalOccupantRate *money.Money `bson:"additional_occupant_rate,omitempty"`
	AdultEntranceFee       *money.Money `bson:"adult_entrance_fee,omitempty"`
	ChildEntranceFee       *money.Money `bson:"child_entrance_fee,omitempty"`
	ChildMaxAge            *int         `bson:"child_max_age,omitempty"`
	IncludesFreeCottage    bool         `bson:"includes_free_cottage"`
	IncludesFreeEntrance   bool         `bson:"includes_free_entrance"`
	Active                 bool         `bson:"active"`
}

func newRateDocument(rate *domaincatalog.RateRecord) rateDocument {
	return rateDocument{
		ID:                     string(rate.ID),
		UnitID:                 string(rate.UnitID),
		Mode:                   string(rate.Mode),
		BaseRate:               rate.BaseRate,
		AdditionalOccupantRate: rate.AdditionalOccupantRate,
		AdultEntranceFee:       rate.AdultEntranceFee,
		ChildEntranceFee:       rate.ChildEntranceFee,
		ChildMaxAge:            rate.ChildMaxAge,
		IncludesFreeCottage:    rate.IncludesFreeCottage,
		IncludesFreeEntrance:   rate.IncludesFreeEntrance,
		Active:                 rate.Active,
	}
}

func (d rateDocument) toRate() *domaincatalog.RateRecord {
	return &domaincatalog.RateRecord{
		ID:                     domaincatalog.RateID(d.ID),
		UnitID:                 domaincatalog.UnitID(d.UnitID),
		Mode:                   domaincatalog.BookingMode(d.Mode),
		BaseRate:               d.BaseRate,
		AdditionalOccupantRate: d.AdditionalOccupantRate,
		AdultEntranceFee:       d.AdultEntranceFee,
		ChildEntranceFee:       d.ChildEntranceFee,
		ChildMaxAge:            d.ChildMaxAge,
		IncludesFreeCottage:    d.IncludesFreeCottage,
		IncludesFreeEntrance:   d.IncludesFreeEntrance,
		Active:                 d.Active,
	}
}

var _ domaincatalog.Repository = (*CatalogRepository)(nil)
