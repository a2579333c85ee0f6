package catalog

import (
	"context"
	"errors"
	"fmt"

	"seabreeze/internal/domain/shared/money"
)

var (
	ErrUnitNotFound = errors.New("catalog: unit not found")
	ErrRateNotFound = errors.New("catalog: rate not found")
)

type UnitID string

type RateID string

// BookingMode selects the pricing schedule applied to a stay.
type BookingMode string

const (
	ModeDayUse    BookingMode = "day_use"
	ModeOvernight BookingMode = "overnight"
)

// ParseMode validates a raw booking mode value.
func ParseMode(raw string) (BookingMode, error) {
	switch BookingMode(raw) {
	case ModeDayUse, ModeOvernight:
		return BookingMode(raw), nil
	default:
		return "", fmt.Errorf("catalog: unknown booking mode %q", raw)
	}
}

// Unit is a bookable accommodation (room or cottage). MinCapacity is the
// number of pax covered by the base rate; when nil the unit carries no
// per-head surcharge and grants no free-entrance pool.
type Unit struct {
	ID          UnitID
	Name        string
	MinCapacity *int
	MaxCapacity int
	Active      bool
}

// IncludedPax returns the base-rate headcount, zero when unset.
func (u *Unit) IncludedPax() int {
	if u.MinCapacity == nil {
		return 0
	}
	return *u.MinCapacity
}

// RateRecord prices one unit under one booking mode. Entrance fees and the
// additional-occupant rate are optional; absence means the charge is skipped,
// never an error.
type RateRecord struct {
	ID                     RateID
	UnitID                 UnitID
	Mode                   BookingMode
	BaseRate               money.Money
	AdditionalOccupantRate *money.Money
	AdultEntranceFee       *money.Money
	ChildEntranceFee       *money.Money
	ChildMaxAge            *int
	IncludesFreeCottage    bool
	IncludesFreeEntrance   bool
	Active                 bool
}

// Repository is a read view over units and rates plus the write methods the
// administrative surface (out of scope here) and fixtures use.
type Repository interface {
	UnitByID(ctx context.Context, id UnitID) (*Unit, error)
	RateByID(ctx context.Context, id RateID) (*RateRecord, error)
	// ActiveRate resolves the rate consulted by quotes: the first active
	// record for the unit and mode in insertion order. Isolated here so the
	// selection policy can change without touching the calculator.
	ActiveRate(ctx context.Context, unit UnitID, mode BookingMode) (*RateRecord, error)
	ListActiveUnits(ctx context.Context) ([]*Unit, error)
	SaveUnit(ctx context.Context, unit *Unit) error
	SaveRate(ctx context.Context, rate *RateRecord) error
}
