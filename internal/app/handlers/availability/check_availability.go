package availability

import (
	"context"
	"time"

	"seabreeze/internal/app/handlers/support"
	"seabreeze/internal/app/queries"
	"seabreeze/internal/app/uow"
	domainavailability "seabreeze/internal/domain/availability"
	"seabreeze/internal/domain/booking"
	"seabreeze/internal/domain/catalog"
)

const checkAvailabilityKey = "availability.check"

// CheckAvailabilityQuery asks whether a unit is free for a stay under a
// booking mode. Unknown units answer false rather than erroring.
type CheckAvailabilityQuery struct {
	UnitID    string
	Mode      string
	CheckIn   time.Time
	CheckOut  time.Time
	OpenEnded bool
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type CheckAvailabilityHandler struct {
	UoWFactory uow.Factory
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (bool, error) {
	mode, err := catalog.ParseMode(q.Mode)
	if err != nil {
		return false, err
	}
	stay, err := booking.NewStay(mode, q.CheckIn, q.CheckOut, q.OpenEnded)
	if err != nil {
		return false, err
	}

	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return false, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	checker := &domainavailability.Checker{
		Catalog:    unit.Catalog(),
		Bookings:   unit.Bookings(),
		Rebookings: unit.Rebookings(),
	}
	return checker.AvailableFor(ctx, catalog.UnitID(q.UnitID), mode, stay)
}

var _ queries.Handler[CheckAvailabilityQuery, bool] = (*CheckAvailabilityHandler)(nil)
