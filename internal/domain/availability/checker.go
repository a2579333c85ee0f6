package availability

import (
	"context"
	"errors"
	"time"

	"seabreeze/internal/domain/booking"
	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/rebooking"
	"seabreeze/internal/domain/shared/daterange"
)

var ErrConflict = errors.New("availability: unit is occupied for the requested dates")

// Checker answers whether a unit is free for a stay under a booking mode.
// It is a pure query over the stores; write paths must re-run it inside
// their transaction because calendar reads are eventually consistent.
type Checker struct {
	Catalog    catalog.Repository
	Bookings   booking.Repository
	Rebookings rebooking.Repository
}

// AvailableOn reports whether the unit is free on a single day.
func (c *Checker) AvailableOn(ctx context.Context, unit catalog.UnitID, mode catalog.BookingMode, day time.Time) (bool, error) {
	return c.AvailableFor(ctx, unit, mode, daterange.SingleDay(day))
}

// AvailableFor reports whether the unit is free for every day of the stay.
// An unknown or inactive unit is simply not available; that is not an error.
func (c *Checker) AvailableFor(ctx context.Context, unit catalog.UnitID, mode catalog.BookingMode, stay daterange.Stay) (bool, error) {
	return c.AvailableForExcluding(ctx, unit, mode, stay, "")
}

// AvailableForExcluding is AvailableFor with one booking left out of the
// scan. Amendment paths pass the booking being changed so it cannot collide
// with its own occupancy while every other booking still counts.
func (c *Checker) AvailableForExcluding(ctx context.Context, unit catalog.UnitID, mode catalog.BookingMode, stay daterange.Stay, except booking.BookingID) (bool, error) {
	u, err := c.Catalog.UnitByID(ctx, unit)
	if err != nil {
		if errors.Is(err, catalog.ErrUnitNotFound) {
			return false, nil
		}
		return false, err
	}
	if !u.Active {
		return false, nil
	}

	occupying, err := c.Bookings.ListOccupying(ctx, unit, mode)
	if err != nil {
		return false, err
	}
	for _, b := range occupying {
		if except != "" && b.ID == except {
			continue
		}
		effective, err := c.effectiveStay(ctx, b)
		if err != nil {
			return false, err
		}
		if effective.Overlaps(stay) {
			return false, nil
		}
	}
	return true, nil
}

// effectiveStay resolves the interval a booking blocks. An approved rebooking
// provisionally reserves its proposed dates before completion, so it shadows
// the original interval. At most one outstanding rebooking exists per
// booking, which keeps this unambiguous.
func (c *Checker) effectiveStay(ctx context.Context, b *booking.Booking) (daterange.Stay, error) {
	if c.Rebookings == nil {
		return b.Stay, nil
	}
	r, err := c.Rebookings.OutstandingForBooking(ctx, b.ID)
	if err != nil {
		if errors.Is(err, rebooking.ErrNotFound) {
			return b.Stay, nil
		}
		return daterange.Stay{}, err
	}
	if r.Status == rebooking.StatusApproved {
		return r.Stay, nil
	}
	return b.Stay, nil
}
