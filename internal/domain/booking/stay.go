package booking

import (
	"time"

	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/shared/daterange"
)

// NewStay builds the stay interval for a booking request. Overnight stays
// need a check-out strictly after the check-in day; day-use stays may omit
// the check-out or leave it open.
func NewStay(mode catalog.BookingMode, checkIn, checkOut time.Time, open bool) (daterange.Stay, error) {
	if checkIn.IsZero() {
		return daterange.Stay{}, ErrInvalidRange
	}
	if mode == catalog.ModeOvernight {
		if open || checkOut.IsZero() {
			return daterange.Stay{}, ErrInvalidRange
		}
		if !daterange.Day(checkOut).After(daterange.Day(checkIn)) {
			return daterange.Stay{}, ErrInvalidRange
		}
		return daterange.Closed(checkIn, checkOut)
	}
	if open {
		return daterange.OpenEnded(checkIn), nil
	}
	stay, err := daterange.Closed(checkIn, checkOut)
	if err != nil {
		return daterange.Stay{}, ErrInvalidRange
	}
	return stay, nil
}
