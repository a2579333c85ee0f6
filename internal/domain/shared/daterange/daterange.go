package daterange

import (
	"errors"
	"time"
)

var ErrEndBeforeStart = errors.New("daterange: check-out before check-in")

// Stay is a calendar interval occupied by a reservation. Both ends are
// inclusive. An open stay has no check-out date and occupies every day on or
// after the check-in day; the zero CheckOut is never consulted while Open is
// set, so no sentinel date leaks into overlap math.
type Stay struct {
	CheckIn  time.Time `json:"check_in" bson:"check_in"`
	CheckOut time.Time `json:"check_out" bson:"check_out"`
	Open     bool      `json:"open,omitempty" bson:"open"`
}

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Closed builds a bounded stay. An absent check-out collapses the stay to the
// check-in day. An inverted pair is rejected.
func Closed(checkIn, checkOut time.Time) (Stay, error) {
	in := Day(checkIn)
	if checkOut.IsZero() {
		return Stay{CheckIn: in, CheckOut: in}, nil
	}
	out := Day(checkOut)
	if out.Before(in) {
		return Stay{}, ErrEndBeforeStart
	}
	return Stay{CheckIn: in, CheckOut: out}, nil
}

// SingleDay is a stay occupying exactly one calendar day.
func SingleDay(day time.Time) Stay {
	d := Day(day)
	return Stay{CheckIn: d, CheckOut: d}
}

// OpenEnded is a stay with no check-out date.
func OpenEnded(checkIn time.Time) Stay {
	return Stay{CheckIn: Day(checkIn), Open: true}
}

// Contains reports whether the given day falls inside the stay.
func (s Stay) Contains(day time.Time) bool {
	d := Day(day)
	if d.Before(s.CheckIn) {
		return false
	}
	if s.Open {
		return true
	}
	return !d.After(s.CheckOut)
}

// Overlaps reports whether two stays share at least one day.
func (s Stay) Overlaps(other Stay) bool {
	if !s.Open && other.CheckIn.After(s.CheckOut) {
		return false
	}
	if !other.Open && s.CheckIn.After(other.CheckOut) {
		return false
	}
	return true
}

// Nights counts whole days between check-in and check-out. Open and
// single-day stays count zero; callers apply their own floor.
func (s Stay) Nights() int {
	if s.Open {
		return 0
	}
	return int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}

// Equal compares two stays day for day.
func (s Stay) Equal(other Stay) bool {
	if s.Open != other.Open {
		return false
	}
	if !s.CheckIn.Equal(other.CheckIn) {
		return false
	}
	return s.Open || s.CheckOut.Equal(other.CheckOut)
}
