package rebooking

import (
	"time"

	"seabreeze/internal/domain/booking"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/money"
)

type RebookingProposed struct {
	RebookingID RebookingID
	BookingID   booking.BookingID
	Stay        daterange.Stay
	Adjustment  money.Money
	At          time.Time
}

func (e RebookingProposed) EventName() string     { return "rebooking.proposed" }
func (e RebookingProposed) AggregateID() string   { return string(e.RebookingID) }
func (e RebookingProposed) OccurredAt() time.Time { return e.At }

type RebookingApproved struct {
	RebookingID RebookingID
	BookingID   booking.BookingID
	Fee         money.Money
	Adjustment  money.Money
	At          time.Time
}

func (e RebookingApproved) EventName() string     { return "rebooking.approved" }
func (e RebookingApproved) AggregateID() string   { return string(e.RebookingID) }
func (e RebookingApproved) OccurredAt() time.Time { return e.At }

type RebookingCancelled struct {
	RebookingID RebookingID
	BookingID   booking.BookingID
	Reason      string
	At          time.Time
}

func (e RebookingCancelled) EventName() string     { return "rebooking.cancelled" }
func (e RebookingCancelled) AggregateID() string   { return string(e.RebookingID) }
func (e RebookingCancelled) OccurredAt() time.Time { return e.At }

type RebookingCompleted struct {
	RebookingID RebookingID
	BookingID   booking.BookingID
	NewTotal    money.Money
	Adjustment  money.Money
	At          time.Time
}

func (e RebookingCompleted) EventName() string     { return "rebooking.completed" }
func (e RebookingCompleted) AggregateID() string   { return string(e.RebookingID) }
func (e RebookingCompleted) OccurredAt() time.Time { return e.At }
