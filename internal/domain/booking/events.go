package booking

import (
	"time"

	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/money"
)

type BookingCreated struct {
	BookingID BookingID
	GuestID   string
	Mode      catalog.BookingMode
	Stay      daterange.Stay
	Total     money.Money
	At        time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID
	Stay      daterange.Stay
	Total     money.Money
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	Reason    string
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type GuestCheckedIn struct {
	BookingID BookingID
	At        time.Time
}

func (e GuestCheckedIn) EventName() string     { return "booking.checked_in" }
func (e GuestCheckedIn) AggregateID() string   { return string(e.BookingID) }
func (e GuestCheckedIn) OccurredAt() time.Time { return e.At }

type GuestCheckedOut struct {
	BookingID BookingID
	At        time.Time
}

func (e GuestCheckedOut) EventName() string     { return "booking.checked_out" }
func (e GuestCheckedOut) AggregateID() string   { return string(e.BookingID) }
func (e GuestCheckedOut) OccurredAt() time.Time { return e.At }

type PaymentRecorded struct {
	BookingID BookingID
	Amount    money.Money
	Balance   money.Money
	At        time.Time
}

func (e PaymentRecorded) EventName() string     { return "booking.payment_recorded" }
func (e PaymentRecorded) AggregateID() string   { return string(e.BookingID) }
func (e PaymentRecorded) OccurredAt() time.Time { return e.At }

type RebookingMerged struct {
	BookingID BookingID
	Stay      daterange.Stay
	Total     money.Money
	At        time.Time
}

func (e RebookingMerged) EventName() string     { return "booking.rebooking_merged" }
func (e RebookingMerged) AggregateID() string   { return string(e.BookingID) }
func (e RebookingMerged) OccurredAt() time.Time { return e.At }
