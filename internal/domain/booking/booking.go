package booking

import (
	"context"
	"errors"
	"time"

	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/pricing"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/events"
	"seabreeze/internal/domain/shared/money"
)

var (
	ErrInvalidGuests = errors.New("booking: occupant count must be positive")
	ErrInvalidRange  = errors.New("booking: check-out must follow check-in for overnight stays")
	ErrInvalidState  = errors.New("booking: invalid state transition")
	ErrNotFound      = errors.New("booking: not found")
)

type BookingID string

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
)

// Occupies reports whether a booking in this status still holds its units.
// Checked-out and cancelled stays no longer block the calendar.
func (s Status) Occupies() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	default:
		return false
	}
}

// Booking is the aggregate root of a reservation. Its price breakdown is a
// snapshot taken at quote time; it only changes wholesale, either through an
// accepted edit while pending or through rebooking completion.
type Booking struct {
	ID        BookingID
	GuestID   string
	Mode      catalog.BookingMode
	Stay      daterange.Stay
	Adults    int
	Children  int
	Price     pricing.Breakdown
	Paid      money.Money
	Balance   money.Money
	FullyPaid bool
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

// Repository is the booking store port.
type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	// ListOccupying returns bookings in an occupying status whose breakdown
	// includes a line for the unit under the given mode.
	ListOccupying(ctx context.Context, unit catalog.UnitID, mode catalog.BookingMode) ([]*Booking, error)
	List(ctx context.Context, scope Scope) ([]*Booking, error)
}

// Scope narrows a listing by capability rather than caller role: an empty
// scope sees everything, a guest-scoped one only that guest's bookings.
type Scope struct {
	GuestID string
}

type CreateParams struct {
	ID        BookingID
	GuestID   string
	Mode      catalog.BookingMode
	Stay      daterange.Stay
	Adults    int
	Children  int
	Price     pricing.Breakdown
	CreatedAt time.Time
}

// NewBooking validates parameters and opens the reservation in PENDING.
func NewBooking(params CreateParams) (*Booking, error) {
	if params.Adults+params.Children <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, errors.New("booking: guest id required")
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		GuestID:   params.GuestID,
		Mode:      params.Mode,
		Stay:      params.Stay,
		Adults:    params.Adults,
		Children:  params.Children,
		Price:     params.Price.Copy(),
		Paid:      money.Zero(params.Price.Total.Currency),
		Balance:   params.Price.Total,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BookingCreated{BookingID: b.ID, GuestID: b.GuestID, Mode: b.Mode, Stay: b.Stay, Total: b.Price.Total, At: now})
	return b, nil
}

// Reprice replaces the stay, occupancy and breakdown of a pending booking.
// Accepted edits always swap the line items wholesale.
func (b *Booking) Reprice(stay daterange.Stay, adults, children int, price pricing.Breakdown, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	if adults+children <= 0 {
		return ErrInvalidGuests
	}
	b.Stay = stay
	b.Adults = adults
	b.Children = children
	b.Price = price.Copy()
	b.recalculateBalance()
	b.UpdatedAt = now.UTC()
	return nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, Stay: b.Stay, Total: b.Price.Total, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
	default:
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckIn(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCheckedIn
	b.UpdatedAt = now.UTC()
	b.Record(GuestCheckedIn{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckOut(now time.Time) error {
	if b.Status != StatusCheckedIn {
		return ErrInvalidState
	}
	b.Status = StatusCheckedOut
	b.UpdatedAt = now.UTC()
	b.Record(GuestCheckedOut{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// RecordPayment adds an amount to the paid ledger and keeps balance and the
// fully-paid flag consistent. Processing the payment itself happens upstream.
func (b *Booking) RecordPayment(amount money.Money, now time.Time) error {
	if amount.IsNegative() || amount.IsZero() {
		return errors.New("booking: payment amount must be positive")
	}
	paid, err := b.Paid.Add(amount)
	if err != nil {
		return err
	}
	b.Paid = paid
	b.recalculateBalance()
	b.UpdatedAt = now.UTC()
	b.Record(PaymentRecorded{BookingID: b.ID, Amount: amount, Balance: b.Balance, At: b.UpdatedAt})
	return nil
}

// MergeRebooking overwrites the booking with an approved rebooking's stay,
// occupancy and breakdown. The prior line items and entrance charges are
// discarded, not appended to. Balance is recomputed against amounts already
// paid; settling any adjustment is the caller's concern.
func (b *Booking) MergeRebooking(stay daterange.Stay, adults, children int, price pricing.Breakdown, now time.Time) error {
	if b.Status == StatusCancelled || b.Status == StatusCheckedOut {
		return ErrInvalidState
	}
	b.Stay = stay
	b.Adults = adults
	b.Children = children
	b.Price = price.Copy()
	b.recalculateBalance()
	b.UpdatedAt = now.UTC()
	b.Record(RebookingMerged{BookingID: b.ID, Stay: b.Stay, Total: b.Price.Total, At: b.UpdatedAt})
	return nil
}

func (b *Booking) recalculateBalance() {
	balance, err := b.Price.Total.Sub(b.Paid)
	if err != nil {
		balance = b.Price.Total
	}
	b.Balance = balance
	b.FullyPaid = balance.Amount <= 0
}

// HasUnit reports whether the stored breakdown includes the given unit.
func (b *Booking) HasUnit(unit catalog.UnitID) bool {
	for _, line := range b.Price.Lines {
		if line.UnitID == unit {
			return true
		}
	}
	return false
}
