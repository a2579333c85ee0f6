package rebooking

import (
	"context"
	"errors"
	"time"

	"seabreeze/internal/domain/booking"
	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/pricing"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/events"
	"seabreeze/internal/domain/shared/money"
)

var (
	ErrNotFound          = errors.New("rebooking: not found")
	ErrInvalidTransition = errors.New("rebooking: invalid state transition")
	ErrOutstandingExists = errors.New("rebooking: booking already has an outstanding rebooking")
)

type RebookingID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Outstanding reports whether the status blocks further rebookings and
// booking-level edits on the original.
func (s Status) Outstanding() bool {
	return s == StatusPending || s == StatusApproved
}

// Rebooking is a proposed alternative to a confirmed booking: its own stay,
// occupancy and fully priced breakdown, diffed against the original's total.
// It becomes authoritative only through completion.
type Rebooking struct {
	ID        RebookingID
	BookingID booking.BookingID
	Mode      catalog.BookingMode
	Stay      daterange.Stay
	Adults    int
	Children  int
	Price     pricing.Breakdown

	OriginalAmount   money.Money
	NewAmount        money.Money
	AmountDifference money.Money
	Fee              money.Money
	TotalAdjustment  money.Money

	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ApprovedAt  time.Time
	CompletedAt time.Time
	Version     int64
	events.EventRecorder
}

// Repository is the rebooking store port. Create must atomically enforce the
// single-outstanding invariant per booking: the existence check and the
// insert happen under one lock or transaction.
type Repository interface {
	ByID(ctx context.Context, id RebookingID) (*Rebooking, error)
	Create(ctx context.Context, r *Rebooking) error
	Save(ctx context.Context, r *Rebooking) error
	// OutstandingForBooking returns the pending or approved rebooking of a
	// booking, or ErrNotFound when none exists.
	OutstandingForBooking(ctx context.Context, id booking.BookingID) (*Rebooking, error)
}

type ProposeParams struct {
	ID        RebookingID
	Original  *booking.Booking
	Stay      daterange.Stay
	Adults    int
	Children  int
	Price     pricing.Breakdown
	CreatedAt time.Time
}

// Propose opens a pending rebooking, snapshotting the original total and the
// arithmetic difference against the new price. The rebooking fee is zero
// until approval.
func Propose(params ProposeParams) (*Rebooking, error) {
	if params.Original == nil {
		return nil, booking.ErrNotFound
	}
	if params.Adults+params.Children <= 0 {
		return nil, booking.ErrInvalidGuests
	}
	original := params.Original.Price.Total
	diff, err := params.Price.Total.Sub(original)
	if err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	r := &Rebooking{
		ID:               params.ID,
		BookingID:        params.Original.ID,
		Mode:             params.Original.Mode,
		Stay:             params.Stay,
		Adults:           params.Adults,
		Children:         params.Children,
		Price:            params.Price.Copy(),
		OriginalAmount:   original,
		NewAmount:        params.Price.Total,
		AmountDifference: diff,
		Fee:              money.Zero(original.Currency),
		TotalAdjustment:  diff,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.Record(RebookingProposed{RebookingID: r.ID, BookingID: r.BookingID, Stay: r.Stay, Adjustment: r.TotalAdjustment, At: now})
	return r, nil
}

// Reprice replaces a pending rebooking's proposal the same way creation
// priced it, overwriting prior line items wholesale.
func (r *Rebooking) Reprice(stay daterange.Stay, adults, children int, price pricing.Breakdown, now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidTransition
	}
	if adults+children <= 0 {
		return booking.ErrInvalidGuests
	}
	diff, err := price.Total.Sub(r.OriginalAmount)
	if err != nil {
		return err
	}
	r.Stay = stay
	r.Adults = adults
	r.Children = children
	r.Price = price.Copy()
	r.NewAmount = price.Total
	r.AmountDifference = diff
	r.TotalAdjustment = diff
	r.UpdatedAt = now.UTC()
	return nil
}

// Approve fixes the flat rebooking fee and provisionally reserves the new
// slot. The original booking is untouched until completion.
func (r *Rebooking) Approve(fee money.Money, now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidTransition
	}
	adjustment, err := r.AmountDifference.Add(fee)
	if err != nil {
		return err
	}
	r.Fee = fee
	r.TotalAdjustment = adjustment
	r.Status = StatusApproved
	r.ApprovedAt = now.UTC()
	r.UpdatedAt = r.ApprovedAt
	r.Record(RebookingApproved{RebookingID: r.ID, BookingID: r.BookingID, Fee: fee, Adjustment: adjustment, At: r.ApprovedAt})
	return nil
}

// Reject declines a pending proposal.
func (r *Rebooking) Reject(now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidTransition
	}
	return r.cancel("rejected", now)
}

// Cancel withdraws a pending or approved rebooking. Refund handling, if any,
// happens upstream.
func (r *Rebooking) Cancel(now time.Time) error {
	if !r.Status.Outstanding() {
		return ErrInvalidTransition
	}
	return r.cancel("cancelled", now)
}

func (r *Rebooking) cancel(reason string, now time.Time) error {
	r.Status = StatusCancelled
	r.UpdatedAt = now.UTC()
	r.Record(RebookingCancelled{RebookingID: r.ID, BookingID: r.BookingID, Reason: reason, At: r.UpdatedAt})
	return nil
}

// Complete closes an approved rebooking. Merging its data into the booking is
// the application layer's job and must share the transaction with this call.
func (r *Rebooking) Complete(now time.Time) error {
	if r.Status != StatusApproved {
		return ErrInvalidTransition
	}
	r.Status = StatusCompleted
	r.CompletedAt = now.UTC()
	r.UpdatedAt = r.CompletedAt
	r.Record(RebookingCompleted{RebookingID: r.ID, BookingID: r.BookingID, NewTotal: r.NewAmount, Adjustment: r.TotalAdjustment, At: r.CompletedAt})
	return nil
}
