package booking

import (
	"context"
	"errors"
	"time"

	"seabreeze/internal/app/commands"
	"seabreeze/internal/app/dto"
	"seabreeze/internal/app/handlers/support"
	"seabreeze/internal/app/outbox"
	"seabreeze/internal/app/uow"
	domainbooking "seabreeze/internal/domain/booking"
	"seabreeze/internal/domain/rebooking"
	"seabreeze/internal/domain/shared/money"
)

const (
	confirmBookingKey = "booking.confirm"
	cancelBookingKey  = "booking.cancel"
	checkInKey        = "booking.check_in"
	checkOutKey       = "booking.check_out"
	recordPaymentKey  = "booking.record_payment"
)

// applyBooking loads a booking, applies the mutation, saves it and queues its
// recorded events, all inside one unit of work.
func applyBooking(
	ctx context.Context,
	factory uow.Factory,
	box outbox.Outbox,
	encoder outbox.EventEncoder,
	id domainbooking.BookingID,
	fn func(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking) error,
) (*dto.BookingView, error) {
	var view dto.BookingView
	err := support.WithUnit(ctx, factory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, unit, b); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, box, encoder, b.PendingEvents()); err != nil {
			return err
		}
		b.ClearEvents()
		view = dto.MapBooking(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

type ConfirmBookingCommand struct {
	BookingID string
	RequestID string
}

func (c ConfirmBookingCommand) Key() string            { return confirmBookingKey }
func (c ConfirmBookingCommand) IdempotencyKey() string { return c.RequestID }
func (c ConfirmBookingCommand) ResultPrototype() any   { return &dto.BookingView{} }

type ConfirmBookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

// Handle confirms a pending booking. It refuses while a rebooking is
// outstanding: the proposal must be decided first.
func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*dto.BookingView, error) {
	return applyBooking(ctx, h.UoWFactory, h.Outbox, h.Encoder, domainbooking.BookingID(cmd.BookingID),
		func(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking) error {
			if _, err := unit.Rebookings().OutstandingForBooking(ctx, b.ID); err == nil {
				return rebooking.ErrOutstandingExists
			} else if !errors.Is(err, rebooking.ErrNotFound) {
				return err
			}
			return b.Confirm(clock(h.Now))
		})
}

var _ commands.Handler[ConfirmBookingCommand, *dto.BookingView] = (*ConfirmBookingHandler)(nil)

type CancelBookingCommand struct {
	BookingID string
	Reason    string
	RequestID string
}

func (c CancelBookingCommand) Key() string            { return cancelBookingKey }
func (c CancelBookingCommand) IdempotencyKey() string { return c.RequestID }
func (c CancelBookingCommand) ResultPrototype() any   { return &dto.BookingView{} }

type CancelBookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.BookingView, error) {
	return applyBooking(ctx, h.UoWFactory, h.Outbox, h.Encoder, domainbooking.BookingID(cmd.BookingID),
		func(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking) error {
			// An outstanding proposal dies with the booking it amends.
			if outstanding, err := unit.Rebookings().OutstandingForBooking(ctx, b.ID); err == nil {
				if err := outstanding.Cancel(clock(h.Now)); err != nil {
					return err
				}
				if err := unit.Rebookings().Save(ctx, outstanding); err != nil {
					return err
				}
			} else if !errors.Is(err, rebooking.ErrNotFound) {
				return err
			}
			return b.Cancel(cmd.Reason, clock(h.Now))
		})
}

var _ commands.Handler[CancelBookingCommand, *dto.BookingView] = (*CancelBookingHandler)(nil)

type CheckInCommand struct {
	BookingID string
	RequestID string
}

func (c CheckInCommand) Key() string            { return checkInKey }
func (c CheckInCommand) IdempotencyKey() string { return c.RequestID }
func (c CheckInCommand) ResultPrototype() any   { return &dto.BookingView{} }

type CheckInHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CheckInHandler) Handle(ctx context.Context, cmd CheckInCommand) (*dto.BookingView, error) {
	return applyBooking(ctx, h.UoWFactory, h.Outbox, h.Encoder, domainbooking.BookingID(cmd.BookingID),
		func(ctx context.Context, _ uow.UnitOfWork, b *domainbooking.Booking) error {
			return b.CheckIn(clock(h.Now))
		})
}

var _ commands.Handler[CheckInCommand, *dto.BookingView] = (*CheckInHandler)(nil)

type CheckOutCommand struct {
	BookingID string
	RequestID string
}

func (c CheckOutCommand) Key() string            { return checkOutKey }
func (c CheckOutCommand) IdempotencyKey() string { return c.RequestID }
func (c CheckOutCommand) ResultPrototype() any   { return &dto.BookingView{} }

type CheckOutHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CheckOutHandler) Handle(ctx context.Context, cmd CheckOutCommand) (*dto.BookingView, error) {
	return applyBooking(ctx, h.UoWFactory, h.Outbox, h.Encoder, domainbooking.BookingID(cmd.BookingID),
		func(ctx context.Context, _ uow.UnitOfWork, b *domainbooking.Booking) error {
			return b.CheckOut(clock(h.Now))
		})
}

var _ commands.Handler[CheckOutCommand, *dto.BookingView] = (*CheckOutHandler)(nil)

type RecordPaymentCommand struct {
	BookingID string
	Amount    int64
	Currency  string
	RequestID string
}

func (c RecordPaymentCommand) Key() string            { return recordPaymentKey }
func (c RecordPaymentCommand) IdempotencyKey() string { return c.RequestID }
func (c RecordPaymentCommand) ResultPrototype() any   { return &dto.BookingView{} }

type RecordPaymentHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Currency   string
	Now        func() time.Time
}

func (h *RecordPaymentHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) (*dto.BookingView, error) {
	amount, err := money.New(cmd.Amount, support.FallbackCurrency(cmd.Currency, h.Currency))
	if err != nil {
		return nil, err
	}
	return applyBooking(ctx, h.UoWFactory, h.Outbox, h.Encoder, domainbooking.BookingID(cmd.BookingID),
		func(ctx context.Context, _ uow.UnitOfWork, b *domainbooking.Booking) error {
			return b.RecordPayment(amount, clock(h.Now))
		})
}

var _ commands.Handler[RecordPaymentCommand, *dto.BookingView] = (*RecordPaymentHandler)(nil)

func clock(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}
