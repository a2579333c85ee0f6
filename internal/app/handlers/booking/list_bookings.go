package booking

import (
	"context"

	"seabreeze/internal/app/dto"
	"seabreeze/internal/app/handlers/support"
	"seabreeze/internal/app/queries"
	"seabreeze/internal/app/uow"
	domainbooking "seabreeze/internal/domain/booking"
)

const (
	listBookingsKey = "booking.list"
	getBookingKey   = "booking.get"
)

// ListBookingsQuery returns bookings visible to the caller. An empty GuestID
// is the staff view and sees everything.
type ListBookingsQuery struct {
	GuestID string
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

type ListBookingsHandler struct {
	UoWFactory uow.Factory
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) (dto.BookingCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	found, err := unit.Bookings().List(ctx, domainbooking.Scope{GuestID: q.GuestID})
	if err != nil {
		return dto.BookingCollection{}, err
	}
	items := make([]dto.BookingView, 0, len(found))
	for _, b := range found {
		items = append(items, dto.MapBooking(b))
	}
	return dto.BookingCollection{Items: items}, nil
}

var _ queries.Handler[ListBookingsQuery, dto.BookingCollection] = (*ListBookingsHandler)(nil)

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.Factory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.BookingView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return dto.BookingView{}, err
	}
	return dto.MapBooking(b), nil
}

var _ queries.Handler[GetBookingQuery, dto.BookingView] = (*GetBookingHandler)(nil)
