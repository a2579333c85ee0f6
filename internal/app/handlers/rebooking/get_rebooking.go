package rebooking

import (
	"context"

	"seabreeze/internal/app/dto"
	"seabreeze/internal/app/handlers/support"
	"seabreeze/internal/app/queries"
	"seabreeze/internal/app/uow"
	domainbooking "seabreeze/internal/domain/booking"
	domainrebooking "seabreeze/internal/domain/rebooking"
)

const (
	getRebookingKey         = "rebooking.get"
	outstandingRebookingKey = "rebooking.outstanding"
)

type GetRebookingQuery struct {
	RebookingID string
}

func (q GetRebookingQuery) Key() string { return getRebookingKey }

type GetRebookingHandler struct {
	UoWFactory uow.Factory
}

func (h *GetRebookingHandler) Handle(ctx context.Context, q GetRebookingQuery) (dto.RebookingView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RebookingView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	r, err := unit.Rebookings().ByID(ctx, domainrebooking.RebookingID(q.RebookingID))
	if err != nil {
		return dto.RebookingView{}, err
	}
	return dto.MapRebooking(r), nil
}

var _ queries.Handler[GetRebookingQuery, dto.RebookingView] = (*GetRebookingHandler)(nil)

// OutstandingRebookingQuery finds the pending or approved proposal of a
// booking, erroring with rebooking.ErrNotFound when none exists.
type OutstandingRebookingQuery struct {
	BookingID string
}

func (q OutstandingRebookingQuery) Key() string { return outstandingRebookingKey }

type OutstandingRebookingHandler struct {
	UoWFactory uow.Factory
}

func (h *OutstandingRebookingHandler) Handle(ctx context.Context, q OutstandingRebookingQuery) (dto.RebookingView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RebookingView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	r, err := unit.Rebookings().OutstandingForBooking(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return dto.RebookingView{}, err
	}
	return dto.MapRebooking(r), nil
}

var _ queries.Handler[OutstandingRebookingQuery, dto.RebookingView] = (*OutstandingRebookingHandler)(nil)
