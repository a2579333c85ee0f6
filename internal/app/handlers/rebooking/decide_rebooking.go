package rebooking

import (
	"context"
	"time"

	"seabreeze/internal/app/commands"
	"seabreeze/internal/app/dto"
	"seabreeze/internal/app/handlers/support"
	"seabreeze/internal/app/outbox"
	"seabreeze/internal/app/uow"
	domainrebooking "seabreeze/internal/domain/rebooking"
	"seabreeze/internal/domain/shared/money"
)

const (
	approveRebookingKey = "rebooking.approve"
	rejectRebookingKey  = "rebooking.reject"
	cancelRebookingKey  = "rebooking.cancel"
)

// applyRebooking loads a proposal, applies the transition, saves it and
// queues its recorded events inside one unit of work.
func applyRebooking(
	ctx context.Context,
	factory uow.Factory,
	box outbox.Outbox,
	encoder outbox.EventEncoder,
	id domainrebooking.RebookingID,
	fn func(ctx context.Context, unit uow.UnitOfWork, r *domainrebooking.Rebooking) error,
) (*dto.RebookingView, error) {
	var view dto.RebookingView
	err := support.WithUnit(ctx, factory, func(ctx context.Context, unit uow.UnitOfWork) error {
		proposal, err := unit.Rebookings().ByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, unit, proposal); err != nil {
			return err
		}
		if err := unit.Rebookings().Save(ctx, proposal); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, box, encoder, proposal.PendingEvents()); err != nil {
			return err
		}
		proposal.ClearEvents()
		view = dto.MapRebooking(proposal)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ApproveRebookingCommand accepts a pending proposal. Fee is the rebooking
// charge added on top of the price difference.
type ApproveRebookingCommand struct {
	RebookingID string
	Fee         int64
	Currency    string
	RequestID   string
}

func (c ApproveRebookingCommand) Key() string            { return approveRebookingKey }
func (c ApproveRebookingCommand) IdempotencyKey() string { return c.RequestID }
func (c ApproveRebookingCommand) ResultPrototype() any   { return &dto.RebookingView{} }

type ApproveRebookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Currency   string
	Now        func() time.Time
}

func (h *ApproveRebookingHandler) Handle(ctx context.Context, cmd ApproveRebookingCommand) (*dto.RebookingView, error) {
	fee, err := money.New(cmd.Fee, support.FallbackCurrency(cmd.Currency, h.Currency))
	if err != nil {
		return nil, err
	}
	return applyRebooking(ctx, h.UoWFactory, h.Outbox, h.Encoder, domainrebooking.RebookingID(cmd.RebookingID),
		func(ctx context.Context, _ uow.UnitOfWork, r *domainrebooking.Rebooking) error {
			return r.Approve(fee, clock(h.Now))
		})
}

var _ commands.Handler[ApproveRebookingCommand, *dto.RebookingView] = (*ApproveRebookingHandler)(nil)

type RejectRebookingCommand struct {
	RebookingID string
	RequestID   string
}

func (c RejectRebookingCommand) Key() string            { return rejectRebookingKey }
func (c RejectRebookingCommand) IdempotencyKey() string { return c.RequestID }
func (c RejectRebookingCommand) ResultPrototype() any   { return &dto.RebookingView{} }

type RejectRebookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *RejectRebookingHandler) Handle(ctx context.Context, cmd RejectRebookingCommand) (*dto.RebookingView, error) {
	return applyRebooking(ctx, h.UoWFactory, h.Outbox, h.Encoder, domainrebooking.RebookingID(cmd.RebookingID),
		func(ctx context.Context, _ uow.UnitOfWork, r *domainrebooking.Rebooking) error {
			return r.Reject(clock(h.Now))
		})
}

var _ commands.Handler[RejectRebookingCommand, *dto.RebookingView] = (*RejectRebookingHandler)(nil)

type CancelRebookingCommand struct {
	RebookingID string
	RequestID   string
}

func (c CancelRebookingCommand) Key() string            { return cancelRebookingKey }
func (c CancelRebookingCommand) IdempotencyKey() string { return c.RequestID }
func (c CancelRebookingCommand) ResultPrototype() any   { return &dto.RebookingView{} }

type CancelRebookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CancelRebookingHandler) Handle(ctx context.Context, cmd CancelRebookingCommand) (*dto.RebookingView, error) {
	return applyRebooking(ctx, h.UoWFactory, h.Outbox, h.Encoder, domainrebooking.RebookingID(cmd.RebookingID),
		func(ctx context.Context, _ uow.UnitOfWork, r *domainrebooking.Rebooking) error {
			return r.Cancel(clock(h.Now))
		})
}

var _ commands.Handler[CancelRebookingCommand, *dto.RebookingView] = (*CancelRebookingHandler)(nil)

func clock(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}
