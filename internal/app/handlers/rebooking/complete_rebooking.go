package rebooking

import (
	"context"
	"time"

	"seabreeze/internal/app/commands"
	"seabreeze/internal/app/dto"
	"seabreeze/internal/app/outbox"
	"seabreeze/internal/app/uow"
	domainrebooking "seabreeze/internal/domain/rebooking"
)

const completeRebookingKey = "rebooking.complete"

// CompleteRebookingCommand closes an approved proposal and merges its stay,
// occupancy and breakdown back into the booking. Both writes share one
// transaction; the merged booking's balance is recomputed against payments
// already made.
type CompleteRebookingCommand struct {
	RebookingID string
	RequestID   string
}

func (c CompleteRebookingCommand) Key() string            { return completeRebookingKey }
func (c CompleteRebookingCommand) IdempotencyKey() string { return c.RequestID }
func (c CompleteRebookingCommand) ResultPrototype() any   { return &dto.RebookingView{} }

type CompleteRebookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CompleteRebookingHandler) Handle(ctx context.Context, cmd CompleteRebookingCommand) (*dto.RebookingView, error) {
	return applyRebooking(ctx, h.UoWFactory, h.Outbox, h.Encoder, domainrebooking.RebookingID(cmd.RebookingID),
		func(ctx context.Context, unit uow.UnitOfWork, r *domainrebooking.Rebooking) error {
			now := clock(h.Now)
			if err := r.Complete(now); err != nil {
				return err
			}
			b, err := unit.Bookings().ByID(ctx, r.BookingID)
			if err != nil {
				return err
			}
			if err := b.MergeRebooking(r.Stay, r.Adults, r.Children, r.Price, now); err != nil {
				return err
			}
			if err := unit.Bookings().Save(ctx, b); err != nil {
				return err
			}
			if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.PendingEvents()); err != nil {
				return err
			}
			b.ClearEvents()
			return nil
		})
}

var _ commands.Handler[CompleteRebookingCommand, *dto.RebookingView] = (*CompleteRebookingHandler)(nil)
