package rebooking

import (
	"context"
	"fmt"
	"time"

	"seabreeze/internal/app/commands"
	"seabreeze/internal/app/dto"
	"seabreeze/internal/app/handlers/support"
	"seabreeze/internal/app/outbox"
	"seabreeze/internal/app/uow"
	"seabreeze/internal/domain/availability"
	domainbooking "seabreeze/internal/domain/booking"
	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/pricing"
	domainrebooking "seabreeze/internal/domain/rebooking"
)

const updateRebookingKey = "rebooking.update"

// UpdateRebookingCommand re-quotes a pending proposal. Approved proposals
// are immutable; withdraw and propose again instead.
type UpdateRebookingCommand struct {
	RebookingID string
	CheckIn     time.Time
	CheckOut    time.Time
	OpenEnded   bool
	Adults      int
	Children    int
	Items       []ItemInput
	RequestID   string
}

func (c UpdateRebookingCommand) Key() string            { return updateRebookingKey }
func (c UpdateRebookingCommand) IdempotencyKey() string { return c.RequestID }
func (c UpdateRebookingCommand) ResultPrototype() any   { return &dto.RebookingView{} }

type UpdateRebookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Currency   string
	Now        func() time.Time
}

func (h *UpdateRebookingHandler) Handle(ctx context.Context, cmd UpdateRebookingCommand) (*dto.RebookingView, error) {
	if len(cmd.Items) == 0 {
		return nil, pricing.ErrNoItems
	}
	var view dto.RebookingView
	err := support.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		proposal, err := unit.Rebookings().ByID(ctx, domainrebooking.RebookingID(cmd.RebookingID))
		if err != nil {
			return err
		}
		original, err := unit.Bookings().ByID(ctx, proposal.BookingID)
		if err != nil {
			return err
		}
		stay, err := domainbooking.NewStay(proposal.Mode, cmd.CheckIn, cmd.CheckOut, cmd.OpenEnded)
		if err != nil {
			return err
		}

		checker := &availability.Checker{
			Catalog:    unit.Catalog(),
			Bookings:   unit.Bookings(),
			Rebookings: unit.Rebookings(),
		}
		items := make([]pricing.QuoteItem, 0, len(cmd.Items))
		for _, item := range cmd.Items {
			unitID := catalog.UnitID(item.UnitID)
			items = append(items, pricing.QuoteItem{
				UnitID: unitID,
				RateID: catalog.RateID(item.RateID),
				Guests: item.Guests,
			})
			free, err := checker.AvailableForExcluding(ctx, unitID, proposal.Mode, stay, original.ID)
			if err != nil {
				return err
			}
			if !free {
				return fmt.Errorf("%w: unit %s", availability.ErrConflict, unitID)
			}
		}

		calc := support.Calculator(unit.Catalog(), h.Currency)
		breakdown, err := calc.Quote(ctx, pricing.QuoteParams{
			Mode:     proposal.Mode,
			Stay:     stay,
			Items:    items,
			Adults:   cmd.Adults,
			Children: cmd.Children,
		})
		if err != nil {
			return err
		}
		if err := proposal.Reprice(stay, cmd.Adults, cmd.Children, breakdown, h.now()); err != nil {
			return err
		}
		if err := unit.Rebookings().Save(ctx, proposal); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, proposal.PendingEvents()); err != nil {
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

func (h *UpdateRebookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[UpdateRebookingCommand, *dto.RebookingView] = (*UpdateRebookingHandler)(nil)
