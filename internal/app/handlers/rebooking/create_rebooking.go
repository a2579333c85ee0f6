package rebooking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

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

const createRebookingKey = "rebooking.create"

// ItemInput selects one unit for the proposed stay.
type ItemInput struct {
	UnitID string
	RateID string
	Guests int
}

// CreateRebookingCommand proposes an alternative stay for an existing
// booking. At most one proposal may be outstanding per booking; the store
// enforces that atomically on insert.
type CreateRebookingCommand struct {
	RebookingID string
	BookingID   string
	CheckIn     time.Time
	CheckOut    time.Time
	OpenEnded   bool
	Adults      int
	Children    int
	Items       []ItemInput
	RequestID   string
}

func (c CreateRebookingCommand) Key() string            { return createRebookingKey }
func (c CreateRebookingCommand) IdempotencyKey() string { return c.RequestID }
func (c CreateRebookingCommand) ResultPrototype() any   { return &dto.RebookingView{} }

type CreateRebookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Currency   string
	Now        func() time.Time
}

func (h *CreateRebookingHandler) Handle(ctx context.Context, cmd CreateRebookingCommand) (*dto.RebookingView, error) {
	if len(cmd.Items) == 0 {
		return nil, pricing.ErrNoItems
	}
	var view dto.RebookingView
	err := support.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		original, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
		if err != nil {
			return err
		}
		stay, err := domainbooking.NewStay(original.Mode, cmd.CheckIn, cmd.CheckOut, cmd.OpenEnded)
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
			// The original booking's own occupancy is excluded from the
			// scan; every other booking still blocks.
			free, err := checker.AvailableForExcluding(ctx, unitID, original.Mode, stay, original.ID)
			if err != nil {
				return err
			}
			if !free {
				return fmt.Errorf("%w: unit %s", availability.ErrConflict, unitID)
			}
		}

		calc := support.Calculator(unit.Catalog(), h.Currency)
		breakdown, err := calc.Quote(ctx, pricing.QuoteParams{
			Mode:     original.Mode,
			Stay:     stay,
			Items:    items,
			Adults:   cmd.Adults,
			Children: cmd.Children,
		})
		if err != nil {
			return err
		}

		id := cmd.RebookingID
		if id == "" {
			id = uuid.NewString()
		}
		proposal, err := domainrebooking.Propose(domainrebooking.ProposeParams{
			ID:        domainrebooking.RebookingID(id),
			Original:  original,
			Stay:      stay,
			Adults:    cmd.Adults,
			Children:  cmd.Children,
			Price:     breakdown,
			CreatedAt: h.now(),
		})
		if err != nil {
			return err
		}
		if err := unit.Rebookings().Create(ctx, proposal); err != nil {
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

func (h *CreateRebookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[CreateRebookingCommand, *dto.RebookingView] = (*CreateRebookingHandler)(nil)
