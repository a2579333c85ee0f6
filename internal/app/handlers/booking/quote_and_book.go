package booking

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
)

const quoteAndBookKey = "booking.quote_and_book"

// ItemInput selects one unit for the stay. RateID may be empty to use the
// catalog's active rate for the booking mode.
type ItemInput struct {
	UnitID string
	RateID string
	Guests int
}

// QuoteAndBookCommand prices a stay and opens the booking in one transaction.
type QuoteAndBookCommand struct {
	BookingID string
	GuestID   string
	Mode      string
	CheckIn   time.Time
	CheckOut  time.Time
	OpenEnded bool
	Adults    int
	Children  int
	Items     []ItemInput
	RequestID string
}

func (c QuoteAndBookCommand) Key() string            { return quoteAndBookKey }
func (c QuoteAndBookCommand) IdempotencyKey() string { return c.RequestID }
func (c QuoteAndBookCommand) ResultPrototype() any   { return &dto.BookingView{} }

type QuoteAndBookHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Currency   string
	Now        func() time.Time
}

// Handle re-checks availability and persists the booking inside the same
// unit of work, so two guests racing for the last cottage cannot both win.
func (h *QuoteAndBookHandler) Handle(ctx context.Context, cmd QuoteAndBookCommand) (*dto.BookingView, error) {
	mode, err := catalog.ParseMode(cmd.Mode)
	if err != nil {
		return nil, err
	}
	stay, err := domainbooking.NewStay(mode, cmd.CheckIn, cmd.CheckOut, cmd.OpenEnded)
	if err != nil {
		return nil, err
	}
	if len(cmd.Items) == 0 {
		return nil, pricing.ErrNoItems
	}

	var view dto.BookingView
	err = support.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		checker := &availability.Checker{
			Catalog:    unit.Catalog(),
			Bookings:   unit.Bookings(),
			Rebookings: unit.Rebookings(),
		}
		items := make([]pricing.QuoteItem, 0, len(cmd.Items))
		seen := make(map[catalog.UnitID]struct{}, len(cmd.Items))
		for _, item := range cmd.Items {
			unitID := catalog.UnitID(item.UnitID)
			items = append(items, pricing.QuoteItem{
				UnitID: unitID,
				RateID: catalog.RateID(item.RateID),
				Guests: item.Guests,
			})
			if _, dup := seen[unitID]; dup {
				continue
			}
			seen[unitID] = struct{}{}
			free, err := checker.AvailableFor(ctx, unitID, mode, stay)
			if err != nil {
				return err
			}
			if !free {
				return fmt.Errorf("%w: unit %s", availability.ErrConflict, unitID)
			}
		}

		calc := support.Calculator(unit.Catalog(), h.Currency)
		breakdown, err := calc.Quote(ctx, pricing.QuoteParams{
			Mode:     mode,
			Stay:     stay,
			Items:    items,
			Adults:   cmd.Adults,
			Children: cmd.Children,
		})
		if err != nil {
			return err
		}

		id := cmd.BookingID
		if id == "" {
			id = uuid.NewString()
		}
		b, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:        domainbooking.BookingID(id),
			GuestID:   cmd.GuestID,
			Mode:      mode,
			Stay:      stay,
			Adults:    cmd.Adults,
			Children:  cmd.Children,
			Price:     breakdown,
			CreatedAt: h.now(),
		})
		if err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.PendingEvents()); err != nil {
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

func (h *QuoteAndBookHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[QuoteAndBookCommand, *dto.BookingView] = (*QuoteAndBookHandler)(nil)
