package booking

import (
	"context"
	"errors"
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
	"seabreeze/internal/domain/rebooking"
)

const updateBookingKey = "booking.update"

// UpdateBookingCommand re-quotes a pending booking with a new stay, party or
// unit selection. The stored breakdown is replaced wholesale.
type UpdateBookingCommand struct {
	BookingID string
	CheckIn   time.Time
	CheckOut  time.Time
	OpenEnded bool
	Adults    int
	Children  int
	Items     []ItemInput
	RequestID string
}

func (c UpdateBookingCommand) Key() string            { return updateBookingKey }
func (c UpdateBookingCommand) IdempotencyKey() string { return c.RequestID }
func (c UpdateBookingCommand) ResultPrototype() any   { return &dto.BookingView{} }

type UpdateBookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Currency   string
	Now        func() time.Time
}

func (h *UpdateBookingHandler) Handle(ctx context.Context, cmd UpdateBookingCommand) (*dto.BookingView, error) {
	if len(cmd.Items) == 0 {
		return nil, pricing.ErrNoItems
	}
	return applyBooking(ctx, h.UoWFactory, h.Outbox, h.Encoder, domainbooking.BookingID(cmd.BookingID),
		func(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking) error {
			if _, err := unit.Rebookings().OutstandingForBooking(ctx, b.ID); err == nil {
				return rebooking.ErrOutstandingExists
			} else if !errors.Is(err, rebooking.ErrNotFound) {
				return err
			}
			stay, err := domainbooking.NewStay(b.Mode, cmd.CheckIn, cmd.CheckOut, cmd.OpenEnded)
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
				// The booking's own occupancy is excluded from the scan;
				// conflicts with every other booking still count.
				free, err := checker.AvailableForExcluding(ctx, unitID, b.Mode, stay, b.ID)
				if err != nil {
					return err
				}
				if !free {
					return fmt.Errorf("%w: unit %s", availability.ErrConflict, unitID)
				}
			}
			calc := support.Calculator(unit.Catalog(), h.Currency)
			breakdown, err := calc.Quote(ctx, pricing.QuoteParams{
				Mode:     b.Mode,
				Stay:     stay,
				Items:    items,
				Adults:   cmd.Adults,
				Children: cmd.Children,
			})
			if err != nil {
				return err
			}
			return b.Reprice(stay, cmd.Adults, cmd.Children, breakdown, clock(h.Now))
		})
}

var _ commands.Handler[UpdateBookingCommand, *dto.BookingView] = (*UpdateBookingHandler)(nil)
