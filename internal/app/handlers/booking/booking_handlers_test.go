package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seabreeze/internal/app/dto"
	"seabreeze/internal/domain/availability"
	domainbooking "seabreeze/internal/domain/booking"
	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/pricing"
	domainrebooking "seabreeze/internal/domain/rebooking"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/money"
	"seabreeze/internal/infra/storage/memory"
)

var fixedNow = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	catalog    *memory.CatalogRepository
	bookings   *memory.BookingRepository
	rebookings *memory.RebookingRepository
	factory    memory.Factory
	outbox     *memory.Outbox
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		catalog:    memory.NewCatalogRepository(),
		bookings:   memory.NewBookingRepository(),
		rebookings: memory.NewRebookingRepository(),
		outbox:     memory.NewOutbox(),
	}
	h.factory = memory.Factory{CatalogRepo: h.catalog, BookingRepo: h.bookings, RebookingRepo: h.rebookings}

	ctx := context.Background()
	minCap := 4
	require.NoError(t, h.catalog.SaveUnit(ctx, &catalog.Unit{ID: "cabana", Name: "Cabana", MinCapacity: &minCap, MaxCapacity: 10, Active: true}))
	require.NoError(t, h.catalog.SaveUnit(ctx, &catalog.Unit{ID: "hut", Name: "Hut", MaxCapacity: 4, Active: true}))
	perHead := money.Must(500, "PHP")
	adultFee := money.Must(100, "PHP")
	require.NoError(t, h.catalog.SaveRate(ctx, &catalog.RateRecord{
		ID: "cabana-night", UnitID: "cabana", Mode: catalog.ModeOvernight,
		BaseRate:               money.Must(3000, "PHP"),
		AdditionalOccupantRate: &perHead,
		AdultEntranceFee:       &adultFee,
		IncludesFreeEntrance:   true,
		Active:                 true,
	}))
	require.NoError(t, h.catalog.SaveRate(ctx, &catalog.RateRecord{
		ID: "hut-day", UnitID: "hut", Mode: catalog.ModeDayUse,
		BaseRate: money.Must(800, "PHP"),
		Active:   true,
	}))
	return h
}

func (h *harness) quoteAndBook(ctx context.Context, t *testing.T, cmd QuoteAndBookCommand) *dto.BookingView {
	t.Helper()
	handler := &QuoteAndBookHandler{UoWFactory: h.factory, Outbox: h.outbox, Now: func() time.Time { return fixedNow }}
	view, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)
	return view
}

func overnightCommand(id string) QuoteAndBookCommand {
	return QuoteAndBookCommand{
		BookingID: id,
		GuestID:   "guest-1",
		Mode:      "overnight",
		CheckIn:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
		Adults:    6,
		Items:     []ItemInput{{UnitID: "cabana", Guests: 6}},
	}
}

func TestQuoteAndBook(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	view := h.quoteAndBook(ctx, t, overnightCommand("bk-1"))

	assert.Equal(t, "bk-1", view.ID)
	assert.Equal(t, string(domainbooking.StatusPending), view.Status)
	// Two nights at 3000 plus two extra guests at 500 each per night, and two
	// adults beyond the free-entrance pool at 100.
	assert.Equal(t, int64(8200), view.Price.Total.Amount)
	assert.Equal(t, int64(8200), view.Balance.Amount)
	assert.False(t, view.FullyPaid)

	stored, err := h.bookings.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Empty(t, stored.PendingEvents(), "events are drained into the outbox")

	event, err := h.outbox.Claim(ctx, "w-1")
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "booking.created", event.Name)
	assert.Equal(t, "bk-1", event.Aggregate)
}

func TestQuoteAndBookConflict(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.quoteAndBook(ctx, t, overnightCommand("bk-1"))

	handler := &QuoteAndBookHandler{UoWFactory: h.factory, Outbox: h.outbox, Now: func() time.Time { return fixedNow }}
	_, err := handler.Handle(ctx, overnightCommand("bk-2"))
	assert.ErrorIs(t, err, availability.ErrConflict)

	_, err = h.bookings.ByID(ctx, "bk-2")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestQuoteAndBookValidation(t *testing.T) {
	h := newHarness(t)
	handler := &QuoteAndBookHandler{UoWFactory: h.factory, Outbox: h.outbox}

	t.Run("overnight needs a later checkout", func(t *testing.T) {
		cmd := overnightCommand("bk-1")
		cmd.CheckOut = cmd.CheckIn
		_, err := handler.Handle(context.Background(), cmd)
		assert.ErrorIs(t, err, domainbooking.ErrInvalidRange)
	})

	t.Run("at least one unit", func(t *testing.T) {
		cmd := overnightCommand("bk-1")
		cmd.Items = nil
		_, err := handler.Handle(context.Background(), cmd)
		assert.ErrorIs(t, err, pricing.ErrNoItems)
	})

	t.Run("unknown mode", func(t *testing.T) {
		cmd := overnightCommand("bk-1")
		cmd.Mode = "weekly"
		_, err := handler.Handle(context.Background(), cmd)
		assert.Error(t, err)
	})
}

func TestConfirmRefusedWhileRebookingOutstanding(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.quoteAndBook(ctx, t, overnightCommand("bk-1"))

	original, err := h.bookings.ByID(ctx, "bk-1")
	require.NoError(t, err)
	proposal, err := domainrebooking.Propose(domainrebooking.ProposeParams{
		ID:       "rb-1",
		Original: original,
		Stay:     daterange.SingleDay(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)),
		Adults:   2,
		Price:    original.Price,
	})
	require.NoError(t, err)
	require.NoError(t, h.rebookings.Create(ctx, proposal))

	confirm := &ConfirmBookingHandler{UoWFactory: h.factory, Outbox: h.outbox, Now: func() time.Time { return fixedNow }}
	_, err = confirm.Handle(ctx, ConfirmBookingCommand{BookingID: "bk-1"})
	assert.ErrorIs(t, err, domainrebooking.ErrOutstandingExists)

	t.Run("deciding the proposal unblocks confirmation", func(t *testing.T) {
		require.NoError(t, proposal.Reject(fixedNow))
		require.NoError(t, h.rebookings.Save(ctx, proposal))

		view, err := confirm.Handle(ctx, ConfirmBookingCommand{BookingID: "bk-1"})
		require.NoError(t, err)
		assert.Equal(t, string(domainbooking.StatusConfirmed), view.Status)
	})
}

func TestCancelCascadesToOutstandingRebooking(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.quoteAndBook(ctx, t, overnightCommand("bk-1"))

	original, err := h.bookings.ByID(ctx, "bk-1")
	require.NoError(t, err)
	proposal, err := domainrebooking.Propose(domainrebooking.ProposeParams{
		ID:       "rb-1",
		Original: original,
		Stay:     daterange.SingleDay(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)),
		Adults:   2,
		Price:    original.Price,
	})
	require.NoError(t, err)
	require.NoError(t, h.rebookings.Create(ctx, proposal))

	cancel := &CancelBookingHandler{UoWFactory: h.factory, Outbox: h.outbox, Now: func() time.Time { return fixedNow }}
	view, err := cancel.Handle(ctx, CancelBookingCommand{BookingID: "bk-1", Reason: "guest request"})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusCancelled), view.Status)

	_, err = h.rebookings.OutstandingForBooking(ctx, "bk-1")
	assert.ErrorIs(t, err, domainrebooking.ErrNotFound)
}

func TestRecordPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.quoteAndBook(ctx, t, overnightCommand("bk-1"))

	handler := &RecordPaymentHandler{UoWFactory: h.factory, Outbox: h.outbox, Now: func() time.Time { return fixedNow }}

	// Currency defaults when omitted.
	view, err := handler.Handle(ctx, RecordPaymentCommand{BookingID: "bk-1", Amount: 5000})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), view.Paid.Amount)
	assert.Equal(t, "PHP", view.Paid.Currency)
	assert.Equal(t, int64(3200), view.Balance.Amount)
	assert.False(t, view.FullyPaid)

	view, err = handler.Handle(ctx, RecordPaymentCommand{BookingID: "bk-1", Amount: 3200, Currency: "PHP"})
	require.NoError(t, err)
	assert.True(t, view.FullyPaid)
}

func TestUpdateBookingReprices(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.quoteAndBook(ctx, t, overnightCommand("bk-1"))

	handler := &UpdateBookingHandler{UoWFactory: h.factory, Outbox: h.outbox, Now: func() time.Time { return fixedNow }}
	view, err := handler.Handle(ctx, UpdateBookingCommand{
		BookingID: "bk-1",
		CheckIn:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC),
		Adults:    4,
		Items:     []ItemInput{{UnitID: "cabana", Guests: 4}},
	})
	require.NoError(t, err)

	// One night, no extra occupants, all adults inside the free pool.
	assert.Equal(t, int64(3000), view.Price.Total.Amount)
	assert.Equal(t, 4, view.Adults)

	t.Run("confirmed bookings are not editable", func(t *testing.T) {
		confirm := &ConfirmBookingHandler{UoWFactory: h.factory, Outbox: h.outbox, Now: func() time.Time { return fixedNow }}
		_, err := confirm.Handle(ctx, ConfirmBookingCommand{BookingID: "bk-1"})
		require.NoError(t, err)

		_, err = handler.Handle(ctx, UpdateBookingCommand{
			BookingID: "bk-1",
			CheckIn:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
			CheckOut:  time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC),
			Adults:    2,
			Items:     []ItemInput{{UnitID: "cabana", Guests: 2}},
		})
		assert.ErrorIs(t, err, domainbooking.ErrInvalidState)
	})
}

func TestUpdateBookingHeldUnitNewDatesConflict(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.quoteAndBook(ctx, t, overnightCommand("bk-1"))

	other := overnightCommand("bk-2")
	other.GuestID = "guest-2"
	other.CheckIn = time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	other.CheckOut = time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	h.quoteAndBook(ctx, t, other)

	// Moving bk-1 onto the cabana dates bk-2 holds must conflict even though
	// bk-1 already holds the cabana itself.
	handler := &UpdateBookingHandler{UoWFactory: h.factory, Outbox: h.outbox, Now: func() time.Time { return fixedNow }}
	_, err := handler.Handle(ctx, UpdateBookingCommand{
		BookingID: "bk-1",
		CheckIn:   time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
		Adults:    4,
		Items:     []ItemInput{{UnitID: "cabana", Guests: 4}},
	})
	assert.ErrorIs(t, err, availability.ErrConflict)

	t.Run("free dates on the held unit still pass", func(t *testing.T) {
		view, err := handler.Handle(ctx, UpdateBookingCommand{
			BookingID: "bk-1",
			CheckIn:   time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
			CheckOut:  time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			Adults:    4,
			Items:     []ItemInput{{UnitID: "cabana", Guests: 4}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3000), view.Price.Total.Amount)
	})
}

func TestConfiguredCurrencyFlowsThrough(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.catalog.SaveUnit(ctx, &catalog.Unit{ID: "villa", Name: "Villa", MaxCapacity: 6, Active: true}))
	require.NoError(t, h.catalog.SaveRate(ctx, &catalog.RateRecord{
		ID: "villa-night", UnitID: "villa", Mode: catalog.ModeOvernight,
		BaseRate: money.Must(9000, "USD"),
		Active:   true,
	}))

	book := &QuoteAndBookHandler{UoWFactory: h.factory, Outbox: h.outbox, Currency: "USD", Now: func() time.Time { return fixedNow }}
	cmd := overnightCommand("bk-usd")
	cmd.Adults = 2
	cmd.Items = []ItemInput{{UnitID: "villa", Guests: 2}}
	view, err := book.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "USD", view.Price.Total.Currency)
	assert.Equal(t, int64(18000), view.Price.Total.Amount)

	t.Run("omitted payment currency falls back to the configured one", func(t *testing.T) {
		pay := &RecordPaymentHandler{UoWFactory: h.factory, Outbox: h.outbox, Currency: "USD", Now: func() time.Time { return fixedNow }}
		paid, err := pay.Handle(ctx, RecordPaymentCommand{BookingID: "bk-usd", Amount: 18000})
		require.NoError(t, err)
		assert.Equal(t, "USD", paid.Paid.Currency)
		assert.True(t, paid.FullyPaid)
	})
}

func TestListAndGetQueries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.quoteAndBook(ctx, t, overnightCommand("bk-1"))

	other := overnightCommand("bk-2")
	other.GuestID = "guest-2"
	other.Items = []ItemInput{{UnitID: "hut", Guests: 2}}
	other.Mode = "day_use"
	other.CheckOut = time.Time{}
	other.Adults = 2
	h.quoteAndBook(ctx, t, other)

	list := &ListBookingsHandler{UoWFactory: h.factory}
	all, err := list.Handle(ctx, ListBookingsQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	mine, err := list.Handle(ctx, ListBookingsQuery{GuestID: "guest-2"})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "bk-2", mine.Items[0].ID)

	get := &GetBookingHandler{UoWFactory: h.factory}
	view, err := get.Handle(ctx, GetBookingQuery{BookingID: "bk-1"})
	require.NoError(t, err)
	assert.Equal(t, "bk-1", view.ID)

	_, err = get.Handle(ctx, GetBookingQuery{BookingID: "missing"})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}
