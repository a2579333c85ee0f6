package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "seabreeze/internal/domain/availability"
	domainbooking "seabreeze/internal/domain/booking"
	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/pricing"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/money"
	"seabreeze/internal/infra/storage/memory"
)

var fixedNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	catalog  *memory.CatalogRepository
	bookings *memory.BookingRepository
	factory  memory.Factory
	scanner  *domainavailability.Scanner
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		catalog:  memory.NewCatalogRepository(),
		bookings: memory.NewBookingRepository(),
	}
	rebookings := memory.NewRebookingRepository()
	h.factory = memory.Factory{CatalogRepo: h.catalog, BookingRepo: h.bookings, RebookingRepo: rebookings}
	h.scanner = &domainavailability.Scanner{
		Catalog: h.catalog,
		Checker: &domainavailability.Checker{Catalog: h.catalog, Bookings: h.bookings, Rebookings: rebookings},
	}

	ctx := context.Background()
	require.NoError(t, h.catalog.SaveUnit(ctx, &catalog.Unit{ID: "cabana", Name: "Cabana", MaxCapacity: 10, Active: true}))
	require.NoError(t, h.catalog.SaveUnit(ctx, &catalog.Unit{ID: "hut", Name: "Hut", MaxCapacity: 4, Active: true}))
	return h
}

func (h *harness) occupy(t *testing.T, id domainbooking.BookingID, unit catalog.UnitID, mode catalog.BookingMode, stay daterange.Stay) {
	t.Helper()
	total := money.Must(1000, "PHP")
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:      id,
		GuestID: "guest-1",
		Mode:    mode,
		Stay:    stay,
		Adults:  2,
		Price: pricing.Breakdown{
			Mode:  mode,
			Lines: []pricing.Line{{UnitID: unit, Guests: 2, Subtotal: total}},
			Total: total,
		},
		CreatedAt: fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, h.bookings.Save(context.Background(), b))
}

func TestCheckAvailability(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	day10 := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	stay, err := daterange.Closed(day10, day10.AddDate(0, 0, 2))
	require.NoError(t, err)
	h.occupy(t, "bk-1", "cabana", catalog.ModeOvernight, stay)

	handler := &CheckAvailabilityHandler{UoWFactory: h.factory}

	tests := []struct {
		name  string
		query CheckAvailabilityQuery
		want  bool
	}{
		{"occupied dates", CheckAvailabilityQuery{UnitID: "cabana", Mode: "overnight", CheckIn: day10, CheckOut: day10.AddDate(0, 0, 1)}, false},
		{"free dates", CheckAvailabilityQuery{UnitID: "cabana", Mode: "overnight", CheckIn: day10.AddDate(0, 0, 5), CheckOut: day10.AddDate(0, 0, 6)}, true},
		{"other mode", CheckAvailabilityQuery{UnitID: "cabana", Mode: "day_use", CheckIn: day10}, true},
		{"other unit", CheckAvailabilityQuery{UnitID: "hut", Mode: "overnight", CheckIn: day10, CheckOut: day10.AddDate(0, 0, 1)}, true},
		{"unknown unit", CheckAvailabilityQuery{UnitID: "missing", Mode: "day_use", CheckIn: day10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			free, err := handler.Handle(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, free)
		})
	}

	t.Run("invalid mode", func(t *testing.T) {
		_, err := handler.Handle(ctx, CheckAvailabilityQuery{UnitID: "cabana", Mode: "hourly", CheckIn: day10})
		assert.Error(t, err)
	})

	t.Run("overnight without checkout", func(t *testing.T) {
		_, err := handler.Handle(ctx, CheckAvailabilityQuery{UnitID: "cabana", Mode: "overnight", CheckIn: day10})
		assert.ErrorIs(t, err, domainbooking.ErrInvalidRange)
	})
}

func TestMonthOverviewHandler(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	day10 := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	h.occupy(t, "bk-1", "cabana", catalog.ModeDayUse, daterange.SingleDay(day10))

	handler := &MonthOverviewHandler{Strategy: h.scanner}
	overview, err := handler.Handle(ctx, MonthOverviewQuery{Year: 2026, Month: 9})
	require.NoError(t, err)

	assert.Equal(t, 2026, overview.Year)
	assert.Equal(t, 9, overview.Month)
	require.Len(t, overview.Days, 30)
	assert.Equal(t, domainavailability.DayPartial, overview.Days["2026-09-10"].Status)
	assert.Equal(t, domainavailability.DayAvailable, overview.Days["2026-09-11"].Status)

	dates := overview.SortedDates()
	require.Len(t, dates, 30)
	assert.Equal(t, "2026-09-01", dates[0])
	assert.Equal(t, "2026-09-30", dates[29])
}

func TestDayViewHandler(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	day10 := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	h.occupy(t, "bk-1", "cabana", catalog.ModeDayUse, daterange.SingleDay(day10))

	handler := &DayViewHandler{Strategy: h.scanner}
	// Time of day is truncated before the scan.
	view, err := handler.Handle(ctx, DayViewQuery{Date: day10.Add(16 * time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, "2026-09-10", view.Date)
	require.Len(t, view.Units, 2)
	for _, unit := range view.Units {
		switch unit.Unit.ID {
		case "cabana":
			assert.False(t, unit.DayUseFree)
			assert.True(t, unit.OvernightFree)
			assert.False(t, unit.Available)
		case "hut":
			assert.True(t, unit.Available)
		}
	}
}
