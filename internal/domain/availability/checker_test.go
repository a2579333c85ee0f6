package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seabreeze/internal/domain/booking"
	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/pricing"
	"seabreeze/internal/domain/rebooking"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/money"
	"seabreeze/internal/infra/storage/memory"
)

var testNow = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	catalog    *memory.CatalogRepository
	bookings   *memory.BookingRepository
	rebookings *memory.RebookingRepository
	checker    *Checker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog:    memory.NewCatalogRepository(),
		bookings:   memory.NewBookingRepository(),
		rebookings: memory.NewRebookingRepository(),
	}
	f.checker = &Checker{Catalog: f.catalog, Bookings: f.bookings, Rebookings: f.rebookings}

	ctx := context.Background()
	require.NoError(t, f.catalog.SaveUnit(ctx, &catalog.Unit{ID: "cabana", Name: "Cabana", MaxCapacity: 8, Active: true}))
	require.NoError(t, f.catalog.SaveUnit(ctx, &catalog.Unit{ID: "hut", Name: "Hut", MaxCapacity: 4, Active: true}))
	require.NoError(t, f.catalog.SaveUnit(ctx, &catalog.Unit{ID: "shed", Name: "Shed", MaxCapacity: 2, Active: false}))
	return f
}

func breakdownFor(unit catalog.UnitID, mode catalog.BookingMode) pricing.Breakdown {
	total := money.Must(1000, "PHP")
	return pricing.Breakdown{
		Mode:               mode,
		Nights:             1,
		Lines:              []pricing.Line{{UnitID: unit, Guests: 2, Subtotal: total}},
		AccommodationTotal: total,
		EntranceFeeTotal:   money.Zero("PHP"),
		Total:              total,
	}
}

func (f *fixture) book(t *testing.T, id booking.BookingID, unit catalog.UnitID, mode catalog.BookingMode, stay daterange.Stay, status booking.Status) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(booking.CreateParams{
		ID:        id,
		GuestID:   "guest-1",
		Mode:      mode,
		Stay:      stay,
		Adults:    2,
		Price:     breakdownFor(unit, mode),
		CreatedAt: testNow,
	})
	require.NoError(t, err)
	switch status {
	case booking.StatusConfirmed:
		require.NoError(t, b.Confirm(testNow))
	case booking.StatusCheckedIn:
		require.NoError(t, b.Confirm(testNow))
		require.NoError(t, b.CheckIn(testNow))
	case booking.StatusCheckedOut:
		require.NoError(t, b.Confirm(testNow))
		require.NoError(t, b.CheckIn(testNow))
		require.NoError(t, b.CheckOut(testNow))
	case booking.StatusCancelled:
		require.NoError(t, b.Cancel("", testNow))
	}
	require.NoError(t, f.bookings.Save(context.Background(), b))
	return b
}

func stayOf(t *testing.T, from, to time.Time) daterange.Stay {
	t.Helper()
	stay, err := daterange.Closed(from, to)
	require.NoError(t, err)
	return stay
}

func TestAvailableFor(t *testing.T) {
	day10 := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	occupied := stayOf(t, day10, day10.AddDate(0, 0, 2))

	tests := []struct {
		name   string
		status booking.Status
		unit   catalog.UnitID
		mode   catalog.BookingMode
		ask    daterange.Stay
		want   bool
	}{
		{"pending blocks", booking.StatusPending, "cabana", catalog.ModeOvernight, occupied, false},
		{"confirmed blocks", booking.StatusConfirmed, "cabana", catalog.ModeOvernight, occupied, false},
		{"checked-in blocks", booking.StatusCheckedIn, "cabana", catalog.ModeOvernight, occupied, false},
		{"checked-out frees", booking.StatusCheckedOut, "cabana", catalog.ModeOvernight, occupied, true},
		{"cancelled frees", booking.StatusCancelled, "cabana", catalog.ModeOvernight, occupied, true},
		{"other unit unaffected", booking.StatusConfirmed, "hut", catalog.ModeOvernight, occupied, true},
		{"other mode unaffected", booking.StatusConfirmed, "cabana", catalog.ModeDayUse, occupied, true},
		{"disjoint dates free", booking.StatusConfirmed, "cabana", catalog.ModeOvernight, stayOf(t, day10.AddDate(0, 0, 5), day10.AddDate(0, 0, 6)), true},
		{"shared boundary day blocks", booking.StatusConfirmed, "cabana", catalog.ModeOvernight, daterange.SingleDay(day10.AddDate(0, 0, 2)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.book(t, "bk-1", "cabana", catalog.ModeOvernight, occupied, tt.status)

			free, err := f.checker.AvailableFor(context.Background(), tt.unit, tt.mode, tt.ask)
			require.NoError(t, err)
			assert.Equal(t, tt.want, free)
		})
	}

	t.Run("unknown unit is unavailable without error", func(t *testing.T) {
		f := newFixture(t)
		free, err := f.checker.AvailableFor(context.Background(), "missing", catalog.ModeDayUse, daterange.SingleDay(day10))
		require.NoError(t, err)
		assert.False(t, free)
	})

	t.Run("inactive unit is unavailable", func(t *testing.T) {
		f := newFixture(t)
		free, err := f.checker.AvailableFor(context.Background(), "shed", catalog.ModeDayUse, daterange.SingleDay(day10))
		require.NoError(t, err)
		assert.False(t, free)
	})

	t.Run("open-ended stay blocks all later days", func(t *testing.T) {
		f := newFixture(t)
		f.book(t, "bk-open", "cabana", catalog.ModeDayUse, daterange.OpenEnded(day10), booking.StatusCheckedIn)

		free, err := f.checker.AvailableOn(context.Background(), "cabana", catalog.ModeDayUse, day10.AddDate(0, 1, 0))
		require.NoError(t, err)
		assert.False(t, free)

		free, err = f.checker.AvailableOn(context.Background(), "cabana", catalog.ModeDayUse, day10.AddDate(0, 0, -1))
		require.NoError(t, err)
		assert.True(t, free)
	})
}

func TestAvailableForExcluding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day10 := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	day20 := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	f.book(t, "bk-1", "cabana", catalog.ModeOvernight, stayOf(t, day10, day10.AddDate(0, 0, 2)), booking.StatusConfirmed)
	f.book(t, "bk-2", "cabana", catalog.ModeOvernight, stayOf(t, day20, day20.AddDate(0, 0, 1)), booking.StatusConfirmed)

	// The excluded booking's own dates read as free.
	free, err := f.checker.AvailableForExcluding(ctx, "cabana", catalog.ModeOvernight, stayOf(t, day10, day10.AddDate(0, 0, 2)), "bk-1")
	require.NoError(t, err)
	assert.True(t, free)

	// Everyone else's occupancy still blocks the excluded booking.
	free, err = f.checker.AvailableForExcluding(ctx, "cabana", catalog.ModeOvernight, stayOf(t, day20, day20.AddDate(0, 0, 1)), "bk-1")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestApprovedRebookingShiftsEffectiveStay(t *testing.T) {
	day10 := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	day20 := day10.AddDate(0, 0, 10)
	ctx := context.Background()

	propose := func(t *testing.T, f *fixture, original *booking.Booking, approve bool) {
		t.Helper()
		r, err := rebooking.Propose(rebooking.ProposeParams{
			ID:        "rb-1",
			Original:  original,
			Stay:      stayOf(t, day20, day20.AddDate(0, 0, 2)),
			Adults:    2,
			Price:     breakdownFor("cabana", original.Mode),
			CreatedAt: testNow,
		})
		require.NoError(t, err)
		if approve {
			require.NoError(t, r.Approve(money.Zero("PHP"), testNow))
		}
		require.NoError(t, f.rebookings.Create(ctx, r))
	}

	t.Run("approved frees original dates and blocks proposed ones", func(t *testing.T) {
		f := newFixture(t)
		original := f.book(t, "bk-1", "cabana", catalog.ModeOvernight, stayOf(t, day10, day10.AddDate(0, 0, 2)), booking.StatusConfirmed)
		propose(t, f, original, true)

		free, err := f.checker.AvailableOn(ctx, "cabana", catalog.ModeOvernight, day10)
		require.NoError(t, err)
		assert.True(t, free, "original dates are released")

		free, err = f.checker.AvailableOn(ctx, "cabana", catalog.ModeOvernight, day20)
		require.NoError(t, err)
		assert.False(t, free, "proposed dates are provisionally reserved")
	})

	t.Run("pending proposal leaves the original interval authoritative", func(t *testing.T) {
		f := newFixture(t)
		original := f.book(t, "bk-1", "cabana", catalog.ModeOvernight, stayOf(t, day10, day10.AddDate(0, 0, 2)), booking.StatusConfirmed)
		propose(t, f, original, false)

		free, err := f.checker.AvailableOn(ctx, "cabana", catalog.ModeOvernight, day10)
		require.NoError(t, err)
		assert.False(t, free)

		free, err = f.checker.AvailableOn(ctx, "cabana", catalog.ModeOvernight, day20)
		require.NoError(t, err)
		assert.True(t, free)
	})

	t.Run("cancelled rebooking is ignored", func(t *testing.T) {
		f := newFixture(t)
		original := f.book(t, "bk-1", "cabana", catalog.ModeOvernight, stayOf(t, day10, day10.AddDate(0, 0, 2)), booking.StatusConfirmed)
		r, err := rebooking.Propose(rebooking.ProposeParams{
			ID:        "rb-1",
			Original:  original,
			Stay:      stayOf(t, day20, day20.AddDate(0, 0, 2)),
			Adults:    2,
			Price:     breakdownFor("cabana", original.Mode),
			CreatedAt: testNow,
		})
		require.NoError(t, err)
		require.NoError(t, f.rebookings.Create(ctx, r))
		require.NoError(t, r.Cancel(testNow))
		require.NoError(t, f.rebookings.Save(ctx, r))

		free, err := f.checker.AvailableOn(ctx, "cabana", catalog.ModeOvernight, day10)
		require.NoError(t, err)
		assert.False(t, free, "original dates stay blocked")
	})
}

func TestScannerMonthOverview(t *testing.T) {
	f := newFixture(t)
	scanner := &Scanner{Catalog: f.catalog, Checker: f.checker}
	ctx := context.Background()

	// Two active units. Occupy both on June 10, one on June 11.
	day10 := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	f.book(t, "bk-1", "cabana", catalog.ModeDayUse, daterange.SingleDay(day10), booking.StatusConfirmed)
	f.book(t, "bk-2", "hut", catalog.ModeDayUse, stayOf(t, day10, day10.AddDate(0, 0, 1)), booking.StatusConfirmed)

	overview, err := scanner.MonthOverview(ctx, 2026, time.June)
	require.NoError(t, err)
	require.Len(t, overview, 30)

	assert.Equal(t, DayFull, overview["2026-06-10"].Status)
	assert.Equal(t, 0, overview["2026-06-10"].Available)
	assert.Equal(t, 2, overview["2026-06-10"].Booked)

	assert.Equal(t, DayPartial, overview["2026-06-11"].Status)
	assert.Equal(t, 1, overview["2026-06-11"].Available)

	assert.Equal(t, DayAvailable, overview["2026-06-12"].Status)
	assert.Equal(t, 2, overview["2026-06-12"].Available)
	assert.Equal(t, 0, overview["2026-06-12"].Booked)
}

func TestScannerDayView(t *testing.T) {
	f := newFixture(t)
	scanner := &Scanner{Catalog: f.catalog, Checker: f.checker}
	ctx := context.Background()

	// A day-use booking makes the cabana unavailable overall even though the
	// overnight schedule is free.
	day10 := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	f.book(t, "bk-1", "cabana", catalog.ModeDayUse, daterange.SingleDay(day10), booking.StatusConfirmed)

	view, err := scanner.DayView(ctx, day10)
	require.NoError(t, err)
	require.Len(t, view, 2, "inactive units are excluded")

	byID := make(map[catalog.UnitID]UnitDay, len(view))
	for _, ud := range view {
		byID[ud.Unit.ID] = ud
	}

	cabana := byID["cabana"]
	assert.False(t, cabana.DayUseFree)
	assert.True(t, cabana.OvernightFree)
	assert.False(t, cabana.Available)

	hut := byID["hut"]
	assert.True(t, hut.DayUseFree)
	assert.True(t, hut.OvernightFree)
	assert.True(t, hut.Available)
}
