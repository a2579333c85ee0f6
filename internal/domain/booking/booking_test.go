package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/pricing"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/money"
)

var testNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func php(amount int64) money.Money { return money.Must(amount, "PHP") }

func breakdownOf(total int64, units ...catalog.UnitID) pricing.Breakdown {
	lines := make([]pricing.Line, 0, len(units))
	for _, unit := range units {
		lines = append(lines, pricing.Line{UnitID: unit, Guests: 2, Subtotal: php(total / int64(max(len(units), 1)))})
	}
	return pricing.Breakdown{
		Mode:               catalog.ModeOvernight,
		Nights:             1,
		Lines:              lines,
		AccommodationTotal: php(total),
		EntranceFeeTotal:   money.Zero("PHP"),
		Total:              php(total),
	}
}

func pendingBooking(t *testing.T) *Booking {
	t.Helper()
	stay, err := daterange.Closed(testNow, testNow.AddDate(0, 0, 2))
	require.NoError(t, err)
	b, err := NewBooking(CreateParams{
		ID:        "bk-1",
		GuestID:   "guest-1",
		Mode:      catalog.ModeOvernight,
		Stay:      stay,
		Adults:    2,
		Price:     breakdownOf(5000, "cabana"),
		CreatedAt: testNow,
	})
	require.NoError(t, err)
	b.ClearEvents()
	return b
}

func TestNewStay(t *testing.T) {
	in := time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		mode     catalog.BookingMode
		checkIn  time.Time
		checkOut time.Time
		open     bool
		wantErr  error
		wantOpen bool
	}{
		{name: "overnight two nights", mode: catalog.ModeOvernight, checkIn: in, checkOut: in.AddDate(0, 0, 2)},
		{name: "overnight same day", mode: catalog.ModeOvernight, checkIn: in, checkOut: in.Add(4 * time.Hour), wantErr: ErrInvalidRange},
		{name: "overnight missing checkout", mode: catalog.ModeOvernight, checkIn: in, wantErr: ErrInvalidRange},
		{name: "overnight open", mode: catalog.ModeOvernight, checkIn: in, open: true, wantErr: ErrInvalidRange},
		{name: "day use single day", mode: catalog.ModeDayUse, checkIn: in},
		{name: "day use open", mode: catalog.ModeDayUse, checkIn: in, open: true, wantOpen: true},
		{name: "day use inverted", mode: catalog.ModeDayUse, checkIn: in, checkOut: in.AddDate(0, 0, -1), wantErr: ErrInvalidRange},
		{name: "missing check-in", mode: catalog.ModeDayUse, wantErr: ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stay, err := NewStay(tt.mode, tt.checkIn, tt.checkOut, tt.open)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, daterange.Day(tt.checkIn), stay.CheckIn)
			assert.Equal(t, tt.wantOpen, stay.Open)
		})
	}
}

func TestNewBooking(t *testing.T) {
	b := pendingBooking(t)

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, php(5000), b.Balance)
	assert.True(t, b.Paid.IsZero())
	assert.False(t, b.FullyPaid)

	t.Run("requires occupants", func(t *testing.T) {
		_, err := NewBooking(CreateParams{ID: "bk-2", GuestID: "guest-1", Price: breakdownOf(100, "cabana")})
		assert.ErrorIs(t, err, ErrInvalidGuests)
	})
}

func TestStatusTransitions(t *testing.T) {
	advance := map[Status]func(*Booking) error{
		StatusConfirmed: func(b *Booking) error { return b.Confirm(testNow) },
		StatusCheckedIn: func(b *Booking) error {
			if err := b.Confirm(testNow); err != nil {
				return err
			}
			return b.CheckIn(testNow)
		},
		StatusCheckedOut: func(b *Booking) error {
			if err := b.Confirm(testNow); err != nil {
				return err
			}
			if err := b.CheckIn(testNow); err != nil {
				return err
			}
			return b.CheckOut(testNow)
		},
		StatusCancelled: func(b *Booking) error { return b.Cancel("test", testNow) },
	}
	at := func(t *testing.T, status Status) *Booking {
		t.Helper()
		b := pendingBooking(t)
		if status != StatusPending {
			require.NoError(t, advance[status](b))
		}
		return b
	}

	type op struct {
		name    string
		apply   func(*Booking) error
		allowed []Status
	}
	ops := []op{
		{"confirm", func(b *Booking) error { return b.Confirm(testNow) }, []Status{StatusPending}},
		{"check-in", func(b *Booking) error { return b.CheckIn(testNow) }, []Status{StatusConfirmed}},
		{"check-out", func(b *Booking) error { return b.CheckOut(testNow) }, []Status{StatusCheckedIn}},
		{"cancel", func(b *Booking) error { return b.Cancel("", testNow) }, []Status{StatusPending, StatusConfirmed, StatusCheckedIn}},
	}
	all := []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled}

	for _, o := range ops {
		for _, from := range all {
			t.Run(o.name+" from "+string(from), func(t *testing.T) {
				b := at(t, from)
				err := o.apply(b)
				allowed := false
				for _, s := range o.allowed {
					if s == from {
						allowed = true
					}
				}
				if allowed {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, ErrInvalidState)
					assert.Equal(t, from, b.Status, "refused transition must not mutate status")
				}
			})
		}
	}
}

func TestRecordPayment(t *testing.T) {
	b := pendingBooking(t)

	require.NoError(t, b.RecordPayment(php(2000), testNow))
	assert.Equal(t, php(2000), b.Paid)
	assert.Equal(t, php(3000), b.Balance)
	assert.False(t, b.FullyPaid)

	require.NoError(t, b.RecordPayment(php(3000), testNow))
	assert.True(t, b.Balance.IsZero())
	assert.True(t, b.FullyPaid)

	t.Run("rejects non positive amounts", func(t *testing.T) {
		assert.Error(t, b.RecordPayment(money.Zero("PHP"), testNow))
		assert.Error(t, b.RecordPayment(php(-100), testNow))
	})

	t.Run("overpayment stays fully paid", func(t *testing.T) {
		require.NoError(t, b.RecordPayment(php(500), testNow))
		assert.Equal(t, php(-500), b.Balance)
		assert.True(t, b.FullyPaid)
	})
}

func TestReprice(t *testing.T) {
	b := pendingBooking(t)
	require.NoError(t, b.RecordPayment(php(1000), testNow))

	stay := daterange.SingleDay(testNow.AddDate(0, 0, 7))
	require.NoError(t, b.Reprice(stay, 3, 1, breakdownOf(7000, "cabana"), testNow))
	assert.Equal(t, php(7000), b.Price.Total)
	assert.Equal(t, php(6000), b.Balance)
	assert.Equal(t, 3, b.Adults)

	t.Run("only while pending", func(t *testing.T) {
		require.NoError(t, b.Confirm(testNow))
		err := b.Reprice(stay, 2, 0, breakdownOf(5000, "cabana"), testNow)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestMergeRebooking(t *testing.T) {
	newStay := daterange.SingleDay(testNow.AddDate(0, 0, 14))
	newPrice := breakdownOf(4500, "room-deluxe")

	t.Run("replaces breakdown wholesale", func(t *testing.T) {
		b := pendingBooking(t)
		require.NoError(t, b.Confirm(testNow))
		require.NoError(t, b.RecordPayment(php(5000), testNow))

		require.NoError(t, b.MergeRebooking(newStay, 2, 0, newPrice, testNow))
		require.Len(t, b.Price.Lines, 1)
		assert.Equal(t, catalog.UnitID("room-deluxe"), b.Price.Lines[0].UnitID)
		assert.Equal(t, php(4500), b.Price.Total)
		// Paid 5000 against the new 4500 total leaves a 500 credit.
		assert.Equal(t, php(-500), b.Balance)
		assert.True(t, b.FullyPaid)
		assert.True(t, b.Stay.Equal(newStay))
	})

	t.Run("refused on closed bookings", func(t *testing.T) {
		cancelled := pendingBooking(t)
		require.NoError(t, cancelled.Cancel("", testNow))
		assert.ErrorIs(t, cancelled.MergeRebooking(newStay, 2, 0, newPrice, testNow), ErrInvalidState)

		done := pendingBooking(t)
		require.NoError(t, done.Confirm(testNow))
		require.NoError(t, done.CheckIn(testNow))
		require.NoError(t, done.CheckOut(testNow))
		assert.ErrorIs(t, done.MergeRebooking(newStay, 2, 0, newPrice, testNow), ErrInvalidState)
	})
}

func TestHasUnit(t *testing.T) {
	b := pendingBooking(t)
	assert.True(t, b.HasUnit("cabana"))
	assert.False(t, b.HasUnit("hut"))
}

func TestStatusOccupies(t *testing.T) {
	assert.True(t, StatusPending.Occupies())
	assert.True(t, StatusConfirmed.Occupies())
	assert.True(t, StatusCheckedIn.Occupies())
	assert.False(t, StatusCheckedOut.Occupies())
	assert.False(t, StatusCancelled.Occupies())
}
