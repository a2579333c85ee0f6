package rebooking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seabreeze/internal/domain/booking"
	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/pricing"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/money"
)

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func php(amount int64) money.Money { return money.Must(amount, "PHP") }

func breakdownOf(total int64, unit catalog.UnitID) pricing.Breakdown {
	return pricing.Breakdown{
		Mode:               catalog.ModeOvernight,
		Nights:             1,
		Lines:              []pricing.Line{{UnitID: unit, Guests: 2, Subtotal: php(total)}},
		AccommodationTotal: php(total),
		EntranceFeeTotal:   money.Zero("PHP"),
		Total:              php(total),
	}
}

func originalBooking(t *testing.T, total int64) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(booking.CreateParams{
		ID:        "bk-1",
		GuestID:   "guest-1",
		Mode:      catalog.ModeOvernight,
		Stay:      daterange.SingleDay(testNow),
		Adults:    2,
		Price:     breakdownOf(total, "cabana"),
		CreatedAt: testNow,
	})
	require.NoError(t, err)
	return b
}

func proposal(t *testing.T, originalTotal, newTotal int64) *Rebooking {
	t.Helper()
	r, err := Propose(ProposeParams{
		ID:        "rb-1",
		Original:  originalBooking(t, originalTotal),
		Stay:      daterange.SingleDay(testNow.AddDate(0, 0, 7)),
		Adults:    2,
		Price:     breakdownOf(newTotal, "room-deluxe"),
		CreatedAt: testNow,
	})
	require.NoError(t, err)
	r.ClearEvents()
	return r
}

func TestPropose(t *testing.T) {
	r := proposal(t, 5000, 4500)

	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, php(5000), r.OriginalAmount)
	assert.Equal(t, php(4500), r.NewAmount)
	assert.Equal(t, php(-500), r.AmountDifference)
	assert.True(t, r.Fee.IsZero())
	assert.Equal(t, php(-500), r.TotalAdjustment)
	assert.Equal(t, catalog.ModeOvernight, r.Mode, "mode is inherited from the original")

	t.Run("requires an original", func(t *testing.T) {
		_, err := Propose(ProposeParams{ID: "rb-2", Adults: 2, Price: breakdownOf(100, "cabana")})
		assert.ErrorIs(t, err, booking.ErrNotFound)
	})

	t.Run("requires occupants", func(t *testing.T) {
		_, err := Propose(ProposeParams{ID: "rb-2", Original: originalBooking(t, 5000), Price: breakdownOf(100, "cabana")})
		assert.ErrorIs(t, err, booking.ErrInvalidGuests)
	})
}

func TestApproveAddsFeeToAdjustment(t *testing.T) {
	r := proposal(t, 5000, 4500)

	require.NoError(t, r.Approve(php(200), testNow))
	assert.Equal(t, StatusApproved, r.Status)
	assert.Equal(t, php(200), r.Fee)
	// A 500 saving minus the 200 fee leaves a 300 credit.
	assert.Equal(t, php(-300), r.TotalAdjustment)
	assert.Equal(t, testNow, r.ApprovedAt)
}

func TestReprice(t *testing.T) {
	r := proposal(t, 5000, 4500)
	stay := daterange.SingleDay(testNow.AddDate(0, 0, 10))

	require.NoError(t, r.Reprice(stay, 3, 1, breakdownOf(6200, "cabana"), testNow))
	assert.Equal(t, php(6200), r.NewAmount)
	assert.Equal(t, php(1200), r.AmountDifference)
	assert.Equal(t, php(1200), r.TotalAdjustment)
	assert.True(t, r.Stay.Equal(stay))

	t.Run("approved proposals are immutable", func(t *testing.T) {
		require.NoError(t, r.Approve(php(200), testNow))
		err := r.Reprice(stay, 2, 0, breakdownOf(5000, "cabana"), testNow)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestTransitions(t *testing.T) {
	at := func(t *testing.T, status Status) *Rebooking {
		t.Helper()
		r := proposal(t, 5000, 6000)
		switch status {
		case StatusApproved:
			require.NoError(t, r.Approve(php(200), testNow))
		case StatusCompleted:
			require.NoError(t, r.Approve(php(200), testNow))
			require.NoError(t, r.Complete(testNow))
		case StatusCancelled:
			require.NoError(t, r.Cancel(testNow))
		}
		return r
	}

	ops := []struct {
		name    string
		apply   func(*Rebooking) error
		allowed []Status
	}{
		{"approve", func(r *Rebooking) error { return r.Approve(php(200), testNow) }, []Status{StatusPending}},
		{"reject", func(r *Rebooking) error { return r.Reject(testNow) }, []Status{StatusPending}},
		{"cancel", func(r *Rebooking) error { return r.Cancel(testNow) }, []Status{StatusPending, StatusApproved}},
		{"complete", func(r *Rebooking) error { return r.Complete(testNow) }, []Status{StatusApproved}},
	}
	all := []Status{StatusPending, StatusApproved, StatusCompleted, StatusCancelled}

	for _, o := range ops {
		for _, from := range all {
			t.Run(o.name+" from "+string(from), func(t *testing.T) {
				r := at(t, from)
				err := o.apply(r)
				allowed := false
				for _, s := range o.allowed {
					if s == from {
						allowed = true
					}
				}
				if allowed {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, ErrInvalidTransition)
					assert.Equal(t, from, r.Status)
				}
			})
		}
	}
}

func TestOutstanding(t *testing.T) {
	assert.True(t, StatusPending.Outstanding())
	assert.True(t, StatusApproved.Outstanding())
	assert.False(t, StatusCompleted.Outstanding())
	assert.False(t, StatusCancelled.Outstanding())
}

func TestCompleteStampsTimestamps(t *testing.T) {
	r := proposal(t, 5000, 6000)
	require.NoError(t, r.Approve(php(200), testNow))

	later := testNow.Add(48 * time.Hour)
	require.NoError(t, r.Complete(later))
	assert.Equal(t, StatusCompleted, r.Status)
	assert.Equal(t, later, r.CompletedAt)
	assert.Equal(t, later, r.UpdatedAt)
}
