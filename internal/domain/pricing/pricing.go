package pricing

import (
	"context"
	"errors"

	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/shared/daterange"
	"seabreeze/internal/domain/shared/money"
)

var (
	ErrInvalidGuests = errors.New("pricing: guest count must be positive")
	ErrNoItems       = errors.New("pricing: at least one unit must be selected")
)

// DefaultCurrency seeds accumulators when the calculator is not configured
// with an explicit one.
const DefaultCurrency = "PHP"

// QuoteItem selects one unit for a stay. RateID may be empty, in which case
// the catalog's active rate for the booking mode is used.
type QuoteItem struct {
	UnitID catalog.UnitID
	RateID catalog.RateID
	Guests int
}

// QuoteParams are the inputs of a price computation.
type QuoteParams struct {
	Mode     catalog.BookingMode
	Stay     daterange.Stay
	Items    []QuoteItem
	Adults   int
	Children int
}

// Line is the priced result for one selected unit. UnitRate and
// AdditionalRate are snapshots of the rate record at quote time; later
// catalog edits must not change a stored booking.
type Line struct {
	UnitID           catalog.UnitID `json:"unit_id" bson:"unit_id"`
	RateID           catalog.RateID `json:"rate_id" bson:"rate_id"`
	Guests           int            `json:"guests" bson:"guests"`
	UnitRate         money.Money    `json:"unit_rate" bson:"unit_rate"`
	AdditionalGuests int            `json:"additional_guests" bson:"additional_guests"`
	AdditionalCharge money.Money    `json:"additional_charge" bson:"additional_charge"`
	Subtotal         money.Money    `json:"subtotal" bson:"subtotal"`
	FreeEntrances    int            `json:"free_entrances" bson:"free_entrances"`
}

// FeeClass distinguishes entrance fee charges by age class.
type FeeClass string

const (
	FeeAdult FeeClass = "adult"
	FeeChild FeeClass = "child"
)

// EntranceFee is one aggregated entrance charge.
type EntranceFee struct {
	Class    FeeClass    `json:"class" bson:"class"`
	Quantity int         `json:"quantity" bson:"quantity"`
	Rate     money.Money `json:"rate" bson:"rate"`
	Subtotal money.Money `json:"subtotal" bson:"subtotal"`
}

// Breakdown is the fully itemized result of a quote. It is a pure value:
// quoting twice with identical inputs yields identical breakdowns.
type Breakdown struct {
	Mode               catalog.BookingMode `json:"mode" bson:"mode"`
	Nights             int                 `json:"nights" bson:"nights"`
	Lines              []Line              `json:"lines" bson:"lines"`
	EntranceFees       []EntranceFee       `json:"entrance_fees" bson:"entrance_fees"`
	FreeEntrances      int                 `json:"free_entrances" bson:"free_entrances"`
	AccommodationTotal money.Money         `json:"accommodation_total" bson:"accommodation_total"`
	EntranceFeeTotal   money.Money         `json:"entrance_fee_total" bson:"entrance_fee_total"`
	Total              money.Money         `json:"total" bson:"total"`
}

// Copy deep-copies the breakdown so aggregates never share line slices.
func (b Breakdown) Copy() Breakdown {
	clone := b
	clone.Lines = append([]Line(nil), b.Lines...)
	clone.EntranceFees = append([]EntranceFee(nil), b.EntranceFees...)
	return clone
}

// EntranceFeePolicy picks the rate record whose entrance fees price the whole
// stay. The historical behavior uses the first selected item's rate even when
// units carry different schedules; keeping the choice behind a named policy
// lets that change without touching the calculator.
type EntranceFeePolicy func(rates []*catalog.RateRecord) *catalog.RateRecord

// FirstSelectedRate is the default entrance fee policy.
func FirstSelectedRate(rates []*catalog.RateRecord) *catalog.RateRecord {
	if len(rates) == 0 {
		return nil
	}
	return rates[0]
}

// Calculator prices stays against the rate catalog.
type Calculator struct {
	Catalog      catalog.Repository
	EntranceFees EntranceFeePolicy
	Currency     string
}

// NewCalculator builds a calculator with the default entrance fee policy.
func NewCalculator(cat catalog.Repository) *Calculator {
	return &Calculator{Catalog: cat, EntranceFees: FirstSelectedRate, Currency: DefaultCurrency}
}

// Quote computes the monetary breakdown of a stay. A missing unit or rate
// aborts the whole quote; nullable rate fields default to zero instead.
func (c *Calculator) Quote(ctx context.Context, params QuoteParams) (Breakdown, error) {
	if len(params.Items) == 0 {
		return Breakdown{}, ErrNoItems
	}

	nights := 1
	if params.Mode == catalog.ModeOvernight {
		if n := params.Stay.Nights(); n > 1 {
			nights = n
		}
	}

	currency := c.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	accommodation := money.Zero(currency)
	freePool := 0

	lines := make([]Line, 0, len(params.Items))
	rates := make([]*catalog.RateRecord, 0, len(params.Items))
	for _, item := range params.Items {
		if item.Guests <= 0 {
			return Breakdown{}, ErrInvalidGuests
		}
		unit, err := c.Catalog.UnitByID(ctx, item.UnitID)
		if err != nil {
			return Breakdown{}, err
		}
		rate, err := c.resolveRate(ctx, item, params.Mode)
		if err != nil {
			return Breakdown{}, err
		}
		rates = append(rates, rate)

		base := rate.BaseRate
		if params.Mode == catalog.ModeOvernight {
			base = base.Multiply(int64(nights))
		}

		additionalGuests := 0
		additionalCharge := money.Zero(base.Currency)
		if unit.MinCapacity != nil {
			if extra := item.Guests - *unit.MinCapacity; extra > 0 {
				additionalGuests = extra
			}
			if rate.AdditionalOccupantRate != nil {
				perHead := *rate.AdditionalOccupantRate
				if params.Mode == catalog.ModeOvernight {
					perHead = perHead.Multiply(int64(nights))
				}
				additionalCharge = perHead.Multiply(int64(additionalGuests))
			}
		}

		subtotal, err := base.Add(additionalCharge)
		if err != nil {
			return Breakdown{}, err
		}

		free := 0
		if rate.IncludesFreeEntrance {
			free = min(item.Guests, unit.IncludedPax())
		}
		freePool += free

		lines = append(lines, Line{
			UnitID:           item.UnitID,
			RateID:           rate.ID,
			Guests:           item.Guests,
			UnitRate:         rate.BaseRate,
			AdditionalGuests: additionalGuests,
			AdditionalCharge: additionalCharge,
			Subtotal:         subtotal,
			FreeEntrances:    free,
		})
		if accommodation, err = accommodation.Add(subtotal); err != nil {
			return Breakdown{}, err
		}
	}

	adultsNeeding := params.Adults - freePool
	if adultsNeeding < 0 {
		adultsNeeding = 0
	}
	// Children never draw from the free-entrance pool.
	childrenNeeding := params.Children

	fees, feeTotal, err := c.entranceFees(rates, adultsNeeding, childrenNeeding, currency)
	if err != nil {
		return Breakdown{}, err
	}

	total, err := accommodation.Add(feeTotal)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Mode:               params.Mode,
		Nights:             nights,
		Lines:              lines,
		EntranceFees:       fees,
		FreeEntrances:      freePool,
		AccommodationTotal: accommodation,
		EntranceFeeTotal:   feeTotal,
		Total:              total,
	}, nil
}

func (c *Calculator) resolveRate(ctx context.Context, item QuoteItem, mode catalog.BookingMode) (*catalog.RateRecord, error) {
	if item.RateID == "" {
		return c.Catalog.ActiveRate(ctx, item.UnitID, mode)
	}
	rate, err := c.Catalog.RateByID(ctx, item.RateID)
	if err != nil {
		return nil, err
	}
	if rate.UnitID != item.UnitID {
		return nil, catalog.ErrRateNotFound
	}
	return rate, nil
}

func (c *Calculator) entranceFees(rates []*catalog.RateRecord, adults, children int, currency string) ([]EntranceFee, money.Money, error) {
	total := money.Zero(currency)
	policy := c.EntranceFees
	if policy == nil {
		policy = FirstSelectedRate
	}
	feeRate := policy(rates)
	if feeRate == nil {
		return nil, total, nil
	}

	fees := make([]EntranceFee, 0, 2)
	appendFee := func(class FeeClass, qty int, rate *money.Money) error {
		if qty <= 0 || rate == nil {
			return nil
		}
		subtotal := rate.Multiply(int64(qty))
		fees = append(fees, EntranceFee{Class: class, Quantity: qty, Rate: *rate, Subtotal: subtotal})
		var err error
		total, err = total.Add(subtotal)
		return err
	}
	if err := appendFee(FeeAdult, adults, feeRate.AdultEntranceFee); err != nil {
		return nil, money.Money{}, err
	}
	if err := appendFee(FeeChild, children, feeRate.ChildEntranceFee); err != nil {
		return nil, money.Money{}, err
	}
	return fees, total, nil
}
