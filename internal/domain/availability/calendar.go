package availability

import (
	"context"
	"time"

	"seabreeze/internal/domain/catalog"
)

// DayStatus labels a calendar day's occupancy at a glance.
type DayStatus string

const (
	DayFull      DayStatus = "full"
	DayPartial   DayStatus = "partial"
	DayAvailable DayStatus = "available"
)

// DaySummary aggregates unit occupancy for one calendar day.
type DaySummary struct {
	Date      time.Time `json:"date"`
	Total     int       `json:"total"`
	Available int       `json:"available"`
	Booked    int       `json:"booked"`
	Status    DayStatus `json:"status"`
}

// UnitDay is one unit's availability on a specific day, split by mode. A unit
// counts as free only when neither mode conflicts: one physical unit, two
// pricing schedules, never double-booked.
type UnitDay struct {
	Unit          *catalog.Unit `json:"unit"`
	DayUseFree    bool          `json:"day_use_free"`
	OvernightFree bool          `json:"overnight_free"`
	Available     bool          `json:"available"`
}

// DateKey formats map keys for month overviews.
const DateKey = "2006-01-02"

// CalendarStrategy produces month and day occupancy views. The brute-force
// scan below satisfies the contract at current scale; a caching layer can
// wrap or replace it without the callers noticing.
type CalendarStrategy interface {
	MonthOverview(ctx context.Context, year int, month time.Month) (map[string]DaySummary, error)
	DayView(ctx context.Context, day time.Time) ([]UnitDay, error)
}

// Scanner is the default CalendarStrategy: an O(days x units) walk over the
// availability checker.
type Scanner struct {
	Catalog catalog.Repository
	Checker *Checker
}

func (s *Scanner) MonthOverview(ctx context.Context, year int, month time.Month) (map[string]DaySummary, error) {
	units, err := s.Catalog.ListActiveUnits(ctx)
	if err != nil {
		return nil, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	overview := make(map[string]DaySummary)
	for day := first; day.Month() == month; day = day.AddDate(0, 0, 1) {
		available := 0
		for _, unit := range units {
			free, err := s.unitFree(ctx, unit.ID, day)
			if err != nil {
				return nil, err
			}
			if free {
				available++
			}
		}
		overview[day.Format(DateKey)] = summarize(day, len(units), available)
	}
	return overview, nil
}

func (s *Scanner) DayView(ctx context.Context, day time.Time) ([]UnitDay, error) {
	units, err := s.Catalog.ListActiveUnits(ctx)
	if err != nil {
		return nil, err
	}
	view := make([]UnitDay, 0, len(units))
	for _, unit := range units {
		dayUse, err := s.Checker.AvailableOn(ctx, unit.ID, catalog.ModeDayUse, day)
		if err != nil {
			return nil, err
		}
		overnight, err := s.Checker.AvailableOn(ctx, unit.ID, catalog.ModeOvernight, day)
		if err != nil {
			return nil, err
		}
		view = append(view, UnitDay{
			Unit:          unit,
			DayUseFree:    dayUse,
			OvernightFree: overnight,
			Available:     dayUse && overnight,
		})
	}
	return view, nil
}

func (s *Scanner) unitFree(ctx context.Context, unit catalog.UnitID, day time.Time) (bool, error) {
	dayUse, err := s.Checker.AvailableOn(ctx, unit, catalog.ModeDayUse, day)
	if err != nil || !dayUse {
		return false, err
	}
	overnight, err := s.Checker.AvailableOn(ctx, unit, catalog.ModeOvernight, day)
	if err != nil || !overnight {
		return false, err
	}
	return true, nil
}

func summarize(day time.Time, total, available int) DaySummary {
	status := DayPartial
	switch {
	case available == 0:
		status = DayFull
	case available == total:
		status = DayAvailable
	}
	return DaySummary{
		Date:      day,
		Total:     total,
		Available: available,
		Booked:    total - available,
		Status:    status,
	}
}

var _ CalendarStrategy = (*Scanner)(nil)
