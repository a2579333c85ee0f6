package availability

import (
	"context"
	"time"

	"seabreeze/internal/app/dto"
	"seabreeze/internal/app/queries"
	domainavailability "seabreeze/internal/domain/availability"
	"seabreeze/internal/domain/shared/daterange"
)

const (
	monthOverviewKey = "availability.month_overview"
	dayViewKey       = "availability.day_view"
)

// MonthOverviewQuery returns the per-day occupancy summary of one month.
type MonthOverviewQuery struct {
	Year  int
	Month int
}

func (q MonthOverviewQuery) Key() string { return monthOverviewKey }

// MonthOverviewHandler serves the calendar through whichever strategy was
// wired at startup, so a cached strategy swaps in without touching callers.
type MonthOverviewHandler struct {
	Strategy domainavailability.CalendarStrategy
}

func (h *MonthOverviewHandler) Handle(ctx context.Context, q MonthOverviewQuery) (dto.MonthOverview, error) {
	days, err := h.Strategy.MonthOverview(ctx, q.Year, time.Month(q.Month))
	if err != nil {
		return dto.MonthOverview{}, err
	}
	return dto.MonthOverview{Year: q.Year, Month: q.Month, Days: days}, nil
}

var _ queries.Handler[MonthOverviewQuery, dto.MonthOverview] = (*MonthOverviewHandler)(nil)

// DayViewQuery returns the per-unit availability of a single day.
type DayViewQuery struct {
	Date time.Time
}

func (q DayViewQuery) Key() string { return dayViewKey }

type DayViewHandler struct {
	Strategy domainavailability.CalendarStrategy
}

func (h *DayViewHandler) Handle(ctx context.Context, q DayViewQuery) (dto.DayView, error) {
	day := daterange.Day(q.Date)
	units, err := h.Strategy.DayView(ctx, day)
	if err != nil {
		return dto.DayView{}, err
	}
	return dto.DayView{Date: day.Format(domainavailability.DateKey), Units: units}, nil
}

var _ queries.Handler[DayViewQuery, dto.DayView] = (*DayViewHandler)(nil)
