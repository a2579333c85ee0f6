package dto

import (
	"sort"

	"seabreeze/internal/domain/availability"
)

type MonthOverview struct {
	Year  int                                `json:"year"`
	Month int                                `json:"month"`
	Days  map[string]availability.DaySummary `json:"days"`
}

type DayView struct {
	Date  string                 `json:"date"`
	Units []availability.UnitDay `json:"units"`
}

// SortedDates returns the overview's keys in calendar order, for callers
// that need deterministic iteration.
func (m MonthOverview) SortedDates() []string {
	keys := make([]string, 0, len(m.Days))
	for key := range m.Days {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
