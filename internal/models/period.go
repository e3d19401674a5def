package models

import (
	"fmt"
	"sort"
)

// Period is one concrete weekly meeting instance: day in [0, daysPerWeek),
// slot in [0, periodsPerDay).
type Period struct {
	Day  int `json:"day"`
	Slot int `json:"slot"`
}

// Key returns the canonical "day-slot" form used by all occupancy tables.
func (p Period) Key() string {
	return fmt.Sprintf("%d-%d", p.Day, p.Slot)
}

// WeekAtSlot expands a single slot choice into one period per weekday.
func WeekAtSlot(daysPerWeek, slot int) []Period {
	periods := make([]Period, 0, daysPerWeek)
	for day := 0; day < daysPerWeek; day++ {
		periods = append(periods, Period{Day: day, Slot: slot})
	}
	return periods
}

// SortPeriods orders periods by day then slot, in place.
func SortPeriods(periods []Period) {
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Day == periods[j].Day {
			return periods[i].Slot < periods[j].Slot
		}
		return periods[i].Day < periods[j].Day
	})
}

// PeriodSet is a plain membership set over period keys.
type PeriodSet map[string]struct{}

// NewPeriodSet builds a set seeded with the given periods.
func NewPeriodSet(periods ...Period) PeriodSet {
	set := make(PeriodSet, len(periods))
	for _, p := range periods {
		set.Add(p)
	}
	return set
}

// Add inserts the period.
func (s PeriodSet) Add(p Period) {
	s[p.Key()] = struct{}{}
}

// Remove deletes the period.
func (s PeriodSet) Remove(p Period) {
	delete(s, p.Key())
}

// Contains reports membership.
func (s PeriodSet) Contains(p Period) bool {
	_, ok := s[p.Key()]
	return ok
}

// ContainsAny reports whether any of the given periods is present.
func (s PeriodSet) ContainsAny(periods []Period) bool {
	for _, p := range periods {
		if s.Contains(p) {
			return true
		}
	}
	return false
}

// AddAll inserts every period of the slice.
func (s PeriodSet) AddAll(periods []Period) {
	for _, p := range periods {
		s.Add(p)
	}
}

// RemoveAll deletes every period of the slice.
func (s PeriodSet) RemoveAll(periods []Period) {
	for _, p := range periods {
		s.Remove(p)
	}
}
