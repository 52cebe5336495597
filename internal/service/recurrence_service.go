// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// RecurrenceService implements the domain.RecurrenceExpander interface.
// Expansion is a pure function of the rule: the same rule always yields the
// same dates, so series can be re-expanded at any time to repair gaps.
type RecurrenceService struct{}

// NewRecurrenceService creates a new RecurrenceService
func NewRecurrenceService() *RecurrenceService {
	return &RecurrenceService{}
}

// Expand returns the ordered occurrence dates the rule implies.
// An unsatisfiable or malformed rule yields an empty slice.
func (s *RecurrenceService) Expand(rule models.RecurrenceRule) []time.Time {
	anchor, err := rule.Anchor()
	if err != nil {
		return nil
	}
	weekday, err := rule.DayOfWeek.TimeWeekday()
	if err != nil {
		return nil
	}
	interval, err := rule.Frequency.IntervalWeeks()
	if err != nil {
		return nil
	}
	if rule.DurationMonths < 1 {
		return nil
	}

	// First date on or after the anchor that falls on the rule's weekday.
	// A zero offset means the anchor itself is the first occurrence.
	offset := (int(weekday) - int(anchor.Weekday()) + 7) % 7
	first := anchor.AddDate(0, 0, offset)

	end := s.SeriesEndDate(rule)
	if first.After(end) {
		return nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.WEEKLY,
		Interval: interval,
		Dtstart:  first,
		Until:    end,
	})
	if err != nil {
		return nil
	}

	return r.All()
}

// SeriesEndDate returns the last day the rule covers: the anchor date plus
// the rule's duration in calendar months, clipped to the last day of the
// target month when the anchor's day of month does not exist there.
func (s *RecurrenceService) SeriesEndDate(rule models.RecurrenceRule) time.Time {
	anchor, err := rule.Anchor()
	if err != nil {
		return time.Time{}
	}
	return addMonthsClipped(anchor, rule.DurationMonths)
}

// addMonthsClipped adds calendar months keeping the day of month, clipping
// to the target month's last day (e.g. Jan 31 + 1 month is Feb 28/29).
// Plain AddDate would normalize Feb 31 into early March instead.
func addMonthsClipped(t time.Time, months int) time.Time {
	year := t.Year()
	month := int(t.Month()) + months
	for month > 12 {
		year++
		month -= 12
	}

	day := t.Day()
	lastDayOfMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDayOfMonth {
		day = lastDayOfMonth
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// Compile-time interface check
var _ domain.RecurrenceExpander = (*RecurrenceService)(nil)
