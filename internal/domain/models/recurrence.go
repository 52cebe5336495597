// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for rehearsal dates. Dates are
// calendar days without a time zone; comparisons are done on the UTC day.
const DateLayout = "2006-01-02"

// TimeLayout is the wire and storage format for rehearsal start/end times.
const TimeLayout = "15:04"

// Weekday is the day of the week a recurring rehearsal falls on.
type Weekday string

// Recognized weekdays.
const (
	WeekdayMonday    Weekday = "monday"
	WeekdayTuesday   Weekday = "tuesday"
	WeekdayWednesday Weekday = "wednesday"
	WeekdayThursday  Weekday = "thursday"
	WeekdayFriday    Weekday = "friday"
	WeekdaySaturday  Weekday = "saturday"
	WeekdaySunday    Weekday = "sunday"
)

var weekdayValues = map[Weekday]time.Weekday{
	WeekdayMonday:    time.Monday,
	WeekdayTuesday:   time.Tuesday,
	WeekdayWednesday: time.Wednesday,
	WeekdayThursday:  time.Thursday,
	WeekdayFriday:    time.Friday,
	WeekdaySaturday:  time.Saturday,
	WeekdaySunday:    time.Sunday,
}

// TimeWeekday converts the weekday to Go's time.Weekday.
func (w Weekday) TimeWeekday() (time.Weekday, error) {
	wd, ok := weekdayValues[w]
	if !ok {
		return 0, fmt.Errorf("unrecognized day of week %q", string(w))
	}
	return wd, nil
}

// Frequency is how often a recurring rehearsal repeats.
type Frequency string

// Recognized frequencies.
const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
)

// IntervalWeeks returns the number of weeks between occurrences.
func (f Frequency) IntervalWeeks() (int, error) {
	switch f {
	case FrequencyWeekly:
		return 1, nil
	case FrequencyBiweekly:
		return 2, nil
	}
	return 0, fmt.Errorf("unrecognized frequency %q", string(f))
}

// RecurrenceRule describes a recurring rehearsal series. The rule is
// immutable once the series has been created; together with the series UID
// it identifies the series.
type RecurrenceRule struct {
	DayOfWeek      Weekday   `json:"day_of_week"`
	Frequency      Frequency `json:"frequency"`
	AnchorDate     string    `json:"anchor_date"`
	DurationMonths int       `json:"duration_months"`
}

// Validate checks that all rule fields hold recognized values.
func (r *RecurrenceRule) Validate() error {
	if _, err := r.DayOfWeek.TimeWeekday(); err != nil {
		return err
	}
	if _, err := r.Frequency.IntervalWeeks(); err != nil {
		return err
	}
	if _, err := ParseDate(r.AnchorDate); err != nil {
		return fmt.Errorf("invalid anchor date: %w", err)
	}
	if r.DurationMonths < 1 {
		return fmt.Errorf("duration must be at least one month, got %d", r.DurationMonths)
	}
	return nil
}

// Anchor returns the anchor date as a UTC day.
func (r *RecurrenceRule) Anchor() (time.Time, error) {
	return ParseDate(r.AnchorDate)
}

// ParseDate parses a YYYY-MM-DD date string into a UTC day.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// FormatDate formats a time as a YYYY-MM-DD date string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
