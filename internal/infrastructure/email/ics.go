// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package email

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// ICSProdID identifies this service in generated calendar files.
const ICSProdID = "-//Bandroom//Rehearsal Service//EN"

// ScheduleICSGenerator is the interface for generating ICS calendar files
type ScheduleICSGenerator interface {
	GenerateScheduleICS(bandName string, occurrences []*models.RehearsalOccurrence) (string, error)
}

// ICSGenerator generates ICS (iCalendar) files for rehearsal schedules
type ICSGenerator struct{}

// NewICSGenerator creates a new ICS generator
func NewICSGenerator() *ICSGenerator {
	return &ICSGenerator{}
}

// Ensure [ICSGenerator] implements [ScheduleICSGenerator]
var _ ScheduleICSGenerator = (*ICSGenerator)(nil)

// GenerateScheduleICS serializes the band's upcoming rehearsals as an
// iCalendar document. Rehearsals without times become all-day events.
func (g *ICSGenerator) GenerateScheduleICS(bandName string, occurrences []*models.RehearsalOccurrence) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ICSProdID)

	now := time.Now().UTC()
	for _, occurrence := range occurrences {
		day, err := models.ParseDate(occurrence.Date)
		if err != nil {
			return "", fmt.Errorf("occurrence '%s' has invalid date %q: %w", occurrence.UID, occurrence.Date, err)
		}

		event := cal.AddEvent(occurrence.UID + "@bandroom")
		event.SetDtStampTime(now)

		summary := occurrence.Title
		if summary == "" {
			summary = fmt.Sprintf("%s rehearsal", bandName)
		}
		event.SetSummary(summary)

		start, startErr := combineDateTime(day, occurrence.StartTime)
		end, endErr := combineDateTime(day, occurrence.EndTime)
		switch {
		case startErr == nil && endErr == nil:
			event.SetStartAt(start)
			event.SetEndAt(end)
		case startErr == nil:
			event.SetStartAt(start)
			event.SetEndAt(start.Add(2 * time.Hour))
		default:
			event.SetAllDayStartAt(day)
			event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}
	}

	return cal.Serialize(), nil
}

// combineDateTime merges a date with an HH:MM wall clock value.
func combineDateTime(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(models.TimeLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
