// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package models

import "time"

// RehearsalOccurrence is one concrete dated rehearsal for a band. Occurrences
// created from a recurrence rule share a SeriesUID and each carry a copy of
// the rule so the series can be re-expanded without a separate rule record.
type RehearsalOccurrence struct {
	UID       string          `json:"uid"`
	BandUID   string          `json:"band_uid"`
	Date      string          `json:"date"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Title     string          `json:"title"`
	SeriesUID string          `json:"series_uid,omitempty"`
	Rule      *RecurrenceRule `json:"recurrence,omitempty"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// IsRecurring reports whether the occurrence belongs to a recurring series.
func (o *RehearsalOccurrence) IsRecurring() bool {
	return o.SeriesUID != ""
}

// DateValue returns the occurrence date as a UTC day.
func (o *RehearsalOccurrence) DateValue() (time.Time, error) {
	return ParseDate(o.Date)
}

// Tags returns tag values for activity messages about the occurrence.
func (o *RehearsalOccurrence) Tags() []string {
	var tags []string
	if o.UID != "" {
		tags = append(tags, o.UID, "rehearsal_uid:"+o.UID)
	}
	if o.BandUID != "" {
		tags = append(tags, "band_uid:"+o.BandUID)
	}
	if o.SeriesUID != "" {
		tags = append(tags, "series_uid:"+o.SeriesUID)
	}
	return tags
}
