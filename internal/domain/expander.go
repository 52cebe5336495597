// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package domain

import (
	"time"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// RecurrenceExpander computes the concrete dates a recurrence rule implies.
type RecurrenceExpander interface {
	// Expand returns the ordered dates of the series as UTC days: the first
	// date is the first day on or after the anchor that falls on the rule's
	// weekday, subsequent dates step by the rule's frequency, and the last
	// date is on or before anchor + duration (calendar month arithmetic,
	// clipped to the target month's last day). An unsatisfiable rule yields
	// an empty slice; it never fails. Callers on create paths treat an empty
	// expansion as a validation error.
	Expand(rule models.RecurrenceRule) []time.Time

	// SeriesEndDate returns the last day the rule covers, or the zero time
	// if the rule's anchor date is invalid.
	SeriesEndDate(rule models.RecurrenceRule) time.Time
}
