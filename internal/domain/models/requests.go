// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package models

// CreateRehearsalRequest is the payload for creating a rehearsal, either a
// standalone occurrence or a recurring series.
type CreateRehearsalRequest struct {
	Date        string          `json:"date"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	Title       string          `json:"title"`
	IsRecurring bool            `json:"is_recurring"`
	Rule        *RecurrenceRule `json:"recurrence,omitempty"`
}

// RehearsalPatch is a partial update of an occurrence's fields. Nil fields
// are left unchanged. Date changes are only valid for single-occurrence
// updates; series-wide updates never move dates.
type RehearsalPatch struct {
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Title     *string `json:"title,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *RehearsalPatch) IsEmpty() bool {
	return p == nil || (p.Date == nil && p.StartTime == nil && p.EndTime == nil && p.Title == nil)
}

// ResponsePatch is a partial update of a member's attendance response.
type ResponsePatch struct {
	Attending *bool   `json:"attending,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}
