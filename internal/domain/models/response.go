// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package models

import "time"

// Response is one member's attendance answer for one rehearsal occurrence.
// Exactly one response exists per (user, occurrence) pair for every current
// band member and every occurrence that has not been pruned.
type Response struct {
	UID           string     `json:"uid"`
	BandUID       string     `json:"band_uid"`
	OccurrenceUID string     `json:"occurrence_uid"`
	UserUID       string     `json:"user_uid"`
	Attending     bool       `json:"attending"`
	Comment       string     `json:"comment,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// AttendingLabel returns the user-facing answer for the response.
// The product vocabulary is Swedish: "Ja" attends, "Nej" does not.
func (r *Response) AttendingLabel() string {
	if r.Attending {
		return "Ja"
	}
	return "Nej"
}
