// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// SummaryEmailRecipient is one addressee of the rehearsal summary email.
type SummaryEmailRecipient struct {
	Email string
	Name  string
}

// EmailSummary is everything needed to render and send the weekly rehearsal
// summary for a band: the upcoming occurrences and every member's answers.
type EmailSummary struct {
	BandUID     string
	BandName    string
	Recipients  []SummaryEmailRecipient
	Occurrences []*models.RehearsalOccurrence
	Responses   []*models.Response
	// MemberNames maps user UIDs to display names for the summary table.
	MemberNames map[string]string
}

// EmailService sends rehearsal emails.
type EmailService interface {
	// SendRehearsalSummary sends the upcoming-rehearsals summary to all
	// recipients, with the band's schedule attached as an ICS calendar.
	SendRehearsalSummary(ctx context.Context, summary EmailSummary) error
}
