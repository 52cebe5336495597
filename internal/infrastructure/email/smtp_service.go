// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/logging"
)

// SMTPService implements the EmailService interface using SMTP
type SMTPService struct {
	config       SMTPConfig
	templates    SummaryTemplateManager
	icsGenerator ScheduleICSGenerator
}

// SMTPConfig holds the SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string // Optional for authenticated SMTP
	Password string // Optional for authenticated SMTP
}

// NewSMTPService creates a new SMTP email service
func NewSMTPService(config SMTPConfig) (*SMTPService, error) {
	templates, err := NewTemplateManager()
	if err != nil {
		return nil, err
	}

	return &SMTPService{
		config:       config,
		templates:    templates,
		icsGenerator: NewICSGenerator(),
	}, nil
}

// SendRehearsalSummary renders and mails the band's upcoming schedule to
// every recipient, with the schedule attached as an ICS calendar. Each
// recipient gets their own message; one bad address does not stop the rest.
func (s *SMTPService) SendRehearsalSummary(ctx context.Context, summary domain.EmailSummary) error {
	ctx = logging.AppendCtx(ctx, slog.String("band_uid", summary.BandUID))

	rendered, err := s.templates.RenderRehearsalSummary(BuildSummaryData(summary))
	if err != nil {
		slog.ErrorContext(ctx, "failed to render summary templates", logging.ErrKey, err)
		return err
	}

	icsContent, err := s.icsGenerator.GenerateScheduleICS(summary.BandName, summary.Occurrences)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate schedule calendar", logging.ErrKey, err)
		return err
	}

	subject := fmt.Sprintf("Rehearsal schedule: %s", summary.BandName)

	var sendErrors []error
	for _, recipient := range summary.Recipients {
		message := buildEmailMessage(recipient.Email, subject, rendered.HTML, rendered.Text, icsContent, s.config)
		if err := sendEmailMessage(recipient.Email, message, s.config); err != nil {
			slog.ErrorContext(ctx, "failed to send summary email",
				logging.ErrKey, err, "recipient_email", recipient.Email)
			sendErrors = append(sendErrors, err)
			continue
		}
		slog.DebugContext(ctx, "summary email sent", "recipient_email", recipient.Email)
	}

	if len(sendErrors) == len(summary.Recipients) && len(sendErrors) > 0 {
		return fmt.Errorf("failed to send summary to any recipient: %w", errors.Join(sendErrors...))
	}

	return nil
}

// Compile-time interface check
var _ domain.EmailService = (*SMTPService)(nil)
