// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"log/slog"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/logging"
)

// NoOpService is a no-operation email service that logs but doesn't send emails
type NoOpService struct{}

// NewNoOpService creates a new no-op email service
func NewNoOpService() *NoOpService {
	return &NoOpService{}
}

// SendRehearsalSummary logs the summary but doesn't send an email
func (s *NoOpService) SendRehearsalSummary(ctx context.Context, summary domain.EmailSummary) error {
	ctx = logging.AppendCtx(ctx, slog.String("band_uid", summary.BandUID))

	slog.DebugContext(ctx, "email service disabled, skipping rehearsal summary email",
		"recipients", len(summary.Recipients))
	return nil
}

// Compile-time interface check
var _ domain.EmailService = (*NoOpService)(nil)
