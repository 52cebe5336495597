// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
	"github.com/bandroom/rehearsal-service/internal/logging"
)

// SchedulingService is the authorization boundary in front of the rehearsal
// and response services. Every exposed operation takes the caller's
// principal and checks band membership before touching data. Membership is
// also the visibility boundary: a caller outside the band gets not-found,
// never forbidden, so band existence is not leaked.
type SchedulingService struct {
	BandReader   domain.BandReader
	Rehearsals   *RehearsalService
	Responses    *ResponseSyncService
	EmailService domain.EmailService
	Config       ServiceConfig
}

// NewSchedulingService creates a new SchedulingService.
func NewSchedulingService(
	bandReader domain.BandReader,
	rehearsals *RehearsalService,
	responses *ResponseSyncService,
	emailService domain.EmailService,
	config ServiceConfig,
) *SchedulingService {
	return &SchedulingService{
		BandReader:   bandReader,
		Rehearsals:   rehearsals,
		Responses:    responses,
		EmailService: emailService,
		Config:       config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *SchedulingService) ServiceReady() bool {
	return s.BandReader != nil &&
		s.Rehearsals != nil &&
		s.Responses != nil &&
		s.EmailService != nil
}

// requireMember loads the band and verifies the principal belongs to it.
// A missing band and a non-member caller are indistinguishable to the
// caller.
func (s *SchedulingService) requireMember(ctx context.Context, principal, bandUID string) (*models.Band, error) {
	band, err := s.BandReader.Get(ctx, bandUID)
	if err != nil {
		return nil, err
	}
	if !band.IsMember(principal) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("band '%s' not found", bandUID))
	}
	return band, nil
}

// requireAdmin verifies the principal is an admin of the band. A member
// without the admin role gets forbidden; a non-member gets not-found.
func (s *SchedulingService) requireAdmin(ctx context.Context, principal, bandUID string) (*models.Band, error) {
	band, err := s.requireMember(ctx, principal, bandUID)
	if err != nil {
		return nil, err
	}
	if !band.IsAdmin(principal) {
		return nil, domain.NewForbiddenError("band admin role required")
	}
	return band, nil
}

// occurrenceBand resolves an occurrence and checks the principal against its
// band. An occurrence the principal cannot see reads as not-found.
func (s *SchedulingService) occurrenceBand(ctx context.Context, principal, occurrenceUID string) (*models.RehearsalOccurrence, *models.Band, error) {
	occurrence, err := s.Rehearsals.GetRehearsal(ctx, occurrenceUID)
	if err != nil {
		return nil, nil, err
	}
	band, err := s.requireMember(ctx, principal, occurrence.BandUID)
	if err != nil {
		return nil, nil, err
	}
	return occurrence, band, nil
}

// CreateRehearsal schedules a rehearsal or a recurring series. Admin only.
func (s *SchedulingService) CreateRehearsal(ctx context.Context, principal, bandUID string, req *models.CreateRehearsalRequest) ([]*models.RehearsalOccurrence, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("scheduling service not ready")
	}
	if _, err := s.requireAdmin(ctx, principal, bandUID); err != nil {
		return nil, err
	}
	return s.Rehearsals.CreateRehearsal(ctx, bandUID, req)
}

// ListRehearsals returns the band's upcoming schedule. Any member.
func (s *SchedulingService) ListRehearsals(ctx context.Context, principal, bandUID string) ([]*models.RehearsalOccurrence, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("scheduling service not ready")
	}
	if _, err := s.requireMember(ctx, principal, bandUID); err != nil {
		return nil, err
	}
	return s.Rehearsals.ListRehearsals(ctx, bandUID)
}

// GetRehearsal returns one occurrence. Any member of its band.
func (s *SchedulingService) GetRehearsal(ctx context.Context, principal, occurrenceUID string) (*models.RehearsalOccurrence, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("scheduling service not ready")
	}
	occurrence, _, err := s.occurrenceBand(ctx, principal, occurrenceUID)
	if err != nil {
		return nil, err
	}
	return occurrence, nil
}

// UpdateRehearsal patches an occurrence or its whole series. Admin only.
func (s *SchedulingService) UpdateRehearsal(ctx context.Context, principal, occurrenceUID string, patch *models.RehearsalPatch, updateAllRecurring bool) (int, error) {
	if !s.ServiceReady() {
		return 0, domain.NewUnavailableError("scheduling service not ready")
	}
	occurrence, band, err := s.occurrenceBand(ctx, principal, occurrenceUID)
	if err != nil {
		return 0, err
	}
	if !band.IsAdmin(principal) {
		return 0, domain.NewForbiddenError("band admin role required")
	}
	return s.Rehearsals.UpdateRehearsal(ctx, occurrence.UID, patch, updateAllRecurring)
}

// DeleteRehearsal removes an occurrence or its whole series. Admin only.
func (s *SchedulingService) DeleteRehearsal(ctx context.Context, principal, occurrenceUID string, deleteAllRecurring bool) (int, error) {
	if !s.ServiceReady() {
		return 0, domain.NewUnavailableError("scheduling service not ready")
	}
	occurrence, band, err := s.occurrenceBand(ctx, principal, occurrenceUID)
	if err != nil {
		return 0, err
	}
	if !band.IsAdmin(principal) {
		return 0, domain.NewForbiddenError("band admin role required")
	}
	return s.Rehearsals.DeleteRehearsal(ctx, occurrence.UID, deleteAllRecurring)
}

// AutoManage runs the rolling-window pass for a band. Any member; clients
// call it on login.
func (s *SchedulingService) AutoManage(ctx context.Context, principal, bandUID string) (*models.AutoManageSummary, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("scheduling service not ready")
	}
	if _, err := s.requireMember(ctx, principal, bandUID); err != nil {
		return nil, err
	}
	return s.Rehearsals.AutoManage(ctx, bandUID)
}

// ReconcileResponses re-synchronizes the band's response set. Any member.
func (s *SchedulingService) ReconcileResponses(ctx context.Context, principal, bandUID string) (*models.ReconcileSummary, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("scheduling service not ready")
	}
	if _, err := s.requireMember(ctx, principal, bandUID); err != nil {
		return nil, err
	}
	return s.Responses.Reconcile(ctx, bandUID)
}

// ListResponses returns the band's responses. Any member.
func (s *SchedulingService) ListResponses(ctx context.Context, principal, bandUID string) ([]*models.Response, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("scheduling service not ready")
	}
	if _, err := s.requireMember(ctx, principal, bandUID); err != nil {
		return nil, err
	}
	return s.Responses.ListByBand(ctx, bandUID)
}

// ListOccurrenceResponses returns responses for one occurrence. Any member
// of its band.
func (s *SchedulingService) ListOccurrenceResponses(ctx context.Context, principal, occurrenceUID string) ([]*models.Response, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("scheduling service not ready")
	}
	occurrence, _, err := s.occurrenceBand(ctx, principal, occurrenceUID)
	if err != nil {
		return nil, err
	}
	return s.Responses.ListByOccurrence(ctx, occurrence.UID)
}

// UpdateResponse records an attendance answer. Members can update their own
// response; band admins can update anyone's.
func (s *SchedulingService) UpdateResponse(ctx context.Context, principal, responseUID string, patch *models.ResponsePatch) (*models.Response, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("scheduling service not ready")
	}

	response, err := s.Responses.GetResponse(ctx, responseUID)
	if err != nil {
		return nil, err
	}

	band, err := s.requireMember(ctx, principal, response.BandUID)
	if err != nil {
		return nil, err
	}
	if response.UserUID != principal && !band.IsAdmin(principal) {
		return nil, domain.NewForbiddenError("members can only update their own response")
	}

	return s.Responses.UpdateResponse(ctx, response.UID, patch)
}

// SendSummaryEmail mails the band's upcoming schedule with attendance
// answers to every member with a known address. Admin only.
func (s *SchedulingService) SendSummaryEmail(ctx context.Context, principal, bandUID string) error {
	if !s.ServiceReady() {
		return domain.NewUnavailableError("scheduling service not ready")
	}

	band, err := s.requireAdmin(ctx, principal, bandUID)
	if err != nil {
		return err
	}

	ctx = logging.AppendCtx(ctx, slog.String("band_uid", bandUID))

	occurrences, err := s.Rehearsals.ListRehearsals(ctx, bandUID)
	if err != nil {
		return err
	}
	if len(occurrences) == 0 {
		return domain.NewValidationError("band has no upcoming rehearsals to summarize")
	}

	responses, err := s.Responses.ListByBand(ctx, bandUID)
	if err != nil {
		return err
	}

	bandName := band.Name
	if name, err := s.Rehearsals.MessageBuilder.GetBandName(ctx, bandUID); err == nil && name != "" {
		bandName = name
	} else if err != nil {
		slog.WarnContext(ctx, "error resolving band name, using stored name", logging.ErrKey, err)
	}

	recipients := make([]domain.SummaryEmailRecipient, 0, len(band.Members))
	memberNames := make(map[string]string, len(band.Members))
	for _, member := range band.Members {
		memberNames[member.UserUID] = member.Name
		if member.Email == "" {
			continue
		}
		recipients = append(recipients, domain.SummaryEmailRecipient{
			Email: member.Email,
			Name:  member.Name,
		})
	}
	if len(recipients) == 0 {
		return domain.NewValidationError("no band member has an email address on file")
	}

	summary := domain.EmailSummary{
		BandUID:     bandUID,
		BandName:    bandName,
		Recipients:  recipients,
		Occurrences: occurrences,
		Responses:   responses,
		MemberNames: memberNames,
	}

	if err := s.EmailService.SendRehearsalSummary(ctx, summary); err != nil {
		return domain.NewInternalError("failed to send rehearsal summary email", err)
	}

	slog.InfoContext(ctx, "sent rehearsal summary email",
		"recipients", len(recipients), "occurrences", len(occurrences))

	return nil
}
