// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
	"github.com/bandroom/rehearsal-service/internal/logging"
)

// ResponseSyncService owns attendance responses. It keeps the response set
// exactly equal to the required (member, occurrence) pairs for each band and
// handles member-initiated response updates.
type ResponseSyncService struct {
	BandReader           domain.BandReader
	OccurrenceRepository domain.OccurrenceRepository
	ResponseRepository   domain.ResponseRepository
	MessageBuilder       domain.MessageBuilder
	Config               ServiceConfig
}

// NewResponseSyncService creates a new ResponseSyncService.
func NewResponseSyncService(
	bandReader domain.BandReader,
	occurrenceRepository domain.OccurrenceRepository,
	responseRepository domain.ResponseRepository,
	messageBuilder domain.MessageBuilder,
	config ServiceConfig,
) *ResponseSyncService {
	return &ResponseSyncService{
		BandReader:           bandReader,
		OccurrenceRepository: occurrenceRepository,
		ResponseRepository:   responseRepository,
		MessageBuilder:       messageBuilder,
		Config:               config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ResponseSyncService) ServiceReady() bool {
	return s.BandReader != nil &&
		s.OccurrenceRepository != nil &&
		s.ResponseRepository != nil &&
		s.MessageBuilder != nil
}

type responsePair struct {
	userUID       string
	occurrenceUID string
}

// Reconcile makes the band's response set match the required
// (member, occurrence) pairs: missing responses are created with the
// configured default answer, responses whose occurrence or member is gone
// are removed. Running it twice without intervening changes is a no-op.
func (s *ResponseSyncService) Reconcile(ctx context.Context, bandUID string) (*models.ReconcileSummary, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("response sync service not ready")
	}

	ctx = logging.AppendCtx(ctx, slog.String("band_uid", bandUID))

	band, err := s.BandReader.Get(ctx, bandUID)
	if err != nil {
		return nil, err
	}

	occurrences, err := s.OccurrenceRepository.ListByBand(ctx, bandUID)
	if err != nil {
		return nil, err
	}

	responses, err := s.ResponseRepository.ListByBand(ctx, bandUID)
	if err != nil {
		return nil, err
	}

	members := make(map[string]bool, len(band.Members))
	for _, m := range band.Members {
		members[m.UserUID] = true
	}
	occurrenceSet := make(map[string]bool, len(occurrences))
	for _, o := range occurrences {
		occurrenceSet[o.UID] = true
	}

	summary := &models.ReconcileSummary{}

	// Remove responses whose occurrence was deleted or pruned, or whose
	// user is no longer a member of the band.
	existing := make(map[responsePair]bool, len(responses))
	for _, response := range responses {
		if occurrenceSet[response.OccurrenceUID] && members[response.UserUID] {
			existing[responsePair{response.UserUID, response.OccurrenceUID}] = true
			continue
		}
		if err := s.ResponseRepository.DeleteWithoutRevision(ctx, response.UID); err != nil {
			slog.ErrorContext(ctx, "error removing orphaned response",
				logging.ErrKey, err, "response_uid", response.UID)
			continue
		}
		summary.Removed++
	}

	// Create the missing (member, occurrence) pairs.
	now := time.Now().UTC()
	for _, occurrence := range occurrences {
		for _, member := range band.Members {
			if existing[responsePair{member.UserUID, occurrence.UID}] {
				continue
			}
			response := &models.Response{
				UID:           uuid.New().String(),
				BandUID:       bandUID,
				OccurrenceUID: occurrence.UID,
				UserUID:       member.UserUID,
				Attending:     s.Config.DefaultAttending,
				CreatedAt:     &now,
				UpdatedAt:     &now,
			}
			err := s.ResponseRepository.Create(ctx, response)
			if err != nil {
				// A concurrent reconcile already created the pair.
				if domain.GetErrorType(err) == domain.ErrorTypeConflict {
					continue
				}
				slog.ErrorContext(ctx, "error creating response",
					logging.ErrKey, err,
					"occurrence_uid", occurrence.UID,
					"user_uid", member.UserUID)
				continue
			}
			summary.Created++
		}
	}

	slog.DebugContext(ctx, "reconciled responses",
		"created", summary.Created, "removed", summary.Removed)

	return summary, nil
}

// ListByBand returns all of the band's responses.
func (s *ResponseSyncService) ListByBand(ctx context.Context, bandUID string) ([]*models.Response, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("response sync service not ready")
	}
	return s.ResponseRepository.ListByBand(ctx, bandUID)
}

// ListByOccurrence returns all responses for one occurrence.
func (s *ResponseSyncService) ListByOccurrence(ctx context.Context, occurrenceUID string) ([]*models.Response, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("response sync service not ready")
	}
	return s.ResponseRepository.ListByOccurrence(ctx, occurrenceUID)
}

// GetResponse returns one response by UID.
func (s *ResponseSyncService) GetResponse(ctx context.Context, responseUID string) (*models.Response, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("response sync service not ready")
	}
	return s.ResponseRepository.Get(ctx, responseUID)
}

// UpdateResponse applies a member's answer to their response record.
// Authorization has already happened at the boundary.
func (s *ResponseSyncService) UpdateResponse(ctx context.Context, responseUID string, patch *models.ResponsePatch) (*models.Response, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("response sync service not ready")
	}
	if patch == nil || (patch.Attending == nil && patch.Comment == nil) {
		return nil, domain.NewValidationError("response update must change attending or comment")
	}

	response, revision, err := s.ResponseRepository.GetWithRevision(ctx, responseUID)
	if err != nil {
		return nil, err
	}

	if patch.Attending != nil {
		response.Attending = *patch.Attending
	}
	if patch.Comment != nil {
		response.Comment = *patch.Comment
	}
	now := time.Now().UTC()
	response.UpdatedAt = &now

	if err := s.ResponseRepository.Update(ctx, response, revision); err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("%s for %s", response.AttendingLabel(), response.OccurrenceUID)
	if err := s.MessageBuilder.SendResponseActivity(ctx, models.ActionUpdated, response, summary); err != nil {
		slog.ErrorContext(ctx, "error publishing response activity", logging.ErrKey, err)
	}

	return response, nil
}

// Compile-time interface check
var _ domain.ResponseReconciler = (*ResponseSyncService)(nil)
