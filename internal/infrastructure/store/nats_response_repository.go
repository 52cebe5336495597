// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
	"github.com/bandroom/rehearsal-service/internal/logging"
)

// NatsResponseRepository is the NATS KV store repository for attendance
// responses. The (user, occurrence) uniqueness invariant is enforced with an
// exclusive index entry, same scheme as the occurrence repository.
type NatsResponseRepository struct {
	*NatsBaseRepository[models.Response]
	keyBuilder *KeyBuilder
}

// NewNatsResponseRepository creates a new NATS KV store repository for responses.
func NewNatsResponseRepository(kvStore INatsKeyValue) *NatsResponseRepository {
	return &NatsResponseRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Response](kvStore, "response"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// IsReady checks if the repository is ready
func (r *NatsResponseRepository) IsReady(ctx context.Context) bool {
	return r.NatsBaseRepository.IsReady()
}

func (r *NatsResponseRepository) entityKey(responseUID string) string {
	return r.keyBuilder.EntityKeyEncoded(KeyPrefixResponse, responseUID)
}

func (r *NatsResponseRepository) pairIndexKey(userUID, occurrenceUID string) string {
	return r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexUserOccurrence, userUID, occurrenceUID)
}

// Create stores a response. The user-occurrence index entry is claimed
// first; a second response for the same pair fails with a conflict.
func (r *NatsResponseRepository) Create(ctx context.Context, response *models.Response) error {
	if response.UID == "" {
		response.UID = uuid.New().String()
	}

	indexKey := r.pairIndexKey(response.UserUID, response.OccurrenceUID)
	if err := r.CreateIndex(ctx, indexKey, response.UID); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			return domain.NewConflictError(
				fmt.Sprintf("user '%s' already has a response for occurrence '%s'",
					response.UserUID, response.OccurrenceUID), err)
		}
		return err
	}

	if err := r.NatsBaseRepository.Create(ctx, r.entityKey(response.UID), response); err != nil {
		if indexErr := r.DeleteIndex(ctx, indexKey); indexErr != nil {
			slog.ErrorContext(ctx, "error rolling back user-occurrence index",
				logging.ErrKey, indexErr, "index_key", indexKey)
		}
		return err
	}

	return nil
}

// Get retrieves a response by UID
func (r *NatsResponseRepository) Get(ctx context.Context, responseUID string) (*models.Response, error) {
	return r.NatsBaseRepository.Get(ctx, r.entityKey(responseUID))
}

// GetWithRevision retrieves a response with revision by UID
func (r *NatsResponseRepository) GetWithRevision(ctx context.Context, responseUID string) (*models.Response, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, r.entityKey(responseUID))
}

// Update rewrites a response under optimistic concurrency control. The
// user and occurrence of a response never change, so the index stays put.
func (r *NatsResponseRepository) Update(ctx context.Context, response *models.Response, revision uint64) error {
	return r.NatsBaseRepository.Update(ctx, r.entityKey(response.UID), response, revision)
}

// Delete removes a response with optimistic concurrency control
func (r *NatsResponseRepository) Delete(ctx context.Context, responseUID string, revision uint64) error {
	response, err := r.Get(ctx, responseUID)
	if err != nil {
		return err
	}

	if err := r.NatsBaseRepository.Delete(ctx, r.entityKey(responseUID), revision); err != nil {
		return err
	}

	r.releasePairIndex(ctx, response)
	return nil
}

// DeleteWithoutRevision removes a response regardless of revision
func (r *NatsResponseRepository) DeleteWithoutRevision(ctx context.Context, responseUID string) error {
	response, err := r.Get(ctx, responseUID)
	if err != nil {
		return err
	}

	if err := r.NatsBaseRepository.DeleteWithoutRevision(ctx, r.entityKey(responseUID)); err != nil {
		return err
	}

	r.releasePairIndex(ctx, response)
	return nil
}

func (r *NatsResponseRepository) releasePairIndex(ctx context.Context, response *models.Response) {
	indexKey := r.pairIndexKey(response.UserUID, response.OccurrenceUID)
	if err := r.DeleteIndex(ctx, indexKey); err != nil {
		slog.WarnContext(ctx, "error releasing user-occurrence index",
			logging.ErrKey, err, "response_uid", response.UID)
	}
}

// ListByBand retrieves all of a band's responses
func (r *NatsResponseRepository) ListByBand(ctx context.Context, bandUID string) ([]*models.Response, error) {
	all, err := r.listAll(ctx)
	if err != nil {
		return nil, err
	}

	var matching []*models.Response
	for _, response := range all {
		if response.BandUID == bandUID {
			matching = append(matching, response)
		}
	}

	sortResponses(matching)
	return matching, nil
}

// ListByOccurrence retrieves all responses for one occurrence
func (r *NatsResponseRepository) ListByOccurrence(ctx context.Context, occurrenceUID string) ([]*models.Response, error) {
	all, err := r.listAll(ctx)
	if err != nil {
		return nil, err
	}

	var matching []*models.Response
	for _, response := range all {
		if response.OccurrenceUID == occurrenceUID {
			matching = append(matching, response)
		}
	}

	sortResponses(matching)
	return matching, nil
}

func (r *NatsResponseRepository) listAll(ctx context.Context) ([]*models.Response, error) {
	pattern := KeyPrefixResponse + "/"
	return r.ListEntitiesEncoded(ctx, pattern, r.keyBuilder)
}

// sortResponses orders responses by occurrence then user, so listings are
// stable across calls.
func sortResponses(responses []*models.Response) {
	sort.Slice(responses, func(i, j int) bool {
		if responses[i].OccurrenceUID != responses[j].OccurrenceUID {
			return responses[i].OccurrenceUID < responses[j].OccurrenceUID
		}
		return responses[i].UserUID < responses[j].UserUID
	})
}

// Compile-time interface check
var _ domain.ResponseRepository = (*NatsResponseRepository)(nil)
