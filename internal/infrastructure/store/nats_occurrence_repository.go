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

// NatsOccurrenceRepository is the NATS KV store repository for rehearsal
// occurrences. The (band, date) uniqueness invariant is enforced with an
// exclusive index entry claimed before the occurrence record is written.
type NatsOccurrenceRepository struct {
	*NatsBaseRepository[models.RehearsalOccurrence]
	keyBuilder *KeyBuilder
}

// NewNatsOccurrenceRepository creates a new NATS KV store repository for occurrences.
func NewNatsOccurrenceRepository(kvStore INatsKeyValue) *NatsOccurrenceRepository {
	return &NatsOccurrenceRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.RehearsalOccurrence](kvStore, "occurrence"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// IsReady checks if the repository is ready
func (r *NatsOccurrenceRepository) IsReady(ctx context.Context) bool {
	return r.NatsBaseRepository.IsReady()
}

func (r *NatsOccurrenceRepository) entityKey(occurrenceUID string) string {
	return r.keyBuilder.EntityKeyEncoded(KeyPrefixOccurrence, occurrenceUID)
}

func (r *NatsOccurrenceRepository) dateIndexKey(bandUID, date string) string {
	return r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexBandDate, bandUID, date)
}

// Create stores a single occurrence. The band-date index entry is claimed
// first; losing that race surfaces as a conflict before anything is written.
func (r *NatsOccurrenceRepository) Create(ctx context.Context, occurrence *models.RehearsalOccurrence) error {
	if occurrence.UID == "" {
		occurrence.UID = uuid.New().String()
	}

	indexKey := r.dateIndexKey(occurrence.BandUID, occurrence.Date)
	if err := r.claimDateIndex(ctx, indexKey, occurrence); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			return domain.NewConflictError(
				fmt.Sprintf("band already has a rehearsal on %s", occurrence.Date), err)
		}
		return err
	}

	if err := r.NatsBaseRepository.Create(ctx, r.entityKey(occurrence.UID), occurrence); err != nil {
		if indexErr := r.DeleteIndex(ctx, indexKey); indexErr != nil {
			slog.ErrorContext(ctx, "error rolling back band-date index",
				logging.ErrKey, indexErr, "index_key", indexKey)
		}
		return err
	}

	return nil
}

// claimDateIndex claims the band-date index entry for an occurrence. On
// conflict the recorded owner is checked: a claim whose occurrence record no
// longer exists is stale (left behind by a failed release after a delete or
// date move) and is reclaimed, so a crashed cleanup cannot permanently block
// the date.
func (r *NatsOccurrenceRepository) claimDateIndex(ctx context.Context, indexKey string, occurrence *models.RehearsalOccurrence) error {
	err := r.CreateIndex(ctx, indexKey, occurrence.UID)
	if err == nil || domain.GetErrorType(err) != domain.ErrorTypeConflict {
		return err
	}

	ownerUID, getErr := r.GetIndex(ctx, indexKey)
	if getErr != nil {
		if domain.GetErrorType(getErr) == domain.ErrorTypeNotFound {
			// The owner released the claim between the create and the read.
			return r.CreateIndex(ctx, indexKey, occurrence.UID)
		}
		return err
	}

	exists, existsErr := r.Exists(ctx, ownerUID)
	if existsErr != nil || exists {
		return err
	}

	slog.WarnContext(ctx, "reclaiming stale band-date index",
		"index_key", indexKey, "owner_uid", ownerUID)
	if delErr := r.DeleteIndex(ctx, indexKey); delErr != nil {
		return err
	}
	return r.CreateIndex(ctx, indexKey, occurrence.UID)
}

// CreateSeries stores all occurrences of a series, rolling back every
// already-written record when any date is already taken. The index claims
// make the rollback safe against concurrent writers: nobody else can have
// claimed the dates this call claimed.
func (r *NatsOccurrenceRepository) CreateSeries(ctx context.Context, occurrences []*models.RehearsalOccurrence) error {
	created := make([]*models.RehearsalOccurrence, 0, len(occurrences))

	for _, occurrence := range occurrences {
		if err := r.Create(ctx, occurrence); err != nil {
			r.rollbackSeries(ctx, created)
			if domain.GetErrorType(err) == domain.ErrorTypeConflict {
				return domain.NewConflictError(
					fmt.Sprintf("band already has a rehearsal on %s", occurrence.Date), err)
			}
			return err
		}
		created = append(created, occurrence)
	}

	return nil
}

func (r *NatsOccurrenceRepository) rollbackSeries(ctx context.Context, created []*models.RehearsalOccurrence) {
	for _, occurrence := range created {
		if err := r.NatsBaseRepository.DeleteWithoutRevision(ctx, r.entityKey(occurrence.UID)); err != nil {
			slog.ErrorContext(ctx, "error rolling back series occurrence",
				logging.ErrKey, err, "occurrence_uid", occurrence.UID)
		}
		if err := r.DeleteIndex(ctx, r.dateIndexKey(occurrence.BandUID, occurrence.Date)); err != nil {
			slog.ErrorContext(ctx, "error rolling back band-date index",
				logging.ErrKey, err, "occurrence_uid", occurrence.UID)
		}
	}
}

// Get retrieves an occurrence by UID
func (r *NatsOccurrenceRepository) Get(ctx context.Context, occurrenceUID string) (*models.RehearsalOccurrence, error) {
	return r.NatsBaseRepository.Get(ctx, r.entityKey(occurrenceUID))
}

// GetWithRevision retrieves an occurrence with revision by UID
func (r *NatsOccurrenceRepository) GetWithRevision(ctx context.Context, occurrenceUID string) (*models.RehearsalOccurrence, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, r.entityKey(occurrenceUID))
}

// Exists checks if an occurrence exists
func (r *NatsOccurrenceRepository) Exists(ctx context.Context, occurrenceUID string) (bool, error) {
	return r.NatsBaseRepository.Exists(ctx, r.entityKey(occurrenceUID))
}

// Update rewrites an occurrence under optimistic concurrency control. A date
// change claims the new band-date index before releasing the old one, so two
// concurrent moves onto the same date cannot both win.
func (r *NatsOccurrenceRepository) Update(ctx context.Context, occurrence *models.RehearsalOccurrence, revision uint64) error {
	current, err := r.Get(ctx, occurrence.UID)
	if err != nil {
		return err
	}

	dateChanged := current.Date != occurrence.Date
	if dateChanged {
		newIndexKey := r.dateIndexKey(occurrence.BandUID, occurrence.Date)
		if err := r.claimDateIndex(ctx, newIndexKey, occurrence); err != nil {
			if domain.GetErrorType(err) == domain.ErrorTypeConflict {
				return domain.NewConflictError(
					fmt.Sprintf("band already has a rehearsal on %s", occurrence.Date), err)
			}
			return err
		}
		if err := r.NatsBaseRepository.Update(ctx, r.entityKey(occurrence.UID), occurrence, revision); err != nil {
			if indexErr := r.DeleteIndex(ctx, newIndexKey); indexErr != nil {
				slog.ErrorContext(ctx, "error rolling back band-date index",
					logging.ErrKey, indexErr, "index_key", newIndexKey)
			}
			return err
		}
		if err := r.DeleteIndex(ctx, r.dateIndexKey(current.BandUID, current.Date)); err != nil {
			slog.WarnContext(ctx, "error releasing old band-date index",
				logging.ErrKey, err, "occurrence_uid", occurrence.UID, "date", current.Date)
		}
		return nil
	}

	return r.NatsBaseRepository.Update(ctx, r.entityKey(occurrence.UID), occurrence, revision)
}

// Delete removes an occurrence with optimistic concurrency control
func (r *NatsOccurrenceRepository) Delete(ctx context.Context, occurrenceUID string, revision uint64) error {
	occurrence, err := r.Get(ctx, occurrenceUID)
	if err != nil {
		return err
	}

	if err := r.NatsBaseRepository.Delete(ctx, r.entityKey(occurrenceUID), revision); err != nil {
		return err
	}

	r.releaseDateIndex(ctx, occurrence)
	return nil
}

// DeleteWithoutRevision removes an occurrence regardless of revision
func (r *NatsOccurrenceRepository) DeleteWithoutRevision(ctx context.Context, occurrenceUID string) error {
	occurrence, err := r.Get(ctx, occurrenceUID)
	if err != nil {
		return err
	}

	if err := r.NatsBaseRepository.DeleteWithoutRevision(ctx, r.entityKey(occurrenceUID)); err != nil {
		return err
	}

	r.releaseDateIndex(ctx, occurrence)
	return nil
}

func (r *NatsOccurrenceRepository) releaseDateIndex(ctx context.Context, occurrence *models.RehearsalOccurrence) {
	indexKey := r.dateIndexKey(occurrence.BandUID, occurrence.Date)
	if err := r.DeleteIndex(ctx, indexKey); err != nil {
		slog.WarnContext(ctx, "error releasing band-date index",
			logging.ErrKey, err, "occurrence_uid", occurrence.UID, "date", occurrence.Date)
	}
}

// ListByBand retrieves the band's occurrences ordered by date ascending
func (r *NatsOccurrenceRepository) ListByBand(ctx context.Context, bandUID string) ([]*models.RehearsalOccurrence, error) {
	all, err := r.listAll(ctx)
	if err != nil {
		return nil, err
	}

	var matching []*models.RehearsalOccurrence
	for _, occurrence := range all {
		if occurrence.BandUID == bandUID {
			matching = append(matching, occurrence)
		}
	}

	sortOccurrencesByDate(matching)
	return matching, nil
}

// ListBySeries retrieves all occurrences of a series ordered by date ascending
func (r *NatsOccurrenceRepository) ListBySeries(ctx context.Context, seriesUID string) ([]*models.RehearsalOccurrence, error) {
	all, err := r.listAll(ctx)
	if err != nil {
		return nil, err
	}

	var matching []*models.RehearsalOccurrence
	for _, occurrence := range all {
		if occurrence.SeriesUID == seriesUID {
			matching = append(matching, occurrence)
		}
	}

	sortOccurrencesByDate(matching)
	return matching, nil
}

func (r *NatsOccurrenceRepository) listAll(ctx context.Context) ([]*models.RehearsalOccurrence, error) {
	pattern := KeyPrefixOccurrence + "/"
	return r.ListEntitiesEncoded(ctx, pattern, r.keyBuilder)
}

// sortOccurrencesByDate orders occurrences by date ascending. Dates are
// stored as YYYY-MM-DD, so string order is date order.
func sortOccurrencesByDate(occurrences []*models.RehearsalOccurrence) {
	sort.Slice(occurrences, func(i, j int) bool {
		if occurrences[i].Date != occurrences[j].Date {
			return occurrences[i].Date < occurrences[j].Date
		}
		return occurrences[i].UID < occurrences[j].UID
	})
}

// Compile-time interface check
var _ domain.OccurrenceRepository = (*NatsOccurrenceRepository)(nil)
