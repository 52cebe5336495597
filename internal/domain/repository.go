// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// OccurrenceRepository owns rehearsal occurrence records. Implementations
// must enforce the (band, date) uniqueness invariant: creating a second
// occurrence on the same date for the same band fails with a conflict error.
type OccurrenceRepository interface {
	// Create stores a single occurrence. Returns a conflict error if the
	// band already has an occurrence on the same date.
	Create(ctx context.Context, occurrence *models.RehearsalOccurrence) error

	// CreateSeries stores all occurrences of a series atomically: either
	// every occurrence is persisted or none is. The conflict error names
	// the first colliding date.
	CreateSeries(ctx context.Context, occurrences []*models.RehearsalOccurrence) error

	Get(ctx context.Context, occurrenceUID string) (*models.RehearsalOccurrence, error)
	GetWithRevision(ctx context.Context, occurrenceUID string) (*models.RehearsalOccurrence, uint64, error)
	Exists(ctx context.Context, occurrenceUID string) (bool, error)

	// Update rewrites an occurrence under optimistic concurrency control.
	// If the occurrence date changed, the band-date uniqueness index moves
	// with it.
	Update(ctx context.Context, occurrence *models.RehearsalOccurrence, revision uint64) error

	Delete(ctx context.Context, occurrenceUID string, revision uint64) error

	// DeleteWithoutRevision removes an occurrence regardless of revision.
	// Used by pruning and series deletes, where last-writer semantics are
	// intended.
	DeleteWithoutRevision(ctx context.Context, occurrenceUID string) error

	// ListByBand returns the band's occurrences ordered by date ascending.
	ListByBand(ctx context.Context, bandUID string) ([]*models.RehearsalOccurrence, error)

	// ListBySeries returns all occurrences of a series ordered by date
	// ascending, past dates included.
	ListBySeries(ctx context.Context, seriesUID string) ([]*models.RehearsalOccurrence, error)
}

// ResponseRepository owns attendance response records. Implementations must
// enforce the (user, occurrence) uniqueness invariant.
type ResponseRepository interface {
	// Create stores a response. Returns a conflict error if the user
	// already has a response for the occurrence.
	Create(ctx context.Context, response *models.Response) error

	Get(ctx context.Context, responseUID string) (*models.Response, error)
	GetWithRevision(ctx context.Context, responseUID string) (*models.Response, uint64, error)
	Update(ctx context.Context, response *models.Response, revision uint64) error
	Delete(ctx context.Context, responseUID string, revision uint64) error

	// DeleteWithoutRevision removes a response regardless of revision.
	// Used by cascades when an occurrence is deleted or a member leaves.
	DeleteWithoutRevision(ctx context.Context, responseUID string) error

	ListByBand(ctx context.Context, bandUID string) ([]*models.Response, error)
	ListByOccurrence(ctx context.Context, occurrenceUID string) ([]*models.Response, error)
}

// BandReader reads band rosters owned by the bands service.
type BandReader interface {
	Get(ctx context.Context, bandUID string) (*models.Band, error)
	Exists(ctx context.Context, bandUID string) (bool, error)
}
