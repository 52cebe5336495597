// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

func testOccurrence(uid, bandUID, date string) *models.RehearsalOccurrence {
	return &models.RehearsalOccurrence{
		UID:       uid,
		BandUID:   bandUID,
		Date:      date,
		StartTime: "19:00",
		EndTime:   "21:00",
	}
}

func TestNatsOccurrenceRepository_Create(t *testing.T) {
	repo := NewNatsOccurrenceRepository(newMockNatsKeyValue())
	ctx := context.Background()

	err := repo.Create(ctx, testOccurrence("occ-1", "band-1", "2026-09-15"))
	require.NoError(t, err)

	got, err := repo.Get(ctx, "occ-1")
	require.NoError(t, err)
	assert.Equal(t, "band-1", got.BandUID)
	assert.Equal(t, "2026-09-15", got.Date)
}

func TestNatsOccurrenceRepository_Create_GeneratesUID(t *testing.T) {
	repo := NewNatsOccurrenceRepository(newMockNatsKeyValue())

	occurrence := testOccurrence("", "band-1", "2026-09-15")
	err := repo.Create(context.Background(), occurrence)

	require.NoError(t, err)
	assert.NotEmpty(t, occurrence.UID)
}

func TestNatsOccurrenceRepository_Create_BandDateConflict(t *testing.T) {
	repo := NewNatsOccurrenceRepository(newMockNatsKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testOccurrence("occ-1", "band-1", "2026-09-15")))

	err := repo.Create(ctx, testOccurrence("occ-2", "band-1", "2026-09-15"))

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
	assert.Contains(t, err.Error(), "2026-09-15")

	// Another band may use the same date.
	assert.NoError(t, repo.Create(ctx, testOccurrence("occ-3", "band-2", "2026-09-15")))
}

func TestNatsOccurrenceRepository_Create_ReclaimsStaleDateIndex(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsOccurrenceRepository(kv)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testOccurrence("occ-1", "band-1", "2026-09-15")))

	// Drop the occurrence record while leaving its band-date claim behind,
	// as a failed index release after a delete or date move would.
	delete(kv.data, repo.entityKey("occ-1"))
	delete(kv.revisions, repo.entityKey("occ-1"))

	// The stale claim must not block the date forever.
	require.NoError(t, repo.Create(ctx, testOccurrence("occ-2", "band-1", "2026-09-15")))

	// The date now belongs to the new occurrence.
	err := repo.Create(ctx, testOccurrence("occ-3", "band-1", "2026-09-15"))
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestNatsOccurrenceRepository_CreateSeries_Atomic(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsOccurrenceRepository(kv)
	ctx := context.Background()

	// The third series date is already taken by a standalone rehearsal.
	require.NoError(t, repo.Create(ctx, testOccurrence("occ-solo", "band-1", "2026-09-29")))
	keysBefore := len(kv.data)

	series := []*models.RehearsalOccurrence{
		testOccurrence("occ-s1", "band-1", "2026-09-15"),
		testOccurrence("occ-s2", "band-1", "2026-09-22"),
		testOccurrence("occ-s3", "band-1", "2026-09-29"),
		testOccurrence("occ-s4", "band-1", "2026-10-06"),
		testOccurrence("occ-s5", "band-1", "2026-10-13"),
	}
	for _, o := range series {
		o.SeriesUID = "series-1"
	}

	err := repo.CreateSeries(ctx, series)

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
	assert.Contains(t, err.Error(), "2026-09-29")

	// Nothing from the series survives, including the claimed dates.
	assert.Equal(t, keysBefore, len(kv.data))
	for _, uid := range []string{"occ-s1", "occ-s2", "occ-s3", "occ-s4", "occ-s5"} {
		exists, err := repo.Exists(ctx, uid)
		require.NoError(t, err)
		assert.False(t, exists)
	}

	// The freed dates can be claimed again.
	assert.NoError(t, repo.Create(ctx, testOccurrence("occ-new", "band-1", "2026-09-15")))
}

func TestNatsOccurrenceRepository_CreateSeries_Success(t *testing.T) {
	repo := NewNatsOccurrenceRepository(newMockNatsKeyValue())
	ctx := context.Background()

	series := []*models.RehearsalOccurrence{
		testOccurrence("occ-s1", "band-1", "2026-09-15"),
		testOccurrence("occ-s2", "band-1", "2026-09-22"),
	}
	for _, o := range series {
		o.SeriesUID = "series-1"
	}

	require.NoError(t, repo.CreateSeries(ctx, series))

	listed, err := repo.ListBySeries(ctx, "series-1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestNatsOccurrenceRepository_Update_MovesDateIndex(t *testing.T) {
	repo := NewNatsOccurrenceRepository(newMockNatsKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testOccurrence("occ-1", "band-1", "2026-09-15")))

	occurrence, revision, err := repo.GetWithRevision(ctx, "occ-1")
	require.NoError(t, err)
	occurrence.Date = "2026-09-16"
	require.NoError(t, repo.Update(ctx, occurrence, revision))

	// The old date is free again, the new one is claimed.
	assert.NoError(t, repo.Create(ctx, testOccurrence("occ-2", "band-1", "2026-09-15")))
	err = repo.Create(ctx, testOccurrence("occ-3", "band-1", "2026-09-16"))
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestNatsOccurrenceRepository_Update_DateCollision(t *testing.T) {
	repo := NewNatsOccurrenceRepository(newMockNatsKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testOccurrence("occ-1", "band-1", "2026-09-15")))
	require.NoError(t, repo.Create(ctx, testOccurrence("occ-2", "band-1", "2026-09-16")))

	occurrence, revision, err := repo.GetWithRevision(ctx, "occ-1")
	require.NoError(t, err)
	occurrence.Date = "2026-09-16"

	err = repo.Update(ctx, occurrence, revision)

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))

	// The stored record is untouched.
	current, err := repo.Get(ctx, "occ-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-15", current.Date)
}

func TestNatsOccurrenceRepository_Update_StaleRevision(t *testing.T) {
	repo := NewNatsOccurrenceRepository(newMockNatsKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testOccurrence("occ-1", "band-1", "2026-09-15")))

	occurrence, revision, err := repo.GetWithRevision(ctx, "occ-1")
	require.NoError(t, err)
	occurrence.Title = "Warm-up"
	require.NoError(t, repo.Update(ctx, occurrence, revision))

	// Writing again with the stale revision conflicts.
	occurrence.Title = "Full run"
	err = repo.Update(ctx, occurrence, revision)

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestNatsOccurrenceRepository_DeleteWithoutRevision_FreesDate(t *testing.T) {
	repo := NewNatsOccurrenceRepository(newMockNatsKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testOccurrence("occ-1", "band-1", "2026-09-15")))
	require.NoError(t, repo.DeleteWithoutRevision(ctx, "occ-1"))

	_, err := repo.Get(ctx, "occ-1")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))

	assert.NoError(t, repo.Create(ctx, testOccurrence("occ-2", "band-1", "2026-09-15")))
}

func TestNatsOccurrenceRepository_ListByBand_SortedByDate(t *testing.T) {
	repo := NewNatsOccurrenceRepository(newMockNatsKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testOccurrence("occ-3", "band-1", "2026-10-06")))
	require.NoError(t, repo.Create(ctx, testOccurrence("occ-1", "band-1", "2026-09-15")))
	require.NoError(t, repo.Create(ctx, testOccurrence("occ-2", "band-1", "2026-09-22")))
	require.NoError(t, repo.Create(ctx, testOccurrence("occ-other", "band-2", "2026-09-15")))

	listed, err := repo.ListByBand(ctx, "band-1")

	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "2026-09-15", listed[0].Date)
	assert.Equal(t, "2026-09-22", listed[1].Date)
	assert.Equal(t, "2026-10-06", listed[2].Date)
}

func TestNatsOccurrenceRepository_Get_NotFound(t *testing.T) {
	repo := NewNatsOccurrenceRepository(newMockNatsKeyValue())

	_, err := repo.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsOccurrenceRepository_NotReady(t *testing.T) {
	repo := NewNatsOccurrenceRepository(nil)

	err := repo.Create(context.Background(), testOccurrence("occ-1", "band-1", "2026-09-15"))

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
