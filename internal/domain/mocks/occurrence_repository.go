// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// MockOccurrenceRepository implements domain.OccurrenceRepository for testing
type MockOccurrenceRepository struct {
	mock.Mock
}

func (m *MockOccurrenceRepository) Create(ctx context.Context, occurrence *models.RehearsalOccurrence) error {
	args := m.Called(ctx, occurrence)
	return args.Error(0)
}

func (m *MockOccurrenceRepository) CreateSeries(ctx context.Context, occurrences []*models.RehearsalOccurrence) error {
	args := m.Called(ctx, occurrences)
	return args.Error(0)
}

func (m *MockOccurrenceRepository) Get(ctx context.Context, occurrenceUID string) (*models.RehearsalOccurrence, error) {
	args := m.Called(ctx, occurrenceUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RehearsalOccurrence), args.Error(1)
}

func (m *MockOccurrenceRepository) GetWithRevision(ctx context.Context, occurrenceUID string) (*models.RehearsalOccurrence, uint64, error) {
	args := m.Called(ctx, occurrenceUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.RehearsalOccurrence), args.Get(1).(uint64), args.Error(2)
}

func (m *MockOccurrenceRepository) Exists(ctx context.Context, occurrenceUID string) (bool, error) {
	args := m.Called(ctx, occurrenceUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOccurrenceRepository) Update(ctx context.Context, occurrence *models.RehearsalOccurrence, revision uint64) error {
	args := m.Called(ctx, occurrence, revision)
	return args.Error(0)
}

func (m *MockOccurrenceRepository) Delete(ctx context.Context, occurrenceUID string, revision uint64) error {
	args := m.Called(ctx, occurrenceUID, revision)
	return args.Error(0)
}

func (m *MockOccurrenceRepository) DeleteWithoutRevision(ctx context.Context, occurrenceUID string) error {
	args := m.Called(ctx, occurrenceUID)
	return args.Error(0)
}

func (m *MockOccurrenceRepository) ListByBand(ctx context.Context, bandUID string) ([]*models.RehearsalOccurrence, error) {
	args := m.Called(ctx, bandUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RehearsalOccurrence), args.Error(1)
}

func (m *MockOccurrenceRepository) ListBySeries(ctx context.Context, seriesUID string) ([]*models.RehearsalOccurrence, error) {
	args := m.Called(ctx, seriesUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RehearsalOccurrence), args.Error(1)
}
