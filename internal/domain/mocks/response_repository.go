// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// MockResponseRepository implements domain.ResponseRepository for testing
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, response *models.Response) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) Get(ctx context.Context, responseUID string) (*models.Response, error) {
	args := m.Called(ctx, responseUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockResponseRepository) GetWithRevision(ctx context.Context, responseUID string) (*models.Response, uint64, error) {
	args := m.Called(ctx, responseUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.Response), args.Get(1).(uint64), args.Error(2)
}

func (m *MockResponseRepository) Update(ctx context.Context, response *models.Response, revision uint64) error {
	args := m.Called(ctx, response, revision)
	return args.Error(0)
}

func (m *MockResponseRepository) Delete(ctx context.Context, responseUID string, revision uint64) error {
	args := m.Called(ctx, responseUID, revision)
	return args.Error(0)
}

func (m *MockResponseRepository) DeleteWithoutRevision(ctx context.Context, responseUID string) error {
	args := m.Called(ctx, responseUID)
	return args.Error(0)
}

func (m *MockResponseRepository) ListByBand(ctx context.Context, bandUID string) ([]*models.Response, error) {
	args := m.Called(ctx, bandUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Response), args.Error(1)
}

func (m *MockResponseRepository) ListByOccurrence(ctx context.Context, occurrenceUID string) ([]*models.Response, error) {
	args := m.Called(ctx, occurrenceUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Response), args.Error(1)
}
