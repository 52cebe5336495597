// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// MockBandReader implements domain.BandReader for testing
type MockBandReader struct {
	mock.Mock
}

func (m *MockBandReader) Get(ctx context.Context, bandUID string) (*models.Band, error) {
	args := m.Called(ctx, bandUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Band), args.Error(1)
}

func (m *MockBandReader) Exists(ctx context.Context, bandUID string) (bool, error) {
	args := m.Called(ctx, bandUID)
	return args.Bool(0), args.Error(1)
}
