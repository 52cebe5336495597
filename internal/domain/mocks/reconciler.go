// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// MockResponseReconciler implements domain.ResponseReconciler for testing
type MockResponseReconciler struct {
	mock.Mock
}

func (m *MockResponseReconciler) Reconcile(ctx context.Context, bandUID string) (*models.ReconcileSummary, error) {
	args := m.Called(ctx, bandUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReconcileSummary), args.Error(1)
}
