// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bandroom/rehearsal-service/internal/domain"
)

// MockEmailService implements domain.EmailService for testing
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRehearsalSummary(ctx context.Context, summary domain.EmailSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}
