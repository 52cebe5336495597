// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// MockMessageBuilder implements domain.MessageBuilder for testing
type MockMessageBuilder struct {
	mock.Mock
}

func (m *MockMessageBuilder) SendRehearsalActivity(ctx context.Context, action models.MessageAction, occurrence *models.RehearsalOccurrence, summary string) error {
	args := m.Called(ctx, action, occurrence, summary)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendResponseActivity(ctx context.Context, action models.MessageAction, response *models.Response, summary string) error {
	args := m.Called(ctx, action, response, summary)
	return args.Error(0)
}

func (m *MockMessageBuilder) GetBandName(ctx context.Context, bandUID string) (string, error) {
	args := m.Called(ctx, bandUID)
	return args.String(0), args.Error(1)
}
