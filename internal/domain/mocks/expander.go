// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// MockRecurrenceExpander implements domain.RecurrenceExpander for testing
type MockRecurrenceExpander struct {
	mock.Mock
}

func (m *MockRecurrenceExpander) Expand(rule models.RecurrenceRule) []time.Time {
	args := m.Called(rule)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]time.Time)
}

func (m *MockRecurrenceExpander) SeriesEndDate(rule models.RecurrenceRule) time.Time {
	args := m.Called(rule)
	return args.Get(0).(time.Time)
}
