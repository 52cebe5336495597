// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bandroom/rehearsal-service/internal/domain/mocks"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
	"github.com/bandroom/rehearsal-service/internal/service"
)

// setupRehearsalHandlerForTesting creates a RehearsalHandler with mock dependencies
func setupRehearsalHandlerForTesting() (*RehearsalHandler, *bandHandlerMocks) {
	m := &bandHandlerMocks{
		bandReader:     new(mocks.MockBandReader),
		occurrenceRepo: new(mocks.MockOccurrenceRepository),
		responseRepo:   new(mocks.MockResponseRepository),
		messageBuilder: new(mocks.MockMessageBuilder),
		expander:       new(mocks.MockRecurrenceExpander),
		reconciler:     new(mocks.MockResponseReconciler),
	}

	rehearsalService := service.NewRehearsalService(
		m.bandReader, m.occurrenceRepo, m.responseRepo,
		m.expander, m.reconciler, m.messageBuilder, service.NewServiceConfig(),
	)

	return NewRehearsalHandler(rehearsalService), m
}

func TestRehearsalHandler_HandlerReady(t *testing.T) {
	handler, _ := setupRehearsalHandlerForTesting()
	assert.True(t, handler.HandlerReady())

	assert.False(t, NewRehearsalHandler(&service.RehearsalService{}).HandlerReady())
}

func TestRehearsalHandler_HandleAutoManage(t *testing.T) {
	handler, m := setupRehearsalHandlerForTesting()

	m.bandReader.On("Exists", mock.Anything, "band-1").Return(true, nil)
	m.occurrenceRepo.On("ListByBand", mock.Anything, "band-1").
		Return([]*models.RehearsalOccurrence{}, nil)
	m.reconciler.On("Reconcile", mock.Anything, "band-1").
		Return(&models.ReconcileSummary{Created: 3, Removed: 1}, nil)

	reply, err := handler.HandleAutoManage(context.Background(),
		mocks.NewMockMessage([]byte("band-1"), models.RehearsalAutoManageSubject))

	require.NoError(t, err)

	var summary models.AutoManageSummary
	require.NoError(t, json.Unmarshal(reply, &summary))
	assert.Equal(t, 3, summary.ResponsesCreated)
	assert.Equal(t, 1, summary.ResponsesRemoved)

	m.bandReader.AssertExpectations(t)
	m.reconciler.AssertExpectations(t)
}

func TestRehearsalHandler_HandleAutoManage_BandNotFound(t *testing.T) {
	handler, m := setupRehearsalHandlerForTesting()

	m.bandReader.On("Exists", mock.Anything, "band-gone").Return(false, nil)

	_, err := handler.HandleAutoManage(context.Background(),
		mocks.NewMockMessage([]byte("band-gone"), models.RehearsalAutoManageSubject))

	assert.Error(t, err)
	m.bandReader.AssertExpectations(t)
}

func TestRehearsalHandler_HandleAutoManage_EmptyBandUID(t *testing.T) {
	handler, _ := setupRehearsalHandlerForTesting()

	_, err := handler.HandleAutoManage(context.Background(),
		mocks.NewMockMessage([]byte(""), models.RehearsalAutoManageSubject))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "band UID is required")
}

func TestRehearsalHandler_HandleMessage(t *testing.T) {
	t.Run("auto-manage subject replies with summary", func(t *testing.T) {
		handler, m := setupRehearsalHandlerForTesting()

		m.bandReader.On("Exists", mock.Anything, "band-1").Return(true, nil)
		m.occurrenceRepo.On("ListByBand", mock.Anything, "band-1").
			Return([]*models.RehearsalOccurrence{}, nil)
		m.reconciler.On("Reconcile", mock.Anything, "band-1").
			Return(&models.ReconcileSummary{}, nil)

		msg := mocks.NewMockMessage([]byte("band-1"), models.RehearsalAutoManageSubject)
		msg.On("HasReply").Return(true)
		msg.On("Respond", mock.Anything).Return(nil)

		handler.HandleMessage(context.Background(), msg)

		msg.AssertExpectations(t)
	})

	t.Run("unknown subject replies nil", func(t *testing.T) {
		handler, _ := setupRehearsalHandlerForTesting()

		msg := mocks.NewMockMessage([]byte("band-1"), "bandroom.rehearsals-api.unknown")
		msg.On("HasReply").Return(true)
		msg.On("Respond", []byte(nil)).Return(nil)

		handler.HandleMessage(context.Background(), msg)

		msg.AssertExpectations(t)
	})

	t.Run("fire and forget message has no reply", func(t *testing.T) {
		handler, m := setupRehearsalHandlerForTesting()

		m.bandReader.On("Exists", mock.Anything, "band-1").Return(true, nil)
		m.occurrenceRepo.On("ListByBand", mock.Anything, "band-1").
			Return([]*models.RehearsalOccurrence{}, nil)
		m.reconciler.On("Reconcile", mock.Anything, "band-1").
			Return(&models.ReconcileSummary{}, nil)

		msg := mocks.NewMockMessage([]byte("band-1"), models.RehearsalAutoManageSubject)
		msg.On("HasReply").Return(false)

		handler.HandleMessage(context.Background(), msg)

		msg.AssertNotCalled(t, "Respond", mock.Anything)
	})
}
