// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/mocks"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
	"github.com/bandroom/rehearsal-service/pkg/utils"
)

func newTestResponseSyncService() (*ResponseSyncService, *mocks.MockBandReader, *mocks.MockOccurrenceRepository, *mocks.MockResponseRepository, *mocks.MockMessageBuilder) {
	bandReader := &mocks.MockBandReader{}
	occurrenceRepo := &mocks.MockOccurrenceRepository{}
	responseRepo := &mocks.MockResponseRepository{}
	messageBuilder := &mocks.MockMessageBuilder{}

	service := NewResponseSyncService(bandReader, occurrenceRepo, responseRepo, messageBuilder, NewServiceConfig())

	return service, bandReader, occurrenceRepo, responseRepo, messageBuilder
}

func testBand(memberUIDs ...string) *models.Band {
	band := &models.Band{UID: "band-1", Name: "The Testers"}
	for _, uid := range memberUIDs {
		band.Members = append(band.Members, models.BandMember{UserUID: uid, Role: models.RoleMember})
	}
	return band
}

func TestResponseSyncService_ServiceReady(t *testing.T) {
	service, _, _, _, _ := newTestResponseSyncService()
	assert.True(t, service.ServiceReady())

	service.ResponseRepository = nil
	assert.False(t, service.ServiceReady())
}

func TestResponseSyncService_Reconcile_CreatesMissingPairs(t *testing.T) {
	service, bandReader, occurrenceRepo, responseRepo, _ := newTestResponseSyncService()
	ctx := context.Background()

	band := testBand("user-1", "user-2", "user-3")
	occurrences := []*models.RehearsalOccurrence{
		{UID: "occ-1", BandUID: "band-1", Date: "2026-09-01"},
		{UID: "occ-2", BandUID: "band-1", Date: "2026-09-08"},
		{UID: "occ-3", BandUID: "band-1", Date: "2026-09-15"},
		{UID: "occ-4", BandUID: "band-1", Date: "2026-09-22"},
	}

	bandReader.On("Get", mock.Anything, "band-1").Return(band, nil)
	occurrenceRepo.On("ListByBand", mock.Anything, "band-1").Return(occurrences, nil)
	responseRepo.On("ListByBand", mock.Anything, "band-1").Return([]*models.Response{}, nil)
	responseRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Response) bool {
		return r.BandUID == "band-1" && r.Attending && r.UID != ""
	})).Return(nil)

	summary, err := service.Reconcile(ctx, "band-1")

	require.NoError(t, err)
	assert.Equal(t, 12, summary.Created)
	assert.Equal(t, 0, summary.Removed)
	responseRepo.AssertNumberOfCalls(t, "Create", 12)
}

func TestResponseSyncService_Reconcile_Idempotent(t *testing.T) {
	service, bandReader, occurrenceRepo, responseRepo, _ := newTestResponseSyncService()
	ctx := context.Background()

	band := testBand("user-1", "user-2")
	occurrences := []*models.RehearsalOccurrence{
		{UID: "occ-1", BandUID: "band-1", Date: "2026-09-01"},
	}
	responses := []*models.Response{
		{UID: "resp-1", BandUID: "band-1", OccurrenceUID: "occ-1", UserUID: "user-1", Attending: true},
		{UID: "resp-2", BandUID: "band-1", OccurrenceUID: "occ-1", UserUID: "user-2", Attending: false},
	}

	bandReader.On("Get", mock.Anything, "band-1").Return(band, nil)
	occurrenceRepo.On("ListByBand", mock.Anything, "band-1").Return(occurrences, nil)
	responseRepo.On("ListByBand", mock.Anything, "band-1").Return(responses, nil)

	summary, err := service.Reconcile(ctx, "band-1")

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 0, summary.Removed)
	responseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	responseRepo.AssertNotCalled(t, "DeleteWithoutRevision", mock.Anything, mock.Anything)
}

func TestResponseSyncService_Reconcile_RemovesOrphans(t *testing.T) {
	service, bandReader, occurrenceRepo, responseRepo, _ := newTestResponseSyncService()
	ctx := context.Background()

	band := testBand("user-1")
	occurrences := []*models.RehearsalOccurrence{
		{UID: "occ-1", BandUID: "band-1", Date: "2026-09-01"},
	}
	responses := []*models.Response{
		// Valid pair.
		{UID: "resp-1", BandUID: "band-1", OccurrenceUID: "occ-1", UserUID: "user-1"},
		// Occurrence was pruned.
		{UID: "resp-2", BandUID: "band-1", OccurrenceUID: "occ-gone", UserUID: "user-1"},
		// Member left the band.
		{UID: "resp-3", BandUID: "band-1", OccurrenceUID: "occ-1", UserUID: "user-gone"},
	}

	bandReader.On("Get", mock.Anything, "band-1").Return(band, nil)
	occurrenceRepo.On("ListByBand", mock.Anything, "band-1").Return(occurrences, nil)
	responseRepo.On("ListByBand", mock.Anything, "band-1").Return(responses, nil)
	responseRepo.On("DeleteWithoutRevision", mock.Anything, "resp-2").Return(nil)
	responseRepo.On("DeleteWithoutRevision", mock.Anything, "resp-3").Return(nil)

	summary, err := service.Reconcile(ctx, "band-1")

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 2, summary.Removed)
	responseRepo.AssertNotCalled(t, "DeleteWithoutRevision", mock.Anything, "resp-1")
}

func TestResponseSyncService_Reconcile_ConflictMeansAlreadyCreated(t *testing.T) {
	service, bandReader, occurrenceRepo, responseRepo, _ := newTestResponseSyncService()
	ctx := context.Background()

	band := testBand("user-1", "user-2")
	occurrences := []*models.RehearsalOccurrence{
		{UID: "occ-1", BandUID: "band-1", Date: "2026-09-01"},
	}

	bandReader.On("Get", mock.Anything, "band-1").Return(band, nil)
	occurrenceRepo.On("ListByBand", mock.Anything, "band-1").Return(occurrences, nil)
	responseRepo.On("ListByBand", mock.Anything, "band-1").Return([]*models.Response{}, nil)
	responseRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Response) bool {
		return r.UserUID == "user-1"
	})).Return(domain.NewConflictError("response already exists"))
	responseRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Response) bool {
		return r.UserUID == "user-2"
	})).Return(nil)

	summary, err := service.Reconcile(ctx, "band-1")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
}

func TestResponseSyncService_Reconcile_BandNotFound(t *testing.T) {
	service, bandReader, _, _, _ := newTestResponseSyncService()

	bandReader.On("Get", mock.Anything, "band-x").Return(nil, domain.NewNotFoundError("band 'band-x' not found"))

	summary, err := service.Reconcile(context.Background(), "band-x")

	assert.Nil(t, summary)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestResponseSyncService_Reconcile_DefaultAttendingConfigurable(t *testing.T) {
	service, bandReader, occurrenceRepo, responseRepo, _ := newTestResponseSyncService()
	service.Config.DefaultAttending = false
	ctx := context.Background()

	bandReader.On("Get", mock.Anything, "band-1").Return(testBand("user-1"), nil)
	occurrenceRepo.On("ListByBand", mock.Anything, "band-1").Return([]*models.RehearsalOccurrence{
		{UID: "occ-1", BandUID: "band-1", Date: "2026-09-01"},
	}, nil)
	responseRepo.On("ListByBand", mock.Anything, "band-1").Return([]*models.Response{}, nil)
	responseRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Response) bool {
		return !r.Attending
	})).Return(nil)

	summary, err := service.Reconcile(ctx, "band-1")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	responseRepo.AssertExpectations(t)
}

func TestResponseSyncService_UpdateResponse(t *testing.T) {
	tests := []struct {
		name        string
		patch       *models.ResponsePatch
		expectError bool
		errorType   domain.ErrorType
		check       func(t *testing.T, updated *models.Response)
	}{
		{
			name:        "nil patch is a validation error",
			patch:       nil,
			expectError: true,
			errorType:   domain.ErrorTypeValidation,
		},
		{
			name:        "empty patch is a validation error",
			patch:       &models.ResponsePatch{},
			expectError: true,
			errorType:   domain.ErrorTypeValidation,
		},
		{
			name:  "attending flips and comment is kept",
			patch: &models.ResponsePatch{Attending: utils.BoolPtr(false)},
			check: func(t *testing.T, updated *models.Response) {
				assert.False(t, updated.Attending)
				assert.Equal(t, "bringing the amp", updated.Comment)
			},
		},
		{
			name:  "comment update keeps attending",
			patch: &models.ResponsePatch{Comment: utils.StringPtr("running late")},
			check: func(t *testing.T, updated *models.Response) {
				assert.True(t, updated.Attending)
				assert.Equal(t, "running late", updated.Comment)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _, responseRepo, messageBuilder := newTestResponseSyncService()

			response := &models.Response{
				UID:           "resp-1",
				BandUID:       "band-1",
				OccurrenceUID: "occ-1",
				UserUID:       "user-1",
				Attending:     true,
				Comment:       "bringing the amp",
			}
			responseRepo.On("GetWithRevision", mock.Anything, "resp-1").Return(response, uint64(3), nil)
			responseRepo.On("Update", mock.Anything, mock.Anything, uint64(3)).Return(nil)
			messageBuilder.On("SendResponseActivity", mock.Anything, models.ActionUpdated, mock.Anything, mock.Anything).Return(nil)

			updated, err := service.UpdateResponse(context.Background(), "resp-1", tt.patch)

			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, tt.errorType, domain.GetErrorType(err))
				return
			}
			require.NoError(t, err)
			require.NotNil(t, updated)
			require.NotNil(t, updated.UpdatedAt)
			tt.check(t, updated)
			messageBuilder.AssertCalled(t, "SendResponseActivity", mock.Anything, models.ActionUpdated, mock.Anything, mock.Anything)
		})
	}
}
