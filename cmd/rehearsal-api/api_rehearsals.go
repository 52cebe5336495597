// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// CreateRehearsal handles POST /bands/{bandUID}/rehearsals.
func (s *RehearsalsAPI) CreateRehearsal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := s.principal(r)
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	var req models.CreateRehearsalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	occurrences, err := s.schedulingService.CreateRehearsal(ctx, principal, chi.URLParam(r, "bandUID"), &req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, occurrences)
}

// ListRehearsals handles GET /bands/{bandUID}/rehearsals.
func (s *RehearsalsAPI) ListRehearsals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := s.principal(r)
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	occurrences, err := s.schedulingService.ListRehearsals(ctx, principal, chi.URLParam(r, "bandUID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, occurrences)
}

// GetRehearsal handles GET /rehearsals/{occurrenceUID}.
func (s *RehearsalsAPI) GetRehearsal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := s.principal(r)
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	occurrence, err := s.schedulingService.GetRehearsal(ctx, principal, chi.URLParam(r, "occurrenceUID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, occurrence)
}

type updatedResponse struct {
	Updated int `json:"updated"`
}

// UpdateRehearsal handles PUT /rehearsals/{occurrenceUID}. With
// ?all_recurring=true the patch applies to every future occurrence of the
// series.
func (s *RehearsalsAPI) UpdateRehearsal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := s.principal(r)
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	var patch models.RehearsalPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(ctx, w, err)
		return
	}

	allRecurring := r.URL.Query().Get("all_recurring") == "true"
	updated, err := s.schedulingService.UpdateRehearsal(ctx, principal, chi.URLParam(r, "occurrenceUID"), &patch, allRecurring)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, updatedResponse{Updated: updated})
}

type deletedResponse struct {
	Deleted int `json:"deleted"`
}

// DeleteRehearsal handles DELETE /rehearsals/{occurrenceUID}. With
// ?all_recurring=true the whole series is removed, past dates included.
func (s *RehearsalsAPI) DeleteRehearsal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := s.principal(r)
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	allRecurring := r.URL.Query().Get("all_recurring") == "true"
	deleted, err := s.schedulingService.DeleteRehearsal(ctx, principal, chi.URLParam(r, "occurrenceUID"), allRecurring)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, deletedResponse{Deleted: deleted})
}

// AutoManage handles POST /bands/{bandUID}/auto-manage. Clients invoke it on
// login to bring the band's rolling window of rehearsals up to date.
func (s *RehearsalsAPI) AutoManage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := s.principal(r)
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	summary, err := s.schedulingService.AutoManage(ctx, principal, chi.URLParam(r, "bandUID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, summary)
}

// SendSummaryEmail handles POST /bands/{bandUID}/summary-email.
func (s *RehearsalsAPI) SendSummaryEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := s.principal(r)
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	if err := s.schedulingService.SendSummaryEmail(ctx, principal, chi.URLParam(r, "bandUID")); err != nil {
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
