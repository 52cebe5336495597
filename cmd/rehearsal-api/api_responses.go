// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// ListResponses handles GET /bands/{bandUID}/responses.
func (s *RehearsalsAPI) ListResponses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := s.principal(r)
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	responses, err := s.schedulingService.ListResponses(ctx, principal, chi.URLParam(r, "bandUID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, responses)
}

// ListOccurrenceResponses handles GET /rehearsals/{occurrenceUID}/responses.
func (s *RehearsalsAPI) ListOccurrenceResponses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := s.principal(r)
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	responses, err := s.schedulingService.ListOccurrenceResponses(ctx, principal, chi.URLParam(r, "occurrenceUID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, responses)
}

// UpdateResponse handles PUT /responses/{responseUID}. Members update their
// own answer; band admins can update anyone's.
func (s *RehearsalsAPI) UpdateResponse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := s.principal(r)
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	var patch models.ResponsePatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(ctx, w, err)
		return
	}

	response, err := s.schedulingService.UpdateResponse(ctx, principal, chi.URLParam(r, "responseUID"), &patch)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, response)
}

// ReconcileResponses handles POST /bands/{bandUID}/responses/reconcile.
func (s *RehearsalsAPI) ReconcileResponses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := s.principal(r)
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	summary, err := s.schedulingService.ReconcileResponses(ctx, principal, chi.URLParam(r, "bandUID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, summary)
}
