// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/handlers"
	"github.com/bandroom/rehearsal-service/internal/logging"
	"github.com/bandroom/rehearsal-service/internal/service"
)

// RehearsalsAPI is the HTTP surface of the rehearsal service.
type RehearsalsAPI struct {
	authService       *service.AuthService
	schedulingService *service.SchedulingService
	bandEventHandler  *handlers.BandEventHandler
	rehearsalHandler  *handlers.RehearsalHandler
}

// NewRehearsalsAPI creates the API with its services and message handlers.
func NewRehearsalsAPI(
	authService *service.AuthService,
	schedulingService *service.SchedulingService,
	bandEventHandler *handlers.BandEventHandler,
	rehearsalHandler *handlers.RehearsalHandler,
) *RehearsalsAPI {
	return &RehearsalsAPI{
		authService:       authService,
		schedulingService: schedulingService,
		bandEventHandler:  bandEventHandler,
		rehearsalHandler:  rehearsalHandler,
	}
}

// Ready reports whether every service and handler is wired and usable.
func (s *RehearsalsAPI) Ready() bool {
	return s.authService.ServiceReady() &&
		s.schedulingService.ServiceReady() &&
		s.bandEventHandler.HandlerReady() &&
		s.rehearsalHandler.HandlerReady()
}

// Livez implements the livez endpoint.
func (s *RehearsalsAPI) Livez(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Readyz implements the readyz endpoint.
func (s *RehearsalsAPI) Readyz(w http.ResponseWriter, _ *http.Request) {
	if !s.Ready() {
		http.Error(w, "service not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// principal authenticates the request's bearer token and returns the caller's
// principal.
func (s *RehearsalsAPI) principal(r *http.Request) (string, error) {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if token == "" {
		return "", domain.NewValidationError("missing bearer token")
	}
	return s.authService.ParsePrincipal(r.Context(), token, slog.Default())
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("invalid request body", err)
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "error encoding response", logging.ErrKey, err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps a domain error onto an HTTP status code.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		status = http.StatusBadRequest
	case domain.ErrorTypeForbidden:
		status = http.StatusForbidden
	case domain.ErrorTypeNotFound:
		status = http.StatusNotFound
	case domain.ErrorTypeConflict:
		status = http.StatusConflict
	case domain.ErrorTypeUnavailable:
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(ctx, "internal error handling request", logging.ErrKey, err)
		writeJSON(ctx, w, status, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
}

// writeAuthError maps a failed authentication onto a 401 response.
func writeAuthError(ctx context.Context, w http.ResponseWriter, err error) {
	if domain.GetErrorType(err) == domain.ErrorTypeUnavailable {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "invalid or missing bearer token"})
}
