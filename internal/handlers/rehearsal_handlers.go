// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
	"github.com/bandroom/rehearsal-service/internal/logging"
	"github.com/bandroom/rehearsal-service/internal/service"
)

// RehearsalHandler handles auto-manage triggers for rehearsal schedules.
type RehearsalHandler struct {
	rehearsalService *service.RehearsalService
}

func NewRehearsalHandler(rehearsalService *service.RehearsalService) *RehearsalHandler {
	return &RehearsalHandler{
		rehearsalService: rehearsalService,
	}
}

func (h *RehearsalHandler) HandlerReady() bool {
	return h.rehearsalService.ServiceReady()
}

// HandleMessage implements domain.MessageHandler interface
func (h *RehearsalHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.RehearsalAutoManageSubject: h.HandleAutoManage,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		respond(ctx, msg, nil)
		return
	}

	response, err := handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
		respond(ctx, msg, nil)
		return
	}

	respond(ctx, msg, response)
}

// HandleAutoManage is the message handler for the auto_manage subject. The
// payload is the band UID; the reply, when requested, is the JSON summary of
// what the pass changed.
func (h *RehearsalHandler) HandleAutoManage(ctx context.Context, msg domain.Message) ([]byte, error) {
	if !h.rehearsalService.ServiceReady() {
		slog.ErrorContext(ctx, "service not ready")
		return nil, fmt.Errorf("service not ready")
	}

	bandUID := string(msg.Data())
	if bandUID == "" {
		slog.WarnContext(ctx, "band UID is empty in auto-manage message")
		return nil, fmt.Errorf("band UID is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("band_uid", bandUID))
	slog.InfoContext(ctx, "processing auto-manage trigger")

	summary, err := h.rehearsalService.AutoManage(ctx, bandUID)
	if err != nil {
		slog.ErrorContext(ctx, "error auto-managing band rehearsals", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "auto-manage pass completed",
		"occurrences_pruned", summary.Pruned,
		"occurrences_created", summary.Created,
		"responses_created", summary.ResponsesCreated,
		"responses_removed", summary.ResponsesRemoved,
	)

	response, err := json.Marshal(summary)
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling auto-manage summary", logging.ErrKey, err)
		return nil, err
	}
	return response, nil
}
