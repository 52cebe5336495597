// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

// Package handlers contains the NATS message handlers: band lifecycle events
// from the bands service and auto-manage triggers.
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

// BandEventHandler handles band lifecycle events from the bands service.
type BandEventHandler struct {
	rehearsalService    *service.RehearsalService
	responseSyncService *service.ResponseSyncService
}

func NewBandEventHandler(
	rehearsalService *service.RehearsalService,
	responseSyncService *service.ResponseSyncService,
) *BandEventHandler {
	return &BandEventHandler{
		rehearsalService:    rehearsalService,
		responseSyncService: responseSyncService,
	}
}

func (h *BandEventHandler) HandlerReady() bool {
	return h.rehearsalService.ServiceReady() &&
		h.responseSyncService.ServiceReady()
}

// HandleMessage implements domain.MessageHandler interface
func (h *BandEventHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.BandMemberAddedSubject:   h.HandleMembershipChanged,
		models.BandMemberRemovedSubject: h.HandleMembershipChanged,
		models.BandDeletedSubject:       h.HandleBandDeleted,
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

// HandleMembershipChanged is the message handler for the member_added and
// member_removed subjects. Both reduce to the same repair: reconcile the
// band's responses against its current roster.
func (h *BandEventHandler) HandleMembershipChanged(ctx context.Context, msg domain.Message) ([]byte, error) {
	if !h.responseSyncService.ServiceReady() {
		slog.ErrorContext(ctx, "service not ready")
		return nil, fmt.Errorf("service not ready")
	}

	var event models.BandMembershipEvent
	err := json.Unmarshal(msg.Data(), &event)
	if err != nil {
		slog.ErrorContext(ctx, "error unmarshaling band membership event", logging.ErrKey, err)
		return nil, err
	}

	if event.BandUID == "" {
		slog.WarnContext(ctx, "band UID is empty in membership event")
		return nil, fmt.Errorf("band UID is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("band_uid", event.BandUID))
	if event.UserUID != "" {
		ctx = logging.AppendCtx(ctx, slog.String("user_uid", event.UserUID))
	}
	slog.InfoContext(ctx, "processing band membership change, reconciling responses")

	summary, err := h.responseSyncService.Reconcile(ctx, event.BandUID)
	if err != nil {
		slog.ErrorContext(ctx, "error reconciling responses after membership change", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "responses reconciled after membership change",
		"responses_created", summary.Created,
		"responses_removed", summary.Removed,
	)
	return []byte("success"), nil
}

// HandleBandDeleted is the message handler for the band_deleted subject.
// It removes every occurrence and response the band owned.
func (h *BandEventHandler) HandleBandDeleted(ctx context.Context, msg domain.Message) ([]byte, error) {
	if !h.rehearsalService.ServiceReady() {
		slog.ErrorContext(ctx, "service not ready")
		return nil, fmt.Errorf("service not ready")
	}

	bandUID := string(msg.Data())
	if bandUID == "" {
		slog.WarnContext(ctx, "band UID is empty in deletion message")
		return nil, fmt.Errorf("band UID is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("band_uid", bandUID))
	slog.InfoContext(ctx, "processing band deletion, purging rehearsal data")

	deleted, err := h.rehearsalService.PurgeBand(ctx, bandUID)
	if err != nil {
		slog.ErrorContext(ctx, "error purging rehearsal data for deleted band",
			logging.ErrKey, err,
			logging.PriorityCritical())
		return nil, err
	}

	slog.InfoContext(ctx, "purged rehearsal data for deleted band", "occurrences_deleted", deleted)
	return []byte("success"), nil
}

func respond(ctx context.Context, msg domain.Message, response []byte) {
	if !msg.HasReply() {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
		return
	}
	if err := msg.Respond(response); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
	}
}
