// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// RehearsalActivitySender publishes activity events about occurrences.
type RehearsalActivitySender interface {
	SendRehearsalActivity(ctx context.Context, action models.MessageAction, occurrence *models.RehearsalOccurrence, summary string) error
}

// ResponseActivitySender publishes activity events about responses.
type ResponseActivitySender interface {
	SendResponseActivity(ctx context.Context, action models.MessageAction, response *models.Response, summary string) error
}

// BandNameResolver resolves a band UID to its display name via the bands
// service.
type BandNameResolver interface {
	GetBandName(ctx context.Context, bandUID string) (string, error)
}

// MessageBuilder is the full messaging surface the services depend on.
type MessageBuilder interface {
	RehearsalActivitySender
	ResponseActivitySender
	BandNameResolver
}
