// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
	"github.com/bandroom/rehearsal-service/internal/logging"
)

// requestTimeout bounds request/reply calls to the bands service.
const requestTimeout = 5 * time.Second

// INatsConn is the NATS connection surface the message builder needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
	Request(subj string, data []byte, timeout time.Duration) (*nats.Msg, error)
}

// MessageBuilder builds service messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

func (m *MessageBuilder) sendActivityMessage(ctx context.Context, subject string, message models.ActivityMessage) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling activity message", logging.ErrKey, err, "subject", subject)
		return err
	}

	return m.sendMessage(ctx, subject, messageBytes)
}

// SendRehearsalActivity publishes a rehearsal create/update/delete event for
// the activity log consumers.
func (m *MessageBuilder) SendRehearsalActivity(ctx context.Context, action models.MessageAction, occurrence *models.RehearsalOccurrence, summary string) error {
	return m.sendActivityMessage(ctx, models.ActivityRehearsalSubject, models.ActivityMessage{
		Action:    action,
		BandUID:   occurrence.BandUID,
		EntityUID: occurrence.UID,
		Summary:   summary,
		Tags:      occurrence.Tags(),
		Timestamp: time.Now().UTC(),
	})
}

// SendResponseActivity publishes a response event for the activity log
// consumers.
func (m *MessageBuilder) SendResponseActivity(ctx context.Context, action models.MessageAction, response *models.Response, summary string) error {
	return m.sendActivityMessage(ctx, models.ActivityResponseSubject, models.ActivityMessage{
		Action:    action,
		BandUID:   response.BandUID,
		EntityUID: response.UID,
		Summary:   summary,
		Timestamp: time.Now().UTC(),
	})
}

// GetBandName asks the bands service for a band's display name over NATS
// request/reply. Payloads are msgpack encoded.
func (m *MessageBuilder) GetBandName(ctx context.Context, bandUID string) (string, error) {
	if !m.NatsConn.IsConnected() {
		return "", domain.NewUnavailableError("NATS connection is not available")
	}

	requestBytes, err := msgpack.Marshal(models.BandGetNameRequest{BandUID: bandUID})
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling band name request", logging.ErrKey, err)
		return "", domain.NewInternalError("failed to encode band name request", err)
	}

	msg, err := m.NatsConn.Request(models.BandGetNameSubject, requestBytes, requestTimeout)
	if err != nil {
		slog.ErrorContext(ctx, "error requesting band name", logging.ErrKey, err, "band_uid", bandUID)
		return "", domain.NewUnavailableError(
			fmt.Sprintf("failed to resolve name for band '%s'", bandUID), err)
	}

	var reply models.BandGetNameReply
	if err := msgpack.Unmarshal(msg.Data, &reply); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling band name reply", logging.ErrKey, err, "band_uid", bandUID)
		return "", domain.NewInternalError("failed to decode band name reply", err)
	}

	return reply.Name, nil
}

// Compile-time interface check
var _ domain.MessageBuilder = (*MessageBuilder)(nil)
