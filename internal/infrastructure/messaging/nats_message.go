// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"github.com/nats-io/nats.go"

	"github.com/bandroom/rehearsal-service/internal/domain"
)

// NatsMessage adapts a *nats.Msg to the domain Message interface.
type NatsMessage struct {
	msg *nats.Msg
}

// NewNatsMessage wraps a NATS message for the domain handlers.
func NewNatsMessage(msg *nats.Msg) *NatsMessage {
	return &NatsMessage{msg: msg}
}

func (m *NatsMessage) Subject() string {
	return m.msg.Subject
}

func (m *NatsMessage) Data() []byte {
	return m.msg.Data
}

func (m *NatsMessage) HasReply() bool {
	return m.msg.Reply != ""
}

func (m *NatsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

// Ensure NatsMessage implements domain.Message
var _ domain.Message = (*NatsMessage)(nil)
