// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package email

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEmailMessage(t *testing.T) {
	config := SMTPConfig{From: "noreply@bandroom.example"}

	message := buildEmailMessage(
		"alex@example.com",
		"Rehearsal schedule: Midnight Soundcheck",
		"<html><body>schedule</body></html>",
		"schedule",
		"BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
		config,
	)

	assert.Contains(t, message, "From: noreply@bandroom.example\r\n")
	assert.Contains(t, message, "To: alex@example.com\r\n")
	assert.Contains(t, message, "Subject: Rehearsal schedule: Midnight Soundcheck\r\n")
	assert.Contains(t, message, "MIME-Version: 1.0\r\n")
	assert.Contains(t, message, "Content-Type: multipart/mixed;")
	assert.Contains(t, message, "Content-Type: multipart/alternative;")
	assert.Contains(t, message, "Content-Type: text/plain; charset=\"UTF-8\"")
	assert.Contains(t, message, "Content-Type: text/html; charset=\"UTF-8\"")
	assert.Contains(t, message, "<html><body>schedule</body></html>")

	assert.Contains(t, message, "Content-Type: text/calendar; method=PUBLISH; charset=\"UTF-8\"")
	assert.Contains(t, message, "Content-Disposition: attachment; filename=\"rehearsals.ics\"")

	encoded := base64.StdEncoding.EncodeToString([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	assert.Contains(t, message, encoded)
}

func TestBuildEmailMessageWithoutCalendar(t *testing.T) {
	config := SMTPConfig{From: "noreply@bandroom.example"}

	message := buildEmailMessage("alex@example.com", "Subject", "<p>hi</p>", "hi", "", config)

	assert.NotContains(t, message, "text/calendar")
	assert.NotContains(t, message, "Content-Disposition: attachment")
}

func TestBuildEmailMessageBoundaries(t *testing.T) {
	config := SMTPConfig{From: "noreply@bandroom.example"}

	message := buildEmailMessage("alex@example.com", "Subject", "<p>hi</p>", "hi", "ics", config)

	// Both containers must be terminated.
	mixedClosings := strings.Count(message, "--===============mixed1234567890==--")
	altClosings := strings.Count(message, "--===============alt1234567890==--")
	require.Equal(t, 1, mixedClosings)
	require.Equal(t, 1, altClosings)
}
