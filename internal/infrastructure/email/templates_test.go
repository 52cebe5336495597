// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

func testSummary() domain.EmailSummary {
	return domain.EmailSummary{
		BandUID:  "band-1",
		BandName: "Midnight Soundcheck",
		Recipients: []domain.SummaryEmailRecipient{
			{Email: "alex@example.com", Name: "Alex"},
		},
		Occurrences: []*models.RehearsalOccurrence{
			{
				UID:       "occ-1",
				BandUID:   "band-1",
				Date:      "2026-09-15",
				StartTime: "19:00",
				EndTime:   "21:30",
				Title:     "Setlist run-through",
			},
			{
				UID:     "occ-2",
				BandUID: "band-1",
				Date:    "2026-09-22",
			},
		},
		Responses: []*models.Response{
			{UID: "resp-1", BandUID: "band-1", OccurrenceUID: "occ-1", UserUID: "user-1", Attending: true},
			{UID: "resp-2", BandUID: "band-1", OccurrenceUID: "occ-1", UserUID: "user-2", Attending: false, Comment: "on tour"},
			{UID: "resp-3", BandUID: "band-1", OccurrenceUID: "occ-2", UserUID: "user-1", Attending: true},
		},
		MemberNames: map[string]string{
			"user-1": "Alex",
		},
	}
}

func TestBuildSummaryData(t *testing.T) {
	data := BuildSummaryData(testSummary())

	assert.Equal(t, "Midnight Soundcheck", data.BandName)
	require.Len(t, data.Occurrences, 2)

	first := data.Occurrences[0]
	assert.Equal(t, "Tuesday, 15 September 2026", first.Date)
	assert.Equal(t, "19:00", first.StartTime)
	assert.Equal(t, "21:30", first.EndTime)
	assert.Equal(t, "Setlist run-through", first.Title)
	require.Len(t, first.Attending, 1)
	assert.Equal(t, "Alex", first.Attending[0].Name)
	require.Len(t, first.NotAttending, 1)
	// Unknown members fall back to their UID.
	assert.Equal(t, "user-2", first.NotAttending[0].Name)
	assert.Equal(t, "on tour", first.NotAttending[0].Comment)

	second := data.Occurrences[1]
	assert.Equal(t, "Tuesday, 22 September 2026", second.Date)
	assert.Len(t, second.Attending, 1)
	assert.Empty(t, second.NotAttending)
}

func TestRenderRehearsalSummary(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	rendered, err := tm.RenderRehearsalSummary(BuildSummaryData(testSummary()))
	require.NoError(t, err)

	for _, content := range []string{rendered.HTML, rendered.Text} {
		assert.Contains(t, content, "Midnight Soundcheck")
		assert.Contains(t, content, "Tuesday, 15 September 2026")
		assert.Contains(t, content, "Alex")
		assert.Contains(t, content, "on tour")
		assert.Contains(t, content, "Ja")
		assert.Contains(t, content, "Nej")
	}

	// occ-2 has no refusals, so the HTML shows the empty placeholder.
	assert.Contains(t, rendered.HTML, "Nobody yet.")
	assert.Contains(t, rendered.HTML, "Setlist run-through")
}

func TestRenderRehearsalSummaryEscapesHTML(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	summary := testSummary()
	summary.Responses[1].Comment = "<script>alert(1)</script>"

	rendered, err := tm.RenderRehearsalSummary(BuildSummaryData(summary))
	require.NoError(t, err)

	assert.NotContains(t, rendered.HTML, "<script>")
	assert.Contains(t, rendered.HTML, "&lt;script&gt;")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Monday, 14 September 2026", formatDate("2026-09-14"))
	// Unparseable values are shown as stored.
	assert.Equal(t, "not-a-date", formatDate("not-a-date"))
}

func TestNewLineToBreakLine(t *testing.T) {
	assert.Equal(t, "line one<br>line two", string(newLineToBreakLine("line one\nline two")))
	assert.Equal(t, "a &lt;b&gt;", string(newLineToBreakLine("a <b>")))
}
