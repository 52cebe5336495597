// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

//go:embed templates/*
var templateFS embed.FS

// RenderedEmail holds both HTML and text versions of a rendered email
type RenderedEmail struct {
	HTML string
	Text string
}

// SummaryTemplateManager defines the interface for rendering rehearsal email templates
type SummaryTemplateManager interface {
	RenderRehearsalSummary(data SummaryEmailData) (*RenderedEmail, error)
}

// TemplateManager is the default implementation of SummaryTemplateManager
type TemplateManager struct {
	summaryHTML *template.Template
	summaryText *template.Template
}

type templateConfig struct {
	name string
	path string
}

// NewTemplateManager creates a new template manager with all templates loaded
func NewTemplateManager() (*TemplateManager, error) {
	summaryHTML, err := loadTemplate(templateConfig{"rehearsal_summary.html", "templates/rehearsal_summary.html"})
	if err != nil {
		return nil, err
	}
	summaryText, err := loadTemplate(templateConfig{"rehearsal_summary.txt", "templates/rehearsal_summary.txt"})
	if err != nil {
		return nil, err
	}

	return &TemplateManager{
		summaryHTML: summaryHTML,
		summaryText: summaryText,
	}, nil
}

// Ensure TemplateManager implements SummaryTemplateManager
var _ SummaryTemplateManager = (*TemplateManager)(nil)

// SummaryAnswer is one member's answer shown in the summary.
type SummaryAnswer struct {
	Name    string
	Comment string
}

// SummaryOccurrence is one upcoming rehearsal shown in the summary.
type SummaryOccurrence struct {
	Date         string
	StartTime    string
	EndTime      string
	Title        string
	Attending    []SummaryAnswer
	NotAttending []SummaryAnswer
}

// SummaryEmailData is the template payload for the rehearsal summary email.
type SummaryEmailData struct {
	BandName    string
	Occurrences []SummaryOccurrence
}

// RenderRehearsalSummary renders the summary email with both HTML and text versions
func (tm *TemplateManager) RenderRehearsalSummary(data SummaryEmailData) (*RenderedEmail, error) {
	html, err := renderTemplate(tm.summaryHTML, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render summary HTML: %w", err)
	}

	text, err := renderTemplate(tm.summaryText, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render summary text: %w", err)
	}

	return &RenderedEmail{HTML: html, Text: text}, nil
}

// BuildSummaryData flattens the domain summary into the template payload,
// grouping each occurrence's answers into attending and not attending.
func BuildSummaryData(summary domain.EmailSummary) SummaryEmailData {
	answersByOccurrence := make(map[string][]*models.Response)
	for _, response := range summary.Responses {
		answersByOccurrence[response.OccurrenceUID] = append(answersByOccurrence[response.OccurrenceUID], response)
	}

	data := SummaryEmailData{BandName: summary.BandName}
	for _, occurrence := range summary.Occurrences {
		item := SummaryOccurrence{
			Date:      formatDate(occurrence.Date),
			StartTime: occurrence.StartTime,
			EndTime:   occurrence.EndTime,
			Title:     occurrence.Title,
		}
		for _, response := range answersByOccurrence[occurrence.UID] {
			name := summary.MemberNames[response.UserUID]
			if name == "" {
				name = response.UserUID
			}
			answer := SummaryAnswer{Name: name, Comment: response.Comment}
			if response.Attending {
				item.Attending = append(item.Attending, answer)
			} else {
				item.NotAttending = append(item.NotAttending, answer)
			}
		}
		data.Occurrences = append(data.Occurrences, item)
	}

	return data
}

// loadTemplate loads a single template with the shared function map
func loadTemplate(config templateConfig) (*template.Template, error) {
	tmpl, err := template.New(config.name).Funcs(template.FuncMap{
		"formatDate":         formatDate,
		"newLineToBreakLine": newLineToBreakLine,
	}).ParseFS(templateFS, config.path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", config.name, err)
	}
	return tmpl, nil
}

// renderTemplate renders any template with the provided data
func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatDate formats a stored YYYY-MM-DD date for display in emails.
// An unparseable value is shown as stored.
func formatDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, 2 January 2006")
}

// newLineToBreakLine converts newlines to HTML break tags for proper email formatting
func newLineToBreakLine(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	replaced := strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(replaced)
}
