// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package models

// ReconcileSummary reports what a response reconciliation pass changed.
// A second pass with no intervening mutations reports all zeros.
type ReconcileSummary struct {
	Created int `json:"created"`
	Removed int `json:"removed"`
}

// AutoManageSummary reports what an auto-manage pass changed for a band.
type AutoManageSummary struct {
	Pruned           int `json:"pruned"`
	Created          int `json:"created"`
	ResponsesCreated int `json:"responses_created"`
	ResponsesRemoved int `json:"responses_removed"`
	// SeriesErrors counts series whose repair failed and was skipped.
	// Failures are logged, never fatal for the pass.
	SeriesErrors int `json:"series_errors,omitempty"`
}
