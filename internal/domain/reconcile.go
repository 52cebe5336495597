// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/bandroom/rehearsal-service/internal/domain/models"
)

// ResponseReconciler makes the response set match the required
// (member, occurrence) pairs for a band. The operation is idempotent:
// with no intervening mutations a second run reports zero changes.
type ResponseReconciler interface {
	Reconcile(ctx context.Context, bandUID string) (*models.ReconcileSummary, error)
}
