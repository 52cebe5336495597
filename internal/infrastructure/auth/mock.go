// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"log/slog"
)

// MockJWTAuth is a test double that returns a fixed principal.
type MockJWTAuth struct {
	// Principal is returned from ParsePrincipal; defaults to "test-user".
	Principal string
	// Err, when set, is returned instead.
	Err error
}

// ParsePrincipal returns the configured principal without validating anything.
func (m *MockJWTAuth) ParsePrincipal(_ context.Context, _ string, _ *slog.Logger) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Principal != "" {
		return m.Principal, nil
	}
	return "test-user", nil
}

// Ensure MockJWTAuth implements IJWTAuth
var _ IJWTAuth = (*MockJWTAuth)(nil)
