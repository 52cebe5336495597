// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

// Package service contains the scheduling engine: recurrence expansion,
// response synchronization, the rehearsal lifecycle manager, and the
// authorization boundary in front of them.
package service

// ServiceConfig holds the policy knobs shared by the services.
type ServiceConfig struct {
	// DefaultAttending is the attendance value given to responses created
	// by reconciliation. The product default is optimistic: members attend
	// unless they opt out.
	DefaultAttending bool
}

// NewServiceConfig returns the default service configuration.
func NewServiceConfig() ServiceConfig {
	return ServiceConfig{
		DefaultAttending: true,
	}
}
