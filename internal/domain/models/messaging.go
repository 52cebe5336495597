// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package models

import "time"

// NATS subjects published by this service.
const (
	// ActivityRehearsalSubject carries rehearsal create/update/delete events.
	ActivityRehearsalSubject = "bandroom.activity.rehearsal"

	// ActivityResponseSubject carries response update events.
	ActivityResponseSubject = "bandroom.activity.response"
)

// NATS subjects consumed by this service.
const (
	// BandMemberAddedSubject is published by the bands service when a user
	// joins a band. The payload is a BandMembershipEvent.
	BandMemberAddedSubject = "bandroom.bands-api.member_added"

	// BandMemberRemovedSubject is published by the bands service when a user
	// leaves or is removed from a band. The payload is a BandMembershipEvent.
	BandMemberRemovedSubject = "bandroom.bands-api.member_removed"

	// BandDeletedSubject is published by the bands service when a band is
	// deleted. The payload is the band UID.
	BandDeletedSubject = "bandroom.bands-api.band_deleted"

	// RehearsalAutoManageSubject triggers an auto-manage pass for a band.
	// The payload is the band UID. Login handlers and periodic timers in
	// other services publish to this subject.
	RehearsalAutoManageSubject = "bandroom.rehearsals-api.auto_manage"
)

// NATS subjects this service sends requests on.
const (
	// BandGetNameSubject resolves a band UID to its display name.
	// Request and reply payloads are msgpack encoded.
	BandGetNameSubject = "bandroom.bands-api.get_name"
)

// RehearsalsAPIQueue is the NATS queue group for this service's subscriptions.
const RehearsalsAPIQueue = "bandroom-rehearsals-api"

// MessageAction is the type of action that a message is about.
type MessageAction string

// Message actions for activity messages.
const (
	ActionCreated MessageAction = "created"
	ActionUpdated MessageAction = "updated"
	ActionDeleted MessageAction = "deleted"
)

// ActivityMessage is the payload for rehearsal and response activity
// subjects. Consumers use it to maintain the per-band activity log.
type ActivityMessage struct {
	Action    MessageAction `json:"action"`
	BandUID   string        `json:"band_uid"`
	EntityUID string        `json:"entity_uid"`
	Summary   string        `json:"summary,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// BandMembershipEvent is the payload of member_added/member_removed events.
type BandMembershipEvent struct {
	BandUID string `json:"band_uid"`
	UserUID string `json:"user_uid"`
}

// BandGetNameRequest is the request payload for BandGetNameSubject.
type BandGetNameRequest struct {
	BandUID string `msgpack:"band_uid"`
}

// BandGetNameReply is the reply payload for BandGetNameSubject.
type BandGetNameReply struct {
	Name string `msgpack:"name"`
}
