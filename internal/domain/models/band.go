// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package models

// Role is the role a user has within a band.
type Role string

// Band member roles.
const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// BandMember is one user's membership in a band. Name and Email are
// denormalized from the bands service roster so schedule emails can be
// addressed without a second lookup.
type BandMember struct {
	UserUID string `json:"user_uid"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    Role   `json:"role"`
}

// Band represents a band and its member roster. Bands are owned by the
// bands service; this service only reads them to scope rehearsals and
// responses.
type Band struct {
	UID     string       `json:"uid"`
	Name    string       `json:"name"`
	Members []BandMember `json:"members"`
}

// MemberRole returns the role of the given user in the band, and whether
// the user is a member at all.
func (b *Band) MemberRole(userUID string) (Role, bool) {
	for _, m := range b.Members {
		if m.UserUID == userUID {
			return m.Role, true
		}
	}
	return "", false
}

// IsMember reports whether the user belongs to the band.
func (b *Band) IsMember(userUID string) bool {
	_, ok := b.MemberRole(userUID)
	return ok
}

// IsAdmin reports whether the user is an admin of the band.
func (b *Band) IsAdmin(userUID string) bool {
	role, ok := b.MemberRole(userUID)
	return ok && role == RoleAdmin
}

// MemberUIDs returns the set of user UIDs in the band.
func (b *Band) MemberUIDs() []string {
	uids := make([]string, 0, len(b.Members))
	for _, m := range b.Members {
		uids = append(uids, m.UserUID)
	}
	return uids
}
