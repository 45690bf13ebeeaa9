// Copyright (c) 2026 Trailgo. All rights reserved.

package sec

import "time"

// # User Roles

// Role represents the authorization tier granted to an account.
type Role string

const (
	// Unrestricted system access
	RoleAdmin Role = "admin"

	// Can create and manage the tour catalogue
	RoleLeadGuide Role = "lead-guide"

	// Runs tours; read access to operational data
	RoleGuide Role = "guide"

	// Default role for standard registered users
	RoleUser Role = "user"
)

// IsValid reports whether r is a recognised [Role] value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleLeadGuide, RoleGuide, RoleUser:
		return true
	}
	return false
}

// # Role Sets

// RoleSet is an explicit allow-set of roles attached to a route declaration.
//
// Routes declare the set as a value (e.g. sec.Roles(sec.RoleAdmin,
// sec.RoleLeadGuide)) instead of passing variadic role arguments around, so
// the authorized tiers of an endpoint are visible at the declaration site.
type RoleSet map[Role]struct{}

// Roles constructs a [RoleSet] from the given roles.
func Roles(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Contains reports whether the role is a member of the set.
func (s RoleSet) Contains(role Role) bool {
	_, ok := s[role]
	return ok
}

// # Resolved Identity

// Identity is the authenticated principal attached to a request context.
//
// # Why a dedicated type?
//
// The authentication middleware resolves the live account record on every
// request (the session token alone is never trusted for existence or role).
// Identity carries exactly the fields downstream authorization and handlers
// need, without exposing the credential record itself.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  Role

	// PasswordChangedAt is nil when the password has never been rotated.
	PasswordChangedAt *time.Time
}

// PasswordChangedAfter reports whether the account's password was changed
// strictly after the given token issuance time.
//
// A session token minted before a password rotation must never authenticate
// after it, even inside its signature-expiry window.
func (i *Identity) PasswordChangedAfter(issuedAt time.Time) bool {
	if i.PasswordChangedAt == nil {
		return false
	}
	return i.PasswordChangedAt.After(issuedAt)
}
