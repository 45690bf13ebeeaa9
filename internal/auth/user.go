// Copyright (c) 2026 Trailgo. All rights reserved.

// Package auth owns the account entity and every credential use case of the
// Trailgo platform: signup, login, password reset, password change, and the
// admin-facing account management operations.
//
// # Architecture
//
// Entities in this package represent the "Truth" of the system.
// They have no dependencies on outer layers (like databases, APIs, or libraries).
// This makes the core logic highly testable and resilient to technology changes.
package auth

import (
	"strings"
	"time"

	"github.com/ledinhkha/trailgo/internal/platform/sec"
)

// User represents a registered account on the Trailgo platform.
//
// # Rules
//   - Email is unique and stored lowercased.
//   - PasswordHash is generated via bcrypt exclusively by the Service.
//   - PasswordResetTokenHash stores only the SHA-256 digest of the reset
//     token; the raw token exists transiently in the reset email.
//   - A nil PasswordChangedAt means the password has never been changed
//     since signup.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"` // Explicitly omitted from JSON for security.
	Photo        string   `json:"photo,omitempty"`
	Role         sec.Role `json:"role"`

	PasswordChangedAt      *time.Time `json:"-"`
	PasswordResetTokenHash *string    `json:"-"`
	PasswordResetExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity projects the account into the request-scoped form consumed by the
// authentication middleware and downstream handlers.
func (user *User) Identity() *sec.Identity {
	return &sec.Identity{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		Role:              user.Role,
		PasswordChangedAt: user.PasswordChangedAt,
	}
}

// NormalizeEmail canonicalizes an email address for storage and lookup.
// Uniqueness is enforced on the canonical form, so "A@x.com" and "a@x.com"
// are the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
