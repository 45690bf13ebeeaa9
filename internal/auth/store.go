// Copyright (c) 2026 Trailgo. All rights reserved.

package auth

import (
	"context"
	"time"

	"github.com/ledinhkha/trailgo/pkg/pagination"
)

// UserRepository defines the data access contract for user accounts.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently by the team.
//
// # Implementations
//
// The canonical implementation is PostgreSQL (store_postgres.go); tests use
// an in-memory fake.
type UserRepository interface {
	// Create persists a brand-new user account.
	//
	// Returns [apperr.Conflict] if the email is already registered.
	Create(ctx context.Context, user *User) error

	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given (normalized) email.
	//
	// Returns [apperr.NotFound] if no account is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByResetTokenHash returns the account whose stored reset-token digest
	// matches AND whose reset expiry is still in the future. Lookup happens
	// strictly by digest; the raw token never reaches storage.
	//
	// Returns [apperr.NotFound] when the digest is unknown, already consumed,
	// or expired. Callers must not distinguish these cases.
	FindByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*User, error)

	// SetResetToken stores the reset-token digest and expiry on the account,
	// overwriting any previous pair. Last write wins.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ClearResetToken removes the reset-token digest and expiry, if any.
	// Used to roll back reset state when the email cannot be delivered.
	ClearResetToken(ctx context.Context, userID string) error

	// UpdatePassword atomically replaces the password hash, stamps the
	// password-change time, and clears any outstanding reset token.
	// A single statement so no interleaved reset attempt can observe the
	// new hash alongside the old token.
	UpdatePassword(ctx context.Context, userID, newHash string, changedAt time.Time) error

	// UpdateProfile persists changes to mutable profile fields (Name, Photo).
	// Passwords must be updated via [UpdatePassword].
	UpdateProfile(ctx context.Context, user *User) error

	// UpdateRole replaces the account's role tier.
	UpdateRole(ctx context.Context, userID string, role string) error

	// List returns a page of accounts ordered by creation time.
	List(ctx context.Context, params pagination.Params) ([]*User, int, error)
}
