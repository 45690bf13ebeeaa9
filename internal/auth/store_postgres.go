// Copyright (c) 2026 Trailgo. All rights reserved.

// # Storage Layer
//
// Repositories in this file are strictly separated from domain logic. They
// implement the domain-defined [UserRepository] interface using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows or SQLSTATE 23505) are mapped
// to domain-friendly [apperr.AppError] types via the dberr bridge, so no
// storage detail leaks to the client.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledinhkha/trailgo/internal/platform/apperr"
	"github.com/ledinhkha/trailgo/internal/platform/dberr"
	"github.com/ledinhkha/trailgo/pkg/pagination"
)

// userColumns is the canonical SELECT column list for the users.account table.
const userColumns = `
	id, name, email, password_hash, photo, role,
	password_changed_at, password_reset_token_hash, password_reset_expires_at,
	created_at, updated_at`

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// scanUser maps a single row onto a [User] entity.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Photo,
		&user.Role,
		&user.PasswordChangedAt,
		&user.PasswordResetTokenHash,
		&user.PasswordResetExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create persists a new account record into the users.account table.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, name, email, password_hash, photo, role, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Photo,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves an account record by its unique ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users.account WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// FindByEmail retrieves an account record by its unique email address.
// Callers are expected to pass the normalized form.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users.account WHERE email = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

// FindByResetTokenHash retrieves the account holding a live reset-token digest.
// Expiry is part of the WHERE clause, so unknown, consumed, and expired tokens
// are all the same NotFound to the caller.
func (repository *PostgresUserRepository) FindByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users.account
		WHERE password_reset_token_hash = $1 AND password_reset_expires_at > $2`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, tokenHash, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Reset token")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_reset_token_failed: %w", err)
	}

	return user, nil
}

// SetResetToken stores the reset-token digest and expiry, overwriting any
// previous pair on the row.
func (repository *PostgresUserRepository) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users.account
		SET password_reset_token_hash = $2, password_reset_expires_at = $3, updated_at = $4
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, userID, tokenHash, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_reset_token_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// ClearResetToken removes any outstanding reset-token digest and expiry.
func (repository *PostgresUserRepository) ClearResetToken(ctx context.Context, userID string) error {
	const query = `
		UPDATE users.account
		SET password_reset_token_hash = NULL, password_reset_expires_at = NULL, updated_at = $2
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_clear_reset_token_failed: %w", err)
	}

	return nil
}

// UpdatePassword replaces the password hash, stamps the change time, and
// clears the reset-token pair in one statement.
func (repository *PostgresUserRepository) UpdatePassword(ctx context.Context, userID, newHash string, changedAt time.Time) error {
	const query = `
		UPDATE users.account
		SET password_hash = $2,
		    password_changed_at = $3,
		    password_reset_token_hash = NULL,
		    password_reset_expires_at = NULL,
		    updated_at = $4
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, userID, newHash, changedAt, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// UpdateProfile persists changes to the account's mutable profile fields.
func (repository *PostgresUserRepository) UpdateProfile(ctx context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET name = $2, photo = $3, updated_at = $4
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query, user.ID, user.Name, user.Photo, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_profile_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// UpdateRole replaces the account's role tier.
func (repository *PostgresUserRepository) UpdateRole(ctx context.Context, userID string, role string) error {
	const query = `
		UPDATE users.account
		SET role = $2, updated_at = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, userID, role, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_role_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// List returns a page of accounts ordered by creation time, newest first,
// together with the total row count for pagination metadata.
func (repository *PostgresUserRepository) List(ctx context.Context, params pagination.Params) ([]*User, int, error) {
	const countQuery = `SELECT COUNT(*) FROM users.account`

	var total int
	if err := repository.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	query := `SELECT ` + userColumns + `
		FROM users.account
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_rows_failed: %w", err)
	}

	return users, total, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepository)(nil)
