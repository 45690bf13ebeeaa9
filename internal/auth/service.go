// Copyright (c) 2026 Trailgo. All rights reserved.

// # Use Cases
//
// The Service in this file orchestrates the account entity and interacts
// with storage, mail, and token issuance through interfaces. It is
// technology-agnostic and does not know about HTTP or SQL.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, reset-token
// handling, or login logic must be reviewed by the security team.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/ledinhkha/trailgo/internal/platform/apperr"
	"github.com/ledinhkha/trailgo/internal/platform/constants"
	"github.com/ledinhkha/trailgo/internal/platform/ctxutil"
	"github.com/ledinhkha/trailgo/internal/platform/mail"
	"github.com/ledinhkha/trailgo/internal/platform/sec"
	"github.com/ledinhkha/trailgo/pkg/pagination"
	"github.com/ledinhkha/trailgo/pkg/uuidv7"
)

// TokenIssuer defines the contract for minting session tokens.
// Implemented by [sec.TokenService]; narrowed to an interface so tests can
// observe issuance without real signing keys.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Service implements every account and credential use case.
type Service struct {
	userRepository UserRepository
	tokenIssuer    TokenIssuer
	mailSender     mail.Sender
	publicBaseURL  string
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	tokenIssuer TokenIssuer,
	mailSender mail.Sender,
	publicBaseURL string,
) *Service {
	return &Service{
		userRepository: userRepo,
		tokenIssuer:    tokenIssuer,
		mailSender:     mailSender,
		publicBaseURL:  publicBaseURL,
	}
}

// AuthResult pairs an account with a freshly issued session token. Every
// operation that establishes or re-establishes a session returns one.
type AuthResult struct {
	User  *User
	Token string
}

// SignUpInput holds the data required to enroll a new account.
//
// Note the absence of a role field: the enrollment payload can never select
// a role. Every new account starts as 'user'; elevation is a separate
// admin-only operation.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// SignUp validates, hashes, and persists a brand new account, then starts
// its first session.
//
// # Business Rules
//   - Emails are unique on their normalized (lowercased) form.
//   - Default role is always 'user'.
//   - The password is hashed before the entity is constructed; the plaintext
//     never touches the repository.
func (service *Service) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	// ── 1. Security ───────────────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 2. Entity Construction ────────────────────────────────────────────

	user := &User{
		ID:           uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		Name:         input.Name,
		Email:        NormalizeEmail(input.Email),
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser, // Rule: enrollment never selects a role.
	}

	// ── 3. Persistence ────────────────────────────────────────────────────

	// Uniqueness is enforced by the database constraint; the repository maps
	// the violation to a client-safe Conflict. Checking first and inserting
	// second would race against concurrent signups for the same email.
	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, err
	}

	// ── 4. Session Start ──────────────────────────────────────────────────

	token, err := service.tokenIssuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_signup_token_failed: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login validates credentials and issues a session token.
//
// # Returns
//
// Returns [apperr.Unauthorized] with a single generic message for both an
// unknown email and a wrong password, preventing account enumeration.
func (service *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	// ── 1. Fetch Account ──────────────────────────────────────────────────

	user, err := service.userRepository.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, apperr.Unauthorized("Incorrect email or password")
	}

	// ── 2. Credential Verification ────────────────────────────────────────

	// bcrypt comparison is constant-time over the hash.
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Incorrect email or password")
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	token, err := service.tokenIssuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_token_failed: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// ForgotPassword starts the password-reset flow for the given email.
//
// # Flow
//
//  1. Resolve the account; an unknown email is a NotFound the caller may
//     surface (abuse of this as an oracle is contained by the reset
//     throttle in front of the endpoint).
//  2. Mint a fresh opaque token; store only its digest plus expiry,
//     overwriting any earlier outstanding token (last write wins).
//  3. Email the raw token. If delivery fails, the stored digest is cleared
//     so no orphaned reset window survives, and the caller sees a 500.
//
// The raw token exists only in the outbound email; it is never persisted
// and never logged.
func (service *Service) ForgotPassword(ctx context.Context, email string) error {
	// ── 1. Resolve Account ────────────────────────────────────────────────

	user, err := service.userRepository.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return apperr.NotFound("There is no user with that email address")
	}

	// ── 2. Token Issuance ─────────────────────────────────────────────────

	rawToken, err := sec.GenerateSecureToken(constants.ResetTokenLength)
	if err != nil {
		return fmt.Errorf("auth_service_reset_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(constants.ResetTokenTTL)
	if err := service.userRepository.SetResetToken(ctx, user.ID, sec.HashToken(rawToken), expiresAt); err != nil {
		return fmt.Errorf("auth_service_reset_token_store_failed: %w", err)
	}

	// ── 3. Delivery ───────────────────────────────────────────────────────

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", service.publicBaseURL, rawToken)
	message := mail.Message{
		To:      user.Email,
		Subject: "Your password reset token (valid for 10 min)",
		Body: fmt.Sprintf(
			"Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s\nIf you didn't forget your password, please ignore this email.",
			resetURL,
		),
	}

	if err := service.mailSender.Send(ctx, message); err != nil {
		// Roll back the reset state so a token the user never received
		// cannot linger as an attack window.
		if clearErr := service.userRepository.ClearResetToken(ctx, user.ID); clearErr != nil {
			ctxutil.GetLogger(ctx).ErrorContext(ctx, "reset_token_rollback_failed",
				"user_id", user.ID, "error", clearErr)
		}
		return apperr.DeliveryFailed(err)
	}

	return nil
}

// ResetPassword consumes a reset token and sets a new password.
//
// # Returns
//
// Returns [apperr.InvalidResetToken] when the token is unknown, expired, or
// already consumed; the three cases are indistinguishable to the caller.
// On success the reset pair is cleared atomically with the password write,
// so a second submission of the same token fails.
func (service *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) (*AuthResult, error) {
	// ── 1. Token Consumption ──────────────────────────────────────────────

	// Lookup is by digest only; the raw token never reaches storage.
	user, err := service.userRepository.FindByResetTokenHash(ctx, sec.HashToken(rawToken), time.Now())
	if err != nil {
		return nil, apperr.InvalidResetToken()
	}

	// ── 2. Password Replacement ───────────────────────────────────────────

	result, err := service.replacePassword(ctx, user, newPassword)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ChangePassword rotates the password of an authenticated account.
//
// The current password must be re-proven even though the caller already
// holds a valid session token: a stolen token alone must not suffice to
// lock the owner out.
func (service *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (*AuthResult, error) {
	// ── 1. Fetch Account ──────────────────────────────────────────────────

	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// ── 2. Re-prove Current Password ──────────────────────────────────────

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return nil, apperr.Unauthorized("Your current password is wrong")
	}

	// ── 3. Password Replacement ───────────────────────────────────────────

	return service.replacePassword(ctx, user, newPassword)
}

// replacePassword is the shared tail of both reset flows: hash the new
// password, write it with a skewed change timestamp, and open a new session.
func (service *Service) replacePassword(ctx context.Context, user *User, newPassword string) (*AuthResult, error) {
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// The change timestamp is backdated by a small skew so the session token
	// issued immediately below carries an iat that is not before it; without
	// the skew, same-second issuance would invalidate the fresh token.
	changedAt := time.Now().Add(-constants.PasswordChangeSkew)

	if err := service.userRepository.UpdatePassword(ctx, user.ID, hashedPassword, changedAt); err != nil {
		return nil, err
	}

	user.PasswordHash = hashedPassword
	user.PasswordChangedAt = &changedAt
	user.PasswordResetTokenHash = nil
	user.PasswordResetExpiresAt = nil

	token, err := service.tokenIssuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_password_token_failed: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// UpdateProfileInput holds the mutable profile fields an account owner may
// change about themselves. Credential fields are deliberately absent; the
// HTTP layer additionally rejects payloads that try to smuggle them in.
type UpdateProfileInput struct {
	Name  *string
	Photo *string
}

// UpdateProfile applies partial profile changes to the given account.
func (service *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error) {
	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Photo != nil {
		user.Photo = *input.Photo
	}

	if err := service.userRepository.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateRole elevates or demotes an account to the given role tier.
// Authorization (admin-only) is enforced by the route guard; the service
// validates only that the target tier exists.
func (service *Service) UpdateRole(ctx context.Context, userID string, role sec.Role) (*User, error) {
	if !role.IsValid() {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   "role",
			Message: "Must be one of: user, guide, lead-guide, admin",
		})
	}

	if err := service.userRepository.UpdateRole(ctx, userID, string(role)); err != nil {
		return nil, err
	}

	return service.userRepository.FindByID(ctx, userID)
}

// List returns a page of accounts for the admin directory.
func (service *Service) List(ctx context.Context, params pagination.Params) ([]*User, int, error) {
	return service.userRepository.List(ctx, params)
}

// ResolveIdentity loads the live identity referenced by a verified session
// token. Satisfies the authentication middleware's resolver contract.
func (service *Service) ResolveIdentity(ctx context.Context, userID string) (*sec.Identity, error) {
	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}
