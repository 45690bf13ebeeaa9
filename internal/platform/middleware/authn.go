// Copyright (c) 2026 Trailgo. All rights reserved.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ledinhkha/trailgo/internal/platform/apperr"
	"github.com/ledinhkha/trailgo/internal/platform/constants"
	"github.com/ledinhkha/trailgo/internal/platform/ctxutil"
	"github.com/ledinhkha/trailgo/internal/platform/respond"
	"github.com/ledinhkha/trailgo/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify session tokens.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the [sec]
// TokenService implementation, allowing mocks to be injected during unit
// testing.
type TokenVerifier interface {
	Verify(tokenString string) (*sec.SessionClaims, error)
}

// IdentityResolver loads the live account record referenced by a verified
// session token. The token alone is never trusted for existence or role:
// the account may have been deleted, or its role changed, since issuance.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID string) (*sec.Identity, error)
}

// Authenticate gates a route group on a valid session token.
//
// # Flow
//
// One state machine per request, rejecting with 401 at any transition:
//
//  1. Extract 'Authorization: Bearer <token>'; absence is a rejection.
//  2. Verify signature and expiry via [TokenVerifier].
//  3. Resolve the referenced account via [IdentityResolver]; a deleted
//     account is a rejection even when the token itself is still valid.
//  4. Freshness check: a token issued before the account's last password
//     change is stale and rejected.
//  5. Attach the resolved [*sec.Identity] to the request context.
func Authenticate(verifier TokenVerifier, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Token Extraction ───────────────────────────────────────────
			token, ok := bearerToken(request.Header.Get(constants.HeaderAuthorization))
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("You are not logged in. Please log in to get access"))
				return
			}

			// ── 2. Signature & Expiry ─────────────────────────────────────────
			claims, err := verifier.Verify(token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 3. Identity Resolution ────────────────────────────────────────
			identity, err := resolver.ResolveIdentity(request.Context(), claims.UserID)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("The user belonging to this token no longer exists"))
				return
			}

			// ── 4. Password Freshness ─────────────────────────────────────────
			if identity.PasswordChangedAfter(claims.IssuedAt) {
				respond.Error(writer, request, apperr.Unauthorized("Password was changed recently. Please log in again"))
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireRole blocks requests whose authenticated role is not in the allow-set.
//
// # Usage
//
// Must be registered in the router strictly AFTER [Authenticate]. The
// allow-set is an explicit [sec.RoleSet] value attached to the route
// declaration, so the permitted tiers are visible where the route is defined.
//
// RequireRole is a pure predicate over the resolved identity: it holds no
// state of its own.
func RequireRole(allowed sec.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := ctxutil.GetIdentity(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !allowed.Contains(identity.Role) {
				respond.Error(writer, request, apperr.Forbidden("You do not have permission to perform this action"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// bearerToken extracts the token from a 'Bearer <token>' header value.
func bearerToken(value string) (string, bool) {
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
