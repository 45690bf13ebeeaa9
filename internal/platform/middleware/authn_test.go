// Copyright (c) 2026 Trailgo. All rights reserved.

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledinhkha/trailgo/internal/platform/ctxutil"
	"github.com/ledinhkha/trailgo/internal/platform/middleware"
	"github.com/ledinhkha/trailgo/internal/platform/sec"
)

// stubVerifier returns fixed claims or a fixed error.
type stubVerifier struct {
	claims *sec.SessionClaims
	err    error
}

func (s *stubVerifier) Verify(string) (*sec.SessionClaims, error) {
	return s.claims, s.err
}

// stubResolver returns a fixed identity or a fixed error.
type stubResolver struct {
	identity *sec.Identity
	err      error
}

func (s *stubResolver) ResolveIdentity(context.Context, string) (*sec.Identity, error) {
	return s.identity, s.err
}

// passthrough records whether the wrapped handler ran and with which identity.
func passthrough(sawIdentity **sec.Identity) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*sawIdentity = ctxutil.GetIdentity(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestAuthenticate_MissingHeader ensures a request without a bearer token is
rejected before the verifier runs.
*/
func TestAuthenticate_MissingHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no_header", ""},
		{"wrong_scheme", "Basic dXNlcjpwYXNz"},
		{"bearer_no_token", "Bearer "},
		{"token_only", "some-token"},
	}

	verifier := &stubVerifier{err: errors.New("must not be called")}
	resolver := &stubResolver{}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saw *sec.Identity
			handler := middleware.Authenticate(verifier, resolver)(passthrough(&saw))

			request := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Nil(t, saw)
		})
	}
}

/*
TestAuthenticate_InvalidToken ensures verifier rejection becomes a 401.
*/
func TestAuthenticate_InvalidToken(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("bad signature")}
	resolver := &stubResolver{}

	var saw *sec.Identity
	handler := middleware.Authenticate(verifier, resolver)(passthrough(&saw))

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "Bearer not-a-real-token")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, saw)
}

/*
TestAuthenticate_DeletedAccount ensures a valid token whose account no longer
exists is rejected.
*/
func TestAuthenticate_DeletedAccount(t *testing.T) {
	verifier := &stubVerifier{claims: &sec.SessionClaims{UserID: "gone", IssuedAt: time.Now()}}
	resolver := &stubResolver{err: errors.New("no such account")}

	var saw *sec.Identity
	handler := middleware.Authenticate(verifier, resolver)(passthrough(&saw))

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "Bearer valid-but-orphaned")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, saw)
}

/*
TestAuthenticate_StaleToken ensures a token issued before the account's last
password change is rejected.
*/
func TestAuthenticate_StaleToken(t *testing.T) {
	issuedAt := time.Now().Add(-1 * time.Hour)
	changedAt := time.Now().Add(-30 * time.Minute) // after issuance

	verifier := &stubVerifier{claims: &sec.SessionClaims{UserID: "user-1", IssuedAt: issuedAt}}
	resolver := &stubResolver{identity: &sec.Identity{
		ID:                "user-1",
		Role:              sec.RoleUser,
		PasswordChangedAt: &changedAt,
	}}

	var saw *sec.Identity
	handler := middleware.Authenticate(verifier, resolver)(passthrough(&saw))

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "Bearer pre-rotation-token")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, saw)
}

/*
TestAuthenticate_Success ensures a fresh valid token passes through and the
resolved identity reaches the downstream handler's context.
*/
func TestAuthenticate_Success(t *testing.T) {
	changedAt := time.Now().Add(-2 * time.Hour)
	issuedAt := time.Now().Add(-1 * time.Hour) // after the change

	verifier := &stubVerifier{claims: &sec.SessionClaims{UserID: "user-1", IssuedAt: issuedAt}}
	resolver := &stubResolver{identity: &sec.Identity{
		ID:                "user-1",
		Name:              "Lê Đình Kha",
		Role:              sec.RoleGuide,
		PasswordChangedAt: &changedAt,
	}}

	var saw *sec.Identity
	handler := middleware.Authenticate(verifier, resolver)(passthrough(&saw))

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, saw)
	assert.Equal(t, "user-1", saw.ID)
	assert.Equal(t, sec.RoleGuide, saw.Role)
}

/*
TestAuthenticate_NeverChangedPassword ensures a nil PasswordChangedAt never
invalidates a token.
*/
func TestAuthenticate_NeverChangedPassword(t *testing.T) {
	verifier := &stubVerifier{claims: &sec.SessionClaims{UserID: "user-1", IssuedAt: time.Now().Add(-24 * time.Hour)}}
	resolver := &stubResolver{identity: &sec.Identity{ID: "user-1", Role: sec.RoleUser}}

	var saw *sec.Identity
	handler := middleware.Authenticate(verifier, resolver)(passthrough(&saw))

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, saw)
}

/*
TestRequireRole enforces the allow-set over the resolved identity.
*/
func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		allowed    sec.RoleSet
		identity   *sec.Identity
		wantStatus int
	}{
		{
			name:       "no_identity_is_401",
			allowed:    sec.Roles(sec.RoleAdmin),
			identity:   nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "role_outside_set_is_403",
			allowed:    sec.Roles(sec.RoleAdmin, sec.RoleLeadGuide),
			identity:   &sec.Identity{ID: "u", Role: sec.RoleUser},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "guide_not_lead_guide",
			allowed:    sec.Roles(sec.RoleLeadGuide),
			identity:   &sec.Identity{ID: "u", Role: sec.RoleGuide},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "member_of_set_passes",
			allowed:    sec.Roles(sec.RoleAdmin, sec.RoleLeadGuide),
			identity:   &sec.Identity{ID: "u", Role: sec.RoleLeadGuide},
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin_passes_admin_set",
			allowed:    sec.Roles(sec.RoleAdmin),
			identity:   &sec.Identity{ID: "u", Role: sec.RoleAdmin},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saw *sec.Identity
			handler := middleware.RequireRole(tt.allowed)(passthrough(&saw))

			request := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.identity != nil {
				request = request.WithContext(ctxutil.WithIdentity(request.Context(), tt.identity))
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
