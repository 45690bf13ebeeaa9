// Copyright (c) 2026 Trailgo. All rights reserved.

package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the verified payload of a session token.
//
// # Statelessness
//
// A session token proves identity purely by signature and expiry. The store
// is never consulted to validate the token itself — only (by the
// authentication middleware) to confirm the referenced account still exists
// and has not rotated its password since IssuedAt.
type SessionClaims struct {
	// UserID is the 'sub' claim: the account the token was issued to.
	UserID string

	// IssuedAt is the 'iat' claim, needed for the password-freshness check.
	IssuedAt time.Time
}

// TokenService issues and verifies signed, time-limited session tokens.
//
// # Key Handling
//
// Tokens are signed with HMAC-SHA256 over a single process-wide secret read
// from configuration at startup. The service is immutable after construction
// and safe for concurrent use.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
}

// NewTokenService creates a TokenService from the configured signing secret
// and token lifetime. Both must be present; the caller treats an error here
// as fatal at startup.
func NewTokenService(secret string, lifetime time.Duration, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: session signing secret is required")
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("sec: session token lifetime must be positive, got %s", lifetime)
	}

	return &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		issuer:   issuer,
	}, nil
}

// Issue creates a signed session token binding the given user ID.
//
// Claims are {sub: userID, iat: now, exp: now + lifetime}.
func (service *TokenService) Issue(userID string) (string, error) {
	currentTime := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    service.issuer,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.lifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity window of a session token string.
//
// # Rejection
//
// Structural malformation, a signature mismatch, an unexpected signing
// algorithm, a missing claim, or expiry all yield an error — the token is
// never partially trusted.
func (service *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Pin the algorithm family so an attacker cannot downgrade the
		// verification path via the token header.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("sec: invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid session token claims")
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, errors.New("sec: session token missing required claims")
	}

	return &SessionClaims{
		UserID:   claims.Subject,
		IssuedAt: claims.IssuedAt.Time,
	}, nil
}
