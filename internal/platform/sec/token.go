// Copyright (c) 2026 Trailgo. All rights reserved.

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// # Opaque Token Lifecycle
//
// Every opaque token family on the platform (currently password reset)
// follows the same lifecycle: generate a high-entropy secret, persist only a
// verifiable digest, compare the digest on presentation, expire by
// timestamp. The two functions below are that shared mechanism; lifetimes
// live in the constants package next to the family that owns them.

// GenerateSecureToken returns byteLength bytes of cryptographic randomness,
// hex-encoded. The plaintext is handed to the user out-of-band and is never
// persisted.
func GenerateSecureToken(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken computes the SHA-256 hex digest of an opaque token.
//
// Unlike passwords, opaque tokens are high-entropy and not guessable, so a
// fast deterministic hash is the right storage derivative: it supports exact
// lookup by digest while keeping the stored value useless to an attacker.
func HashToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
