// Copyright (c) 2026 Trailgo. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, opaque
// token generation, session token signing) from the domain logic. It acts as
// an Infrastructure service injected into the Application layer.
package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ledinhkha/trailgo/internal/platform/constants"
)

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// The per-call random salt is embedded in the output, so hashing the same
// plaintext twice yields two different strings that both verify.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), constants.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
//
// bcrypt performs the comparison in constant time, so the duration does not
// reveal where a mismatch occurred.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
