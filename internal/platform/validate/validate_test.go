// Copyright (c) 2026 Trailgo. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledinhkha/trailgo/internal/platform/apperr"
	"github.com/ledinhkha/trailgo/internal/platform/validate"
)

/*
TestValidator_Required rejects empty and whitespace-only values.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"present", "hello", false},
		{"empty", "", true},
		{"whitespace_only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.Required("field", tt.value).Err()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestValidator_Email accepts RFC 5322 addresses and rejects malformed input.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "user@example.com", false},
		{"valid_with_plus", "user+tag@example.com", false},
		{"missing_at", "userexample.com", true},
		{"missing_domain", "user@", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.Email("email", tt.value).Err()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestValidator_Lengths counts Unicode characters, not bytes.
*/
func TestValidator_Lengths(t *testing.T) {
	t.Run("min_len_boundary", func(t *testing.T) {
		v := &validate.Validator{}
		assert.NoError(t, v.MinLen("password", "12345678", 8).Err())

		v = &validate.Validator{}
		assert.Error(t, v.MinLen("password", "1234567", 8).Err())
	})

	t.Run("max_len_boundary", func(t *testing.T) {
		v := &validate.Validator{}
		assert.NoError(t, v.MaxLen("name", "abcde", 5).Err())

		v = &validate.Validator{}
		assert.Error(t, v.MaxLen("name", "abcdef", 5).Err())
	})

	t.Run("counts_runes_not_bytes", func(t *testing.T) {
		// Four runes, twelve bytes.
		v := &validate.Validator{}
		assert.NoError(t, v.MaxLen("name", "日本語字", 4).Err())
	})
}

/*
TestValidator_Match is the password confirmation rule.
*/
func TestValidator_Match(t *testing.T) {
	v := &validate.Validator{}
	assert.NoError(t, v.Match("passwordConfirm", "secret12", "secret12").Err())

	v = &validate.Validator{}
	err := v.Match("passwordConfirm", "secret12", "different").Err()
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "passwordConfirm", appError.Details[0].Field)
}

/*
TestValidator_UUID accepts canonical UUIDs in either case.
*/
func TestValidator_UUID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"lowercase_v7", "0190a2b4-6c1e-7def-8123-456789abcdef", false},
		{"uppercase", "0190A2B4-6C1E-7DEF-8123-456789ABCDEF", false},
		{"missing_hyphens", "0190a2b46c1e7def8123456789abcdef", true},
		{"not_a_uuid", "definitely-not", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.UUID("id", tt.value).Err()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestValidator_Chain collects every failure into one VALIDATION_ERROR instead
of stopping at the first.
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}
	err := v.
		Required("name", "").
		Email("email", "nope").
		MinLen("password", "short", 8).
		Err()

	require.Error(t, err)
	assert.True(t, v.HasErrors())

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	require.Len(t, appError.Details, 3)

	fields := []string{appError.Details[0].Field, appError.Details[1].Field, appError.Details[2].Field}
	assert.Equal(t, []string{"name", "email", "password"}, fields)
}

/*
TestValidator_Chain_AllPass returns nil when every rule holds.
*/
func TestValidator_Chain_AllPass(t *testing.T) {
	v := &validate.Validator{}
	err := v.
		Required("name", "Kha").
		Email("email", "kha@example.com").
		MinLen("password", "longenough", 8).
		Match("passwordConfirm", "longenough", "longenough").
		Range("year", 2026, 2000, 2100).
		OneOf("difficulty", "easy", "easy", "medium", "difficult").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestRequiredError builds a single-field VALIDATION_ERROR directly.
*/
func TestRequiredError(t *testing.T) {
	err := validate.RequiredError("password", "This route is not for password updates")

	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "password", err.Details[0].Field)
}
