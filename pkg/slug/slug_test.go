// Copyright (c) 2026 Trailgo. All rights reserved.

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ledinhkha/trailgo/pkg/slug"
)

/*
TestFrom covers the normalization pipeline: casing, accents, punctuation,
and hyphen cleanup.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "The Forest Hiker", "the-forest-hiker"},
		{"already_slugged", "the-forest-hiker", "the-forest-hiker"},
		{"uppercase", "THE SEA EXPLORER", "the-sea-explorer"},
		{"accents", "Crème Brûlée Café", "creme-brulee-cafe"},
		{"punctuation", "Hello, World! (2026)", "hello-world-2026"},
		{"multiple_spaces", "a   b    c", "a-b-c"},
		{"leading_trailing_junk", "  --Tour--  ", "tour"},
		{"numbers_kept", "Top 5 Cheap", "top-5-cheap"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
