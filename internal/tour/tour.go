// Copyright (c) 2026 Trailgo. All rights reserved.

// Package tour owns the tour catalog: the product entity the rest of the
// platform exists to sell.
//
// # Architecture
//
// Entities in this package represent the "Truth" of the system.
// They have no dependencies on outer layers (like databases, APIs, or libraries).
package tour

import (
	"time"

	"github.com/ledinhkha/trailgo/internal/platform/validate"
	"github.com/ledinhkha/trailgo/pkg/slug"
)

// Difficulty grades the physical demand of a tour.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

// IsValid reports whether the difficulty is a known grade.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}

// Tour represents a bookable tour in the catalog.
//
// # Rules
//   - Name is unique, 10 to 40 characters.
//   - PriceDiscount, when set, must be strictly below Price.
//   - RatingsAverage stays within [1, 5].
//   - Secret tours never appear in public listings; only staff reads see them.
type Tour struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	Duration        int         `json:"duration"`
	MaxGroupSize    int         `json:"max_group_size"`
	Difficulty      Difficulty  `json:"difficulty"`
	RatingsAverage  float64     `json:"ratings_average"`
	RatingsQuantity int         `json:"ratings_quantity"`
	Price           float64     `json:"price"`
	PriceDiscount   *float64    `json:"price_discount,omitempty"`
	Summary         string      `json:"summary"`
	Description     string      `json:"description,omitempty"`
	ImageCover      string      `json:"image_cover"`
	Images          []string    `json:"images,omitempty"`
	StartDates      []time.Time `json:"start_dates,omitempty"`
	Secret          bool        `json:"-"` // Never serialized; staff tooling reads it from storage directly.

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DurationWeeks derives the tour length in weeks from its day count.
// Computed on demand, never persisted.
func (t *Tour) DurationWeeks() float64 {
	return float64(t.Duration) / 7
}

// Slugify regenerates the URL slug from the current name.
func (t *Tour) Slugify() {
	t.Slug = slug.From(t.Name)
}

// Validate checks every invariant of the entity and returns a single
// VALIDATION_ERROR carrying all failures at once.
func (t *Tour) Validate() error {
	validator := &validate.Validator{}

	validator.
		Required("name", t.Name).
		MinLen("name", t.Name, 10).
		MaxLen("name", t.Name, 40).
		Custom("duration", t.Duration <= 0, "Must be a positive number of days").
		Custom("max_group_size", t.MaxGroupSize <= 0, "Must be a positive group size").
		Custom("difficulty", !t.Difficulty.IsValid(), "Difficulty is either: easy, medium, difficult").
		Custom("ratings_average", t.RatingsAverage < 1 || t.RatingsAverage > 5, "Rating must be between 1 and 5").
		Custom("price", t.Price <= 0, "Must be a positive price").
		Required("summary", t.Summary).
		Required("image_cover", t.ImageCover)

	if t.PriceDiscount != nil {
		validator.Custom("price_discount", *t.PriceDiscount >= t.Price,
			"Price discount must be less than the actual price")
	}

	return validator.Err()
}
