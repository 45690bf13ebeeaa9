// Copyright (c) 2026 Trailgo. All rights reserved.

package tour

import (
	"context"

	"github.com/ledinhkha/trailgo/pkg/pagination"
)

// ListFilter narrows and orders a catalog listing.
type ListFilter struct {
	// Difficulty restricts results to one grade when non-empty.
	Difficulty string
	// MaxPrice restricts results to tours at or below this price when set.
	MaxPrice *float64
	// SortBy is a comma-separated field list; a leading '-' means descending
	// (e.g. "-ratings_average,price"). Unknown fields are ignored.
	SortBy string
}

// Stats is one aggregate row of the catalog statistics report, grouped by
// difficulty over well-rated tours.
type Stats struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int     `json:"num_tours"`
	NumRatings float64 `json:"num_ratings"`
	AvgRating  float64 `json:"avg_rating"`
	AvgPrice   float64 `json:"avg_price"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
}

// MonthlyPlan is one month of the departure-planning report: how many tours
// start that month and which ones.
type MonthlyPlan struct {
	Month     int      `json:"month"`
	NumStarts int      `json:"num_tour_starts"`
	Tours     []string `json:"tours"`
}

// Repository defines the data access contract for the tour catalog.
//
// # Implementations
//
// The canonical implementation is PostgreSQL (store_postgres.go); tests use
// an in-memory fake.
type Repository interface {
	// Create persists a new tour.
	//
	// Returns [apperr.Conflict] if the name is already taken.
	Create(ctx context.Context, tour *Tour) error

	// FindByID returns the tour with the given ID.
	//
	// Returns [apperr.NotFound] if it does not exist or is secret.
	FindByID(ctx context.Context, id string) (*Tour, error)

	// List returns a filtered page of non-secret tours plus the total count.
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]*Tour, int, error)

	// Update persists changes to an existing tour.
	Update(ctx context.Context, tour *Tour) error

	// Delete permanently removes a tour.
	//
	// Returns [apperr.NotFound] if it does not exist.
	Delete(ctx context.Context, id string) error

	// AggregateStats computes per-difficulty statistics over non-secret tours
	// rated 4.5 or better, cheapest difficulty first.
	AggregateStats(ctx context.Context) ([]*Stats, error)

	// MonthlyPlan computes departure counts per month for the given year,
	// busiest month first.
	MonthlyPlan(ctx context.Context, year int) ([]*MonthlyPlan, error)
}
