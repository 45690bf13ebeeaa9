// Copyright (c) 2026 Trailgo. All rights reserved.

package tour

import (
	"context"
	"time"

	"github.com/ledinhkha/trailgo/internal/platform/apperr"
	"github.com/ledinhkha/trailgo/pkg/pagination"
	"github.com/ledinhkha/trailgo/pkg/uuidv7"
)

// parseStartDates accepts departure dates as either RFC 3339 timestamps or
// plain YYYY-MM-DD dates.
func parseStartDates(raw []string) ([]time.Time, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dates := make([]time.Time, 0, len(raw))
	for _, value := range raw {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", value)
		}
		if err != nil {
			return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
				Field:   "start_dates",
				Message: "Dates must be RFC 3339 timestamps or YYYY-MM-DD",
			})
		}
		dates = append(dates, parsed)
	}

	return dates, nil
}

// Service implements the catalog use cases on top of the [Repository].
type Service struct {
	repository Repository
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// CreateInput holds the data required to publish a new tour.
type CreateInput struct {
	Name          string
	Duration      int
	MaxGroupSize  int
	Difficulty    Difficulty
	Price         float64
	PriceDiscount *float64
	Summary       string
	Description   string
	ImageCover    string
	Images        []string
	StartDates    []string
	Secret        bool
}

// Create validates and persists a new tour.
func (service *Service) Create(ctx context.Context, input CreateInput) (*Tour, error) {
	startDates, err := parseStartDates(input.StartDates)
	if err != nil {
		return nil, err
	}

	tour := &Tour{
		ID:             uuidv7.New(),
		Name:           input.Name,
		Duration:       input.Duration,
		MaxGroupSize:   input.MaxGroupSize,
		Difficulty:     input.Difficulty,
		RatingsAverage: 4.5, // Seed rating until real reviews arrive.
		Price:          input.Price,
		PriceDiscount:  input.PriceDiscount,
		Summary:        input.Summary,
		Description:    input.Description,
		ImageCover:     input.ImageCover,
		Images:         input.Images,
		StartDates:     startDates,
		Secret:         input.Secret,
	}
	tour.Slugify()

	if err := tour.Validate(); err != nil {
		return nil, err
	}

	if err := service.repository.Create(ctx, tour); err != nil {
		return nil, err
	}

	return tour, nil
}

// Get returns a single tour by ID.
func (service *Service) Get(ctx context.Context, id string) (*Tour, error) {
	return service.repository.FindByID(ctx, id)
}

// List returns a filtered page of the catalog plus the total match count.
func (service *Service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]*Tour, int, error) {
	if filter.Difficulty != "" && !Difficulty(filter.Difficulty).IsValid() {
		return nil, 0, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   "difficulty",
			Message: "Difficulty is either: easy, medium, difficult",
		})
	}
	return service.repository.List(ctx, filter, params)
}

// UpdateInput holds partial changes to an existing tour. Nil fields are left
// untouched.
type UpdateInput struct {
	Name          *string
	Duration      *int
	MaxGroupSize  *int
	Difficulty    *Difficulty
	Price         *float64
	PriceDiscount *float64
	Summary       *string
	Description   *string
	ImageCover    *string
	Images        []string
	StartDates    []string
	Secret        *bool
}

// Update applies partial changes, re-validating the whole entity afterwards.
func (service *Service) Update(ctx context.Context, id string, input UpdateInput) (*Tour, error) {
	tour, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		tour.Name = *input.Name
		tour.Slugify()
	}
	if input.Duration != nil {
		tour.Duration = *input.Duration
	}
	if input.MaxGroupSize != nil {
		tour.MaxGroupSize = *input.MaxGroupSize
	}
	if input.Difficulty != nil {
		tour.Difficulty = *input.Difficulty
	}
	if input.Price != nil {
		tour.Price = *input.Price
	}
	if input.PriceDiscount != nil {
		tour.PriceDiscount = input.PriceDiscount
	}
	if input.Summary != nil {
		tour.Summary = *input.Summary
	}
	if input.Description != nil {
		tour.Description = *input.Description
	}
	if input.ImageCover != nil {
		tour.ImageCover = *input.ImageCover
	}
	if input.Images != nil {
		tour.Images = input.Images
	}
	if input.StartDates != nil {
		startDates, err := parseStartDates(input.StartDates)
		if err != nil {
			return nil, err
		}
		tour.StartDates = startDates
	}
	if input.Secret != nil {
		tour.Secret = *input.Secret
	}

	if err := tour.Validate(); err != nil {
		return nil, err
	}

	if err := service.repository.Update(ctx, tour); err != nil {
		return nil, err
	}

	return tour, nil
}

// Delete permanently removes a tour from the catalog.
func (service *Service) Delete(ctx context.Context, id string) error {
	return service.repository.Delete(ctx, id)
}

// Stats returns the per-difficulty statistics report.
func (service *Service) Stats(ctx context.Context) ([]*Stats, error) {
	return service.repository.AggregateStats(ctx)
}

// MonthlyPlan returns the departure-planning report for a year.
func (service *Service) MonthlyPlan(ctx context.Context, year int) ([]*MonthlyPlan, error) {
	if year < 2000 || year > 2100 {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   "year",
			Message: "Must be a four-digit year between 2000 and 2100",
		})
	}
	return service.repository.MonthlyPlan(ctx, year)
}
