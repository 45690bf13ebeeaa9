// Copyright (c) 2026 Trailgo. All rights reserved.

package tour_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledinhkha/trailgo/internal/platform/apperr"
	"github.com/ledinhkha/trailgo/internal/tour"
	"github.com/ledinhkha/trailgo/pkg/pagination"
)

// fakeTourRepository is an in-memory [tour.Repository] mirroring the
// PostgreSQL implementation's contract: name uniqueness, secret filtering,
// and NOT_FOUND on missing rows.
type fakeTourRepository struct {
	mu    sync.Mutex
	tours map[string]*tour.Tour

	stats []*tour.Stats
	plan  []*tour.MonthlyPlan
}

func newFakeTourRepository() *fakeTourRepository {
	return &fakeTourRepository{tours: make(map[string]*tour.Tour)}
}

func cloneTour(entity *tour.Tour) *tour.Tour {
	clone := *entity
	return &clone
}

func (f *fakeTourRepository) Create(_ context.Context, entity *tour.Tour) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.tours {
		if existing.Name == entity.Name {
			return apperr.Conflict("Tour name is already taken")
		}
	}
	entity.CreatedAt = time.Now()
	entity.UpdatedAt = entity.CreatedAt
	f.tours[entity.ID] = cloneTour(entity)
	return nil
}

func (f *fakeTourRepository) FindByID(_ context.Context, id string) (*tour.Tour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entity, ok := f.tours[id]
	if !ok || entity.Secret {
		return nil, apperr.NotFound("Tour")
	}
	return cloneTour(entity), nil
}

func (f *fakeTourRepository) List(_ context.Context, filter tour.ListFilter, params pagination.Params) ([]*tour.Tour, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matches := make([]*tour.Tour, 0, len(f.tours))
	for _, entity := range f.tours {
		if entity.Secret {
			continue
		}
		if filter.Difficulty != "" && string(entity.Difficulty) != filter.Difficulty {
			continue
		}
		if filter.MaxPrice != nil && entity.Price > *filter.MaxPrice {
			continue
		}
		matches = append(matches, cloneTour(entity))
	}

	total := len(matches)
	if len(matches) > params.Limit {
		matches = matches[:params.Limit]
	}
	return matches, total, nil
}

func (f *fakeTourRepository) Update(_ context.Context, entity *tour.Tour) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tours[entity.ID]; !ok {
		return apperr.NotFound("Tour")
	}
	entity.UpdatedAt = time.Now()
	f.tours[entity.ID] = cloneTour(entity)
	return nil
}

func (f *fakeTourRepository) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tours[id]; !ok {
		return apperr.NotFound("Tour")
	}
	delete(f.tours, id)
	return nil
}

func (f *fakeTourRepository) AggregateStats(context.Context) ([]*tour.Stats, error) {
	return f.stats, nil
}

func (f *fakeTourRepository) MonthlyPlan(context.Context, int) ([]*tour.MonthlyPlan, error) {
	return f.plan, nil
}

var _ tour.Repository = (*fakeTourRepository)(nil)

func validCreateInput() tour.CreateInput {
	return tour.CreateInput{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   tour.DifficultyEasy,
		Price:        397,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}
}

/*
TestService_Create checks defaulting, slug derivation, and date parsing on the
publish path.
*/
func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns_id_seed_rating_and_slug", func(t *testing.T) {
		repo := newFakeTourRepository()
		service := tour.NewService(repo)

		created, err := service.Create(ctx, validCreateInput())
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "the-forest-hiker", created.Slug)
		assert.InDelta(t, 4.5, created.RatingsAverage, 1e-9)

		persisted, err := service.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Name, persisted.Name)
	})

	t.Run("accepts_both_date_formats", func(t *testing.T) {
		repo := newFakeTourRepository()
		service := tour.NewService(repo)

		input := validCreateInput()
		input.StartDates = []string{"2026-06-15", "2026-09-01T09:00:00Z"}

		created, err := service.Create(ctx, input)
		require.NoError(t, err)
		require.Len(t, created.StartDates, 2)

		assert.Equal(t, 15, created.StartDates[0].Day())
		assert.Equal(t, time.September, created.StartDates[1].Month())
	})

	t.Run("rejects_malformed_dates", func(t *testing.T) {
		repo := newFakeTourRepository()
		service := tour.NewService(repo)

		input := validCreateInput()
		input.StartDates = []string{"June 15th 2026"}

		_, err := service.Create(ctx, input)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("rejects_invalid_entity_without_persisting", func(t *testing.T) {
		repo := newFakeTourRepository()
		service := tour.NewService(repo)

		input := validCreateInput()
		input.Name = "Short"

		_, err := service.Create(ctx, input)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

		_, total, err := service.List(ctx, tour.ListFilter{}, pagination.Params{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("duplicate_name_is_conflict", func(t *testing.T) {
		repo := newFakeTourRepository()
		service := tour.NewService(repo)

		_, err := service.Create(ctx, validCreateInput())
		require.NoError(t, err)

		_, err = service.Create(ctx, validCreateInput())
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})
}

/*
TestService_Update checks that partial changes leave untouched fields alone
and that the merged entity is re-validated.
*/
func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial_change_keeps_other_fields", func(t *testing.T) {
		repo := newFakeTourRepository()
		service := tour.NewService(repo)

		created, err := service.Create(ctx, validCreateInput())
		require.NoError(t, err)

		newPrice := 497.0
		updated, err := service.Update(ctx, created.ID, tour.UpdateInput{Price: &newPrice})
		require.NoError(t, err)

		assert.InDelta(t, 497.0, updated.Price, 1e-9)
		assert.Equal(t, created.Name, updated.Name)
		assert.Equal(t, created.Slug, updated.Slug)
	})

	t.Run("renaming_regenerates_slug", func(t *testing.T) {
		repo := newFakeTourRepository()
		service := tour.NewService(repo)

		created, err := service.Create(ctx, validCreateInput())
		require.NoError(t, err)

		newName := "The Mountain Biker"
		updated, err := service.Update(ctx, created.ID, tour.UpdateInput{Name: &newName})
		require.NoError(t, err)

		assert.Equal(t, "the-mountain-biker", updated.Slug)
	})

	t.Run("invalid_merge_is_rejected_and_not_persisted", func(t *testing.T) {
		repo := newFakeTourRepository()
		service := tour.NewService(repo)

		created, err := service.Create(ctx, validCreateInput())
		require.NoError(t, err)

		// A discount at or above the current price violates the invariant.
		badDiscount := created.Price + 100
		_, err = service.Update(ctx, created.ID, tour.UpdateInput{PriceDiscount: &badDiscount})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

		persisted, err := service.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, persisted.PriceDiscount)
	})

	t.Run("unknown_tour_is_not_found", func(t *testing.T) {
		service := tour.NewService(newFakeTourRepository())

		newPrice := 100.0
		_, err := service.Update(ctx, "missing-id", tour.UpdateInput{Price: &newPrice})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestService_List checks difficulty validation and filter passthrough.
*/
func TestService_List(t *testing.T) {
	ctx := context.Background()

	repo := newFakeTourRepository()
	service := tour.NewService(repo)

	easy := validCreateInput()
	_, err := service.Create(ctx, easy)
	require.NoError(t, err)

	hard := validCreateInput()
	hard.Name = "The Snow Adventurer"
	hard.Difficulty = tour.DifficultyDifficult
	hard.Price = 997
	_, err = service.Create(ctx, hard)
	require.NoError(t, err)

	hidden := validCreateInput()
	hidden.Name = "The Staff Only Special"
	hidden.Secret = true
	_, err = service.Create(ctx, hidden)
	require.NoError(t, err)

	t.Run("invalid_difficulty_is_rejected", func(t *testing.T) {
		_, _, err := service.List(ctx, tour.ListFilter{Difficulty: "extreme"}, pagination.Params{Page: 1, Limit: 10})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("difficulty_filter_applies", func(t *testing.T) {
		tours, total, err := service.List(ctx, tour.ListFilter{Difficulty: "difficult"}, pagination.Params{Page: 1, Limit: 10})
		require.NoError(t, err)

		assert.Equal(t, 1, total)
		require.Len(t, tours, 1)
		assert.Equal(t, "The Snow Adventurer", tours[0].Name)
	})

	t.Run("price_ceiling_applies", func(t *testing.T) {
		maxPrice := 500.0
		tours, total, err := service.List(ctx, tour.ListFilter{MaxPrice: &maxPrice}, pagination.Params{Page: 1, Limit: 10})
		require.NoError(t, err)

		assert.Equal(t, 1, total)
		require.Len(t, tours, 1)
		assert.Equal(t, "The Forest Hiker", tours[0].Name)
	})

	t.Run("secret_tours_never_listed", func(t *testing.T) {
		tours, total, err := service.List(ctx, tour.ListFilter{}, pagination.Params{Page: 1, Limit: 10})
		require.NoError(t, err)

		assert.Equal(t, 2, total)
		for _, entity := range tours {
			assert.False(t, strings.Contains(entity.Name, "Staff Only"))
		}
	})
}

/*
TestService_MonthlyPlan bounds the report year and passes valid years through.
*/
func TestService_MonthlyPlan(t *testing.T) {
	ctx := context.Background()

	repo := newFakeTourRepository()
	repo.plan = []*tour.MonthlyPlan{
		{Month: 7, NumStarts: 3, Tours: []string{"The Forest Hiker"}},
	}
	service := tour.NewService(repo)

	t.Run("year_out_of_bounds", func(t *testing.T) {
		for _, year := range []int{1999, 2101, 0, -5} {
			_, err := service.MonthlyPlan(ctx, year)
			require.Error(t, err, "year %d", year)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		}
	})

	t.Run("valid_year_returns_report", func(t *testing.T) {
		plan, err := service.MonthlyPlan(ctx, 2026)
		require.NoError(t, err)

		require.Len(t, plan, 1)
		assert.Equal(t, 7, plan[0].Month)
		assert.Equal(t, 3, plan[0].NumStarts)
	})
}

/*
TestService_Delete removes the tour and reports NOT_FOUND afterwards.
*/
func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	repo := newFakeTourRepository()
	service := tour.NewService(repo)

	created, err := service.Create(ctx, validCreateInput())
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))

	_, err = service.Get(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	err = service.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
