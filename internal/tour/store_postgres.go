// Copyright (c) 2026 Trailgo. All rights reserved.

// # Storage Layer
//
// Implements the [Repository] interface over PostgreSQL. Public reads filter
// secret tours in the WHERE clause so they can never leak through pagination
// math or aggregation.

package tour

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledinhkha/trailgo/internal/platform/apperr"
	"github.com/ledinhkha/trailgo/internal/platform/dberr"
	"github.com/ledinhkha/trailgo/pkg/pagination"
)

// tourColumns is the canonical SELECT column list for the tours.catalog table.
const tourColumns = `
	id, name, slug, duration, max_group_size, difficulty,
	ratings_average, ratings_quantity, price, price_discount,
	summary, description, image_cover, images, start_dates, secret,
	created_at, updated_at`

// sortColumns whitelists the fields a caller may order by. Anything else in
// the sort expression is dropped, never interpolated.
var sortColumns = map[string]string{
	"price":           "price",
	"duration":        "duration",
	"ratings_average": "ratings_average",
	"created_at":      "created_at",
	"name":            "name",
}

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// scanTour maps a single row onto a [Tour] entity.
func scanTour(row pgx.Row) (*Tour, error) {
	tour := &Tour{}
	err := row.Scan(
		&tour.ID,
		&tour.Name,
		&tour.Slug,
		&tour.Duration,
		&tour.MaxGroupSize,
		&tour.Difficulty,
		&tour.RatingsAverage,
		&tour.RatingsQuantity,
		&tour.Price,
		&tour.PriceDiscount,
		&tour.Summary,
		&tour.Description,
		&tour.ImageCover,
		&tour.Images,
		&tour.StartDates,
		&tour.Secret,
		&tour.CreatedAt,
		&tour.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return tour, nil
}

// Create persists a new tour record into the tours.catalog table.
func (repository *PostgresRepository) Create(ctx context.Context, tour *Tour) error {
	const query = `
		INSERT INTO tours.catalog (
			id, name, slug, duration, max_group_size, difficulty,
			ratings_average, ratings_quantity, price, price_discount,
			summary, description, image_cover, images, start_dates, secret,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	now := time.Now()
	if tour.CreatedAt.IsZero() {
		tour.CreatedAt = now
	}
	tour.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		tour.ID,
		tour.Name,
		tour.Slug,
		tour.Duration,
		tour.MaxGroupSize,
		tour.Difficulty,
		tour.RatingsAverage,
		tour.RatingsQuantity,
		tour.Price,
		tour.PriceDiscount,
		tour.Summary,
		tour.Description,
		tour.ImageCover,
		tour.Images,
		tour.StartDates,
		tour.Secret,
		tour.CreatedAt,
		tour.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A tour with this name already exists")
		}
		return fmt.Errorf("postgres_tour_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves a tour record by its unique ID. Secret tours resolve to
// NotFound for this public read path.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours.catalog WHERE id = $1 AND secret = FALSE`

	tour, err := scanTour(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Tour")
		}
		return nil, fmt.Errorf("postgres_tour_repo_find_by_id_failed: %w", err)
	}

	return tour, nil
}

// List returns a filtered page of non-secret tours plus the total match count.
func (repository *PostgresRepository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]*Tour, int, error) {
	conditions := []string{"secret = FALSE"}
	args := []any{}

	if filter.Difficulty != "" {
		args = append(args, filter.Difficulty)
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM tours.catalog ` + where
	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_tour_repo_count_failed: %w", err)
	}

	orderBy := buildOrderBy(filter.SortBy)

	args = append(args, params.Limit, params.Offset())
	query := fmt.Sprintf(`SELECT %s FROM tours.catalog %s %s LIMIT $%d OFFSET $%d`,
		tourColumns, where, orderBy, len(args)-1, len(args))

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_tour_repo_list_failed: %w", err)
	}
	defer rows.Close()

	tours := make([]*Tour, 0, params.Limit)
	for rows.Next() {
		tour, err := scanTour(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_tour_repo_list_scan_failed: %w", err)
		}
		tours = append(tours, tour)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_tour_repo_list_rows_failed: %w", err)
	}

	return tours, total, nil
}

// buildOrderBy translates the comma-separated sort expression into a safe
// ORDER BY clause using only whitelisted columns.
func buildOrderBy(sortBy string) string {
	if sortBy == "" {
		return "ORDER BY created_at DESC"
	}

	var clauses []string
	for _, field := range strings.Split(sortBy, ",") {
		field = strings.TrimSpace(field)
		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			direction = "DESC"
			field = field[1:]
		}
		if column, ok := sortColumns[field]; ok {
			clauses = append(clauses, column+" "+direction)
		}
	}

	if len(clauses) == 0 {
		return "ORDER BY created_at DESC"
	}
	return "ORDER BY " + strings.Join(clauses, ", ")
}

// Update persists changes to an existing tour.
func (repository *PostgresRepository) Update(ctx context.Context, tour *Tour) error {
	const query = `
		UPDATE tours.catalog
		SET name = $2, slug = $3, duration = $4, max_group_size = $5,
		    difficulty = $6, ratings_average = $7, ratings_quantity = $8,
		    price = $9, price_discount = $10, summary = $11, description = $12,
		    image_cover = $13, images = $14, start_dates = $15, secret = $16,
		    updated_at = $17
		WHERE id = $1`

	tour.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query,
		tour.ID,
		tour.Name,
		tour.Slug,
		tour.Duration,
		tour.MaxGroupSize,
		tour.Difficulty,
		tour.RatingsAverage,
		tour.RatingsQuantity,
		tour.Price,
		tour.PriceDiscount,
		tour.Summary,
		tour.Description,
		tour.ImageCover,
		tour.Images,
		tour.StartDates,
		tour.Secret,
		tour.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A tour with this name already exists")
		}
		return fmt.Errorf("postgres_tour_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Tour")
	}

	return nil
}

// Delete permanently removes a tour.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tours.catalog WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres_tour_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Tour")
	}

	return nil
}

// AggregateStats computes per-difficulty statistics over well-rated,
// non-secret tours, cheapest difficulty first.
func (repository *PostgresRepository) AggregateStats(ctx context.Context) ([]*Stats, error) {
	const query = `
		SELECT UPPER(difficulty)       AS difficulty,
		       COUNT(*)                AS num_tours,
		       AVG(ratings_quantity)   AS num_ratings,
		       AVG(ratings_average)    AS avg_rating,
		       AVG(price)              AS avg_price,
		       MIN(price)              AS min_price,
		       MAX(price)              AS max_price
		FROM tours.catalog
		WHERE ratings_average >= 4.5 AND secret = FALSE
		GROUP BY UPPER(difficulty)
		ORDER BY avg_price ASC`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "tour_stats")
	}
	defer rows.Close()

	var stats []*Stats
	for rows.Next() {
		row := &Stats{}
		err := rows.Scan(
			&row.Difficulty,
			&row.NumTours,
			&row.NumRatings,
			&row.AvgRating,
			&row.AvgPrice,
			&row.MinPrice,
			&row.MaxPrice,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_tour_stats")
		}
		stats = append(stats, row)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "tour_stats")
	}

	return stats, nil
}

// MonthlyPlan computes departure counts per month for the given year by
// unnesting each tour's start dates, busiest month first.
func (repository *PostgresRepository) MonthlyPlan(ctx context.Context, year int) ([]*MonthlyPlan, error) {
	const query = `
		SELECT EXTRACT(MONTH FROM start_date)::int AS month,
		       COUNT(*)                            AS num_starts,
		       ARRAY_AGG(name ORDER BY name)       AS tours
		FROM tours.catalog, UNNEST(start_dates) AS start_date
		WHERE EXTRACT(YEAR FROM start_date)::int = $1 AND secret = FALSE
		GROUP BY month
		ORDER BY num_starts DESC, month ASC`

	rows, err := repository.pool.Query(ctx, query, year)
	if err != nil {
		return nil, dberr.Wrap(err, "monthly_plan")
	}
	defer rows.Close()

	var plan []*MonthlyPlan
	for rows.Next() {
		row := &MonthlyPlan{}
		if err := rows.Scan(&row.Month, &row.NumStarts, &row.Tours); err != nil {
			return nil, dberr.Wrap(err, "scan_monthly_plan")
		}
		plan = append(plan, row)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "monthly_plan")
	}

	return plan, nil
}

// compile-time interface check
var _ Repository = (*PostgresRepository)(nil)
