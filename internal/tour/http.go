// Copyright (c) 2026 Trailgo. All rights reserved.

// # Delivery Layer
//
// The handler in this file is the gatekeeper for the /api/v1/tours surface.
// Reads are public; mutations are restricted to the admin and lead-guide
// tiers by route guards applied in Routes.

package tour

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ledinhkha/trailgo/internal/platform/middleware"
	requestutil "github.com/ledinhkha/trailgo/internal/platform/request"
	"github.com/ledinhkha/trailgo/internal/platform/respond"
	"github.com/ledinhkha/trailgo/internal/platform/sec"
	"github.com/ledinhkha/trailgo/internal/platform/validate"
	"github.com/ledinhkha/trailgo/pkg/pagination"
)

// Handler implements the catalog-facing HTTP endpoints.
type Handler struct {
	tourService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{tourService: service}
}

// Routes returns a [chi.Router] for the /api/v1/tours surface.
//
// # Endpoints
//
// Public:
//   - GET /                    : Lists tours (filter, sort, paginate).
//   - GET /top-5-cheap         : Preset listing of the five best-value tours.
//   - GET /stats               : Per-difficulty statistics report.
//   - GET /monthly-plan/{year} : Departure-planning report.
//   - GET /{id}                : Single tour.
//
// Staff (admin, lead-guide):
//   - POST   /      : Publishes a new tour.
//   - PATCH  /{id}  : Updates a tour.
//   - DELETE /{id}  : Removes a tour.
func (handler *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/top-5-cheap", handler.topFiveCheap)
	router.Get("/stats", handler.stats)
	router.Get("/monthly-plan/{year}", handler.monthlyPlan)
	router.Get("/{id}", handler.get)

	router.Group(func(staff chi.Router) {
		staff.Use(authenticate)
		staff.Use(middleware.RequireRole(sec.Roles(sec.RoleAdmin, sec.RoleLeadGuide)))

		staff.Post("/", handler.create)
		staff.Patch("/{id}", handler.update)
		staff.Delete("/{id}", handler.delete)
	})

	return router
}

// listFilterFromRequest parses catalog filter parameters from the query string.
func listFilterFromRequest(request *http.Request) ListFilter {
	query := request.URL.Query()

	filter := ListFilter{
		Difficulty: query.Get("difficulty"),
		SortBy:     query.Get("sort"),
	}

	if raw := query.Get("price[lte]"); raw != "" {
		if maxPrice, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = &maxPrice
		}
	}

	return filter
}

// list handles GET /api/v1/tours requests.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := listFilterFromRequest(request)

	tours, total, err := handler.tourService.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, map[string]any{"tours": tours}, pagination.NewMeta(params.Page, params.Limit, total))
}

// topFiveCheap handles GET /api/v1/tours/top-5-cheap requests.
//
// A preset over the general listing: best-rated first, price as tie-break,
// capped at five.
func (handler *Handler) topFiveCheap(writer http.ResponseWriter, request *http.Request) {
	params := pagination.Params{Page: 1, Limit: 5}
	filter := ListFilter{SortBy: "-ratings_average,price"}

	tours, total, err := handler.tourService.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, map[string]any{"tours": tours}, pagination.NewMeta(params.Page, params.Limit, total))
}

// stats handles GET /api/v1/tours/stats requests.
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.tourService.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"stats": stats})
}

// monthlyPlan handles GET /api/v1/tours/monthly-plan/{year} requests.
func (handler *Handler) monthlyPlan(writer http.ResponseWriter, request *http.Request) {
	year, err := strconv.Atoi(requestutil.Param(request, "year"))
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("year", "Must be a valid year"))
		return
	}

	plan, err := handler.tourService.MonthlyPlan(request.Context(), year)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"plan": plan})
}

// get handles GET /api/v1/tours/{id} requests.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tour, err := handler.tourService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"tour": tour})
}

// tourRequest represents the JSON payload for publishing a tour.
type tourRequest struct {
	Name          string   `json:"name"`
	Duration      int      `json:"duration"`
	MaxGroupSize  int      `json:"max_group_size"`
	Difficulty    string   `json:"difficulty"`
	Price         float64  `json:"price"`
	PriceDiscount *float64 `json:"price_discount"`
	Summary       string   `json:"summary"`
	Description   string   `json:"description"`
	ImageCover    string   `json:"image_cover"`
	Images        []string `json:"images"`
	StartDates    []string `json:"start_dates"`
	Secret        bool     `json:"secret"`
}

// create handles POST /api/v1/tours requests (staff only).
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input tourRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Full entity validation happens in the service; the boundary only needs
	// structural decoding here.
	tour, err := handler.tourService.Create(request.Context(), CreateInput{
		Name:          input.Name,
		Duration:      input.Duration,
		MaxGroupSize:  input.MaxGroupSize,
		Difficulty:    Difficulty(input.Difficulty),
		Price:         input.Price,
		PriceDiscount: input.PriceDiscount,
		Summary:       input.Summary,
		Description:   input.Description,
		ImageCover:    input.ImageCover,
		Images:        input.Images,
		StartDates:    input.StartDates,
		Secret:        input.Secret,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{"tour": tour})
}

// tourUpdateRequest represents the JSON payload for partial tour updates.
type tourUpdateRequest struct {
	Name          *string  `json:"name"`
	Duration      *int     `json:"duration"`
	MaxGroupSize  *int     `json:"max_group_size"`
	Difficulty    *string  `json:"difficulty"`
	Price         *float64 `json:"price"`
	PriceDiscount *float64 `json:"price_discount"`
	Summary       *string  `json:"summary"`
	Description   *string  `json:"description"`
	ImageCover    *string  `json:"image_cover"`
	Images        []string `json:"images"`
	StartDates    []string `json:"start_dates"`
	Secret        *bool    `json:"secret"`
}

// update handles PATCH /api/v1/tours/{id} requests (staff only).
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input tourUpdateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updateInput := UpdateInput{
		Name:          input.Name,
		Duration:      input.Duration,
		MaxGroupSize:  input.MaxGroupSize,
		Price:         input.Price,
		PriceDiscount: input.PriceDiscount,
		Summary:       input.Summary,
		Description:   input.Description,
		ImageCover:    input.ImageCover,
		Images:        input.Images,
		StartDates:    input.StartDates,
		Secret:        input.Secret,
	}
	if input.Difficulty != nil {
		difficulty := Difficulty(*input.Difficulty)
		updateInput.Difficulty = &difficulty
	}

	tour, err := handler.tourService.Update(request.Context(), id, updateInput)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"tour": tour})
}

// delete handles DELETE /api/v1/tours/{id} requests (staff only).
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.tourService.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
