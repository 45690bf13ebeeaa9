// Copyright (c) 2026 Trailgo. All rights reserved.

// # Delivery Layer
//
// The handler in this file is the gatekeeper for the /api/v1/users surface.
// It is responsible for:
//   - JSON request parsing and strict input validation.
//   - Mapping HTTP contexts to service layer method calls.
//   - Standardizing JSON response formats via the [respond] package.
//
// It contains NO business logic or database queries.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledinhkha/trailgo/internal/platform/constants"
	"github.com/ledinhkha/trailgo/internal/platform/middleware"
	requestutil "github.com/ledinhkha/trailgo/internal/platform/request"
	"github.com/ledinhkha/trailgo/internal/platform/respond"
	"github.com/ledinhkha/trailgo/internal/platform/sec"
	"github.com/ledinhkha/trailgo/internal/platform/throttle"
	"github.com/ledinhkha/trailgo/internal/platform/validate"
	"github.com/ledinhkha/trailgo/pkg/pagination"
)

// sessionEnvelope is the response shape for every operation that establishes
// a session: the token rides at the top level next to the status, with the
// account under data.
type sessionEnvelope struct {
	Status string         `json:"status"`
	Token  string         `json:"token"`
	Data   map[string]any `json:"data"`
}

// messageEnvelope is the response shape for operations that acknowledge
// without returning a resource.
type messageEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Handler implements the account-facing HTTP endpoints.
type Handler struct {
	authService  *Service
	loginLimiter *throttle.Limiter
	resetLimiter *throttle.Limiter
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, loginLimiter, resetLimiter *throttle.Limiter) *Handler {
	return &Handler{
		authService:  service,
		loginLimiter: loginLimiter,
		resetLimiter: resetLimiter,
	}
}

// Routes returns a [chi.Router] for the /api/v1/users surface.
//
// # Endpoints
//
// Public:
//   - POST  /signup                : Creates a new account, starts a session.
//   - POST  /login                 : Authenticates and returns a session token.
//   - POST  /forgotPassword        : Emails a password reset token.
//   - PATCH /resetPassword/{token} : Consumes a reset token, sets a new password.
//
// Authenticated:
//   - PATCH /updatePassword : Rotates the caller's password.
//   - PATCH /updateMe       : Updates the caller's profile fields.
//
// Admin:
//   - GET   /           : Lists accounts (paginated).
//   - PATCH /{id}/role  : Changes an account's role tier.
func (handler *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/forgotPassword", handler.forgotPassword)
	router.Patch("/resetPassword/{token}", handler.resetPassword)

	router.Group(func(protected chi.Router) {
		protected.Use(authenticate)

		protected.Patch("/updatePassword", handler.updatePassword)
		protected.Patch("/updateMe", handler.updateMe)

		protected.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireRole(sec.Roles(sec.RoleAdmin)))

			admin.Get("/", handler.list)
			admin.Patch("/{id}/role", handler.updateRole)
		})
	})

	return router
}

// writeSession writes the standard session-establishing response.
func writeSession(writer http.ResponseWriter, statusCode int, result *AuthResult) {
	respond.JSON(writer, statusCode, sessionEnvelope{
		Status: "success",
		Token:  result.Token,
		Data:   map[string]any{"user": result.User},
	})
}

// signupRequest represents the JSON payload expected for account creation.
// A role field in the payload is silently ignored by decoding: it simply has
// no destination here.
type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// signup handles POST /api/v1/users/signup requests.
//
// # Returns
//   - Writes HTTP 201 Created with a session token and the new account.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 409 Conflict if the email is already registered.
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input signupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.
		Required("name", input.Name).
		Required("email", input.Email).
		Email("email", input.Email).
		MinLen("password", input.Password, constants.MinPasswordLength).
		Match("passwordConfirm", input.PasswordConfirm, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	result, err := handler.authService.SignUp(request.Context(), SignUpInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	writeSession(writer, http.StatusCreated, result)
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles POST /api/v1/users/login requests.
//
// # Returns
//   - Writes HTTP 200 OK with a session token and the account.
//   - Writes HTTP 401 Unauthorized for bad credentials (one generic message).
//   - Writes HTTP 429 Too Many Requests when the per-client budget is spent.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Abuse Control ──────────────────────────────────────────────────

	// Each attempt costs a bcrypt comparison; budget attempts per client
	// before the expensive work, not after.
	if err := handler.loginLimiter.Allow(request.Context(), middleware.RealIP(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Payload Extraction ─────────────────────────────────────────────

	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.
		Required("email", input.Email).
		Required("password", input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Application Execution ──────────────────────────────────────────

	result, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 5. Presentation Output ────────────────────────────────────────────

	writeSession(writer, http.StatusOK, result)
}

// forgotPasswordRequest represents the JSON payload for reset initiation.
type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// forgotPassword handles POST /api/v1/users/forgotPassword requests.
//
// # Returns
//   - Writes HTTP 200 OK acknowledging the email was sent.
//   - Writes HTTP 404 Not Found for an unregistered email.
//   - Writes HTTP 500 with DELIVERY_FAILED if the email could not be sent;
//     the provisional reset state is rolled back first.
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Abuse Control ──────────────────────────────────────────────────

	if err := handler.resetLimiter.Allow(request.Context(), middleware.RealIP(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Payload Extraction ─────────────────────────────────────────────

	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("email", input.Email).Email("email", input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	if err := handler.authService.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.JSON(writer, http.StatusOK, messageEnvelope{
		Status:  "success",
		Message: "Token sent to email",
	})
}

// resetPasswordRequest represents the JSON payload for reset completion.
type resetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// resetPassword handles PATCH /api/v1/users/resetPassword/{token} requests.
//
// # Returns
//   - Writes HTTP 200 OK with a fresh session token.
//   - Writes HTTP 400 Bad Request for an unknown or expired reset token,
//     or when the new password fails policy.
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	rawToken := requestutil.Param(request, "token")

	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.
		Required("token", rawToken).
		MinLen("password", input.Password, constants.MinPasswordLength).
		Match("passwordConfirm", input.PasswordConfirm, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	result, err := handler.authService.ResetPassword(request.Context(), rawToken, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	writeSession(writer, http.StatusOK, result)
}

// updatePasswordRequest represents the JSON payload for in-session rotation.
type updatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// updatePassword handles PATCH /api/v1/users/updatePassword requests.
//
// # Returns
//   - Writes HTTP 200 OK with a fresh session token; the caller's previous
//     tokens are invalidated by the freshness check.
//   - Writes HTTP 401 Unauthorized when the current password is wrong.
func (handler *Handler) updatePassword(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Identity ───────────────────────────────────────────────────────

	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Payload Extraction ─────────────────────────────────────────────

	var input updatePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.
		Required("passwordCurrent", input.PasswordCurrent).
		MinLen("password", input.Password, constants.MinPasswordLength).
		Match("passwordConfirm", input.PasswordConfirm, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Application Execution ──────────────────────────────────────────

	result, err := handler.authService.ChangePassword(request.Context(), identity.ID, input.PasswordCurrent, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 5. Presentation Output ────────────────────────────────────────────

	writeSession(writer, http.StatusOK, result)
}

// updateMeRequest represents the JSON payload for profile self-service.
//
// Password fields are decoded only so their presence can be rejected
// explicitly; this route must never touch credentials.
type updateMeRequest struct {
	Name            *string `json:"name"`
	Photo           *string `json:"photo"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm"`
}

// updateMe handles PATCH /api/v1/users/updateMe requests.
//
// # Returns
//   - Writes HTTP 200 OK with the updated account.
//   - Writes HTTP 400 Bad Request if the payload carries password fields.
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Identity ───────────────────────────────────────────────────────

	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Payload Extraction ─────────────────────────────────────────────

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Password != nil || input.PasswordConfirm != nil {
		respond.Error(writer, request, validate.RequiredError("password",
			"This route is not for password updates. Please use /updatePassword"))
		return
	}

	if input.Name != nil {
		validator := &validate.Validator{}
		validator.Required("name", *input.Name).MaxLen("name", *input.Name, 100)
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	user, err := handler.authService.UpdateProfile(request.Context(), identity.ID, UpdateProfileInput{
		Name:  input.Name,
		Photo: input.Photo,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.OK(writer, map[string]any{"user": user})
}

// list handles GET /api/v1/users requests (admin only).
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.authService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, map[string]any{"users": users}, pagination.NewMeta(params.Page, params.Limit, total))
}

// updateRoleRequest represents the JSON payload for role changes.
type updateRoleRequest struct {
	Role string `json:"role"`
}

// updateRole handles PATCH /api/v1/users/{id}/role requests (admin only).
func (handler *Handler) updateRole(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	userID := requestutil.Param(request, "id")

	var input updateRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.UUID("id", userID).Required("role", input.Role)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	user, err := handler.authService.UpdateRole(request.Context(), userID, sec.Role(input.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.OK(writer, map[string]any{"user": user})
}
