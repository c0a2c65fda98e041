package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ciaraugasmoy/user-management-api/internal/httputil"
	"github.com/ciaraugasmoy/user-management-api/internal/logging"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Registration carries the fields accepted when creating an account,
// either through self-registration or an administrative create.
type Registration struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	Nickname           string `json:"nickname"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Bio                string `json:"bio"`
	Location           string `json:"location"`
	ProfilePictureURL  string `json:"profile_picture_url"`
	GithubProfileURL   string `json:"github_profile_url"`
	LinkedinProfileURL string `json:"linkedin_profile_url"`
}

// Service is the account lifecycle surface the management handlers
// consume. The auth service implements it.
type Service interface {
	Register(ctx context.Context, reg Registration) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
	List(ctx context.Context, offset, limit int) ([]*User, int, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error)
	UpdateProfileField(ctx context.Context, id uuid.UUID, field ProfileField, value string) (*User, error)
	GetProfileField(ctx context.Context, id uuid.UUID, field ProfileField) (string, error)
	UpgradeRole(ctx context.Context, id uuid.UUID, newRole Role) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler contains HTTP handlers for account management and profile
// field endpoints
type Handler struct {
	service Service
	logger  *logging.Logger
	baseURL string
}

func NewHandler(service Service, logger *logging.Logger, baseURL string) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		baseURL: baseURL,
	}
}

// UpdateRequest is a partial account update; absent fields are left
// untouched
type UpdateRequest struct {
	Nickname           *string `json:"nickname"`
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	Bio                *string `json:"bio"`
	Location           *string `json:"location"`
	ProfilePictureURL  *string `json:"profile_picture_url"`
	GithubProfileURL   *string `json:"github_profile_url"`
	LinkedinProfileURL *string `json:"linkedin_profile_url"`
}

// UpdateFieldRequest carries the new value for a single profile field
type UpdateFieldRequest struct {
	Value string `json:"value"`
}

// Get fetches a user by ID
// @Summary      Get user
// @Description  Fetch a single account by its ID. Requires ADMIN or MANAGER role.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userID path string true "Account ID"
// @Success      200 {object} Response
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{userID} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get user", "user_id", id, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, NewResponse(u, h.baseURL), http.StatusOK)
}

// Create creates a user on behalf of an administrator
// @Summary      Create user
// @Description  Create a new account. Requires ADMIN or MANAGER role. A verification email is sent.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body Registration true "Account fields"
// @Success      201 {object} Response
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Router       /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req Registration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create user request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	u, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			httputil.RespondErrorWithCode(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
		case errors.Is(err, ErrEmailRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidEmailFormat):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordTooShort):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
		default:
			// Anything else is an infrastructure fault; never echo it back
			logger.Error("failed to create user", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to create user", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user created", "user_id", u.ID)

	httputil.RespondJSON(w, NewResponse(u, h.baseURL), http.StatusCreated)
}

// Update applies a partial update to a user
// @Summary      Update user
// @Description  Apply a partial update to an account. Requires ADMIN or MANAGER role.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userID path string true "Account ID"
// @Param        request body UpdateRequest true "Fields to update"
// @Success      200 {object} Response
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{userID} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	u, err := h.service.Update(r.Context(), id, UpdateParams{
		Nickname:           req.Nickname,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Bio:                req.Bio,
		Location:           req.Location,
		ProfilePictureURL:  req.ProfilePictureURL,
		GithubProfileURL:   req.GithubProfileURL,
		LinkedinProfileURL: req.LinkedinProfileURL,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update user", "user_id", id, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, NewResponse(u, h.baseURL), http.StatusOK)
}

// Delete removes a user
// @Summary      Delete user
// @Description  Delete an account by its ID. Requires ADMIN or MANAGER role.
// @Tags         users
// @Security     BearerAuth
// @Param        userID path string true "Account ID"
// @Success      204 "No Content"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{userID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete user", "user_id", id, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user deleted", "user_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// List returns a page of users
// @Summary      List users
// @Description  Paginated account listing. Requires ADMIN or MANAGER role.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        offset query int false "Items to skip" default(0)
// @Param        limit query int false "Page size" default(10)
// @Success      200 {object} ListResponse
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	offset, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	users, total, err := h.service.List(r.Context(), offset, limit)
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list users", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, NewListResponse(users, total, offset, limit, h.baseURL), http.StatusOK)
}

// UpgradeToProfessional upgrades a user to the PROFESSIONAL tier
// @Summary      Upgrade user to professional
// @Description  Set the account role to PROFESSIONAL and notify the owner by email. Requires ADMIN or MANAGER role.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userID path string true "Account ID"
// @Success      200 {object} Response
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{userID}/professional [put]
func (h *Handler) UpgradeToProfessional(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	u, err := h.service.UpgradeRole(r.Context(), id, RoleProfessional)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to upgrade user", "user_id", id, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to upgrade user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user upgraded to professional", "user_id", id)

	httputil.RespondJSON(w, NewResponse(u, h.baseURL), http.StatusOK)
}

// GetID resolves an account ID from an email address
// @Summary      Get user ID by email
// @Description  Resolve an account ID from its email address.
// @Tags         users
// @Produce      json
// @Param        email query string true "Email address"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/id [get]
func (h *Handler) GetID(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	email := r.URL.Query().Get("email")
	if email == "" {
		httputil.RespondErrorWithCode(w, "email is required", httputil.CodeEmailRequired, http.StatusBadRequest)
		return
	}

	id, err := h.service.GetIDByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to resolve user id", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to resolve user id", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"user_id": id.String()}, http.StatusOK)
}

// GetField reads a single profile field
// @Summary      Get profile field
// @Description  Read one profile field (nickname, bio, location, profile-picture, github-profile, linkedin-profile). Returns 404 when the account is absent or the field is empty.
// @Tags         profile
// @Produce      json
// @Param        userID path string true "Account ID"
// @Param        field path string true "Field name"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse "User or field value not found"
// @Router       /users/{userID}/{field} [get]
func (h *Handler) GetField(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	field, err := ParseProfileField(chi.URLParam(r, "field"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "unknown profile field", httputil.CodeInvalidField, http.StatusNotFound)
		return
	}

	value, err := h.service.GetProfileField(r.Context(), id, field)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get profile field", "user_id", id, "field", field, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get profile field", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	// An unset field reads as absent, matching the account-not-found case
	if value == "" {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
		return
	}

	httputil.RespondJSON(w, map[string]string{field.ResponseKey(): value}, http.StatusOK)
}

// UpdateField writes a single profile field
// @Summary      Update profile field
// @Description  Mutate one profile field without touching the rest of the account.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userID path string true "Account ID"
// @Param        field path string true "Field name"
// @Param        request body UpdateFieldRequest true "New value"
// @Success      200 {object} Response
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{userID}/{field} [put]
func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	field, err := ParseProfileField(chi.URLParam(r, "field"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "unknown profile field", httputil.CodeInvalidField, http.StatusNotFound)
		return
	}

	var req UpdateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid field update request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	u, err := h.service.UpdateProfileField(r.Context(), id, field, req.Value)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update profile field", "user_id", id, "field", field, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update profile field", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("profile field updated", "user_id", id, "field", field)

	httputil.RespondJSON(w, NewResponse(u, h.baseURL), http.StatusOK)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid user id", httputil.CodeInvalidUserID, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(w http.ResponseWriter, r *http.Request) (offset, limit int, ok bool) {
	offset = 0
	limit = defaultPageLimit

	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.RespondErrorWithCode(w, "invalid offset", httputil.CodeInvalidPagination, http.StatusBadRequest)
			return 0, 0, false
		}
		offset = n
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.RespondErrorWithCode(w, "invalid limit", httputil.CodeInvalidPagination, http.StatusBadRequest)
			return 0, 0, false
		}
		if n > maxPageLimit {
			n = maxPageLimit
		}
		limit = n
	}

	return offset, limit, true
}
