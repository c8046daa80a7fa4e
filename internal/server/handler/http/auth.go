// Package http provides the REST handlers and router of the plant care API.
package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/PlantCare/internal/middleware"
	"github.com/atinyakov/PlantCare/internal/models"
	"github.com/atinyakov/PlantCare/internal/service"
)

// AuthService defines the account operations required by the HTTP handlers.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, username, password string) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
	UpdateMe(ctx context.Context, userID int64, p models.UserPatch) (*models.User, error)
	DeleteMe(ctx context.Context, userID int64) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// AuthHandler handles registration, login and the caller's own account.
type AuthHandler struct {
	// AuthService performs the underlying account operations.
	AuthService AuthService
}

// LoginRequest is the JSON payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the JSON payload for token refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// Register handles POST /api/auth/register/.
// It responds 201 with the token pair and the new user.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Login handles POST /api/auth/login/.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Refresh handles POST /api/auth/refresh/.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.AuthService.Refresh(r.Context(), req.Refresh)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Logout handles POST /api/auth/logout/. Tokens are stateless, so this only
// acknowledges the request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/users/me/.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.Me(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateMe handles PATCH /api/users/me/.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var p models.UserPatch
	if err := decodeJSON(r, &p, true); err != nil {
		writeError(w, err)
		return
	}
	u, err := h.AuthService.UpdateMe(r.Context(), middleware.GetUserIDFromContext(r.Context()), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// DeleteMe handles DELETE /api/users/me/. Plants and logs go with the account.
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.DeleteMe(r.Context(), middleware.GetUserIDFromContext(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServiceUsers handles GET /api/service/users/, guarded by the service
// credential.
func (h *AuthHandler) ServiceUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.AuthService.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
