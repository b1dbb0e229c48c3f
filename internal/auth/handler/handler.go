// Package handler exposes registration, login, and the authenticated profile.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bisaathi/internal/auth/models"
	"bisaathi/internal/auth/service"
	"bisaathi/internal/platform/middleware"
	"bisaathi/internal/transport/http/shared"
	id "bisaathi/pkg/domain"
	dErrors "bisaathi/pkg/domain-errors"
)

// AuthService is the slice of the auth service the handler needs.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Profile(ctx context.Context, userID id.UserID) (models.User, error)
}

type Handler struct {
	svc AuthService
}

func NewHandler(svc AuthService) *Handler {
	return &Handler{svc: svc}
}

// PublicRoutes mounts the unauthenticated endpoints.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
}

// UserRoutes mounts the authenticated profile. Callers wrap with RequireAuth.
func (h *Handler) UserRoutes(r chi.Router) {
	r.Get("/me", h.Me)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return
	}

	session, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, sessionResponse{User: session.User, Token: session.Token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return
	}

	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sessionResponse{User: session.User, Token: session.Token})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	raw := middleware.GetUserID(r.Context())
	if raw == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	userID, err := id.ParseUserID(raw)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}
