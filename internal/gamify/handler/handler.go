// Package handler exposes the authenticated gamification surface: stats,
// guest merge, and pending notifications.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bisaathi/internal/gamify/models"
	"bisaathi/internal/platform/middleware"
	"bisaathi/internal/transport/http/shared"
	id "bisaathi/pkg/domain"
	dErrors "bisaathi/pkg/domain-errors"
)

// GamifyService is the slice of the gamify service the handler needs.
type GamifyService interface {
	Stats(ctx context.Context, userID id.UserID) (models.StatsSnapshot, models.RoleTier, error)
	MergeGuest(ctx context.Context, userID id.UserID, guest models.StatsSnapshot) (models.StatsSnapshot, error)
	Notifications(ctx context.Context, userID id.UserID) ([]models.Notification, error)
	MarkNotificationsSeen(ctx context.Context, userID id.UserID) error
}

type Handler struct {
	svc GamifyService
}

func NewHandler(svc GamifyService) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the gamify endpoints. Callers wrap the router with RequireAuth.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/stats", h.GetStats)
	r.Post("/merge", h.MergeGuest)
	r.Get("/notifications", h.ListNotifications)
	r.Post("/notifications/seen", h.MarkNotificationsSeen)
}

type statsResponse struct {
	Snapshot models.StatsSnapshot `json:"snapshot"`
	Role     models.RoleTier      `json:"role"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	snap, role, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, statsResponse{Snapshot: snap, Role: role})
}

type mergeRequest struct {
	Guest models.StatsSnapshot `json:"guest"`
}

func (h *Handler) MergeGuest(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return
	}

	merged, err := h.svc.MergeGuest(r.Context(), userID, req.Guest)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, statsResponse{Snapshot: merged})
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	notes, err := h.svc.Notifications(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if notes == nil {
		notes = []models.Notification{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"notifications": notes})
}

func (h *Handler) MarkNotificationsSeen(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.svc.MarkNotificationsSeen(r.Context(), userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func authenticatedUserID(ctx context.Context) (id.UserID, error) {
	raw := middleware.GetUserID(ctx)
	if raw == "" {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return id.ParseUserID(raw)
}
