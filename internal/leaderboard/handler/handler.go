// Package handler exposes the public leaderboard.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bisaathi/internal/leaderboard"
	"bisaathi/internal/transport/http/shared"
	dErrors "bisaathi/pkg/domain-errors"
)

// RankingService answers top-N queries.
type RankingService interface {
	Top(ctx context.Context, limit int) ([]leaderboard.Entry, error)
}

type Handler struct {
	svc RankingService
}

func NewHandler(svc RankingService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Top)
}

func (h *Handler) Top(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}

	entries, err := h.svc.Top(r.Context(), limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}
