// Package handler exposes the complaint surface: public submission, a user's
// own filings, and the officer triage endpoints.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bisaathi/internal/complaint/models"
	"bisaathi/internal/complaint/service"
	"bisaathi/internal/platform/middleware"
	"bisaathi/internal/transport/http/shared"
	id "bisaathi/pkg/domain"
	dErrors "bisaathi/pkg/domain-errors"
)

// ComplaintService is the slice of the complaint service the handler needs.
type ComplaintService interface {
	Submit(ctx context.Context, in service.SubmitInput) (service.SubmitResult, error)
	Transition(ctx context.Context, complaintID id.ComplaintID, newStatus models.Status, adminNotes, actorID string) (*models.Complaint, bool, error)
	Get(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Complaint, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Complaint, error)
	Stats(ctx context.Context) (models.StatusCounts, error)
	ByDay(ctx context.Context, days int) ([]models.DayCount, error)
	TopValidators(ctx context.Context, limit int) ([]models.TopValidator, error)
}

type Handler struct {
	svc ComplaintService
}

func NewHandler(svc ComplaintService) *Handler {
	return &Handler{svc: svc}
}

// PublicRoutes mounts submission. Callers wrap the router with OptionalAuth so
// guests can file anonymously.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/", h.Submit)
}

// UserRoutes mounts the caller's own filings. Callers wrap with RequireAuth.
func (h *Handler) UserRoutes(r chi.Router) {
	r.Get("/mine", h.ListMine)
}

// OfficerRoutes mounts triage. Callers wrap with RequireAuth and RequireOfficer.
func (h *Handler) OfficerRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/stats", h.Stats)
	r.Get("/by-day", h.ByDay)
	r.Get("/top-validators", h.TopValidators)
	r.Get("/{complaintID}", h.Get)
	r.Patch("/{complaintID}", h.Transition)
}

type submitRequest struct {
	CMLCode       string      `json:"cml_code"`
	ProductName   string      `json:"product_name"`
	IssueType     string      `json:"issue_type"`
	ComplaintText string      `json:"complaint_text"`
	Geo           *models.Geo `json:"geo,omitempty"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return
	}

	in := service.SubmitInput{
		CMLCode:       req.CMLCode,
		ProductName:   req.ProductName,
		IssueType:     req.IssueType,
		ComplaintText: req.ComplaintText,
		Geo:           req.Geo,
	}
	if raw := middleware.GetUserID(r.Context()); raw != "" {
		userID, err := id.ParseUserID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		in.UserID = &userID
	}

	result, err := h.svc.Submit(r.Context(), in)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
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

	complaints, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	writeComplaints(w, complaints)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter models.Filter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		filter.Status = status
	}
	if raw := r.URL.Query().Get("issue_type"); raw != "" {
		issueType, err := models.ParseIssueType(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		filter.IssueType = issueType
	}
	if raw := r.URL.Query().Get("anonymous"); raw != "" {
		anon, err := strconv.ParseBool(raw)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "anonymous must be a boolean"))
			return
		}
		filter.Anonymous = &anon
	}

	complaints, err := h.svc.List(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	writeComplaints(w, complaints)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	complaintID, err := id.ParseComplaintID(chi.URLParam(r, "complaintID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	c, err := h.svc.Get(r.Context(), complaintID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

type transitionRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

type transitionResponse struct {
	Complaint    *models.Complaint `json:"complaint"`
	BonusAwarded bool              `json:"bonus_awarded"`
}

func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	complaintID, err := id.ParseComplaintID(chi.URLParam(r, "complaintID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	c, bonusAwarded, err := h.svc.Transition(r.Context(), complaintID, status, req.AdminNotes, middleware.GetUserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, transitionResponse{Complaint: c, BonusAwarded: bonusAwarded})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Stats(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, counts)
}

func (h *Handler) ByDay(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "days must be a positive integer"))
			return
		}
		days = parsed
	}

	counts, err := h.svc.ByDay(r.Context(), days)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if counts == nil {
		counts = []models.DayCount{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"days": counts})
}

func (h *Handler) TopValidators(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	top, err := h.svc.TopValidators(r.Context(), limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if top == nil {
		top = []models.TopValidator{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"validators": top})
}

func writeComplaints(w http.ResponseWriter, complaints []*models.Complaint) {
	if complaints == nil {
		complaints = []*models.Complaint{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"complaints": complaints})
}
