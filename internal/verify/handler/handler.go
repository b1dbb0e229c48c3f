// Package handler exposes registry verification. Lookups are open to guests;
// when the request carries a valid token the scan is also credited to the
// user's ledger and the earned awards ride along in the response.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	gamifysvc "bisaathi/internal/gamify/service"
	"bisaathi/internal/platform/middleware"
	"bisaathi/internal/transport/http/shared"
	"bisaathi/internal/verify"
	id "bisaathi/pkg/domain"
	dErrors "bisaathi/pkg/domain-errors"
)

// VerifyService resolves CM/L codes, typed or scanned off a label image.
type VerifyService interface {
	Lookup(ctx context.Context, rawCode string) (verify.Result, error)
	Scan(ctx context.Context, image []byte) (verify.Result, error)
}

// ProgressRecorder credits a completed lookup to a user's ledger.
type ProgressRecorder interface {
	RecordVerification(ctx context.Context, userID id.UserID, outcome verify.Outcome) (gamifysvc.Progress, error)
}

type Handler struct {
	verifier VerifyService
	recorder ProgressRecorder
}

func NewHandler(verifier VerifyService, recorder ProgressRecorder) *Handler {
	return &Handler{verifier: verifier, recorder: recorder}
}

// Routes mounts the verification endpoint. Callers wrap the router with
// OptionalAuth so guests pass through.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Verify)
}

type verifyRequest struct {
	CMLCode     string `json:"cml_code"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

type verifyResponse struct {
	Result   verify.Result       `json:"result"`
	Progress *gamifysvc.Progress `json:"progress,omitempty"`
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return
	}

	var result verify.Result
	var err error
	if req.CMLCode != "" {
		result, err = h.verifier.Lookup(r.Context(), req.CMLCode)
	} else if req.ImageBase64 != "" {
		var image []byte
		image, err = base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "image_base64 is not valid base64"))
			return
		}
		result, err = h.verifier.Scan(r.Context(), image)
	} else {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "cml_code or image_base64 is required"))
		return
	}
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	resp := verifyResponse{Result: result}
	if raw := middleware.GetUserID(r.Context()); raw != "" {
		userID, err := id.ParseUserID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		progress, err := h.recorder.RecordVerification(r.Context(), userID, result.Status)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		resp.Progress = &progress
	}

	shared.WriteJSON(w, http.StatusOK, resp)
}
