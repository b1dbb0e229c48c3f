package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	gamifysvc "bisaathi/internal/gamify/service"
	gamifystore "bisaathi/internal/gamify/store"
	"bisaathi/internal/platform/middleware"
	"bisaathi/internal/verify"
	id "bisaathi/pkg/domain"
)

func newTestRouter(t *testing.T) (chi.Router, *gamifysvc.Service) {
	t.Helper()

	verifier, err := verify.New(verify.NewSeededMemoryStore(), verify.WithRecognizer(verify.TextRecognizer{}))
	if err != nil {
		t.Fatalf("verify service: %v", err)
	}
	recorder, err := gamifysvc.New(gamifystore.NewMemory(), gamifystore.NewMemoryNotifications())
	if err != nil {
		t.Fatalf("gamify service: %v", err)
	}

	r := chi.NewRouter()
	NewHandler(verifier, recorder).Routes(r)
	return r, recorder
}

func postVerify(router http.Handler, code string, userID *id.UserID) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(map[string]string{"cml_code": code})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	if userID != nil {
		ctx := context.WithValue(req.Context(), middleware.ContextKeyUserID, userID.String())
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type verifyBody struct {
	Result   verify.Result       `json:"result"`
	Progress *gamifysvc.Progress `json:"progress"`
}

func TestVerifyAsGuest(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postVerify(router, "CM/L-1234567", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body verifyBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Result.Status != verify.OutcomeValid {
		t.Errorf("expected valid outcome, got %q", body.Result.Status)
	}
	if body.Progress != nil {
		t.Error("guest lookups must not carry ledger progress")
	}
}

func TestVerifyAuthenticatedEarnsAwards(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := id.NewUserID()

	rec := postVerify(router, "CM/L-0000000", &userID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body verifyBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Result.Status != verify.OutcomeNotFound {
		t.Fatalf("expected not_found outcome, got %q", body.Result.Status)
	}
	if body.Progress == nil {
		t.Fatal("expected ledger progress for an authenticated lookup")
	}
	// Base scan 5 + welcome 10 + unregistered catch 20.
	if body.Progress.Snapshot.Score != 35 {
		t.Errorf("expected score 35, got %d", body.Progress.Snapshot.Score)
	}
	if body.Progress.Snapshot.ViolationsCaught != 1 {
		t.Errorf("expected 1 violation caught, got %d", body.Progress.Snapshot.ViolationsCaught)
	}
}

func TestVerifyMalformedCode(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postVerify(router, "bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVerifyFromLabelImage(t *testing.T) {
	router, _ := newTestRouter(t)

	image := base64.StdEncoding.EncodeToString([]byte("BIS certified. Licence CML 1234567, batch 42."))
	raw, _ := json.Marshal(map[string]string{"image_base64": image})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body verifyBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Result.Status != verify.OutcomeValid {
		t.Errorf("expected valid outcome, got %q", body.Result.Status)
	}
	if body.Result.CMLCode != "CM/L-1234567" {
		t.Errorf("expected canonical code, got %q", body.Result.CMLCode)
	}
}

func TestVerifyRequiresCodeOrImage(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Fatal("an empty request must not verify anything")
	}
}

func TestVerifyMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
