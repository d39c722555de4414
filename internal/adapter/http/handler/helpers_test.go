package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/NathiDhliso/lexo-core/internal/adapter/http/dto"
	"github.com/NathiDhliso/lexo-core/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/transactions?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/transactions?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestParseTimeQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/transactions?start_date=2026-01-15", nil)
	got, err := parseTimeQuery(req, "start_date")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Year() != 2026 || got.Month() != 1 || got.Day() != 15 {
		t.Fatalf("expected 2026-01-15, got %v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/transactions?start_date=2026-01-15T08:30:00Z", nil)
	got, err = parseTimeQuery(req, "start_date")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Hour() != 8 {
		t.Fatalf("expected RFC3339 parse, got %v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/transactions", nil)
	got, err = parseTimeQuery(req, "start_date")
	if err != nil || got != nil {
		t.Fatalf("expected nil for missing param, got %v, %v", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/transactions?start_date=nonsense", nil)
	if _, err = parseTimeQuery(req, "start_date"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"trust account not found", domain.ErrTrustAccountNotFound, http.StatusNotFound},
		{"transaction not found", domain.ErrTransactionNotFound, http.StatusNotFound},
		{"retainer not found", domain.ErrRetainerNotFound, http.StatusNotFound},
		{"insufficient balance", domain.ErrInsufficientBalance, http.StatusConflict},
		{"invalid state transition", domain.ErrInvalidStateTransition, http.StatusConflict},
		{"reconciliation mismatch", domain.ErrReconciliationMismatch, http.StatusConflict},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"reason required", domain.ErrReasonRequired, http.StatusBadRequest},
		{"ledger corrupt", domain.ErrLedgerCorrupt, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			mapDomainError(rr, tt.err)
			if rr.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rr.Code)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "validation_error", "amount must be positive")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Error != "validation_error" || resp.Message != "amount must be positive" {
		t.Fatalf("unexpected error response: %+v", resp)
	}
}

func TestActorID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/retainers", nil)
	if got := actorID(req); got != "system" {
		t.Fatalf("expected system fallback, got %s", got)
	}

	req.Header.Set(ActorIDHeader, "adv-001")
	if got := actorID(req); got != "adv-001" {
		t.Fatalf("expected adv-001, got %s", got)
	}
}
