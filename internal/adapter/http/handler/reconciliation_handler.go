package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/adapter/http/dto"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	GenerateReport(ctx context.Context, accountID string, start, end time.Time) (*usecase.ReconciliationReport, error)
	MarkReconciled(ctx context.Context, accountID, actorID, requestID string, asOf time.Time, statedClosing decimal.Decimal) error
}

// ReconciliationHandler handles trust reconciliation HTTP requests.
type ReconciliationHandler struct {
	uc ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(uc ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{uc: uc}
}

// Report handles GET /api/v1/trust-accounts/{id}/reconciliation.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimeQuery(r, "start")
	if err != nil || start == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "start is required")
		return
	}
	end, err := parseTimeQuery(r, "end")
	if err != nil || end == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "end is required")
		return
	}

	report, err := h.uc.GenerateReport(r.Context(), chi.URLParam(r, "id"), *start, *end)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// MarkReconciled handles POST /api/v1/trust-accounts/{id}/reconcile.
func (h *ReconciliationHandler) MarkReconciled(w http.ResponseWriter, r *http.Request) {
	var req dto.MarkReconciledRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	err := h.uc.MarkReconciled(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r), req.AsOf, req.ClosingBalance)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "reconciled"})
}
