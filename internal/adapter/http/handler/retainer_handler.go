package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/NathiDhliso/lexo-core/internal/adapter/http/dto"
	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// RetainerService defines the behavior needed by RetainerHandler.
type RetainerService interface {
	CreateRetainer(ctx context.Context, input usecase.CreateRetainerInput) (*domain.RetainerAgreement, error)
	Deposit(ctx context.Context, input usecase.RetainerMovementInput) (*domain.TrustTransaction, error)
	Drawdown(ctx context.Context, input usecase.RetainerMovementInput) (*domain.TrustTransaction, error)
	Refund(ctx context.Context, input usecase.RetainerMovementInput) (*domain.TrustTransaction, error)
	CancelRetainer(ctx context.Context, id, actorID, requestID, reason string) (*domain.RetainerAgreement, error)
	RenewRetainer(ctx context.Context, id, actorID, requestID string, newEndDate time.Time) (*domain.RetainerAgreement, error)
	GetRetainer(ctx context.Context, id string) (*domain.RetainerAgreement, error)
	GetSummary(ctx context.Context, id string) (*usecase.RetainerSummary, error)
	GetTransactionHistory(ctx context.Context, id string, limit, offset int) ([]*domain.TrustTransaction, error)
	ListLowBalance(ctx context.Context, advocateID string) ([]*domain.RetainerAgreement, error)
	ListExpiring(ctx context.Context, advocateID string, within time.Duration) ([]*domain.RetainerAgreement, error)
}

// RetainerHandler handles retainer agreement HTTP requests.
type RetainerHandler struct {
	uc RetainerService
}

// NewRetainerHandler creates a new RetainerHandler.
func NewRetainerHandler(uc RetainerService) *RetainerHandler {
	return &RetainerHandler{uc: uc}
}

// Create handles POST /api/v1/retainers.
func (h *RetainerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRetainerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	retainer, err := h.uc.CreateRetainer(r.Context(), req.ToUseCaseInput(actorID(r), requestID(r)))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RetainerFromDomain(retainer))
}

// Get handles GET /api/v1/retainers/{id}.
func (h *RetainerHandler) Get(w http.ResponseWriter, r *http.Request) {
	retainer, err := h.uc.GetRetainer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RetainerFromDomain(retainer))
}

// Deposit handles POST /api/v1/retainers/{id}/deposit.
func (h *RetainerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.uc.Deposit)
}

// Drawdown handles POST /api/v1/retainers/{id}/drawdown.
func (h *RetainerHandler) Drawdown(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.uc.Drawdown)
}

// Refund handles POST /api/v1/retainers/{id}/refund.
func (h *RetainerHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.uc.Refund)
}

func (h *RetainerHandler) move(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, input usecase.RetainerMovementInput) (*domain.TrustTransaction, error),
) {
	var req dto.RetainerMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	txn, err := op(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id"), actorID(r), requestID(r)))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Cancel handles POST /api/v1/retainers/{id}/cancel.
func (h *RetainerHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req dto.ReasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	retainer, err := h.uc.CancelRetainer(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r), req.Reason)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RetainerFromDomain(retainer))
}

// Renew handles POST /api/v1/retainers/{id}/renew.
func (h *RetainerHandler) Renew(w http.ResponseWriter, r *http.Request) {
	var req dto.RenewRetainerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	retainer, err := h.uc.RenewRetainer(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r), req.EndDate)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RetainerFromDomain(retainer))
}

// Summary handles GET /api/v1/retainers/{id}/summary.
func (h *RetainerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.uc.GetSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// History handles GET /api/v1/retainers/{id}/transactions.
func (h *RetainerHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 0)
	offset := parseIntQuery(r, "offset", 0)

	txns, err := h.uc.GetTransactionHistory(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}

// ListLowBalance handles GET /api/v1/advocates/{advocateID}/retainers/low-balance.
func (h *RetainerHandler) ListLowBalance(w http.ResponseWriter, r *http.Request) {
	retainers, err := h.uc.ListLowBalance(r.Context(), chi.URLParam(r, "advocateID"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RetainersFromDomain(retainers))
}

// ListExpiring handles GET /api/v1/advocates/{advocateID}/retainers/expiring.
func (h *RetainerHandler) ListExpiring(w http.ResponseWriter, r *http.Request) {
	within := 30 * 24 * time.Hour
	if s := r.URL.Query().Get("within"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid within duration")
			return
		}
		within = d
	}

	retainers, err := h.uc.ListExpiring(r.Context(), chi.URLParam(r, "advocateID"), within)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RetainersFromDomain(retainers))
}
