package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NathiDhliso/lexo-core/internal/adapter/http/dto"
	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Append(ctx context.Context, input usecase.AppendInput) (*domain.TrustTransaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.TrustTransaction, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.TrustTransaction, error)
	VerifyChain(ctx context.Context, accountID string) ([]string, error)
}

// LedgerHandler handles trust ledger HTTP requests.
type LedgerHandler struct {
	uc LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(uc LedgerService) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// Append handles POST /api/v1/trust-accounts/{id}/transactions.
func (h *LedgerHandler) Append(w http.ResponseWriter, r *http.Request) {
	var req dto.AppendTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	input := req.ToUseCaseInput(chi.URLParam(r, "id"), actorID(r), requestID(r))

	txn, err := h.uc.Append(r.Context(), input)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// GetTransaction handles GET /api/v1/transactions/{id}.
func (h *LedgerHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.uc.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// List handles GET /api/v1/trust-accounts/{id}/transactions.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	startDate, err := parseTimeQuery(r, "start_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid start_date")
		return
	}
	endDate, err := parseTimeQuery(r, "end_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid end_date")
		return
	}

	input := usecase.ListTransactionsInput{
		TrustAccountID: chi.URLParam(r, "id"),
		StartDate:      startDate,
		EndDate:        endDate,
		Type:           domain.TransactionType(r.URL.Query().Get("type")),
		Reconciled:     parseBoolQuery(r, "reconciled"),
		Limit:          parseIntQuery(r, "limit", 0),
		Offset:         parseIntQuery(r, "offset", 0),
	}

	txns, err := h.uc.ListTransactions(r.Context(), input)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}

// VerifyChain handles GET /api/v1/trust-accounts/{id}/verify.
func (h *LedgerHandler) VerifyChain(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	corrupt, err := h.uc.VerifyChain(r.Context(), accountID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ChainVerificationResponse{
		TrustAccountID: accountID,
		Valid:          len(corrupt) == 0,
		Discrepancies:  corrupt,
	})
}
