package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NathiDhliso/lexo-core/internal/adapter/http/dto"
	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// TrustAccountService defines the behavior needed by TrustAccountHandler.
type TrustAccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.TrustAccount, error)
	GetAccount(ctx context.Context, id string) (*domain.TrustAccount, error)
	GetAccountByAdvocate(ctx context.Context, advocateID string) (*domain.TrustAccount, error)
	CheckViolations(ctx context.Context, accountID string) (*usecase.ViolationReport, error)
}

// TrustAccountHandler handles trust account HTTP requests.
type TrustAccountHandler struct {
	uc TrustAccountService
}

// NewTrustAccountHandler creates a new TrustAccountHandler.
func NewTrustAccountHandler(uc TrustAccountService) *TrustAccountHandler {
	return &TrustAccountHandler{uc: uc}
}

// Create handles POST /api/v1/trust-accounts.
func (h *TrustAccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTrustAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	account, err := h.uc.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TrustAccountFromDomain(account))
}

// Get handles GET /api/v1/trust-accounts/{id}.
func (h *TrustAccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.uc.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TrustAccountFromDomain(account))
}

// GetByAdvocate handles GET /api/v1/advocates/{advocateID}/trust-account.
func (h *TrustAccountHandler) GetByAdvocate(w http.ResponseWriter, r *http.Request) {
	account, err := h.uc.GetAccountByAdvocate(r.Context(), chi.URLParam(r, "advocateID"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TrustAccountFromDomain(account))
}

// Violations handles GET /api/v1/trust-accounts/{id}/violations.
func (h *TrustAccountHandler) Violations(w http.ResponseWriter, r *http.Request) {
	report, err := h.uc.CheckViolations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
