package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NathiDhliso/lexo-core/internal/adapter/http/dto"
	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// DisputeService defines the behavior needed by DisputeHandler.
type DisputeService interface {
	CreateDispute(ctx context.Context, input usecase.CreateDisputeInput) (*domain.PaymentDispute, error)
	StartInvestigation(ctx context.Context, id, actorID, requestID string) (*domain.PaymentDispute, error)
	EscalateDispute(ctx context.Context, id, actorID, requestID, notes string) (*domain.PaymentDispute, error)
	CloseDispute(ctx context.Context, id, actorID, requestID, notes string) (*domain.PaymentDispute, error)
	ResolveDispute(ctx context.Context, input usecase.ResolveDisputeInput) (*domain.PaymentDispute, error)
	GetDispute(ctx context.Context, id string) (*domain.PaymentDispute, error)
	ListDisputesByInvoice(ctx context.Context, invoiceID string) ([]*domain.PaymentDispute, error)
}

// DisputeHandler handles payment dispute HTTP requests.
type DisputeHandler struct {
	uc DisputeService
}

// NewDisputeHandler creates a new DisputeHandler.
func NewDisputeHandler(uc DisputeService) *DisputeHandler {
	return &DisputeHandler{uc: uc}
}

// Create handles POST /api/v1/disputes.
func (h *DisputeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDisputeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	dispute, err := h.uc.CreateDispute(r.Context(), req.ToUseCaseInput(actorID(r), requestID(r)))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DisputeFromDomain(dispute))
}

// Get handles GET /api/v1/disputes/{id}.
func (h *DisputeHandler) Get(w http.ResponseWriter, r *http.Request) {
	dispute, err := h.uc.GetDispute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DisputeFromDomain(dispute))
}

// Investigate handles POST /api/v1/disputes/{id}/investigate.
func (h *DisputeHandler) Investigate(w http.ResponseWriter, r *http.Request) {
	dispute, err := h.uc.StartInvestigation(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DisputeFromDomain(dispute))
}

// Escalate handles POST /api/v1/disputes/{id}/escalate.
func (h *DisputeHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	var req dto.NotesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	dispute, err := h.uc.EscalateDispute(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r), req.Notes)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DisputeFromDomain(dispute))
}

// Close handles POST /api/v1/disputes/{id}/close.
func (h *DisputeHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req dto.NotesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	dispute, err := h.uc.CloseDispute(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r), req.Notes)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DisputeFromDomain(dispute))
}

// Resolve handles POST /api/v1/disputes/{id}/resolve.
func (h *DisputeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req dto.ResolveDisputeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	dispute, err := h.uc.ResolveDispute(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id"), actorID(r), requestID(r)))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DisputeFromDomain(dispute))
}

// ListByInvoice handles GET /api/v1/invoices/{invoiceID}/disputes.
func (h *DisputeHandler) ListByInvoice(w http.ResponseWriter, r *http.Request) {
	disputes, err := h.uc.ListDisputesByInvoice(r.Context(), chi.URLParam(r, "invoiceID"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DisputesFromDomain(disputes))
}
