package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NathiDhliso/lexo-core/internal/adapter/http/dto"
	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// AmendmentService defines the behavior needed by AmendmentHandler.
type AmendmentService interface {
	CreateAmendment(ctx context.Context, input usecase.CreateAmendmentInput) (*domain.ScopeAmendment, error)
	ApproveAmendment(ctx context.Context, id, approverID, requestID, notes string) (*domain.ScopeAmendment, error)
	RejectAmendment(ctx context.Context, id, approverID, requestID, reason string) (*domain.ScopeAmendment, error)
	GetAmendment(ctx context.Context, id string) (*domain.ScopeAmendment, error)
	ListAmendmentsByMatter(ctx context.Context, matterID string) ([]*domain.ScopeAmendment, error)
	ListPendingAmendments(ctx context.Context, advocateID string) ([]*domain.ScopeAmendment, error)
	PreviewVariance(ctx context.Context, id string) (*domain.EstimateVariance, error)
}

// AmendmentHandler handles scope amendment HTTP requests.
type AmendmentHandler struct {
	uc AmendmentService
}

// NewAmendmentHandler creates a new AmendmentHandler.
func NewAmendmentHandler(uc AmendmentService) *AmendmentHandler {
	return &AmendmentHandler{uc: uc}
}

// Create handles POST /api/v1/amendments.
func (h *AmendmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAmendmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	amendment, err := h.uc.CreateAmendment(r.Context(), req.ToUseCaseInput(actorID(r), requestID(r)))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AmendmentFromDomain(amendment))
}

// Get handles GET /api/v1/amendments/{id}.
func (h *AmendmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	amendment, err := h.uc.GetAmendment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AmendmentFromDomain(amendment))
}

// Approve handles POST /api/v1/amendments/{id}/approve.
func (h *AmendmentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req dto.NotesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	amendment, err := h.uc.ApproveAmendment(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r), req.Notes)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AmendmentFromDomain(amendment))
}

// Reject handles POST /api/v1/amendments/{id}/reject.
func (h *AmendmentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req dto.ReasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	amendment, err := h.uc.RejectAmendment(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r), req.Reason)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AmendmentFromDomain(amendment))
}

// Variance handles GET /api/v1/amendments/{id}/variance.
func (h *AmendmentHandler) Variance(w http.ResponseWriter, r *http.Request) {
	variance, err := h.uc.PreviewVariance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VarianceFromDomain(variance))
}

// ListByMatter handles GET /api/v1/matters/{id}/amendments.
func (h *AmendmentHandler) ListByMatter(w http.ResponseWriter, r *http.Request) {
	amendments, err := h.uc.ListAmendmentsByMatter(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AmendmentsFromDomain(amendments))
}

// ListPending handles GET /api/v1/advocates/{advocateID}/amendments/pending.
func (h *AmendmentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	amendments, err := h.uc.ListPendingAmendments(r.Context(), chi.URLParam(r, "advocateID"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AmendmentsFromDomain(amendments))
}
