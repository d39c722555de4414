package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NathiDhliso/lexo-core/internal/adapter/http/dto"
	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// BillingService defines the behavior needed by BillingHandler.
type BillingService interface {
	CheckReadiness(ctx context.Context, matterID string) (*usecase.ReadinessReport, error)
	CompleteMatter(ctx context.Context, matterID, actorID, requestID string) (*domain.Matter, error)
	MarkReadyToBill(ctx context.Context, matterID, actorID, requestID string) (*domain.Matter, error)
	SubmitForApproval(ctx context.Context, matterID, actorID, requestID, notes string) (*domain.Matter, error)
	ApproveBilling(ctx context.Context, matterID, approverID, requestID, notes string) (*domain.Matter, error)
	RejectBilling(ctx context.Context, matterID, approverID, requestID, reason string) (*domain.Matter, error)
	Pipeline(ctx context.Context, advocateID string) (*usecase.PipelineSummary, error)
	GetMatter(ctx context.Context, id string) (*domain.Matter, error)
}

// BillingHandler handles billing readiness and approval HTTP requests.
type BillingHandler struct {
	uc BillingService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(uc BillingService) *BillingHandler {
	return &BillingHandler{uc: uc}
}

// GetMatter handles GET /api/v1/matters/{id}.
func (h *BillingHandler) GetMatter(w http.ResponseWriter, r *http.Request) {
	matter, err := h.uc.GetMatter(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MatterFromDomain(matter))
}

// Readiness handles GET /api/v1/matters/{id}/billing/readiness.
func (h *BillingHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	report, err := h.uc.CheckReadiness(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Complete handles POST /api/v1/matters/{id}/billing/complete.
func (h *BillingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	matter, err := h.uc.CompleteMatter(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MatterFromDomain(matter))
}

// MarkReady handles POST /api/v1/matters/{id}/billing/mark-ready.
func (h *BillingHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	matter, err := h.uc.MarkReadyToBill(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MatterFromDomain(matter))
}

// Submit handles POST /api/v1/matters/{id}/billing/submit.
func (h *BillingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.NotesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	matter, err := h.uc.SubmitForApproval(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r), req.Notes)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MatterFromDomain(matter))
}

// Approve handles POST /api/v1/matters/{id}/billing/approve.
func (h *BillingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req dto.NotesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	matter, err := h.uc.ApproveBilling(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r), req.Notes)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MatterFromDomain(matter))
}

// Reject handles POST /api/v1/matters/{id}/billing/reject.
func (h *BillingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req dto.ReasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	matter, err := h.uc.RejectBilling(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r), req.Reason)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MatterFromDomain(matter))
}

// Pipeline handles GET /api/v1/advocates/{advocateID}/billing/pipeline.
func (h *BillingHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	summary, err := h.uc.Pipeline(r.Context(), chi.URLParam(r, "advocateID"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
