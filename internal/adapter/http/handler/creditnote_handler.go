package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NathiDhliso/lexo-core/internal/adapter/http/dto"
	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// CreditNoteService defines the behavior needed by CreditNoteHandler.
type CreditNoteService interface {
	CreateCreditNote(ctx context.Context, input usecase.CreateCreditNoteInput) (*domain.CreditNote, error)
	IssueCreditNote(ctx context.Context, id, actorID, requestID string) (*domain.CreditNote, error)
	CancelCreditNote(ctx context.Context, id, actorID, requestID string) (*domain.CreditNote, error)
	ApplyCreditNote(ctx context.Context, id, actorID, requestID string) (*domain.CreditNote, error)
	GetCreditNote(ctx context.Context, id string) (*domain.CreditNote, error)
	ListCreditNotesByInvoice(ctx context.Context, invoiceID string) ([]*domain.CreditNote, error)
}

// CreditNoteHandler handles credit note HTTP requests.
type CreditNoteHandler struct {
	uc CreditNoteService
}

// NewCreditNoteHandler creates a new CreditNoteHandler.
func NewCreditNoteHandler(uc CreditNoteService) *CreditNoteHandler {
	return &CreditNoteHandler{uc: uc}
}

// Create handles POST /api/v1/credit-notes.
func (h *CreditNoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCreditNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	note, err := h.uc.CreateCreditNote(r.Context(), req.ToUseCaseInput(actorID(r), requestID(r)))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreditNoteFromDomain(note))
}

// Get handles GET /api/v1/credit-notes/{id}.
func (h *CreditNoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.uc.GetCreditNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditNoteFromDomain(note))
}

// Issue handles POST /api/v1/credit-notes/{id}/issue.
func (h *CreditNoteHandler) Issue(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.uc.IssueCreditNote)
}

// Cancel handles POST /api/v1/credit-notes/{id}/cancel.
func (h *CreditNoteHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.uc.CancelCreditNote)
}

// Apply handles POST /api/v1/credit-notes/{id}/apply.
func (h *CreditNoteHandler) Apply(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.uc.ApplyCreditNote)
}

func (h *CreditNoteHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id, actorID, requestID string) (*domain.CreditNote, error),
) {
	note, err := op(r.Context(), chi.URLParam(r, "id"), actorID(r), requestID(r))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditNoteFromDomain(note))
}

// ListByInvoice handles GET /api/v1/invoices/{invoiceID}/credit-notes.
func (h *CreditNoteHandler) ListByInvoice(w http.ResponseWriter, r *http.Request) {
	notes, err := h.uc.ListCreditNotesByInvoice(r.Context(), chi.URLParam(r, "invoiceID"))
	if err != nil {
		mapDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreditNotesFromDomain(notes))
}
