package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
)

// CreditNoteUseCase drives the credit note lifecycle. Apply is the only
// operation that touches the invoice, and it does so in the same database
// transaction as the status change.
type CreditNoteUseCase struct {
	txManager   TransactionManager
	noteRepo    CreditNoteRepository
	invoiceRepo InvoiceRepository
	disputeRepo DisputeRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// NewCreditNoteUseCase creates a new CreditNoteUseCase.
func NewCreditNoteUseCase(
	txManager TransactionManager,
	noteRepo CreditNoteRepository,
	invoiceRepo InvoiceRepository,
	disputeRepo DisputeRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *CreditNoteUseCase {
	return &CreditNoteUseCase{
		txManager:   txManager,
		noteRepo:    noteRepo,
		invoiceRepo: invoiceRepo,
		disputeRepo: disputeRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// CreateCreditNoteInput represents input for drafting a credit note.
type CreateCreditNoteInput struct {
	InvoiceID      string
	DisputeID      *string
	AdvocateID     string
	ActorID        string
	RequestID      string
	Amount         decimal.Decimal
	Reason         string
	ReasonCategory string
}

// CreateCreditNote drafts a credit note against an invoice. The amount may
// not exceed the invoice's current total, counting credit notes already
// issued or applied against it.
func (uc *CreditNoteUseCase) CreateCreditNote(ctx context.Context, input CreateCreditNoteInput) (*domain.CreditNote, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.Reason == "" {
		return nil, domain.ErrReasonRequired
	}

	invoice, err := uc.invoiceRepo.GetByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	outstanding, err := uc.creditableAmount(ctx, invoice)
	if err != nil {
		return nil, err
	}

	if input.Amount.GreaterThan(outstanding) {
		return nil, fmt.Errorf("%w: %s available", domain.ErrAmountExceedsInvoice, outstanding)
	}

	if input.DisputeID != nil {
		if _, err := uc.disputeRepo.GetByID(ctx, *input.DisputeID); err != nil {
			return nil, err
		}
	}

	number, err := uc.nextCreditNoteNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	note := &domain.CreditNote{
		ID:               uc.idGen.Generate(),
		CreditNoteNumber: number,
		InvoiceID:        input.InvoiceID,
		DisputeID:        input.DisputeID,
		AdvocateID:       input.AdvocateID,
		Amount:           input.Amount,
		Reason:           input.Reason,
		ReasonCategory:   input.ReasonCategory,
		Status:           domain.CreditNoteStatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	uc.audit(ctx, input.ActorID, input.RequestID, domain.AuditActionCreditNoteCreate, note.ID, nil, note)

	return note, nil
}

// creditableAmount is the invoice total minus issued and applied credit
// notes. Applied notes have already reduced the total, so only issued ones
// are subtracted here.
func (uc *CreditNoteUseCase) creditableAmount(ctx context.Context, invoice *domain.Invoice) (decimal.Decimal, error) {
	notes, err := uc.noteRepo.ListByInvoice(ctx, invoice.ID)
	if err != nil {
		return decimal.Zero, err
	}

	available := invoice.TotalAmount
	for _, n := range notes {
		if n.Status == domain.CreditNoteStatusIssued {
			available = available.Sub(n.Amount)
		}
	}

	return available, nil
}

// nextCreditNoteNumber produces CN-YYYYMM-NNNN, sequence per calendar month.
func (uc *CreditNoteUseCase) nextCreditNoteNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s-%s", CreditNoteNumberPrefix, time.Now().UTC().Format("200601"))

	seq, err := uc.noteRepo.NextSequence(ctx, prefix)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%04d", prefix, seq), nil
}

// IssueCreditNote moves a draft credit note to issued.
func (uc *CreditNoteUseCase) IssueCreditNote(ctx context.Context, id, actorID, requestID string) (*domain.CreditNote, error) {
	return uc.transition(ctx, id, actorID, requestID, domain.CreditNoteStatusIssued, domain.AuditActionCreditNoteIssue)
}

// CancelCreditNote cancels a draft or issued credit note.
func (uc *CreditNoteUseCase) CancelCreditNote(ctx context.Context, id, actorID, requestID string) (*domain.CreditNote, error) {
	return uc.transition(ctx, id, actorID, requestID, domain.CreditNoteStatusCancelled, domain.AuditActionCreditNoteCancel)
}

func (uc *CreditNoteUseCase) transition(
	ctx context.Context,
	id, actorID, requestID string,
	target domain.CreditNoteStatus,
	action domain.AuditAction,
) (*domain.CreditNote, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	note, err := uc.noteRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !note.Status.CanTransition(target) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, note.Status, target)
	}

	before := *note
	now := time.Now().UTC()

	var issuedAt *time.Time
	if target == domain.CreditNoteStatusIssued {
		issuedAt = &now
	} else {
		issuedAt = note.IssuedAt
	}

	if err := uc.noteRepo.UpdateStatus(ctx, tx, id, target, issuedAt, note.AppliedAt, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	note.Status = target
	note.IssuedAt = issuedAt
	note.UpdatedAt = now

	uc.audit(ctx, actorID, requestID, action, id, &before, note)

	return note, nil
}

// ApplyCreditNote applies an issued credit note: the note moves to applied,
// the invoice total is reduced and its payment status recomputed, and any
// linked dispute is resolved, all in one transaction.
func (uc *CreditNoteUseCase) ApplyCreditNote(ctx context.Context, id, actorID, requestID string) (*domain.CreditNote, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	note, err := uc.noteRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !note.Status.CanTransition(domain.CreditNoteStatusApplied) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, note.Status, domain.CreditNoteStatusApplied)
	}

	invoice, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, note.InvoiceID)
	if err != nil {
		return nil, err
	}

	if note.Amount.GreaterThan(invoice.TotalAmount) {
		return nil, domain.ErrAmountExceedsInvoice
	}

	before := *note
	now := time.Now().UTC()

	newTotal := invoice.TotalAmount.Sub(note.Amount)
	newStatus := domain.RecomputePaymentStatus(newTotal, invoice.AmountPaid)

	if err := uc.invoiceRepo.UpdateTotals(ctx, tx, invoice.ID, newTotal, newStatus, now); err != nil {
		return nil, err
	}

	if err := uc.noteRepo.UpdateStatus(ctx, tx, id, domain.CreditNoteStatusApplied, note.IssuedAt, &now, now); err != nil {
		return nil, err
	}

	if note.DisputeID != nil {
		if err := uc.resolveLinkedDispute(ctx, tx, *note.DisputeID, note.Amount, now); err != nil {
			return nil, err
		}
	}

	if err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   note.ID,
		AggregateType: domain.AggregateTypeCreditNote,
		EventType:     domain.EventTypeCreditNoteApplied,
		Payload: domain.MarshalState(domain.CreditNoteAppliedEvent{
			CreditNoteID:    note.ID,
			InvoiceID:       invoice.ID,
			Amount:          note.Amount.String(),
			NewInvoiceTotal: newTotal.String(),
			PaymentStatus:   string(newStatus),
		}),
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       string(domain.AuditActionCreditNoteApply),
		ResourceType: "credit_note",
		ResourceID:   note.ID,
		RequestID:    requestID,
		BeforeState:  domain.MarshalState(&before),
		AfterState: domain.JSON{
			"status":         string(domain.CreditNoteStatusApplied),
			"invoice_total":  newTotal.String(),
			"payment_status": string(newStatus),
			"applied_at":     now.Format(time.RFC3339),
		},
		Status:    string(domain.AuditStatusSuccess),
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	note.Status = domain.CreditNoteStatusApplied
	note.AppliedAt = &now
	note.UpdatedAt = now

	return note, nil
}

// resolveLinkedDispute closes the loop on a dispute settled via credit note.
// Already-terminal disputes are left untouched.
func (uc *CreditNoteUseCase) resolveLinkedDispute(ctx context.Context, tx Transaction, disputeID string, amount decimal.Decimal, now time.Time) error {
	dispute, err := uc.disputeRepo.GetByIDForUpdate(ctx, tx, disputeID)
	if err != nil {
		return err
	}

	if !dispute.Status.CanTransition(domain.DisputeStatusResolved) {
		return nil
	}

	resolution := domain.ResolutionTypeCreditNote
	dispute.Status = domain.DisputeStatusResolved
	dispute.ResolutionType = &resolution
	dispute.ResolvedAmount = &amount
	dispute.ResolvedAt = &now
	dispute.UpdatedAt = now

	return uc.disputeRepo.UpdateStatus(ctx, tx, dispute)
}

// GetCreditNote retrieves a credit note by ID.
func (uc *CreditNoteUseCase) GetCreditNote(ctx context.Context, id string) (*domain.CreditNote, error) {
	return uc.noteRepo.GetByID(ctx, id)
}

// ListCreditNotesByInvoice lists all credit notes against an invoice.
func (uc *CreditNoteUseCase) ListCreditNotesByInvoice(ctx context.Context, invoiceID string) ([]*domain.CreditNote, error) {
	if _, err := uc.invoiceRepo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}

	return uc.noteRepo.ListByInvoice(ctx, invoiceID)
}

func (uc *CreditNoteUseCase) audit(ctx context.Context, actorID, requestID string, action domain.AuditAction, resourceID string, before, after any) {
	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       string(action),
		ResourceType: "credit_note",
		ResourceID:   resourceID,
		RequestID:    requestID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
