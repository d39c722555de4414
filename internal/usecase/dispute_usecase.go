package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
)

// DisputeUseCase drives the payment dispute lifecycle. Opening a dispute and
// flipping the invoice to disputed happen in one transaction, as do
// resolutions that hand the invoice back to collection.
type DisputeUseCase struct {
	txManager   TransactionManager
	disputeRepo DisputeRepository
	invoiceRepo InvoiceRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// NewDisputeUseCase creates a new DisputeUseCase.
func NewDisputeUseCase(
	txManager TransactionManager,
	disputeRepo DisputeRepository,
	invoiceRepo InvoiceRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *DisputeUseCase {
	return &DisputeUseCase{
		txManager:   txManager,
		disputeRepo: disputeRepo,
		invoiceRepo: invoiceRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// CreateDisputeInput represents input for opening a dispute.
type CreateDisputeInput struct {
	InvoiceID      string
	AdvocateID     string
	ActorID        string
	RequestID      string
	Type           domain.DisputeType
	Reason         string
	DisputedAmount *decimal.Decimal
}

// CreateDispute opens a dispute against an invoice and forces the invoice
// into the disputed payment state.
func (uc *DisputeUseCase) CreateDispute(ctx context.Context, input CreateDisputeInput) (*domain.PaymentDispute, error) {
	if input.Reason == "" {
		return nil, domain.ErrReasonRequired
	}

	if input.DisputedAmount != nil {
		if err := domain.ValidateAmount(*input.DisputedAmount); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	invoice, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	dispute := &domain.PaymentDispute{
		ID:             uc.idGen.Generate(),
		InvoiceID:      input.InvoiceID,
		AdvocateID:     input.AdvocateID,
		Type:           input.Type,
		Reason:         input.Reason,
		DisputedAmount: input.DisputedAmount,
		Status:         domain.DisputeStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.disputeRepo.Create(ctx, tx, dispute); err != nil {
		return nil, err
	}

	if invoice.PaymentStatus != domain.PaymentStatusDisputed {
		if err := uc.invoiceRepo.UpdatePaymentStatus(ctx, tx, invoice.ID, domain.PaymentStatusDisputed, now); err != nil {
			return nil, err
		}
	}

	if err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   dispute.ID,
		AggregateType: domain.AggregateTypeDispute,
		EventType:     domain.EventTypeDisputeOpened,
		Payload: domain.MarshalState(domain.DisputeOpenedEvent{
			DisputeID: dispute.ID,
			InvoiceID: invoice.ID,
			Type:      string(dispute.Type),
		}),
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      input.ActorID,
		Action:       string(domain.AuditActionDisputeCreate),
		ResourceType: "payment_dispute",
		ResourceID:   dispute.ID,
		RequestID:    input.RequestID,
		AfterState:   domain.MarshalState(dispute),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return dispute, nil
}

// StartInvestigation moves an open dispute to investigating.
func (uc *DisputeUseCase) StartInvestigation(ctx context.Context, id, actorID, requestID string) (*domain.PaymentDispute, error) {
	return uc.simpleTransition(ctx, id, actorID, requestID, domain.DisputeStatusInvestigating, domain.AuditActionDisputeInvestigate, "")
}

// EscalateDispute moves a dispute to escalated.
func (uc *DisputeUseCase) EscalateDispute(ctx context.Context, id, actorID, requestID, notes string) (*domain.PaymentDispute, error) {
	return uc.simpleTransition(ctx, id, actorID, requestID, domain.DisputeStatusEscalated, domain.AuditActionDisputeEscalate, notes)
}

// CloseDispute closes a dispute from any non-terminal state without a
// resolution. The invoice's payment status is left as-is.
func (uc *DisputeUseCase) CloseDispute(ctx context.Context, id, actorID, requestID, notes string) (*domain.PaymentDispute, error) {
	return uc.simpleTransition(ctx, id, actorID, requestID, domain.DisputeStatusClosed, domain.AuditActionDisputeClose, notes)
}

func (uc *DisputeUseCase) simpleTransition(
	ctx context.Context,
	id, actorID, requestID string,
	target domain.DisputeStatus,
	action domain.AuditAction,
	notes string,
) (*domain.PaymentDispute, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	dispute, err := uc.disputeRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !dispute.Status.CanTransition(target) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, dispute.Status, target)
	}

	before := *dispute
	now := time.Now().UTC()

	dispute.Status = target
	dispute.UpdatedAt = now

	if notes != "" {
		dispute.ResolutionNotes = appendNote(dispute.ResolutionNotes, notes)
	}

	if err := uc.disputeRepo.UpdateStatus(ctx, tx, dispute); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.audit(ctx, actorID, requestID, action, id, &before, dispute)

	return dispute, nil
}

// ResolveDisputeInput represents input for resolving a dispute.
type ResolveDisputeInput struct {
	DisputeID       string
	ActorID         string
	RequestID       string
	ResolutionType  domain.ResolutionType
	ResolutionNotes string
	ResolvedAmount  *decimal.Decimal
}

// ResolveDispute resolves a dispute. Settled and withdrawn resolutions hand
// the invoice back to collection in the same transaction; credit-note
// resolutions leave the invoice to ApplyCreditNote.
func (uc *DisputeUseCase) ResolveDispute(ctx context.Context, input ResolveDisputeInput) (*domain.PaymentDispute, error) {
	if input.ResolutionNotes == "" {
		return nil, domain.ErrReasonRequired
	}

	if input.ResolvedAmount != nil {
		if err := domain.ValidateAmount(*input.ResolvedAmount); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	dispute, err := uc.disputeRepo.GetByIDForUpdate(ctx, tx, input.DisputeID)
	if err != nil {
		return nil, err
	}

	if !dispute.Status.CanTransition(domain.DisputeStatusResolved) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, dispute.Status, domain.DisputeStatusResolved)
	}

	before := *dispute
	now := time.Now().UTC()

	resolution := input.ResolutionType
	dispute.Status = domain.DisputeStatusResolved
	dispute.ResolutionType = &resolution
	dispute.ResolutionNotes = appendNote(dispute.ResolutionNotes, input.ResolutionNotes)
	dispute.ResolvedAmount = input.ResolvedAmount
	dispute.ResolvedAt = &now
	dispute.UpdatedAt = now

	if err := uc.disputeRepo.UpdateStatus(ctx, tx, dispute); err != nil {
		return nil, err
	}

	if resolution.RevertsInvoiceToPending() {
		invoice, err := uc.invoiceRepo.GetByIDForUpdate(ctx, tx, dispute.InvoiceID)
		if err != nil {
			return nil, err
		}

		open, err := uc.hasOtherOpenDisputes(ctx, invoice.ID, dispute.ID)
		if err != nil {
			return nil, err
		}

		if !open && invoice.PaymentStatus == domain.PaymentStatusDisputed {
			newStatus := domain.RecomputePaymentStatus(invoice.TotalAmount, invoice.AmountPaid)
			if err := uc.invoiceRepo.UpdatePaymentStatus(ctx, tx, invoice.ID, newStatus, now); err != nil {
				return nil, err
			}
		}
	}

	if err := uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      input.ActorID,
		Action:       string(domain.AuditActionDisputeResolve),
		ResourceType: "payment_dispute",
		ResourceID:   dispute.ID,
		RequestID:    input.RequestID,
		BeforeState:  domain.MarshalState(&before),
		AfterState:   domain.MarshalState(dispute),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return dispute, nil
}

// hasOtherOpenDisputes reports whether the invoice has non-terminal disputes
// other than the one being resolved.
func (uc *DisputeUseCase) hasOtherOpenDisputes(ctx context.Context, invoiceID, excludeID string) (bool, error) {
	disputes, err := uc.disputeRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return false, err
	}

	for _, d := range disputes {
		if d.ID == excludeID {
			continue
		}

		if !d.Status.IsTerminal() {
			return true, nil
		}
	}

	return false, nil
}

// GetDispute retrieves a dispute by ID.
func (uc *DisputeUseCase) GetDispute(ctx context.Context, id string) (*domain.PaymentDispute, error) {
	return uc.disputeRepo.GetByID(ctx, id)
}

// ListDisputesByInvoice lists disputes against an invoice.
func (uc *DisputeUseCase) ListDisputesByInvoice(ctx context.Context, invoiceID string) ([]*domain.PaymentDispute, error) {
	if _, err := uc.invoiceRepo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}

	return uc.disputeRepo.ListByInvoice(ctx, invoiceID)
}

func (uc *DisputeUseCase) audit(ctx context.Context, actorID, requestID string, action domain.AuditAction, resourceID string, before, after any) {
	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       string(action),
		ResourceType: "payment_dispute",
		ResourceID:   resourceID,
		RequestID:    requestID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
