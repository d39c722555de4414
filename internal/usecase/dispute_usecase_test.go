package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
	"github.com/NathiDhliso/lexo-core/internal/usecase/mocks"
)

type disputeFixture struct {
	uc          *usecase.DisputeUseCase
	disputeRepo *mocks.MockDisputeRepository
	invoiceRepo *mocks.MockInvoiceRepository
	outboxRepo  *mocks.MockOutboxRepository
	auditRepo   *mocks.MockAuditRepository
}

func newDisputeFixture() *disputeFixture {
	f := &disputeFixture{
		disputeRepo: mocks.NewMockDisputeRepository(),
		invoiceRepo: mocks.NewMockInvoiceRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
		auditRepo:   mocks.NewMockAuditRepository(),
	}
	f.uc = usecase.NewDisputeUseCase(
		mocks.NewMockTransactionManager(),
		f.disputeRepo,
		f.invoiceRepo,
		f.outboxRepo,
		f.auditRepo,
		mocks.NewMockIDGenerator(),
	)
	return f
}

func (f *disputeFixture) seedInvoice(status domain.PaymentStatus) {
	f.invoiceRepo.Seed(&domain.Invoice{
		ID:            "inv-1",
		MatterID:      "m-1",
		AdvocateID:    "adv-1",
		TotalAmount:   decimal.NewFromInt(10000),
		AmountPaid:    decimal.Zero,
		PaymentStatus: status,
	})
}

func TestDisputeUseCase_CreateDispute(t *testing.T) {
	f := newDisputeFixture()
	f.seedInvoice(domain.PaymentStatusPending)

	dispute, err := f.uc.CreateDispute(context.Background(), usecase.CreateDisputeInput{
		InvoiceID:  "inv-1",
		AdvocateID: "adv-1",
		Type:       domain.DisputeTypeAmount,
		Reason:     "client contests the hours billed",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dispute.Status != domain.DisputeStatusOpen {
		t.Fatalf("status = %s, want open", dispute.Status)
	}

	invoice, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	if invoice.PaymentStatus != domain.PaymentStatusDisputed {
		t.Fatalf("invoice status = %s, want disputed", invoice.PaymentStatus)
	}

	if n := len(f.outboxRepo.EventsOfType(domain.EventTypeDisputeOpened)); n != 1 {
		t.Fatalf("opened events = %d, want 1", n)
	}
}

func TestDisputeUseCase_CreateDispute_RequiresReason(t *testing.T) {
	f := newDisputeFixture()
	f.seedInvoice(domain.PaymentStatusPending)

	_, err := f.uc.CreateDispute(context.Background(), usecase.CreateDisputeInput{
		InvoiceID: "inv-1",
		Type:      domain.DisputeTypeAmount,
	})
	if !errors.Is(err, domain.ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
}

func TestDisputeUseCase_Resolve_SettledRevertsInvoice(t *testing.T) {
	f := newDisputeFixture()
	f.seedInvoice(domain.PaymentStatusDisputed)

	f.disputeRepo.Seed(&domain.PaymentDispute{
		ID:        "d-1",
		InvoiceID: "inv-1",
		Status:    domain.DisputeStatusOpen,
	})

	resolved, err := f.uc.ResolveDispute(context.Background(), usecase.ResolveDisputeInput{
		DisputeID:       "d-1",
		ActorID:         "actor-1",
		ResolutionType:  domain.ResolutionTypeSettled,
		ResolutionNotes: "client accepted the breakdown",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved.Status != domain.DisputeStatusResolved || resolved.ResolvedAt == nil {
		t.Fatalf("resolved dispute: %+v", resolved)
	}

	invoice, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	if invoice.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("invoice status = %s, want pending", invoice.PaymentStatus)
	}
}

func TestDisputeUseCase_Resolve_CreditNoteLeavesInvoiceDisputed(t *testing.T) {
	f := newDisputeFixture()
	f.seedInvoice(domain.PaymentStatusDisputed)

	f.disputeRepo.Seed(&domain.PaymentDispute{
		ID:        "d-1",
		InvoiceID: "inv-1",
		Status:    domain.DisputeStatusInvestigating,
	})

	_, err := f.uc.ResolveDispute(context.Background(), usecase.ResolveDisputeInput{
		DisputeID:       "d-1",
		ActorID:         "actor-1",
		ResolutionType:  domain.ResolutionTypeCreditNote,
		ResolutionNotes: "credit note to follow",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invoice, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	if invoice.PaymentStatus != domain.PaymentStatusDisputed {
		t.Fatalf("invoice status = %s, want disputed until the credit note applies", invoice.PaymentStatus)
	}
}

func TestDisputeUseCase_Resolve_OtherOpenDisputesKeepInvoiceDisputed(t *testing.T) {
	f := newDisputeFixture()
	f.seedInvoice(domain.PaymentStatusDisputed)

	f.disputeRepo.Seed(&domain.PaymentDispute{ID: "d-1", InvoiceID: "inv-1", Status: domain.DisputeStatusOpen})
	f.disputeRepo.Seed(&domain.PaymentDispute{ID: "d-2", InvoiceID: "inv-1", Status: domain.DisputeStatusInvestigating})

	_, err := f.uc.ResolveDispute(context.Background(), usecase.ResolveDisputeInput{
		DisputeID:       "d-1",
		ActorID:         "actor-1",
		ResolutionType:  domain.ResolutionTypeWithdrawn,
		ResolutionNotes: "withdrawn by client",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invoice, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	if invoice.PaymentStatus != domain.PaymentStatusDisputed {
		t.Fatalf("invoice status = %s, want disputed while d-2 is open", invoice.PaymentStatus)
	}
}

func TestDisputeUseCase_Transitions(t *testing.T) {
	f := newDisputeFixture()
	f.seedInvoice(domain.PaymentStatusDisputed)

	f.disputeRepo.Seed(&domain.PaymentDispute{ID: "d-1", InvoiceID: "inv-1", Status: domain.DisputeStatusOpen})

	if _, err := f.uc.StartInvestigation(context.Background(), "d-1", "actor-1", "req-1"); err != nil {
		t.Fatalf("investigate: %v", err)
	}

	if _, err := f.uc.EscalateDispute(context.Background(), "d-1", "actor-1", "req-2", "needs partner attention"); err != nil {
		t.Fatalf("escalate: %v", err)
	}

	// Escalated disputes cannot be resolved, only closed.
	_, err := f.uc.ResolveDispute(context.Background(), usecase.ResolveDisputeInput{
		DisputeID:       "d-1",
		ActorID:         "actor-1",
		ResolutionType:  domain.ResolutionTypeSettled,
		ResolutionNotes: "settled",
	})
	if !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("resolving escalated: expected ErrInvalidStateTransition, got %v", err)
	}

	closed, err := f.uc.CloseDispute(context.Background(), "d-1", "actor-1", "req-3", "handled offline")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != domain.DisputeStatusClosed {
		t.Fatalf("status = %s, want closed", closed.Status)
	}

	// Closed is terminal.
	if _, err := f.uc.StartInvestigation(context.Background(), "d-1", "actor-1", "req-4"); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("reopening closed: expected ErrInvalidStateTransition, got %v", err)
	}
}
