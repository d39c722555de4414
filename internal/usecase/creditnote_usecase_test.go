package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
	"github.com/NathiDhliso/lexo-core/internal/usecase/mocks"
)

type creditNoteFixture struct {
	uc          *usecase.CreditNoteUseCase
	noteRepo    *mocks.MockCreditNoteRepository
	invoiceRepo *mocks.MockInvoiceRepository
	disputeRepo *mocks.MockDisputeRepository
	outboxRepo  *mocks.MockOutboxRepository
	auditRepo   *mocks.MockAuditRepository
}

func newCreditNoteFixture() *creditNoteFixture {
	f := &creditNoteFixture{
		noteRepo:    mocks.NewMockCreditNoteRepository(),
		invoiceRepo: mocks.NewMockInvoiceRepository(),
		disputeRepo: mocks.NewMockDisputeRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
		auditRepo:   mocks.NewMockAuditRepository(),
	}
	f.uc = usecase.NewCreditNoteUseCase(
		mocks.NewMockTransactionManager(),
		f.noteRepo,
		f.invoiceRepo,
		f.disputeRepo,
		f.outboxRepo,
		f.auditRepo,
		mocks.NewMockIDGenerator(),
	)
	return f
}

func (f *creditNoteFixture) seedInvoice(total int64) {
	f.invoiceRepo.Seed(&domain.Invoice{
		ID:            "inv-1",
		MatterID:      "m-1",
		AdvocateID:    "adv-1",
		TotalAmount:   decimal.NewFromInt(total),
		AmountPaid:    decimal.Zero,
		PaymentStatus: domain.PaymentStatusPending,
	})
}

func TestCreditNoteUseCase_CreateCreditNote(t *testing.T) {
	f := newCreditNoteFixture()
	f.seedInvoice(10000)

	note, err := f.uc.CreateCreditNote(context.Background(), usecase.CreateCreditNoteInput{
		InvoiceID:  "inv-1",
		AdvocateID: "adv-1",
		Amount:     decimal.NewFromInt(2500),
		Reason:     "overbilled consultation hours",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if note.Status != domain.CreditNoteStatusDraft {
		t.Fatalf("status = %s, want draft", note.Status)
	}

	wantPrefix := "CN-" + time.Now().UTC().Format("200601") + "-"
	if !strings.HasPrefix(note.CreditNoteNumber, wantPrefix) {
		t.Fatalf("number %q lacks prefix %q", note.CreditNoteNumber, wantPrefix)
	}
	if !strings.HasSuffix(note.CreditNoteNumber, "0001") {
		t.Fatalf("first number of the month should end 0001, got %q", note.CreditNoteNumber)
	}
}

func TestCreditNoteUseCase_CreateCreditNote_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.CreateCreditNoteInput
		wantErr error
	}{
		{
			name: "amount exceeds invoice",
			input: usecase.CreateCreditNoteInput{
				InvoiceID: "inv-1",
				Amount:    decimal.NewFromInt(20000),
				Reason:    "too much",
			},
			wantErr: domain.ErrAmountExceedsInvoice,
		},
		{
			name: "missing reason",
			input: usecase.CreateCreditNoteInput{
				InvoiceID: "inv-1",
				Amount:    decimal.NewFromInt(100),
			},
			wantErr: domain.ErrReasonRequired,
		},
		{
			name: "unknown invoice",
			input: usecase.CreateCreditNoteInput{
				InvoiceID: "inv-404",
				Amount:    decimal.NewFromInt(100),
				Reason:    "whatever",
			},
			wantErr: domain.ErrInvoiceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCreditNoteFixture()
			f.seedInvoice(10000)

			_, err := f.uc.CreateCreditNote(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreditNoteUseCase_CreateCreditNote_CountsIssuedNotes(t *testing.T) {
	f := newCreditNoteFixture()
	f.seedInvoice(10000)

	f.noteRepo.Seed(&domain.CreditNote{
		ID:        "cn-existing",
		InvoiceID: "inv-1",
		Amount:    decimal.NewFromInt(8000),
		Status:    domain.CreditNoteStatusIssued,
	})

	_, err := f.uc.CreateCreditNote(context.Background(), usecase.CreateCreditNoteInput{
		InvoiceID: "inv-1",
		Amount:    decimal.NewFromInt(3000),
		Reason:    "discount",
	})
	if !errors.Is(err, domain.ErrAmountExceedsInvoice) {
		t.Fatalf("expected ErrAmountExceedsInvoice with 8000 already issued, got %v", err)
	}
}

func TestCreditNoteUseCase_Lifecycle(t *testing.T) {
	f := newCreditNoteFixture()
	f.seedInvoice(10000)

	note, err := f.uc.CreateCreditNote(context.Background(), usecase.CreateCreditNoteInput{
		InvoiceID: "inv-1",
		Amount:    decimal.NewFromInt(4000),
		Reason:    "scope reduced",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Draft cannot be applied.
	if _, err := f.uc.ApplyCreditNote(context.Background(), note.ID, "actor-1", "req-1"); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("applying draft: expected ErrInvalidStateTransition, got %v", err)
	}

	issued, err := f.uc.IssueCreditNote(context.Background(), note.ID, "actor-1", "req-2")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.Status != domain.CreditNoteStatusIssued || issued.IssuedAt == nil {
		t.Fatalf("issued note: %+v", issued)
	}

	applied, err := f.uc.ApplyCreditNote(context.Background(), note.ID, "actor-1", "req-3")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied.Status != domain.CreditNoteStatusApplied || applied.AppliedAt == nil {
		t.Fatalf("applied note: %+v", applied)
	}

	invoice, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	if !invoice.TotalAmount.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("invoice total = %s, want 6000", invoice.TotalAmount)
	}

	if n := len(f.outboxRepo.EventsOfType(domain.EventTypeCreditNoteApplied)); n != 1 {
		t.Fatalf("applied events = %d, want 1", n)
	}

	// Applied is terminal.
	if _, err := f.uc.CancelCreditNote(context.Background(), note.ID, "actor-1", "req-4"); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("cancelling applied: expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestCreditNoteUseCase_Apply_FullCreditMarksPaid(t *testing.T) {
	f := newCreditNoteFixture()
	f.seedInvoice(5000)

	note, err := f.uc.CreateCreditNote(context.Background(), usecase.CreateCreditNoteInput{
		InvoiceID: "inv-1",
		Amount:    decimal.NewFromInt(5000),
		Reason:    "written off in full",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.uc.IssueCreditNote(context.Background(), note.ID, "actor-1", "req-1"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := f.uc.ApplyCreditNote(context.Background(), note.ID, "actor-1", "req-2"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	invoice, _ := f.invoiceRepo.GetByID(context.Background(), "inv-1")
	if invoice.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("payment status = %s, want paid", invoice.PaymentStatus)
	}
	if !invoice.TotalAmount.IsZero() {
		t.Fatalf("invoice total = %s, want 0", invoice.TotalAmount)
	}
}

func TestCreditNoteUseCase_Apply_ResolvesLinkedDispute(t *testing.T) {
	f := newCreditNoteFixture()
	f.seedInvoice(10000)

	disputeID := "d-1"
	f.disputeRepo.Seed(&domain.PaymentDispute{
		ID:        disputeID,
		InvoiceID: "inv-1",
		Status:    domain.DisputeStatusOpen,
	})

	note, err := f.uc.CreateCreditNote(context.Background(), usecase.CreateCreditNoteInput{
		InvoiceID: "inv-1",
		DisputeID: &disputeID,
		Amount:    decimal.NewFromInt(2000),
		Reason:    "billing error confirmed",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.uc.IssueCreditNote(context.Background(), note.ID, "actor-1", "req-1"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := f.uc.ApplyCreditNote(context.Background(), note.ID, "actor-1", "req-2"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	dispute, _ := f.disputeRepo.GetByID(context.Background(), disputeID)
	if dispute.Status != domain.DisputeStatusResolved {
		t.Fatalf("dispute status = %s, want resolved", dispute.Status)
	}
	if dispute.ResolutionType == nil || *dispute.ResolutionType != domain.ResolutionTypeCreditNote {
		t.Fatalf("resolution type = %v, want credit_note", dispute.ResolutionType)
	}
}

func TestCreditNoteUseCase_MonthlySequence(t *testing.T) {
	f := newCreditNoteFixture()
	f.seedInvoice(10000)

	first, err := f.uc.CreateCreditNote(context.Background(), usecase.CreateCreditNoteInput{
		InvoiceID: "inv-1",
		Amount:    decimal.NewFromInt(100),
		Reason:    "one",
	})
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	second, err := f.uc.CreateCreditNote(context.Background(), usecase.CreateCreditNoteInput{
		InvoiceID: "inv-1",
		Amount:    decimal.NewFromInt(100),
		Reason:    "two",
	})
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if !strings.HasSuffix(first.CreditNoteNumber, "0001") || !strings.HasSuffix(second.CreditNoteNumber, "0002") {
		t.Fatalf("sequence: %q then %q", first.CreditNoteNumber, second.CreditNoteNumber)
	}
}
