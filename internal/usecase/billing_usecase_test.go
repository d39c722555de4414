package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
	"github.com/NathiDhliso/lexo-core/internal/usecase/mocks"
)

type billingFixture struct {
	uc            *usecase.BillingUseCase
	matterRepo    *mocks.MockMatterRepository
	invoiceRepo   *mocks.MockInvoiceRepository
	retainerRepo  *mocks.MockRetainerRepository
	amendmentRepo *mocks.MockAmendmentRepository
	outboxRepo    *mocks.MockOutboxRepository
	auditRepo     *mocks.MockAuditRepository
}

func newBillingFixture() *billingFixture {
	f := &billingFixture{
		matterRepo:    mocks.NewMockMatterRepository(),
		invoiceRepo:   mocks.NewMockInvoiceRepository(),
		retainerRepo:  mocks.NewMockRetainerRepository(),
		amendmentRepo: mocks.NewMockAmendmentRepository(),
		outboxRepo:    mocks.NewMockOutboxRepository(),
		auditRepo:     mocks.NewMockAuditRepository(),
	}
	f.uc = usecase.NewBillingUseCase(
		mocks.NewMockTransactionManager(),
		f.matterRepo,
		f.invoiceRepo,
		f.retainerRepo,
		f.amendmentRepo,
		f.outboxRepo,
		f.auditRepo,
		mocks.NewMockIDGenerator(),
	)
	return f
}

func (f *billingFixture) seedBillableMatter(status domain.CompletionStatus) *domain.Matter {
	agreementID := "ea-1"
	matter := &domain.Matter{
		ID:                    "m-1",
		AdvocateID:            "adv-1",
		Title:                 "Smith v Jones",
		ClientName:            "A. Smith",
		ClientEmail:           "a.smith@example.com",
		Status:                domain.MatterStatusCompleted,
		CompletionStatus:      status,
		EngagementAgreementID: &agreementID,
		EstimatedTotal:        decimal.NewFromInt(50000),
		ActualTotal:           decimal.NewFromInt(52000),
	}
	f.matterRepo.Seed(matter)
	f.matterRepo.UnbilledTime["m-1"] = decimal.NewFromInt(42000)
	f.matterRepo.UnbilledExpenses["m-1"] = decimal.NewFromInt(10000)
	return matter
}

func TestBillingUseCase_CheckReadiness(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(f *billingFixture)
		wantReady   bool
		wantBlocker string
		wantWarning string
	}{
		{
			name:      "ready matter passes",
			setup:     func(f *billingFixture) { f.seedBillableMatter(domain.CompletionStatusCompleted) },
			wantReady: true,
		},
		{
			name: "matter not completed warns",
			setup: func(f *billingFixture) {
				m := f.seedBillableMatter(domain.CompletionStatusCompleted)
				m.Status = domain.MatterStatusActive
			},
			wantReady:   true,
			wantWarning: "not marked completed",
		},
		{
			name: "missing client info blocks",
			setup: func(f *billingFixture) {
				m := f.seedBillableMatter(domain.CompletionStatusCompleted)
				m.ClientEmail = ""
			},
			wantReady:   false,
			wantBlocker: "client name or email",
		},
		{
			name: "nothing to bill blocks",
			setup: func(f *billingFixture) {
				f.seedBillableMatter(domain.CompletionStatusCompleted)
				f.matterRepo.UnbilledTime["m-1"] = decimal.Zero
				f.matterRepo.UnbilledExpenses["m-1"] = decimal.Zero
			},
			wantReady:   false,
			wantBlocker: "no unbilled time",
		},
		{
			name: "open disputes warn",
			setup: func(f *billingFixture) {
				f.seedBillableMatter(domain.CompletionStatusCompleted)
				f.invoiceRepo.OpenDisputeMatters["m-1"] = true
			},
			wantReady:   true,
			wantWarning: "open payment disputes",
		},
		{
			name: "missing engagement agreement warns",
			setup: func(f *billingFixture) {
				m := f.seedBillableMatter(domain.CompletionStatusCompleted)
				m.EngagementAgreementID = nil
			},
			wantReady:   true,
			wantWarning: "engagement agreement",
		},
		{
			name: "pending amendment warns",
			setup: func(f *billingFixture) {
				f.seedBillableMatter(domain.CompletionStatusCompleted)
				f.amendmentRepo.Seed(&domain.ScopeAmendment{
					ID:       "am-1",
					MatterID: "m-1",
					Status:   domain.AmendmentStatusPending,
				})
			},
			wantReady:   true,
			wantWarning: "pending scope amendments",
		},
		{
			name: "depleted retainer warns",
			setup: func(f *billingFixture) {
				f.seedBillableMatter(domain.CompletionStatusCompleted)
				f.retainerRepo.Seed(&domain.RetainerAgreement{
					ID:       "r-1",
					MatterID: "m-1",
					Status:   domain.RetainerStatusDepleted,
				})
			},
			wantReady:   true,
			wantWarning: "retainer is depleted",
		},
		{
			name: "variance beyond fifteen percent warns",
			setup: func(f *billingFixture) {
				m := f.seedBillableMatter(domain.CompletionStatusCompleted)
				// 18% over the 50000 estimate.
				m.ActualTotal = decimal.NewFromInt(59000)
			},
			wantReady:   true,
			wantWarning: "deviate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture()
			tt.setup(f)

			report, err := f.uc.CheckReadiness(context.Background(), "m-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if report.Ready != tt.wantReady {
				t.Fatalf("ready = %v, want %v (blockers %v)", report.Ready, tt.wantReady, report.Blockers)
			}

			if tt.wantBlocker != "" && !containsSubstring(report.Blockers, tt.wantBlocker) {
				t.Fatalf("blockers %v lack %q", report.Blockers, tt.wantBlocker)
			}

			if tt.wantWarning != "" && !containsSubstring(report.Warnings, tt.wantWarning) {
				t.Fatalf("warnings %v lack %q", report.Warnings, tt.wantWarning)
			}
		})
	}
}

func TestBillingUseCase_CheckReadiness_ChecksFlags(t *testing.T) {
	f := newBillingFixture()
	m := f.seedBillableMatter(domain.CompletionStatusCompleted)
	m.EngagementAgreementID = nil
	f.invoiceRepo.OpenDisputeMatters["m-1"] = true

	report, err := f.uc.CheckReadiness(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := usecase.ReadinessChecks{
		HasUnbilledWork:        true,
		MatterCompleted:        true,
		HasClientInfo:          true,
		HasEngagementAgreement: false,
		NoOpenDisputes:         false,
		WithinEstimate:         true,
	}
	if report.Checks != want {
		t.Fatalf("checks = %+v, want %+v", report.Checks, want)
	}

	// Failed checks above are warning-only; the matter stays billable.
	if !report.Ready {
		t.Fatalf("ready = false, blockers %v", report.Blockers)
	}

	if !report.UnbilledAmount.Equal(decimal.NewFromInt(52000)) {
		t.Fatalf("unbilled amount = %s, want 52000", report.UnbilledAmount)
	}
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func TestBillingUseCase_Pipeline_FullFlow(t *testing.T) {
	f := newBillingFixture()
	f.seedBillableMatter(domain.CompletionStatusInProgress)

	ctx := context.Background()

	if _, err := f.uc.CompleteMatter(ctx, "m-1", "actor-1", "req-1"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	matter, err := f.uc.MarkReadyToBill(ctx, "m-1", "actor-1", "req-2")
	if err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	if matter.CompletionStatus != domain.CompletionStatusReadyToBill {
		t.Fatalf("status = %s, want ready_to_bill", matter.CompletionStatus)
	}

	stored, _ := f.matterRepo.GetByID(ctx, "m-1")
	if stored.BillingReadyAt == nil {
		t.Fatal("billing ready timestamp not set")
	}

	if _, err := f.uc.SubmitForApproval(ctx, "m-1", "actor-1", "req-3", "please review"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if n := len(f.outboxRepo.EventsOfType(domain.EventTypeBillingSubmitted)); n != 1 {
		t.Fatalf("submitted events = %d, want 1", n)
	}

	approved, err := f.uc.ApproveBilling(ctx, "m-1", "partner-1", "req-4", "looks right")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.CompletionStatus != domain.CompletionStatusReadyToBill {
		t.Fatalf("status after approval = %s, want ready_to_bill", approved.CompletionStatus)
	}

	stored, _ = f.matterRepo.GetByID(ctx, "m-1")
	if stored.PartnerApprovedBy == nil || *stored.PartnerApprovedBy != "partner-1" {
		t.Fatal("approver not recorded")
	}
	if n := len(f.outboxRepo.EventsOfType(domain.EventTypeBillingDecided)); n != 1 {
		t.Fatalf("decided events = %d, want 1", n)
	}
}

func TestBillingUseCase_MarkReadyToBill_BlockedByGate(t *testing.T) {
	f := newBillingFixture()
	m := f.seedBillableMatter(domain.CompletionStatusCompleted)
	m.ClientEmail = ""

	_, err := f.uc.MarkReadyToBill(context.Background(), "m-1", "actor-1", "req-1")
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	matter, _ := f.matterRepo.GetByID(context.Background(), "m-1")
	if matter.CompletionStatus != domain.CompletionStatusCompleted {
		t.Fatalf("status mutated to %s on failed gate", matter.CompletionStatus)
	}
}

func TestBillingUseCase_MarkReadyToBill_OpenDisputeDoesNotBlock(t *testing.T) {
	f := newBillingFixture()
	f.seedBillableMatter(domain.CompletionStatusCompleted)
	f.invoiceRepo.OpenDisputeMatters["m-1"] = true

	matter, err := f.uc.MarkReadyToBill(context.Background(), "m-1", "actor-1", "req-1")
	if err != nil {
		t.Fatalf("open dispute should warn, not block: %v", err)
	}
	if matter.CompletionStatus != domain.CompletionStatusReadyToBill {
		t.Fatalf("status = %s, want ready_to_bill", matter.CompletionStatus)
	}
}

func TestBillingUseCase_RejectBilling(t *testing.T) {
	f := newBillingFixture()
	f.seedBillableMatter(domain.CompletionStatusReview)

	if _, err := f.uc.RejectBilling(context.Background(), "m-1", "partner-1", "req-1", ""); !errors.Is(err, domain.ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	rejected, err := f.uc.RejectBilling(context.Background(), "m-1", "partner-1", "req-2", "time entries missing narratives")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.CompletionStatus != domain.CompletionStatusInProgress {
		t.Fatalf("status = %s, want in_progress", rejected.CompletionStatus)
	}

	stored, _ := f.matterRepo.GetByID(context.Background(), "m-1")
	if !strings.HasPrefix(stored.BillingReviewNotes, "REJECTED: ") {
		t.Fatalf("review notes %q lack REJECTED prefix", stored.BillingReviewNotes)
	}
}

func TestBillingUseCase_SubmitBeforeReadyFails(t *testing.T) {
	f := newBillingFixture()
	f.seedBillableMatter(domain.CompletionStatusInProgress)

	_, err := f.uc.SubmitForApproval(context.Background(), "m-1", "actor-1", "req-1", "")
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestBillingUseCase_InvalidTransition(t *testing.T) {
	f := newBillingFixture()
	f.seedBillableMatter(domain.CompletionStatusInProgress)

	_, err := f.uc.ApproveBilling(context.Background(), "m-1", "partner-1", "req-1", "")
	if !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestBillingUseCase_Pipeline(t *testing.T) {
	f := newBillingFixture()
	f.seedBillableMatter(domain.CompletionStatusReadyToBill)
	f.matterRepo.Seed(&domain.Matter{ID: "m-2", AdvocateID: "adv-1", CompletionStatus: domain.CompletionStatusInProgress})
	f.matterRepo.Seed(&domain.Matter{ID: "m-3", AdvocateID: "adv-1", CompletionStatus: domain.CompletionStatusReview})
	f.matterRepo.Seed(&domain.Matter{ID: "m-4", AdvocateID: "adv-2", CompletionStatus: domain.CompletionStatusReview})

	summary, err := f.uc.Pipeline(context.Background(), "adv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Counts[domain.CompletionStatusReadyToBill] != 1 ||
		summary.Counts[domain.CompletionStatusInProgress] != 1 ||
		summary.Counts[domain.CompletionStatusReview] != 1 {
		t.Fatalf("counts: %+v", summary.Counts)
	}
	if len(summary.ReadyMatters) != 1 || len(summary.InReview) != 1 {
		t.Fatalf("ready=%d review=%d", len(summary.ReadyMatters), len(summary.InReview))
	}
}
