package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreditNoteStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from CreditNoteStatus
		to   CreditNoteStatus
		want bool
	}{
		{CreditNoteStatusDraft, CreditNoteStatusIssued, true},
		{CreditNoteStatusDraft, CreditNoteStatusCancelled, true},
		{CreditNoteStatusDraft, CreditNoteStatusApplied, false},
		{CreditNoteStatusIssued, CreditNoteStatusApplied, true},
		{CreditNoteStatusIssued, CreditNoteStatusCancelled, true},
		{CreditNoteStatusApplied, CreditNoteStatusCancelled, false},
		{CreditNoteStatusApplied, CreditNoteStatusIssued, false},
		{CreditNoteStatusCancelled, CreditNoteStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}

	if !CreditNoteStatusApplied.IsTerminal() || !CreditNoteStatusCancelled.IsTerminal() {
		t.Fatal("applied and cancelled must be terminal")
	}
}

func TestDisputeStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from DisputeStatus
		to   DisputeStatus
		want bool
	}{
		{DisputeStatusOpen, DisputeStatusInvestigating, true},
		{DisputeStatusOpen, DisputeStatusResolved, true},
		{DisputeStatusOpen, DisputeStatusEscalated, true},
		{DisputeStatusOpen, DisputeStatusClosed, true},
		{DisputeStatusInvestigating, DisputeStatusResolved, true},
		{DisputeStatusInvestigating, DisputeStatusEscalated, true},
		{DisputeStatusEscalated, DisputeStatusClosed, true},
		{DisputeStatusEscalated, DisputeStatusResolved, false},
		{DisputeStatusResolved, DisputeStatusOpen, false},
		{DisputeStatusClosed, DisputeStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestResolutionType_RevertsInvoiceToPending(t *testing.T) {
	if !ResolutionTypeSettled.RevertsInvoiceToPending() {
		t.Fatal("settled should revert invoice to pending")
	}
	if !ResolutionTypeWithdrawn.RevertsInvoiceToPending() {
		t.Fatal("withdrawn should revert invoice to pending")
	}
	if ResolutionTypeCreditNote.RevertsInvoiceToPending() {
		t.Fatal("credit_note resolution leaves invoice to the billing action")
	}
}

func TestCompletionStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from CompletionStatus
		to   CompletionStatus
		want bool
	}{
		{CompletionStatusInProgress, CompletionStatusCompleted, true},
		{CompletionStatusInProgress, CompletionStatusReadyToBill, false},
		{CompletionStatusCompleted, CompletionStatusReadyToBill, true},
		{CompletionStatusReadyToBill, CompletionStatusReview, true},
		{CompletionStatusReadyToBill, CompletionStatusInProgress, false},
		{CompletionStatusReview, CompletionStatusReadyToBill, true},
		{CompletionStatusReview, CompletionStatusInProgress, true},
		{CompletionStatusReview, CompletionStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestRecomputePaymentStatus(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		paid  int64
		want  PaymentStatus
	}{
		{"fully paid", 15000, 15000, PaymentStatusPaid},
		{"overpaid", 15000, 16000, PaymentStatusPaid},
		{"partial", 15000, 5000, PaymentStatusPartial},
		{"nothing paid", 15000, 0, PaymentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecomputePaymentStatus(decimal.NewFromInt(tt.total), decimal.NewFromInt(tt.paid))
			if got != tt.want {
				t.Fatalf("RecomputePaymentStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}
