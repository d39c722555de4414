package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatterStatus is the overall engagement state, orthogonal to the billing
// completion status.
type MatterStatus string

const (
	MatterStatusActive    MatterStatus = "active"
	MatterStatusPending   MatterStatus = "pending"
	MatterStatusSettled   MatterStatus = "settled"
	MatterStatusCompleted MatterStatus = "completed"
	MatterStatusClosed    MatterStatus = "closed"
)

// CompletionStatus is the billing pipeline state, advanced only by the
// billing readiness and partner approval operations.
type CompletionStatus string

const (
	CompletionStatusInProgress  CompletionStatus = "in_progress"
	CompletionStatusCompleted   CompletionStatus = "completed"
	CompletionStatusReadyToBill CompletionStatus = "ready_to_bill"
	CompletionStatusReview      CompletionStatus = "review"
)

// completionTransitions is the closed transition table for the billing
// pipeline. review moves back to in_progress on partner rejection.
var completionTransitions = map[CompletionStatus][]CompletionStatus{
	CompletionStatusInProgress:  {CompletionStatusCompleted},
	CompletionStatusCompleted:   {CompletionStatusReadyToBill, CompletionStatusInProgress},
	CompletionStatusReadyToBill: {CompletionStatusReview},
	CompletionStatusReview:      {CompletionStatusReadyToBill, CompletionStatusInProgress},
}

// CanTransition reports whether moving from s to target is allowed.
func (s CompletionStatus) CanTransition(target CompletionStatus) bool {
	for _, t := range completionTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Matter is a legal engagement. Only the billing-relevant fields are modeled
// here; the practice's full matter record lives with the callers.
type Matter struct {
	ID                    string
	AdvocateID            string
	Title                 string
	ClientName            string
	ClientEmail           string
	Status                MatterStatus
	CompletionStatus      CompletionStatus
	EngagementAgreementID *string
	EstimatedTotal        decimal.Decimal
	ActualTotal           decimal.Decimal
	BillingReadyAt        *time.Time
	BillingReviewNotes    string
	PartnerApprovedBy     *string
	PartnerApprovedAt     *time.Time
	PartnerApprovalNotes  string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             *time.Time
}

// HasClientInfo reports whether the client contact details needed for
// invoicing are present.
func (m *Matter) HasClientInfo() bool {
	return m.ClientName != "" && m.ClientEmail != ""
}

// EstimateVariancePct is the percentage deviation of actual cost from the
// estimate. Zero when no estimate or no actuals are recorded.
func (m *Matter) EstimateVariancePct() decimal.Decimal {
	if !m.EstimatedTotal.IsPositive() || m.ActualTotal.IsZero() {
		return decimal.Zero
	}
	return m.ActualTotal.Sub(m.EstimatedTotal).
		Div(m.EstimatedTotal).
		Mul(decimal.NewFromInt(100))
}
