package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisputeStatus is the lifecycle state of a payment dispute.
type DisputeStatus string

const (
	DisputeStatusOpen          DisputeStatus = "open"
	DisputeStatusInvestigating DisputeStatus = "investigating"
	DisputeStatusResolved      DisputeStatus = "resolved"
	DisputeStatusEscalated     DisputeStatus = "escalated"
	DisputeStatusClosed        DisputeStatus = "closed"
)

// DisputeType categorizes what the client is contesting.
type DisputeType string

const (
	DisputeTypeAmount     DisputeType = "amount"
	DisputeTypeService    DisputeType = "service"
	DisputeTypeBillingErr DisputeType = "billing_error"
	DisputeTypeDuplicate  DisputeType = "duplicate"
	DisputeTypeOther      DisputeType = "other"
)

// ResolutionType records how a dispute was settled.
type ResolutionType string

const (
	ResolutionTypeSettled     ResolutionType = "settled"
	ResolutionTypeWithdrawn   ResolutionType = "withdrawn"
	ResolutionTypeCreditNote  ResolutionType = "credit_note"
	ResolutionTypeWriteOff    ResolutionType = "write_off"
	ResolutionTypePaymentPlan ResolutionType = "payment_plan"
)

// disputeTransitions is the closed transition table. Any non-terminal state
// may also move to closed.
var disputeTransitions = map[DisputeStatus][]DisputeStatus{
	DisputeStatusOpen:          {DisputeStatusInvestigating, DisputeStatusResolved, DisputeStatusEscalated, DisputeStatusClosed},
	DisputeStatusInvestigating: {DisputeStatusResolved, DisputeStatusEscalated, DisputeStatusClosed},
	DisputeStatusEscalated:     {DisputeStatusClosed},
}

// CanTransition reports whether moving from s to target is allowed.
func (s DisputeStatus) CanTransition(target DisputeStatus) bool {
	for _, t := range disputeTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transitions leave s.
func (s DisputeStatus) IsTerminal() bool {
	return len(disputeTransitions[s]) == 0
}

// RevertsInvoiceToPending reports whether this resolution hands the invoice
// back to normal collection. Credit-note, write-off and payment-plan
// resolutions leave the invoice to the corresponding billing action.
func (r ResolutionType) RevertsInvoiceToPending() bool {
	return r == ResolutionTypeSettled || r == ResolutionTypeWithdrawn
}

// PaymentDispute is a client's challenge against an invoice. Opening one
// forces the invoice into the disputed payment state.
type PaymentDispute struct {
	ID              string
	InvoiceID       string
	AdvocateID      string
	Type            DisputeType
	Reason          string
	DisputedAmount  *decimal.Decimal
	Status          DisputeStatus
	ResolutionType  *ResolutionType
	ResolutionNotes string
	ResolvedAmount  *decimal.Decimal
	ResolvedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}
