package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditNoteStatus is the lifecycle state of a credit note.
type CreditNoteStatus string

const (
	CreditNoteStatusDraft     CreditNoteStatus = "draft"
	CreditNoteStatusIssued    CreditNoteStatus = "issued"
	CreditNoteStatusApplied   CreditNoteStatus = "applied"
	CreditNoteStatusCancelled CreditNoteStatus = "cancelled"
)

// creditNoteTransitions is the closed transition table. Applied and
// cancelled are terminal.
var creditNoteTransitions = map[CreditNoteStatus][]CreditNoteStatus{
	CreditNoteStatusDraft:  {CreditNoteStatusIssued, CreditNoteStatusCancelled},
	CreditNoteStatusIssued: {CreditNoteStatusApplied, CreditNoteStatusCancelled},
}

// CanTransition reports whether moving from s to target is allowed.
func (s CreditNoteStatus) CanTransition(target CreditNoteStatus) bool {
	for _, t := range creditNoteTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transitions leave s.
func (s CreditNoteStatus) IsTerminal() bool {
	return len(creditNoteTransitions[s]) == 0
}

// CreditNote reduces an invoice's total when applied. The reduction is
// irreversible; there is no un-apply.
type CreditNote struct {
	ID               string
	CreditNoteNumber string
	InvoiceID        string
	DisputeID        *string
	AdvocateID       string
	Amount           decimal.Decimal
	Reason           string
	ReasonCategory   string
	Status           CreditNoteStatus
	IssuedAt         *time.Time
	AppliedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}
