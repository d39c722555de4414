package domain

import "time"

// Event types consumed by the external notification collaborator.
const (
	EventTypeTransactionRecorded = "trust.transaction_recorded"
	EventTypeLowBalance          = "retainer.low_balance"
	EventTypeRetainerDepleted    = "retainer.depleted"
	EventTypeNegativeBalance     = "trust.negative_balance"
	EventTypeAccountReconciled   = "trust.reconciled"
	EventTypeCreditNoteApplied   = "creditnote.applied"
	EventTypeDisputeOpened       = "dispute.opened"
	EventTypeBillingSubmitted    = "billing.submitted"
	EventTypeBillingDecided      = "billing.decided"
)

// Aggregate types
const (
	AggregateTypeTrustAccount = "trust_account"
	AggregateTypeRetainer     = "retainer"
	AggregateTypeCreditNote   = "credit_note"
	AggregateTypeDispute      = "dispute"
	AggregateTypeMatter       = "matter"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// LowBalanceEvent payload
type LowBalanceEvent struct {
	RetainerID          string `json:"retainer_id"`
	MatterID            string `json:"matter_id"`
	Balance             string `json:"balance"`
	PercentageRemaining string `json:"percentage_remaining"`
	ThresholdPercentage string `json:"threshold_percentage"`
}

// NegativeBalanceEvent payload
type NegativeBalanceEvent struct {
	TrustAccountID string `json:"trust_account_id"`
	Balance        string `json:"balance"`
}

// CreditNoteAppliedEvent payload
type CreditNoteAppliedEvent struct {
	CreditNoteID    string `json:"credit_note_id"`
	InvoiceID       string `json:"invoice_id"`
	Amount          string `json:"amount"`
	NewInvoiceTotal string `json:"new_invoice_total"`
	PaymentStatus   string `json:"payment_status"`
}

// DisputeOpenedEvent payload
type DisputeOpenedEvent struct {
	DisputeID string `json:"dispute_id"`
	InvoiceID string `json:"invoice_id"`
	Type      string `json:"type"`
}

// BillingDecidedEvent payload
type BillingDecidedEvent struct {
	MatterID  string `json:"matter_id"`
	Approved  bool   `json:"approved"`
	DecidedBy string `json:"decided_by"`
	Notes     string `json:"notes,omitempty"`
}
