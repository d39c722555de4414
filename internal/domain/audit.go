package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is an audit trail entry kept for regulatory inspection.
type AuditLog struct {
	ID           string
	ActorID      string // Who performed the action
	Action       string // What action (ledger.append, creditnote.apply, etc.)
	ResourceType string // Type of resource (trust_transaction, credit_note, matter)
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Ledger actions
	AuditActionLedgerAppend   AuditAction = "ledger.append"
	AuditActionMarkReconciled AuditAction = "ledger.reconcile"

	// Retainer actions
	AuditActionRetainerCreate   AuditAction = "retainer.create"
	AuditActionRetainerDeposit  AuditAction = "retainer.deposit"
	AuditActionRetainerDrawdown AuditAction = "retainer.drawdown"
	AuditActionRetainerRefund   AuditAction = "retainer.refund"
	AuditActionRetainerCancel   AuditAction = "retainer.cancel"
	AuditActionRetainerRenew    AuditAction = "retainer.renew"

	// Credit note actions
	AuditActionCreditNoteCreate AuditAction = "creditnote.create"
	AuditActionCreditNoteIssue  AuditAction = "creditnote.issue"
	AuditActionCreditNoteApply  AuditAction = "creditnote.apply"
	AuditActionCreditNoteCancel AuditAction = "creditnote.cancel"

	// Dispute actions
	AuditActionDisputeCreate      AuditAction = "dispute.create"
	AuditActionDisputeInvestigate AuditAction = "dispute.investigate"
	AuditActionDisputeResolve     AuditAction = "dispute.resolve"
	AuditActionDisputeEscalate    AuditAction = "dispute.escalate"
	AuditActionDisputeClose       AuditAction = "dispute.close"

	// Billing pipeline actions
	AuditActionMatterComplete    AuditAction = "billing.complete"
	AuditActionMarkReadyToBill   AuditAction = "billing.mark_ready"
	AuditActionSubmitForApproval AuditAction = "billing.submit"
	AuditActionApproveBilling    AuditAction = "billing.approve"
	AuditActionRejectBilling     AuditAction = "billing.reject"

	// Amendment actions
	AuditActionAmendmentCreate  AuditAction = "amendment.create"
	AuditActionAmendmentApprove AuditAction = "amendment.approve"
	AuditActionAmendmentReject  AuditAction = "amendment.reject"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
