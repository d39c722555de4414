package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TrustAccountResponse represents a trust account in API responses.
type TrustAccountResponse struct {
	ID                        string           `json:"id"`
	AdvocateID                string           `json:"advocate_id"`
	BankName                  string           `json:"bank_name"`
	AccountHolderName         string           `json:"account_holder_name"`
	AccountNumber             string           `json:"account_number"`
	CurrentBalance            decimal.Decimal  `json:"current_balance"`
	LowBalanceThreshold       decimal.Decimal  `json:"low_balance_threshold"`
	LPCCompliant              bool             `json:"lpc_compliant"`
	NegativeBalanceAlertSent  bool             `json:"negative_balance_alert_sent"`
	LastReconciliationDate    *time.Time       `json:"last_reconciliation_date,omitempty"`
	LastReconciliationBalance *decimal.Decimal `json:"last_reconciliation_balance,omitempty"`
	CreatedAt                 time.Time        `json:"created_at"`
	UpdatedAt                 time.Time        `json:"updated_at"`
}

// TrustAccountFromDomain converts a domain trust account to a response.
func TrustAccountFromDomain(a *domain.TrustAccount) TrustAccountResponse {
	return TrustAccountResponse{
		ID:                        a.ID,
		AdvocateID:                a.AdvocateID,
		BankName:                  a.BankName,
		AccountHolderName:         a.AccountHolderName,
		AccountNumber:             a.AccountNumber,
		CurrentBalance:            a.CurrentBalance,
		LowBalanceThreshold:       a.LowBalanceThreshold,
		LPCCompliant:              a.LPCCompliant,
		NegativeBalanceAlertSent:  a.NegativeBalanceAlertSent,
		LastReconciliationDate:    a.LastReconciliationDate,
		LastReconciliationBalance: a.LastReconciliationBalance,
		CreatedAt:                 a.CreatedAt,
		UpdatedAt:                 a.UpdatedAt,
	}
}

// TransactionResponse represents a trust ledger entry in API responses.
type TransactionResponse struct {
	ID                 string          `json:"id"`
	TrustAccountID     string          `json:"trust_account_id"`
	RetainerID         *string         `json:"retainer_id,omitempty"`
	MatterID           string          `json:"matter_id"`
	AdvocateID         string          `json:"advocate_id"`
	Type               string          `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	BalanceBefore      decimal.Decimal `json:"balance_before"`
	BalanceAfter       decimal.Decimal `json:"balance_after"`
	Reference          string          `json:"reference,omitempty"`
	Description        string          `json:"description"`
	ReceiptNumber      string          `json:"receipt_number"`
	PaymentMethod      string          `json:"payment_method"`
	ClientID           *string         `json:"client_id,omitempty"`
	InvoiceID          *string         `json:"invoice_id,omitempty"`
	TimeEntryID        *string         `json:"time_entry_id,omitempty"`
	ExpenseID          *string         `json:"expense_id,omitempty"`
	TransactionDate    time.Time       `json:"transaction_date"`
	Reconciled         bool            `json:"reconciled"`
	ReconciliationDate *time.Time      `json:"reconciliation_date,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.TrustTransaction) TransactionResponse {
	return TransactionResponse{
		ID:                 t.ID,
		TrustAccountID:     t.TrustAccountID,
		RetainerID:         t.RetainerID,
		MatterID:           t.MatterID,
		AdvocateID:         t.AdvocateID,
		Type:               string(t.Type),
		Amount:             t.Amount,
		BalanceBefore:      t.BalanceBefore,
		BalanceAfter:       t.BalanceAfter,
		Reference:          t.Reference,
		Description:        t.Description,
		ReceiptNumber:      t.ReceiptNumber,
		PaymentMethod:      string(t.PaymentMethod),
		ClientID:           t.ClientID,
		InvoiceID:          t.InvoiceID,
		TimeEntryID:        t.TimeEntryID,
		ExpenseID:          t.ExpenseID,
		TransactionDate:    t.TransactionDate,
		Reconciled:         t.Reconciled,
		ReconciliationDate: t.ReconciliationDate,
		CreatedAt:          t.CreatedAt,
	}
}

// TransactionsFromDomain converts a slice of domain transactions.
func TransactionsFromDomain(txs []*domain.TrustTransaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		out[i] = TransactionFromDomain(t)
	}
	return out
}

// RetainerResponse represents a retainer agreement in API responses.
type RetainerResponse struct {
	ID                    string          `json:"id"`
	MatterID              string          `json:"matter_id"`
	TrustAccountID        string          `json:"trust_account_id"`
	EngagementAgreementID *string         `json:"engagement_agreement_id,omitempty"`
	AdvocateID            string          `json:"advocate_id"`
	Type                  string          `json:"type"`
	RetainerAmount        decimal.Decimal `json:"retainer_amount"`
	Balance               decimal.Decimal `json:"balance"`
	Status                string          `json:"status"`
	PercentageRemaining   decimal.Decimal `json:"percentage_remaining"`
	LowBalanceAlertSent   bool            `json:"low_balance_alert_sent"`
	StartDate             time.Time       `json:"start_date"`
	EndDate               *time.Time      `json:"end_date,omitempty"`
	AutoRenew             bool            `json:"auto_renew"`
	Notes                 string          `json:"notes,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// RetainerFromDomain converts a domain retainer to a response.
func RetainerFromDomain(r *domain.RetainerAgreement) RetainerResponse {
	return RetainerResponse{
		ID:                    r.ID,
		MatterID:              r.MatterID,
		TrustAccountID:        r.TrustAccountID,
		EngagementAgreementID: r.EngagementAgreementID,
		AdvocateID:            r.AdvocateID,
		Type:                  string(r.Type),
		RetainerAmount:        r.RetainerAmount,
		Balance:               r.Balance,
		Status:                string(r.Status),
		PercentageRemaining:   r.PercentageRemaining(),
		LowBalanceAlertSent:   r.LowBalanceAlertSent,
		StartDate:             r.StartDate,
		EndDate:               r.EndDate,
		AutoRenew:             r.AutoRenew,
		Notes:                 r.Notes,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

// RetainersFromDomain converts a slice of domain retainers.
func RetainersFromDomain(rs []*domain.RetainerAgreement) []RetainerResponse {
	out := make([]RetainerResponse, len(rs))
	for i, r := range rs {
		out[i] = RetainerFromDomain(r)
	}
	return out
}

// CreditNoteResponse represents a credit note in API responses.
type CreditNoteResponse struct {
	ID               string          `json:"id"`
	CreditNoteNumber string          `json:"credit_note_number"`
	InvoiceID        string          `json:"invoice_id"`
	DisputeID        *string         `json:"dispute_id,omitempty"`
	AdvocateID       string          `json:"advocate_id"`
	Amount           decimal.Decimal `json:"amount"`
	Reason           string          `json:"reason"`
	ReasonCategory   string          `json:"reason_category,omitempty"`
	Status           string          `json:"status"`
	IssuedAt         *time.Time      `json:"issued_at,omitempty"`
	AppliedAt        *time.Time      `json:"applied_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CreditNoteFromDomain converts a domain credit note to a response.
func CreditNoteFromDomain(n *domain.CreditNote) CreditNoteResponse {
	return CreditNoteResponse{
		ID:               n.ID,
		CreditNoteNumber: n.CreditNoteNumber,
		InvoiceID:        n.InvoiceID,
		DisputeID:        n.DisputeID,
		AdvocateID:       n.AdvocateID,
		Amount:           n.Amount,
		Reason:           n.Reason,
		ReasonCategory:   n.ReasonCategory,
		Status:           string(n.Status),
		IssuedAt:         n.IssuedAt,
		AppliedAt:        n.AppliedAt,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
	}
}

// CreditNotesFromDomain converts a slice of domain credit notes.
func CreditNotesFromDomain(ns []*domain.CreditNote) []CreditNoteResponse {
	out := make([]CreditNoteResponse, len(ns))
	for i, n := range ns {
		out[i] = CreditNoteFromDomain(n)
	}
	return out
}

// DisputeResponse represents a payment dispute in API responses.
type DisputeResponse struct {
	ID              string           `json:"id"`
	InvoiceID       string           `json:"invoice_id"`
	AdvocateID      string           `json:"advocate_id"`
	Type            string           `json:"type"`
	Reason          string           `json:"reason"`
	DisputedAmount  *decimal.Decimal `json:"disputed_amount,omitempty"`
	Status          string           `json:"status"`
	ResolutionType  *string          `json:"resolution_type,omitempty"`
	ResolutionNotes string           `json:"resolution_notes,omitempty"`
	ResolvedAmount  *decimal.Decimal `json:"resolved_amount,omitempty"`
	ResolvedAt      *time.Time       `json:"resolved_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// DisputeFromDomain converts a domain dispute to a response.
func DisputeFromDomain(d *domain.PaymentDispute) DisputeResponse {
	var resolutionType *string
	if d.ResolutionType != nil {
		s := string(*d.ResolutionType)
		resolutionType = &s
	}
	return DisputeResponse{
		ID:              d.ID,
		InvoiceID:       d.InvoiceID,
		AdvocateID:      d.AdvocateID,
		Type:            string(d.Type),
		Reason:          d.Reason,
		DisputedAmount:  d.DisputedAmount,
		Status:          string(d.Status),
		ResolutionType:  resolutionType,
		ResolutionNotes: d.ResolutionNotes,
		ResolvedAmount:  d.ResolvedAmount,
		ResolvedAt:      d.ResolvedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// DisputesFromDomain converts a slice of domain disputes.
func DisputesFromDomain(ds []*domain.PaymentDispute) []DisputeResponse {
	out := make([]DisputeResponse, len(ds))
	for i, d := range ds {
		out[i] = DisputeFromDomain(d)
	}
	return out
}

// AmendmentResponse represents a scope amendment in API responses.
type AmendmentResponse struct {
	ID                    string           `json:"id"`
	MatterID              string           `json:"matter_id"`
	EngagementAgreementID *string          `json:"engagement_agreement_id,omitempty"`
	AdvocateID            string           `json:"advocate_id"`
	Type                  string           `json:"type"`
	Reason                string           `json:"reason"`
	Description           string           `json:"description,omitempty"`
	OriginalEstimate      decimal.Decimal  `json:"original_estimate"`
	NewEstimate           *decimal.Decimal `json:"new_estimate,omitempty"`
	OriginalTimelineDays  *int             `json:"original_timeline_days,omitempty"`
	NewTimelineDays       *int             `json:"new_timeline_days,omitempty"`
	Status                string           `json:"status"`
	RejectionReason       string           `json:"rejection_reason,omitempty"`
	ApprovedBy            *string          `json:"approved_by,omitempty"`
	ApprovedAt            *time.Time       `json:"approved_at,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// AmendmentFromDomain converts a domain amendment to a response.
func AmendmentFromDomain(a *domain.ScopeAmendment) AmendmentResponse {
	return AmendmentResponse{
		ID:                    a.ID,
		MatterID:              a.MatterID,
		EngagementAgreementID: a.EngagementAgreementID,
		AdvocateID:            a.AdvocateID,
		Type:                  string(a.Type),
		Reason:                a.Reason,
		Description:           a.Description,
		OriginalEstimate:      a.OriginalEstimate,
		NewEstimate:           a.NewEstimate,
		OriginalTimelineDays:  a.OriginalTimelineDays,
		NewTimelineDays:       a.NewTimelineDays,
		Status:                string(a.Status),
		RejectionReason:       a.RejectionReason,
		ApprovedBy:            a.ApprovedBy,
		ApprovedAt:            a.ApprovedAt,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

// AmendmentsFromDomain converts a slice of domain amendments.
func AmendmentsFromDomain(as []*domain.ScopeAmendment) []AmendmentResponse {
	out := make([]AmendmentResponse, len(as))
	for i, a := range as {
		out[i] = AmendmentFromDomain(a)
	}
	return out
}

// VarianceResponse represents an estimate variance preview.
type VarianceResponse struct {
	Variance   decimal.Decimal `json:"variance"`
	Percentage decimal.Decimal `json:"percentage"`
	IsIncrease bool            `json:"is_increase"`
}

// VarianceFromDomain converts a domain estimate variance to a response.
func VarianceFromDomain(v *domain.EstimateVariance) VarianceResponse {
	return VarianceResponse{
		Variance:   v.Variance,
		Percentage: v.Percentage,
		IsIncrease: v.IsIncrease,
	}
}

// MatterResponse represents a matter's billing view in API responses.
type MatterResponse struct {
	ID                    string          `json:"id"`
	AdvocateID            string          `json:"advocate_id"`
	Title                 string          `json:"title"`
	ClientName            string          `json:"client_name,omitempty"`
	ClientEmail           string          `json:"client_email,omitempty"`
	Status                string          `json:"status"`
	CompletionStatus      string          `json:"completion_status"`
	EngagementAgreementID *string         `json:"engagement_agreement_id,omitempty"`
	EstimatedTotal        decimal.Decimal `json:"estimated_total"`
	ActualTotal           decimal.Decimal `json:"actual_total"`
	BillingReadyAt        *time.Time      `json:"billing_ready_at,omitempty"`
	BillingReviewNotes    string          `json:"billing_review_notes,omitempty"`
	PartnerApprovedBy     *string         `json:"partner_approved_by,omitempty"`
	PartnerApprovedAt     *time.Time      `json:"partner_approved_at,omitempty"`
	PartnerApprovalNotes  string          `json:"partner_approval_notes,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// MatterFromDomain converts a domain matter to a response.
func MatterFromDomain(m *domain.Matter) MatterResponse {
	return MatterResponse{
		ID:                    m.ID,
		AdvocateID:            m.AdvocateID,
		Title:                 m.Title,
		ClientName:            m.ClientName,
		ClientEmail:           m.ClientEmail,
		Status:                string(m.Status),
		CompletionStatus:      string(m.CompletionStatus),
		EngagementAgreementID: m.EngagementAgreementID,
		EstimatedTotal:        m.EstimatedTotal,
		ActualTotal:           m.ActualTotal,
		BillingReadyAt:        m.BillingReadyAt,
		BillingReviewNotes:    m.BillingReviewNotes,
		PartnerApprovedBy:     m.PartnerApprovedBy,
		PartnerApprovedAt:     m.PartnerApprovedAt,
		PartnerApprovalNotes:  m.PartnerApprovalNotes,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// ChainVerificationResponse reports the outcome of a ledger chain check.
type ChainVerificationResponse struct {
	TrustAccountID string   `json:"trust_account_id"`
	Valid          bool     `json:"valid"`
	Discrepancies  []string `json:"discrepancies,omitempty"`
}
