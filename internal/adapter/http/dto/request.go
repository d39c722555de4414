package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// CreateTrustAccountRequest represents a request to open a trust account.
type CreateTrustAccountRequest struct {
	AdvocateID          string           `json:"advocate_id"`
	BankName            string           `json:"bank_name"`
	AccountHolderName   string           `json:"account_holder_name"`
	AccountNumber       string           `json:"account_number"`
	LowBalanceThreshold *decimal.Decimal `json:"low_balance_threshold,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTrustAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	threshold := decimal.Zero
	if r.LowBalanceThreshold != nil {
		threshold = *r.LowBalanceThreshold
	}
	return usecase.CreateAccountInput{
		AdvocateID:          r.AdvocateID,
		BankName:            r.BankName,
		AccountHolderName:   r.AccountHolderName,
		AccountNumber:       r.AccountNumber,
		LowBalanceThreshold: threshold,
	}
}

// AppendTransactionRequest represents a request to record a ledger entry.
type AppendTransactionRequest struct {
	RetainerID      *string         `json:"retainer_id,omitempty"`
	MatterID        string          `json:"matter_id"`
	AdvocateID      string          `json:"advocate_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       string          `json:"reference,omitempty"`
	Description     string          `json:"description"`
	PaymentMethod   string          `json:"payment_method"`
	ClientID        *string         `json:"client_id,omitempty"`
	InvoiceID       *string         `json:"invoice_id,omitempty"`
	TimeEntryID     *string         `json:"time_entry_id,omitempty"`
	ExpenseID       *string         `json:"expense_id,omitempty"`
	TransactionDate *time.Time      `json:"transaction_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AppendTransactionRequest) ToUseCaseInput(trustAccountID, actorID, requestID string) usecase.AppendInput {
	return usecase.AppendInput{
		TrustAccountID:  trustAccountID,
		RetainerID:      r.RetainerID,
		MatterID:        r.MatterID,
		AdvocateID:      r.AdvocateID,
		ActorID:         actorID,
		RequestID:       requestID,
		Type:            domain.TransactionType(r.Type),
		Amount:          r.Amount,
		Reference:       r.Reference,
		Description:     r.Description,
		PaymentMethod:   domain.PaymentMethod(r.PaymentMethod),
		ClientID:        r.ClientID,
		InvoiceID:       r.InvoiceID,
		TimeEntryID:     r.TimeEntryID,
		ExpenseID:       r.ExpenseID,
		TransactionDate: r.TransactionDate,
	}
}

// MarkReconciledRequest represents a reconciliation sign-off.
type MarkReconciledRequest struct {
	AsOf           time.Time       `json:"as_of"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// CreateRetainerRequest represents a request to create a retainer agreement.
type CreateRetainerRequest struct {
	MatterID              string          `json:"matter_id"`
	TrustAccountID        string          `json:"trust_account_id"`
	EngagementAgreementID *string         `json:"engagement_agreement_id,omitempty"`
	AdvocateID            string          `json:"advocate_id"`
	Type                  string          `json:"type"`
	RetainerAmount        decimal.Decimal `json:"retainer_amount"`
	StartDate             time.Time       `json:"start_date"`
	EndDate               *time.Time      `json:"end_date,omitempty"`
	AutoRenew             bool            `json:"auto_renew"`
	Notes                 string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateRetainerRequest) ToUseCaseInput(actorID, requestID string) usecase.CreateRetainerInput {
	return usecase.CreateRetainerInput{
		MatterID:              r.MatterID,
		TrustAccountID:        r.TrustAccountID,
		EngagementAgreementID: r.EngagementAgreementID,
		AdvocateID:            r.AdvocateID,
		ActorID:               actorID,
		RequestID:             requestID,
		Type:                  domain.RetainerType(r.Type),
		RetainerAmount:        r.RetainerAmount,
		StartDate:             r.StartDate,
		EndDate:               r.EndDate,
		AutoRenew:             r.AutoRenew,
		Notes:                 r.Notes,
	}
}

// RetainerMovementRequest represents a deposit, drawdown or refund against a
// retainer.
type RetainerMovementRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference,omitempty"`
	Description   string          `json:"description"`
	PaymentMethod string          `json:"payment_method"`
	ClientID      *string         `json:"client_id,omitempty"`
	InvoiceID     *string         `json:"invoice_id,omitempty"`
	TimeEntryID   *string         `json:"time_entry_id,omitempty"`
	ExpenseID     *string         `json:"expense_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RetainerMovementRequest) ToUseCaseInput(retainerID, actorID, requestID string) usecase.RetainerMovementInput {
	return usecase.RetainerMovementInput{
		RetainerID:    retainerID,
		ActorID:       actorID,
		RequestID:     requestID,
		Amount:        r.Amount,
		Reference:     r.Reference,
		Description:   r.Description,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		ClientID:      r.ClientID,
		InvoiceID:     r.InvoiceID,
		TimeEntryID:   r.TimeEntryID,
		ExpenseID:     r.ExpenseID,
	}
}

// ReasonRequest carries the reason for cancellations and rejections.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// NotesRequest carries optional free-text notes.
type NotesRequest struct {
	Notes string `json:"notes,omitempty"`
}

// RenewRetainerRequest represents a retainer renewal.
type RenewRetainerRequest struct {
	EndDate time.Time `json:"end_date"`
}

// CreateCreditNoteRequest represents a request to draft a credit note.
type CreateCreditNoteRequest struct {
	InvoiceID      string          `json:"invoice_id"`
	DisputeID      *string         `json:"dispute_id,omitempty"`
	AdvocateID     string          `json:"advocate_id"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	ReasonCategory string          `json:"reason_category,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCreditNoteRequest) ToUseCaseInput(actorID, requestID string) usecase.CreateCreditNoteInput {
	return usecase.CreateCreditNoteInput{
		InvoiceID:      r.InvoiceID,
		DisputeID:      r.DisputeID,
		AdvocateID:     r.AdvocateID,
		ActorID:        actorID,
		RequestID:      requestID,
		Amount:         r.Amount,
		Reason:         r.Reason,
		ReasonCategory: r.ReasonCategory,
	}
}

// CreateDisputeRequest represents a request to open a payment dispute.
type CreateDisputeRequest struct {
	InvoiceID      string           `json:"invoice_id"`
	AdvocateID     string           `json:"advocate_id"`
	Type           string           `json:"type"`
	Reason         string           `json:"reason"`
	DisputedAmount *decimal.Decimal `json:"disputed_amount,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateDisputeRequest) ToUseCaseInput(actorID, requestID string) usecase.CreateDisputeInput {
	return usecase.CreateDisputeInput{
		InvoiceID:      r.InvoiceID,
		AdvocateID:     r.AdvocateID,
		ActorID:        actorID,
		RequestID:      requestID,
		Type:           domain.DisputeType(r.Type),
		Reason:         r.Reason,
		DisputedAmount: r.DisputedAmount,
	}
}

// ResolveDisputeRequest represents a dispute resolution.
type ResolveDisputeRequest struct {
	ResolutionType  string           `json:"resolution_type"`
	ResolutionNotes string           `json:"resolution_notes"`
	ResolvedAmount  *decimal.Decimal `json:"resolved_amount,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ResolveDisputeRequest) ToUseCaseInput(disputeID, actorID, requestID string) usecase.ResolveDisputeInput {
	return usecase.ResolveDisputeInput{
		DisputeID:       disputeID,
		ActorID:         actorID,
		RequestID:       requestID,
		ResolutionType:  domain.ResolutionType(r.ResolutionType),
		ResolutionNotes: r.ResolutionNotes,
		ResolvedAmount:  r.ResolvedAmount,
	}
}

// CreateAmendmentRequest represents a request to propose a scope amendment.
type CreateAmendmentRequest struct {
	MatterID             string           `json:"matter_id"`
	AdvocateID           string           `json:"advocate_id"`
	Type                 string           `json:"type"`
	Reason               string           `json:"reason"`
	Description          string           `json:"description,omitempty"`
	NewEstimate          *decimal.Decimal `json:"new_estimate,omitempty"`
	OriginalTimelineDays *int             `json:"original_timeline_days,omitempty"`
	NewTimelineDays      *int             `json:"new_timeline_days,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAmendmentRequest) ToUseCaseInput(actorID, requestID string) usecase.CreateAmendmentInput {
	return usecase.CreateAmendmentInput{
		MatterID:             r.MatterID,
		AdvocateID:           r.AdvocateID,
		ActorID:              actorID,
		RequestID:            requestID,
		Type:                 domain.AmendmentType(r.Type),
		Reason:               r.Reason,
		Description:          r.Description,
		NewEstimate:          r.NewEstimate,
		OriginalTimelineDays: r.OriginalTimelineDays,
		NewTimelineDays:      r.NewTimelineDays,
	}
}
