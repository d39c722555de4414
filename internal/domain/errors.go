package domain

import "errors"

var (
	// Ledger errors
	ErrTrustAccountNotFound   = errors.New("trust account not found")
	ErrTransactionNotFound    = errors.New("trust transaction not found")
	ErrInsufficientBalance    = errors.New("insufficient trust account balance")
	ErrLedgerCorrupt          = errors.New("ledger balance does not match transaction history")
	ErrReconciliationMismatch = errors.New("stated closing balance does not match computed balance")

	// Retainer errors
	ErrRetainerNotFound  = errors.New("retainer agreement not found")
	ErrRetainerCancelled = errors.New("retainer agreement is cancelled")

	// Billing errors
	ErrMatterNotFound         = errors.New("matter not found")
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrCreditNoteNotFound     = errors.New("credit note not found")
	ErrDisputeNotFound        = errors.New("payment dispute not found")
	ErrAmendmentNotFound      = errors.New("scope amendment not found")
	ErrAmountExceedsInvoice   = errors.New("credit note amount exceeds invoice total")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNotReady               = errors.New("matter is not ready to bill")
	ErrReasonRequired         = errors.New("a reason is required")

	// Validation errors
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)
