package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// SummaryCacheTTL is how long retainer summaries may be served from cache
	SummaryCacheTTL = 30 * time.Second

	// ReceiptNumberPrefix prefixes generated trust receipt numbers
	ReceiptNumberPrefix = "TRN"

	// CreditNoteNumberPrefix prefixes generated credit note numbers
	CreditNoteNumberPrefix = "CN"
)
