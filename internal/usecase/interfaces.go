package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
)

// TrustAccountRepository defines data access for trust accounts.
type TrustAccountRepository interface {
	Create(ctx context.Context, account *domain.TrustAccount) error
	GetByID(ctx context.Context, id string) (*domain.TrustAccount, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.TrustAccount, error)
	GetByAdvocate(ctx context.Context, advocateID string) (*domain.TrustAccount, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetNegativeBalanceAlert(ctx context.Context, tx Transaction, id string, sent bool) error
	MarkReconciled(ctx context.Context, tx Transaction, id string, asOf time.Time, balance decimal.Decimal) error
}

// TrustTransactionRepository defines data access for the append-only ledger.
type TrustTransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.TrustTransaction) error
	GetByID(ctx context.Context, id string) (*domain.TrustTransaction, error)
	ListByAccount(ctx context.Context, accountID string, filter TransactionFilter) ([]*domain.TrustTransaction, error)
	ListByRetainer(ctx context.Context, retainerID string, limit, offset int) ([]*domain.TrustTransaction, error)
	// SumByRetainer returns total deposits and total drawdowns recorded
	// against a retainer.
	SumByRetainer(ctx context.Context, retainerID string) (deposits, drawdowns decimal.Decimal, err error)
	// LastBalanceBefore returns the balance_after of the most recently
	// created non-deleted transaction dated strictly before the date, and
	// whether one exists. Balances chain in creation order; transaction
	// dates may be backdated.
	LastBalanceBefore(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, bool, error)
	// LastBalanceAsOf is LastBalanceBefore with an inclusive cutoff.
	LastBalanceAsOf(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, bool, error)
	MarkReconciled(ctx context.Context, tx Transaction, accountID string, asOf time.Time) error
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Type       domain.TransactionType
	Reconciled *bool
	Limit      int
	Offset     int
}

// RetainerRepository defines data access for retainer agreements.
type RetainerRepository interface {
	Create(ctx context.Context, retainer *domain.RetainerAgreement) error
	GetByID(ctx context.Context, id string) (*domain.RetainerAgreement, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.RetainerAgreement, error)
	GetActiveByMatter(ctx context.Context, matterID string) (*domain.RetainerAgreement, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, status domain.RetainerStatus, alertSent bool, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status domain.RetainerStatus, notes string, updatedAt time.Time) error
	UpdateEndDate(ctx context.Context, id string, endDate *time.Time, updatedAt time.Time) error
	ListLowBalance(ctx context.Context, advocateID string) ([]*domain.RetainerAgreement, error)
	ListExpiring(ctx context.Context, advocateID string, before time.Time) ([]*domain.RetainerAgreement, error)
}

// MatterRepository defines data access for matters.
type MatterRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Matter, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Matter, error)
	UpdateCompletionStatus(ctx context.Context, tx Transaction, id string, status domain.CompletionStatus, updatedAt time.Time) error
	SetBillingReady(ctx context.Context, tx Transaction, id string, at time.Time) error
	SetReviewNotes(ctx context.Context, tx Transaction, id string, notes string) error
	RecordApproval(ctx context.Context, tx Transaction, id, approverID, notes string, at time.Time) error
	UpdateEstimatedTotal(ctx context.Context, tx Transaction, id string, estimate decimal.Decimal, updatedAt time.Time) error
	// UnbilledTotals returns the value of unbilled time and unbilled
	// expenses recorded against the matter.
	UnbilledTotals(ctx context.Context, matterID string) (unbilledTime, unbilledExpenses decimal.Decimal, err error)
	ListByCompletionStatus(ctx context.Context, advocateID string, status domain.CompletionStatus) ([]*domain.Matter, error)
	CountByCompletionStatus(ctx context.Context, advocateID string) (map[domain.CompletionStatus]int, error)
}

// InvoiceRepository defines data access for invoices.
type InvoiceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Invoice, error)
	UpdateTotals(ctx context.Context, tx Transaction, id string, total decimal.Decimal, status domain.PaymentStatus, updatedAt time.Time) error
	UpdatePaymentStatus(ctx context.Context, tx Transaction, id string, status domain.PaymentStatus, updatedAt time.Time) error
	HasOpenDisputesByMatter(ctx context.Context, matterID string) (bool, error)
}

// CreditNoteRepository defines data access for credit notes.
type CreditNoteRepository interface {
	Create(ctx context.Context, note *domain.CreditNote) error
	GetByID(ctx context.Context, id string) (*domain.CreditNote, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.CreditNote, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.CreditNoteStatus, issuedAt, appliedAt *time.Time, updatedAt time.Time) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.CreditNote, error)
	// NextSequence returns the next sequence number for a credit note
	// number prefix (e.g. "CN-202609").
	NextSequence(ctx context.Context, prefix string) (int, error)
}

// DisputeRepository defines data access for payment disputes.
type DisputeRepository interface {
	Create(ctx context.Context, tx Transaction, dispute *domain.PaymentDispute) error
	GetByID(ctx context.Context, id string) (*domain.PaymentDispute, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.PaymentDispute, error)
	UpdateStatus(ctx context.Context, tx Transaction, dispute *domain.PaymentDispute) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.PaymentDispute, error)
}

// AmendmentRepository defines data access for scope amendments.
type AmendmentRepository interface {
	Create(ctx context.Context, amendment *domain.ScopeAmendment) error
	GetByID(ctx context.Context, id string) (*domain.ScopeAmendment, error)
	UpdateStatus(ctx context.Context, tx Transaction, amendment *domain.ScopeAmendment) error
	ListByMatter(ctx context.Context, matterID string) ([]*domain.ScopeAmendment, error)
	ListPending(ctx context.Context, advocateID string) ([]*domain.ScopeAmendment, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries transient infrastructure failures a bounded number of
// times. Business-rule failures are never retried.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
