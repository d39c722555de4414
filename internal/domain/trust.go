package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a trust ledger entry. The sign of the balance
// movement is implied by the type; Amount is always a positive magnitude.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeDrawdown TransactionType = "drawdown"
	TransactionTypeRefund   TransactionType = "refund"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Sign returns +1 for inflows and -1 for outflows.
func (t TransactionType) Sign() int {
	if t == TransactionTypeDeposit {
		return 1
	}
	return -1
}

// IsOutflow reports whether the type reduces the trust balance.
func (t TransactionType) IsOutflow() bool {
	return t.Sign() < 0
}

// Valid reports whether the type is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeDrawdown, TransactionTypeRefund, TransactionTypeTransfer:
		return true
	}
	return false
}

// PaymentMethod is how funds arrived in or left the trust account.
type PaymentMethod string

const (
	PaymentMethodEFT        PaymentMethod = "eft"
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodCheque     PaymentMethod = "cheque"
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodDebitOrder PaymentMethod = "debit_order"
)

// TrustAccount is the regulated holding account for client funds, one per
// advocate. CurrentBalance is denormalized: it must always equal the
// BalanceAfter of the most recent non-deleted transaction, or zero if none.
// A negative balance is representable; it is a compliance violation, not an
// invalid value.
type TrustAccount struct {
	ID                        string
	AdvocateID                string
	BankName                  string
	AccountHolderName         string
	AccountNumber             string
	CurrentBalance            decimal.Decimal
	LowBalanceThreshold       decimal.Decimal // percentage of retainer amount
	LPCCompliant              bool
	NegativeBalanceAlertSent  bool
	LastReconciliationDate    *time.Time
	LastReconciliationBalance *decimal.Decimal
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// HasViolation reports whether the account is in a negative-balance state,
// which breaches LPC trust accounting rules.
func (a *TrustAccount) HasViolation() bool {
	return a.CurrentBalance.IsNegative()
}

// TrustTransaction is an immutable ledger entry. Corrections are new entries;
// rows are never mutated, only soft-deleted.
type TrustTransaction struct {
	ID                 string
	TrustAccountID     string
	RetainerID         *string
	MatterID           string
	AdvocateID         string
	Type               TransactionType
	Amount             decimal.Decimal
	BalanceBefore      decimal.Decimal
	BalanceAfter       decimal.Decimal
	Reference          string
	Description        string
	ReceiptNumber      string
	PaymentMethod      PaymentMethod
	ClientID           *string
	InvoiceID          *string
	TimeEntryID        *string
	ExpenseID          *string
	TransactionDate    time.Time
	Reconciled         bool
	ReconciliationDate *time.Time
	CreatedAt          time.Time
	DeletedAt          *time.Time
}

// SignedAmount is the balance delta this entry applies.
func (t *TrustTransaction) SignedAmount() decimal.Decimal {
	if t.Type.IsOutflow() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// CheckBalances verifies the per-entry invariant
// balanceAfter = balanceBefore + sign(type) * amount.
func (t *TrustTransaction) CheckBalances() error {
	if !t.BalanceBefore.Add(t.SignedAmount()).Equal(t.BalanceAfter) {
		return ErrLedgerCorrupt
	}
	return nil
}
