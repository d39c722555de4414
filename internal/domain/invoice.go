package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment state of an invoice.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusPartial    PaymentStatus = "partial"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusDisputed   PaymentStatus = "disputed"
	PaymentStatusOverdue    PaymentStatus = "overdue"
	PaymentStatusWrittenOff PaymentStatus = "written_off"
)

// Invoice carries the settled totals the ledger and state machines act on.
// Amounts are post-VAT.
type Invoice struct {
	ID            string
	MatterID      string
	AdvocateID    string
	InvoiceNumber string
	TotalAmount   decimal.Decimal
	AmountPaid    decimal.Decimal
	PaymentStatus PaymentStatus
	DueDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// RecomputePaymentStatus derives the payment status from totals: paid when
// fully covered, partial when anything has been paid, else pending.
func RecomputePaymentStatus(totalAmount, amountPaid decimal.Decimal) PaymentStatus {
	if amountPaid.GreaterThanOrEqual(totalAmount) {
		return PaymentStatusPaid
	}
	if amountPaid.IsPositive() {
		return PaymentStatusPartial
	}
	return PaymentStatusPending
}
