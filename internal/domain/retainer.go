package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RetainerStatus is the lifecycle state of a retainer agreement.
type RetainerStatus string

const (
	RetainerStatusActive    RetainerStatus = "active"
	RetainerStatusDepleted  RetainerStatus = "depleted"
	RetainerStatusCancelled RetainerStatus = "cancelled"
)

// RetainerType describes the commercial shape of the retainer.
type RetainerType string

const (
	RetainerTypeMonthly   RetainerType = "monthly"
	RetainerTypeAnnual    RetainerType = "annual"
	RetainerTypeProject   RetainerType = "project"
	RetainerTypeEvergreen RetainerType = "evergreen"
)

// RetainerAgreement is a client's pre-funded commitment against one matter.
// Balance is maintained alongside the trust account inside the same ledger
// transaction; it is never recomputed by summing history at read time.
type RetainerAgreement struct {
	ID                    string
	MatterID              string
	TrustAccountID        string
	EngagementAgreementID *string
	AdvocateID            string
	Type                  RetainerType
	RetainerAmount        decimal.Decimal
	Balance               decimal.Decimal
	Status                RetainerStatus
	LowBalanceAlertSent   bool
	StartDate             time.Time
	EndDate               *time.Time
	AutoRenew             bool
	Notes                 string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             *time.Time
}

// PercentageRemaining is the balance as a percentage of the committed
// retainer amount, clamped to [0, 100]. A zero retainer amount yields zero.
func (r *RetainerAgreement) PercentageRemaining() decimal.Decimal {
	if !r.RetainerAmount.IsPositive() {
		return decimal.Zero
	}
	pct := r.Balance.Div(r.RetainerAmount).Mul(decimal.NewFromInt(100))
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return pct
}

// IsLowBalance reports whether the remaining percentage is at or below the
// given threshold percentage.
func (r *RetainerAgreement) IsLowBalance(threshold decimal.Decimal) bool {
	return r.PercentageRemaining().LessThanOrEqual(threshold)
}

// StatusAfterBalance returns the lifecycle status implied by a new balance.
// Cancelled is terminal and never changed here.
func (r *RetainerAgreement) StatusAfterBalance(balance decimal.Decimal) RetainerStatus {
	if r.Status == RetainerStatusCancelled {
		return RetainerStatusCancelled
	}
	if balance.IsZero() || balance.IsNegative() {
		return RetainerStatusDepleted
	}
	return RetainerStatusActive
}
