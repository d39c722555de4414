package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmendmentStatus is the approval state of a scope amendment.
type AmendmentStatus string

const (
	AmendmentStatusPending  AmendmentStatus = "pending"
	AmendmentStatusApproved AmendmentStatus = "approved"
	AmendmentStatusRejected AmendmentStatus = "rejected"
)

// AmendmentType categorizes what changed in the engagement.
type AmendmentType string

const (
	AmendmentTypeScopeIncrease  AmendmentType = "scope_increase"
	AmendmentTypeScopeDecrease  AmendmentType = "scope_decrease"
	AmendmentTypeFeeAdjustment  AmendmentType = "fee_adjustment"
	AmendmentTypeTimelineChange AmendmentType = "timeline_change"
	AmendmentTypeOther          AmendmentType = "other"
)

// ScopeAmendment records a change to a matter's agreed scope. Approval with a
// new estimate overwrites the matter's estimated total; the amendment row is
// the only history of the prior value.
type ScopeAmendment struct {
	ID                    string
	MatterID              string
	EngagementAgreementID *string
	AdvocateID            string
	Type                  AmendmentType
	Reason                string
	Description           string
	OriginalEstimate      decimal.Decimal
	NewEstimate           *decimal.Decimal
	OriginalTimelineDays  *int
	NewTimelineDays       *int
	Status                AmendmentStatus
	RejectionReason       string
	ApprovedBy            *string
	ApprovedAt            *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             *time.Time
}

// EstimateVariance describes how a new estimate moves against the original.
type EstimateVariance struct {
	Variance   decimal.Decimal
	Percentage decimal.Decimal
	IsIncrease bool
}

// CalculateVariance compares an original estimate with a proposed one.
func CalculateVariance(original, proposed decimal.Decimal) EstimateVariance {
	variance := proposed.Sub(original)
	pct := decimal.Zero
	if original.IsPositive() {
		pct = variance.Div(original).Mul(decimal.NewFromInt(100))
	}
	return EstimateVariance{
		Variance:   variance,
		Percentage: pct,
		IsIncrease: variance.IsPositive(),
	}
}
