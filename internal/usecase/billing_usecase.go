package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
)

// varianceWarningPct flags matters whose actuals have drifted more than this
// percentage from the estimate.
var varianceWarningPct = decimal.NewFromInt(15)

// BillingUseCase drives the billing readiness gate and the partner approval
// pipeline over a matter's completion status.
type BillingUseCase struct {
	txManager     TransactionManager
	matterRepo    MatterRepository
	invoiceRepo   InvoiceRepository
	retainerRepo  RetainerRepository
	amendmentRepo AmendmentRepository
	outboxRepo    OutboxRepository
	auditRepo     AuditRepository
	idGen         IDGenerator
}

// NewBillingUseCase creates a new BillingUseCase.
func NewBillingUseCase(
	txManager TransactionManager,
	matterRepo MatterRepository,
	invoiceRepo InvoiceRepository,
	retainerRepo RetainerRepository,
	amendmentRepo AmendmentRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *BillingUseCase {
	return &BillingUseCase{
		txManager:     txManager,
		matterRepo:    matterRepo,
		invoiceRepo:   invoiceRepo,
		retainerRepo:  retainerRepo,
		amendmentRepo: amendmentRepo,
		outboxRepo:    outboxRepo,
		auditRepo:     auditRepo,
		idGen:         idGen,
	}
}

// ReadinessChecks are the individual readiness flags, reported alongside the
// blocker and warning messages they produce.
type ReadinessChecks struct {
	HasUnbilledWork        bool `json:"has_unbilled_work"`
	MatterCompleted        bool `json:"matter_completed"`
	HasClientInfo          bool `json:"has_client_info"`
	HasEngagementAgreement bool `json:"has_engagement_agreement"`
	NoOpenDisputes         bool `json:"no_open_disputes"`
	WithinEstimate         bool `json:"within_estimate"`
}

// ReadinessReport is the outcome of the billing readiness gate. Blockers
// stop MarkReadyToBill; warnings inform the reviewer but do not.
type ReadinessReport struct {
	MatterID         string          `json:"matter_id"`
	Ready            bool            `json:"ready"`
	Checks           ReadinessChecks `json:"checks"`
	Blockers         []string        `json:"blockers"`
	Warnings         []string        `json:"warnings"`
	UnbilledTime     decimal.Decimal `json:"unbilled_time"`
	UnbilledExpenses decimal.Decimal `json:"unbilled_expenses"`
	UnbilledAmount   decimal.Decimal `json:"unbilled_amount"`
	CheckedAt        time.Time       `json:"checked_at"`
}

// CheckReadiness runs the readiness checks for a matter without changing any
// state.
func (uc *BillingUseCase) CheckReadiness(ctx context.Context, matterID string) (*ReadinessReport, error) {
	matter, err := uc.matterRepo.GetByID(ctx, matterID)
	if err != nil {
		return nil, err
	}

	return uc.buildReadiness(ctx, matter)
}

func (uc *BillingUseCase) buildReadiness(ctx context.Context, matter *domain.Matter) (*ReadinessReport, error) {
	report := &ReadinessReport{
		MatterID:  matter.ID,
		Blockers:  []string{},
		Warnings:  []string{},
		CheckedAt: time.Now().UTC(),
	}

	unbilledTime, unbilledExpenses, err := uc.matterRepo.UnbilledTotals(ctx, matter.ID)
	if err != nil {
		return nil, err
	}

	report.UnbilledTime = unbilledTime
	report.UnbilledExpenses = unbilledExpenses
	report.UnbilledAmount = unbilledTime.Add(unbilledExpenses)

	openDisputes, err := uc.invoiceRepo.HasOpenDisputesByMatter(ctx, matter.ID)
	if err != nil {
		return nil, err
	}

	variance := matter.EstimateVariancePct()

	report.Checks = ReadinessChecks{
		HasUnbilledWork: report.UnbilledAmount.IsPositive(),
		MatterCompleted: matter.Status == domain.MatterStatusCompleted ||
			matter.Status == domain.MatterStatusSettled,
		HasClientInfo:          matter.HasClientInfo(),
		HasEngagementAgreement: matter.EngagementAgreementID != nil && *matter.EngagementAgreementID != "",
		NoOpenDisputes:         !openDisputes,
		WithinEstimate:         !variance.Abs().GreaterThan(varianceWarningPct),
	}

	// Only missing work and missing client details stop the pipeline; the
	// remaining checks surface as warnings for the reviewer.
	if !report.Checks.HasUnbilledWork {
		report.Blockers = append(report.Blockers, "no unbilled time or expenses to invoice")
	}

	if !report.Checks.MatterCompleted {
		report.Warnings = append(report.Warnings, "matter is not marked completed")
	}

	if !report.Checks.HasClientInfo {
		report.Blockers = append(report.Blockers, "client name or email is missing")
	}

	if !report.Checks.HasEngagementAgreement {
		report.Warnings = append(report.Warnings, "no engagement agreement on file")
	}

	if !report.Checks.NoOpenDisputes {
		report.Warnings = append(report.Warnings, "matter has invoices with open payment disputes")
	}

	if !report.Checks.WithinEstimate {
		report.Warnings = append(report.Warnings, fmt.Sprintf("actuals deviate %s%% from the estimate", variance.Abs().Round(1)))
	}

	retainer, err := uc.retainerRepo.GetActiveByMatter(ctx, matter.ID)
	if err != nil && !errors.Is(err, domain.ErrRetainerNotFound) {
		return nil, err
	}

	if retainer != nil && retainer.Status == domain.RetainerStatusDepleted {
		report.Warnings = append(report.Warnings, "matter retainer is depleted")
	}

	pending, err := uc.amendmentRepo.ListByMatter(ctx, matter.ID)
	if err != nil {
		return nil, err
	}

	for _, a := range pending {
		if a.Status == domain.AmendmentStatusPending {
			report.Warnings = append(report.Warnings, "matter has pending scope amendments")
			break
		}
	}

	report.Ready = len(report.Blockers) == 0

	return report, nil
}

// CompleteMatter marks the work on a matter as done, the entry point of the
// billing pipeline.
func (uc *BillingUseCase) CompleteMatter(ctx context.Context, matterID, actorID, requestID string) (*domain.Matter, error) {
	return uc.transition(ctx, matterID, actorID, requestID, domain.CompletionStatusCompleted, domain.AuditActionMatterComplete, nil)
}

// MarkReadyToBill moves a completed matter into the billing queue. The
// readiness gate must pass with no blockers.
func (uc *BillingUseCase) MarkReadyToBill(ctx context.Context, matterID, actorID, requestID string) (*domain.Matter, error) {
	return uc.transition(ctx, matterID, actorID, requestID, domain.CompletionStatusReadyToBill, domain.AuditActionMarkReadyToBill,
		func(ctx context.Context, tx Transaction, matter *domain.Matter, now time.Time) error {
			report, err := uc.buildReadiness(ctx, matter)
			if err != nil {
				return err
			}

			if !report.Ready {
				return fmt.Errorf("%w: %v", domain.ErrNotReady, report.Blockers)
			}

			return uc.matterRepo.SetBillingReady(ctx, tx, matter.ID, now)
		})
}

// SubmitForApproval hands a ready-to-bill matter to a partner for review.
// Submitting from any other completion status fails with ErrNotReady.
func (uc *BillingUseCase) SubmitForApproval(ctx context.Context, matterID, actorID, requestID, notes string) (*domain.Matter, error) {
	matter, err := uc.transition(ctx, matterID, actorID, requestID, domain.CompletionStatusReview, domain.AuditActionSubmitForApproval,
		func(ctx context.Context, tx Transaction, matter *domain.Matter, now time.Time) error {
			if notes != "" {
				if err := uc.matterRepo.SetReviewNotes(ctx, tx, matter.ID, notes); err != nil {
					return err
				}
			}

			return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
				ID:            uc.idGen.Generate(),
				AggregateID:   matter.ID,
				AggregateType: domain.AggregateTypeMatter,
				EventType:     domain.EventTypeBillingSubmitted,
				Payload: map[string]any{
					"matter_id":    matter.ID,
					"submitted_by": actorID,
				},
				CreatedAt: now,
			})
		})

	// Only ready_to_bill may move to review, so a transition failure here
	// means the matter has not passed the readiness gate.
	if errors.Is(err, domain.ErrInvalidStateTransition) {
		return nil, fmt.Errorf("%w: matter is not ready to bill", domain.ErrNotReady)
	}

	return matter, err
}

// ApproveBilling records partner approval and returns the matter to the
// billing queue with the approver on record.
func (uc *BillingUseCase) ApproveBilling(ctx context.Context, matterID, approverID, requestID, notes string) (*domain.Matter, error) {
	return uc.transition(ctx, matterID, approverID, requestID, domain.CompletionStatusReadyToBill, domain.AuditActionApproveBilling,
		func(ctx context.Context, tx Transaction, matter *domain.Matter, now time.Time) error {
			if err := uc.matterRepo.RecordApproval(ctx, tx, matter.ID, approverID, notes, now); err != nil {
				return err
			}

			return uc.emitDecision(ctx, tx, matter.ID, approverID, notes, true, now)
		})
}

// RejectBilling sends the matter back to in_progress. A reason is required
// and is recorded on the review notes with a REJECTED: prefix.
func (uc *BillingUseCase) RejectBilling(ctx context.Context, matterID, approverID, requestID, reason string) (*domain.Matter, error) {
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}

	return uc.transition(ctx, matterID, approverID, requestID, domain.CompletionStatusInProgress, domain.AuditActionRejectBilling,
		func(ctx context.Context, tx Transaction, matter *domain.Matter, now time.Time) error {
			if err := uc.matterRepo.SetReviewNotes(ctx, tx, matter.ID, "REJECTED: "+reason); err != nil {
				return err
			}

			return uc.emitDecision(ctx, tx, matter.ID, approverID, reason, false, now)
		})
}

func (uc *BillingUseCase) emitDecision(ctx context.Context, tx Transaction, matterID, decidedBy, notes string, approved bool, now time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   matterID,
		AggregateType: domain.AggregateTypeMatter,
		EventType:     domain.EventTypeBillingDecided,
		Payload: domain.MarshalState(domain.BillingDecidedEvent{
			MatterID:  matterID,
			Approved:  approved,
			DecidedBy: decidedBy,
			Notes:     notes,
		}),
		CreatedAt: now,
	})
}

type transitionHook func(ctx context.Context, tx Transaction, matter *domain.Matter, now time.Time) error

func (uc *BillingUseCase) transition(
	ctx context.Context,
	matterID, actorID, requestID string,
	target domain.CompletionStatus,
	action domain.AuditAction,
	hook transitionHook,
) (*domain.Matter, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	matter, err := uc.matterRepo.GetByIDForUpdate(ctx, tx, matterID)
	if err != nil {
		return nil, err
	}

	if !matter.CompletionStatus.CanTransition(target) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, matter.CompletionStatus, target)
	}

	before := *matter
	now := time.Now().UTC()

	if hook != nil {
		if err := hook(ctx, tx, matter, now); err != nil {
			return nil, err
		}
	}

	if err := uc.matterRepo.UpdateCompletionStatus(ctx, tx, matterID, target, now); err != nil {
		return nil, err
	}

	if err := uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       string(action),
		ResourceType: "matter",
		ResourceID:   matterID,
		RequestID:    requestID,
		BeforeState:  domain.JSON{"completion_status": string(before.CompletionStatus)},
		AfterState:   domain.JSON{"completion_status": string(target)},
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	matter.CompletionStatus = target
	matter.UpdatedAt = now

	return matter, nil
}

// PipelineSummary is the advocate's billing pipeline at a glance.
type PipelineSummary struct {
	Counts       map[domain.CompletionStatus]int `json:"counts"`
	ReadyMatters []*domain.Matter                `json:"ready_matters"`
	InReview     []*domain.Matter                `json:"in_review"`
	GeneratedAt  time.Time                       `json:"generated_at"`
}

// Pipeline summarizes an advocate's matters by completion status.
func (uc *BillingUseCase) Pipeline(ctx context.Context, advocateID string) (*PipelineSummary, error) {
	counts, err := uc.matterRepo.CountByCompletionStatus(ctx, advocateID)
	if err != nil {
		return nil, err
	}

	ready, err := uc.matterRepo.ListByCompletionStatus(ctx, advocateID, domain.CompletionStatusReadyToBill)
	if err != nil {
		return nil, err
	}

	review, err := uc.matterRepo.ListByCompletionStatus(ctx, advocateID, domain.CompletionStatusReview)
	if err != nil {
		return nil, err
	}

	return &PipelineSummary{
		Counts:       counts,
		ReadyMatters: ready,
		InReview:     review,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// GetMatter retrieves a matter by ID.
func (uc *BillingUseCase) GetMatter(ctx context.Context, id string) (*domain.Matter, error) {
	return uc.matterRepo.GetByID(ctx, id)
}
