package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
)

// AmendmentUseCase drives the scope amendment approval flow. Approving an
// amendment with a new estimate overwrites the matter's estimated total in
// the same transaction.
type AmendmentUseCase struct {
	txManager     TransactionManager
	amendmentRepo AmendmentRepository
	matterRepo    MatterRepository
	auditRepo     AuditRepository
	idGen         IDGenerator
}

// NewAmendmentUseCase creates a new AmendmentUseCase.
func NewAmendmentUseCase(
	txManager TransactionManager,
	amendmentRepo AmendmentRepository,
	matterRepo MatterRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *AmendmentUseCase {
	return &AmendmentUseCase{
		txManager:     txManager,
		amendmentRepo: amendmentRepo,
		matterRepo:    matterRepo,
		auditRepo:     auditRepo,
		idGen:         idGen,
	}
}

// CreateAmendmentInput represents input for proposing a scope amendment.
type CreateAmendmentInput struct {
	MatterID             string
	AdvocateID           string
	ActorID              string
	RequestID            string
	Type                 domain.AmendmentType
	Reason               string
	Description          string
	NewEstimate          *decimal.Decimal
	OriginalTimelineDays *int
	NewTimelineDays      *int
}

// CreateAmendment proposes an amendment. The matter's current estimate is
// snapshotted so the variance survives later approvals.
func (uc *AmendmentUseCase) CreateAmendment(ctx context.Context, input CreateAmendmentInput) (*domain.ScopeAmendment, error) {
	if input.Reason == "" {
		return nil, domain.ErrReasonRequired
	}

	if input.NewEstimate != nil {
		if err := domain.ValidateAmount(*input.NewEstimate); err != nil {
			return nil, err
		}
	}

	matter, err := uc.matterRepo.GetByID(ctx, input.MatterID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	amendment := &domain.ScopeAmendment{
		ID:                    uc.idGen.Generate(),
		MatterID:              input.MatterID,
		EngagementAgreementID: matter.EngagementAgreementID,
		AdvocateID:            input.AdvocateID,
		Type:                  input.Type,
		Reason:                input.Reason,
		Description:           input.Description,
		OriginalEstimate:      matter.EstimatedTotal,
		NewEstimate:           input.NewEstimate,
		OriginalTimelineDays:  input.OriginalTimelineDays,
		NewTimelineDays:       input.NewTimelineDays,
		Status:                domain.AmendmentStatusPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := uc.amendmentRepo.Create(ctx, amendment); err != nil {
		return nil, err
	}

	uc.audit(ctx, input.ActorID, input.RequestID, domain.AuditActionAmendmentCreate, amendment.ID, nil, amendment)

	return amendment, nil
}

// ApproveAmendment approves a pending amendment. When the amendment carries
// a new estimate, the matter's estimated total is updated atomically with
// the approval.
func (uc *AmendmentUseCase) ApproveAmendment(ctx context.Context, id, approverID, requestID, notes string) (*domain.ScopeAmendment, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	amendment, err := uc.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if amendment.Status != domain.AmendmentStatusPending {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, amendment.Status, domain.AmendmentStatusApproved)
	}

	before := *amendment
	now := time.Now().UTC()

	amendment.Status = domain.AmendmentStatusApproved
	amendment.ApprovedBy = &approverID
	amendment.ApprovedAt = &now
	amendment.UpdatedAt = now

	if notes != "" {
		amendment.Description = appendNote(amendment.Description, notes)
	}

	if err := uc.amendmentRepo.UpdateStatus(ctx, tx, amendment); err != nil {
		return nil, err
	}

	if amendment.NewEstimate != nil {
		matter, err := uc.matterRepo.GetByIDForUpdate(ctx, tx, amendment.MatterID)
		if err != nil {
			return nil, err
		}

		if err := uc.matterRepo.UpdateEstimatedTotal(ctx, tx, matter.ID, *amendment.NewEstimate, now); err != nil {
			return nil, err
		}
	}

	if err := uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      approverID,
		Action:       string(domain.AuditActionAmendmentApprove),
		ResourceType: "scope_amendment",
		ResourceID:   amendment.ID,
		RequestID:    requestID,
		BeforeState:  domain.MarshalState(&before),
		AfterState:   domain.MarshalState(amendment),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return amendment, nil
}

// RejectAmendment rejects a pending amendment with a required reason. The
// matter is left untouched.
func (uc *AmendmentUseCase) RejectAmendment(ctx context.Context, id, approverID, requestID, reason string) (*domain.ScopeAmendment, error) {
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	amendment, err := uc.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if amendment.Status != domain.AmendmentStatusPending {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, amendment.Status, domain.AmendmentStatusRejected)
	}

	before := *amendment
	now := time.Now().UTC()

	amendment.Status = domain.AmendmentStatusRejected
	amendment.RejectionReason = reason
	amendment.UpdatedAt = now

	if err := uc.amendmentRepo.UpdateStatus(ctx, tx, amendment); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.audit(ctx, approverID, requestID, domain.AuditActionAmendmentReject, id, &before, amendment)

	return amendment, nil
}

// GetAmendment retrieves an amendment by ID.
func (uc *AmendmentUseCase) GetAmendment(ctx context.Context, id string) (*domain.ScopeAmendment, error) {
	return uc.amendmentRepo.GetByID(ctx, id)
}

// ListAmendmentsByMatter lists amendments against a matter.
func (uc *AmendmentUseCase) ListAmendmentsByMatter(ctx context.Context, matterID string) ([]*domain.ScopeAmendment, error) {
	if _, err := uc.matterRepo.GetByID(ctx, matterID); err != nil {
		return nil, err
	}

	return uc.amendmentRepo.ListByMatter(ctx, matterID)
}

// ListPendingAmendments lists an advocate's amendments awaiting a decision.
func (uc *AmendmentUseCase) ListPendingAmendments(ctx context.Context, advocateID string) ([]*domain.ScopeAmendment, error) {
	return uc.amendmentRepo.ListPending(ctx, advocateID)
}

// PreviewVariance computes the estimate movement an amendment proposes.
func (uc *AmendmentUseCase) PreviewVariance(ctx context.Context, id string) (*domain.EstimateVariance, error) {
	amendment, err := uc.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if amendment.NewEstimate == nil {
		return &domain.EstimateVariance{Variance: decimal.Zero, Percentage: decimal.Zero}, nil
	}

	v := domain.CalculateVariance(amendment.OriginalEstimate, *amendment.NewEstimate)

	return &v, nil
}

func (uc *AmendmentUseCase) audit(ctx context.Context, actorID, requestID string, action domain.AuditAction, resourceID string, before, after any) {
	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       string(action),
		ResourceType: "scope_amendment",
		ResourceID:   resourceID,
		RequestID:    requestID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
