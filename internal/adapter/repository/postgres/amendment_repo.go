package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// AmendmentRepository implements usecase.AmendmentRepository.
type AmendmentRepository struct {
	pool *pgxpool.Pool
}

// NewAmendmentRepository creates a new AmendmentRepository.
func NewAmendmentRepository(pool *pgxpool.Pool) *AmendmentRepository {
	return &AmendmentRepository{pool: pool}
}

const amendmentColumns = `
	id, matter_id, engagement_agreement_id, advocate_id, type, reason,
	description, original_estimate, new_estimate, original_timeline_days,
	new_timeline_days, status, rejection_reason, approved_by, approved_at,
	created_at, updated_at, deleted_at`

// Create creates a new scope amendment.
func (r *AmendmentRepository) Create(ctx context.Context, amendment *domain.ScopeAmendment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO scope_amendments (
			id, matter_id, engagement_agreement_id, advocate_id, type,
			reason, description, original_estimate, new_estimate,
			original_timeline_days, new_timeline_days, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)`,
		amendment.ID,
		amendment.MatterID,
		amendment.EngagementAgreementID,
		amendment.AdvocateID,
		string(amendment.Type),
		amendment.Reason,
		amendment.Description,
		decimalToNumeric(amendment.OriginalEstimate),
		decimalPtrToNumeric(amendment.NewEstimate),
		amendment.OriginalTimelineDays,
		amendment.NewTimelineDays,
		string(amendment.Status),
		timeToPgTimestamptz(amendment.CreatedAt),
		timeToPgTimestamptz(amendment.UpdatedAt),
	)

	return err
}

// GetByID retrieves a scope amendment by ID.
func (r *AmendmentRepository) GetByID(ctx context.Context, id string) (*domain.ScopeAmendment, error) {
	return scanAmendment(r.pool.QueryRow(ctx, `
		SELECT `+amendmentColumns+`
		FROM scope_amendments
		WHERE id = $1 AND deleted_at IS NULL`, id))
}

// UpdateStatus persists the amendment's approval fields.
func (r *AmendmentRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, amendment *domain.ScopeAmendment) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE scope_amendments
		SET status = $2,
		    rejection_reason = $3,
		    approved_by = $4,
		    approved_at = $5,
		    updated_at = $6
		WHERE id = $1`,
		amendment.ID,
		string(amendment.Status),
		amendment.RejectionReason,
		amendment.ApprovedBy,
		timePtrToPgTimestamptz(amendment.ApprovedAt),
		timeToPgTimestamptz(amendment.UpdatedAt),
	)

	return err
}

// ListByMatter lists amendments recorded against a matter.
func (r *AmendmentRepository) ListByMatter(ctx context.Context, matterID string) ([]*domain.ScopeAmendment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+amendmentColumns+`
		FROM scope_amendments
		WHERE matter_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`, matterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAmendments(rows)
}

// ListPending lists an advocate's amendments awaiting a decision.
func (r *AmendmentRepository) ListPending(ctx context.Context, advocateID string) ([]*domain.ScopeAmendment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+amendmentColumns+`
		FROM scope_amendments
		WHERE advocate_id = $1 AND status = 'pending' AND deleted_at IS NULL
		ORDER BY created_at ASC`, advocateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAmendments(rows)
}

func collectAmendments(rows pgx.Rows) ([]*domain.ScopeAmendment, error) {
	amendments := make([]*domain.ScopeAmendment, 0)
	for rows.Next() {
		amendment, err := scanAmendment(rows)
		if err != nil {
			return nil, err
		}
		amendments = append(amendments, amendment)
	}

	return amendments, rows.Err()
}

func scanAmendment(row pgx.Row) (*domain.ScopeAmendment, error) {
	var (
		a                domain.ScopeAmendment
		amendmentType    string
		status           string
		originalEstimate pgtype.Numeric
		newEstimate      pgtype.Numeric
		approvedAt       pgtype.Timestamptz
		createdAt        pgtype.Timestamptz
		updatedAt        pgtype.Timestamptz
		deletedAt        pgtype.Timestamptz
	)

	err := row.Scan(
		&a.ID,
		&a.MatterID,
		&a.EngagementAgreementID,
		&a.AdvocateID,
		&amendmentType,
		&a.Reason,
		&a.Description,
		&originalEstimate,
		&newEstimate,
		&a.OriginalTimelineDays,
		&a.NewTimelineDays,
		&status,
		&a.RejectionReason,
		&a.ApprovedBy,
		&approvedAt,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAmendmentNotFound
		}

		return nil, err
	}

	a.Type = domain.AmendmentType(amendmentType)
	a.Status = domain.AmendmentStatus(status)
	a.OriginalEstimate = numericToDecimal(originalEstimate)
	a.NewEstimate = numericToDecimalPtr(newEstimate)
	a.ApprovedAt = pgTimestamptzToTimePtr(approvedAt)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
	a.DeletedAt = pgTimestamptzToTimePtr(deletedAt)

	return &a, nil
}
