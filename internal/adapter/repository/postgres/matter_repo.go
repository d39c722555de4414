package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// MatterRepository implements usecase.MatterRepository.
type MatterRepository struct {
	pool *pgxpool.Pool
}

// NewMatterRepository creates a new MatterRepository.
func NewMatterRepository(pool *pgxpool.Pool) *MatterRepository {
	return &MatterRepository{pool: pool}
}

const matterColumns = `
	id, advocate_id, title, client_name, client_email, status,
	completion_status, engagement_agreement_id, estimated_total,
	actual_total, billing_ready_at, billing_review_notes,
	partner_approved_by, partner_approved_at, partner_approval_notes,
	created_at, updated_at, deleted_at`

// GetByID retrieves a matter by ID.
func (r *MatterRepository) GetByID(ctx context.Context, id string) (*domain.Matter, error) {
	return scanMatter(r.pool.QueryRow(ctx, `
		SELECT `+matterColumns+`
		FROM matters
		WHERE id = $1 AND deleted_at IS NULL`, id))
}

// GetByIDForUpdate retrieves a matter with a FOR UPDATE lock.
func (r *MatterRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Matter, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return scanMatter(pgxTx.QueryRow(ctx, `
		SELECT `+matterColumns+`
		FROM matters
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`, id))
}

// UpdateCompletionStatus advances the billing pipeline state.
func (r *MatterRepository) UpdateCompletionStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.CompletionStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE matters
		SET completion_status = $2, updated_at = $3
		WHERE id = $1`,
		id, string(status), timeToPgTimestamptz(updatedAt))

	return err
}

// SetBillingReady stamps the moment the matter passed the readiness gate.
func (r *MatterRepository) SetBillingReady(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE matters
		SET billing_ready_at = $2, updated_at = $2
		WHERE id = $1`,
		id, timeToPgTimestamptz(at))

	return err
}

// SetReviewNotes records the submission or rejection notes.
func (r *MatterRepository) SetReviewNotes(ctx context.Context, tx usecase.Transaction, id string, notes string) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE matters
		SET billing_review_notes = $2
		WHERE id = $1`, id, notes)

	return err
}

// RecordApproval stores the partner's sign-off.
func (r *MatterRepository) RecordApproval(ctx context.Context, tx usecase.Transaction, id, approverID, notes string, at time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE matters
		SET partner_approved_by = $2,
		    partner_approved_at = $3,
		    partner_approval_notes = $4,
		    updated_at = $3
		WHERE id = $1`,
		id, approverID, timeToPgTimestamptz(at), notes)

	return err
}

// UpdateEstimatedTotal overwrites the agreed estimate after an approved
// scope amendment.
func (r *MatterRepository) UpdateEstimatedTotal(ctx context.Context, tx usecase.Transaction, id string, estimate decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE matters
		SET estimated_total = $2, updated_at = $3
		WHERE id = $1`,
		id, decimalToNumeric(estimate), timeToPgTimestamptz(updatedAt))

	return err
}

// UnbilledTotals sums unbilled time and expenses recorded against a matter.
func (r *MatterRepository) UnbilledTotals(ctx context.Context, matterID string) (decimal.Decimal, decimal.Decimal, error) {
	var unbilledTime, unbilledExpenses pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE((
				SELECT SUM(amount) FROM time_entries
				WHERE matter_id = $1 AND invoice_id IS NULL AND deleted_at IS NULL
			), 0),
			COALESCE((
				SELECT SUM(amount) FROM expenses
				WHERE matter_id = $1 AND invoice_id IS NULL AND deleted_at IS NULL
			), 0)`, matterID).
		Scan(&unbilledTime, &unbilledExpenses)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(unbilledTime), numericToDecimal(unbilledExpenses), nil
}

// ListByCompletionStatus lists an advocate's matters in a pipeline state.
func (r *MatterRepository) ListByCompletionStatus(ctx context.Context, advocateID string, status domain.CompletionStatus) ([]*domain.Matter, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+matterColumns+`
		FROM matters
		WHERE advocate_id = $1 AND completion_status = $2 AND deleted_at IS NULL
		ORDER BY updated_at DESC`, advocateID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matters := make([]*domain.Matter, 0)
	for rows.Next() {
		matter, err := scanMatter(rows)
		if err != nil {
			return nil, err
		}
		matters = append(matters, matter)
	}

	return matters, rows.Err()
}

// CountByCompletionStatus counts an advocate's matters per pipeline state.
func (r *MatterRepository) CountByCompletionStatus(ctx context.Context, advocateID string) (map[domain.CompletionStatus]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT completion_status, COUNT(*)
		FROM matters
		WHERE advocate_id = $1 AND deleted_at IS NULL
		GROUP BY completion_status`, advocateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.CompletionStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[domain.CompletionStatus(status)] = count
	}

	return counts, rows.Err()
}

func scanMatter(row pgx.Row) (*domain.Matter, error) {
	var (
		m                domain.Matter
		status           string
		completionStatus string
		estimatedTotal   pgtype.Numeric
		actualTotal      pgtype.Numeric
		billingReadyAt   pgtype.Timestamptz
		approvedAt       pgtype.Timestamptz
		createdAt        pgtype.Timestamptz
		updatedAt        pgtype.Timestamptz
		deletedAt        pgtype.Timestamptz
	)

	err := row.Scan(
		&m.ID,
		&m.AdvocateID,
		&m.Title,
		&m.ClientName,
		&m.ClientEmail,
		&status,
		&completionStatus,
		&m.EngagementAgreementID,
		&estimatedTotal,
		&actualTotal,
		&billingReadyAt,
		&m.BillingReviewNotes,
		&m.PartnerApprovedBy,
		&approvedAt,
		&m.PartnerApprovalNotes,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMatterNotFound
		}

		return nil, err
	}

	m.Status = domain.MatterStatus(status)
	m.CompletionStatus = domain.CompletionStatus(completionStatus)
	m.EstimatedTotal = numericToDecimal(estimatedTotal)
	m.ActualTotal = numericToDecimal(actualTotal)
	m.BillingReadyAt = pgTimestamptzToTimePtr(billingReadyAt)
	m.PartnerApprovedAt = pgTimestamptzToTimePtr(approvedAt)
	m.CreatedAt = createdAt.Time
	m.UpdatedAt = updatedAt.Time
	m.DeletedAt = pgTimestamptzToTimePtr(deletedAt)

	return &m, nil
}
