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

// DisputeRepository implements usecase.DisputeRepository.
type DisputeRepository struct {
	pool *pgxpool.Pool
}

// NewDisputeRepository creates a new DisputeRepository.
func NewDisputeRepository(pool *pgxpool.Pool) *DisputeRepository {
	return &DisputeRepository{pool: pool}
}

const disputeColumns = `
	id, invoice_id, advocate_id, type, reason, disputed_amount, status,
	resolution_type, resolution_notes, resolved_amount, resolved_at,
	created_at, updated_at, deleted_at`

// Create creates a new payment dispute inside the caller's transaction.
func (r *DisputeRepository) Create(ctx context.Context, tx usecase.Transaction, dispute *domain.PaymentDispute) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO payment_disputes (
			id, invoice_id, advocate_id, type, reason, disputed_amount,
			status, resolution_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		dispute.ID,
		dispute.InvoiceID,
		dispute.AdvocateID,
		string(dispute.Type),
		dispute.Reason,
		decimalPtrToNumeric(dispute.DisputedAmount),
		string(dispute.Status),
		dispute.ResolutionNotes,
		timeToPgTimestamptz(dispute.CreatedAt),
		timeToPgTimestamptz(dispute.UpdatedAt),
	)

	return err
}

// GetByID retrieves a payment dispute by ID.
func (r *DisputeRepository) GetByID(ctx context.Context, id string) (*domain.PaymentDispute, error) {
	return scanDispute(r.pool.QueryRow(ctx, `
		SELECT `+disputeColumns+`
		FROM payment_disputes
		WHERE id = $1 AND deleted_at IS NULL`, id))
}

// GetByIDForUpdate retrieves a payment dispute with a FOR UPDATE lock.
func (r *DisputeRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PaymentDispute, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return scanDispute(pgxTx.QueryRow(ctx, `
		SELECT `+disputeColumns+`
		FROM payment_disputes
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`, id))
}

// UpdateStatus persists the dispute's lifecycle fields.
func (r *DisputeRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, dispute *domain.PaymentDispute) error {
	pgxTx := tx.(*Tx).PgxTx()

	var resolutionType *string
	if dispute.ResolutionType != nil {
		s := string(*dispute.ResolutionType)
		resolutionType = &s
	}

	_, err := pgxTx.Exec(ctx, `
		UPDATE payment_disputes
		SET status = $2,
		    resolution_type = $3,
		    resolution_notes = $4,
		    resolved_amount = $5,
		    resolved_at = $6,
		    updated_at = $7
		WHERE id = $1`,
		dispute.ID,
		string(dispute.Status),
		resolutionType,
		dispute.ResolutionNotes,
		decimalPtrToNumeric(dispute.ResolvedAmount),
		timePtrToPgTimestamptz(dispute.ResolvedAt),
		timeToPgTimestamptz(dispute.UpdatedAt),
	)

	return err
}

// ListByInvoice lists disputes raised against an invoice.
func (r *DisputeRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.PaymentDispute, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+disputeColumns+`
		FROM payment_disputes
		WHERE invoice_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	disputes := make([]*domain.PaymentDispute, 0)
	for rows.Next() {
		dispute, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, dispute)
	}

	return disputes, rows.Err()
}

func scanDispute(row pgx.Row) (*domain.PaymentDispute, error) {
	var (
		d              domain.PaymentDispute
		disputeType    string
		status         string
		disputedAmount pgtype.Numeric
		resolutionType *string
		resolvedAmount pgtype.Numeric
		resolvedAt     pgtype.Timestamptz
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
		deletedAt      pgtype.Timestamptz
	)

	err := row.Scan(
		&d.ID,
		&d.InvoiceID,
		&d.AdvocateID,
		&disputeType,
		&d.Reason,
		&disputedAmount,
		&status,
		&resolutionType,
		&d.ResolutionNotes,
		&resolvedAmount,
		&resolvedAt,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDisputeNotFound
		}

		return nil, err
	}

	d.Type = domain.DisputeType(disputeType)
	d.Status = domain.DisputeStatus(status)
	d.DisputedAmount = numericToDecimalPtr(disputedAmount)
	if resolutionType != nil {
		rt := domain.ResolutionType(*resolutionType)
		d.ResolutionType = &rt
	}
	d.ResolvedAmount = numericToDecimalPtr(resolvedAmount)
	d.ResolvedAt = pgTimestamptzToTimePtr(resolvedAt)
	d.CreatedAt = createdAt.Time
	d.UpdatedAt = updatedAt.Time
	d.DeletedAt = pgTimestamptzToTimePtr(deletedAt)

	return &d, nil
}
