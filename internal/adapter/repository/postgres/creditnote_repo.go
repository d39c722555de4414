package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// CreditNoteRepository implements usecase.CreditNoteRepository.
type CreditNoteRepository struct {
	pool *pgxpool.Pool
}

// NewCreditNoteRepository creates a new CreditNoteRepository.
func NewCreditNoteRepository(pool *pgxpool.Pool) *CreditNoteRepository {
	return &CreditNoteRepository{pool: pool}
}

const creditNoteColumns = `
	id, credit_note_number, invoice_id, dispute_id, advocate_id, amount,
	reason, reason_category, status, issued_at, applied_at, created_at,
	updated_at, deleted_at`

// Create creates a new credit note.
func (r *CreditNoteRepository) Create(ctx context.Context, note *domain.CreditNote) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO credit_notes (
			id, credit_note_number, invoice_id, dispute_id, advocate_id,
			amount, reason, reason_category, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		note.ID,
		note.CreditNoteNumber,
		note.InvoiceID,
		note.DisputeID,
		note.AdvocateID,
		decimalToNumeric(note.Amount),
		note.Reason,
		note.ReasonCategory,
		string(note.Status),
		timeToPgTimestamptz(note.CreatedAt),
		timeToPgTimestamptz(note.UpdatedAt),
	)

	return err
}

// GetByID retrieves a credit note by ID.
func (r *CreditNoteRepository) GetByID(ctx context.Context, id string) (*domain.CreditNote, error) {
	return scanCreditNote(r.pool.QueryRow(ctx, `
		SELECT `+creditNoteColumns+`
		FROM credit_notes
		WHERE id = $1 AND deleted_at IS NULL`, id))
}

// GetByIDForUpdate retrieves a credit note with a FOR UPDATE lock.
func (r *CreditNoteRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CreditNote, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return scanCreditNote(pgxTx.QueryRow(ctx, `
		SELECT `+creditNoteColumns+`
		FROM credit_notes
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`, id))
}

// UpdateStatus moves the note along its lifecycle, stamping the issue and
// apply times when they happen.
func (r *CreditNoteRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.CreditNoteStatus, issuedAt, appliedAt *time.Time, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE credit_notes
		SET status = $2,
		    issued_at = COALESCE($3, issued_at),
		    applied_at = COALESCE($4, applied_at),
		    updated_at = $5
		WHERE id = $1`,
		id, string(status), timePtrToPgTimestamptz(issuedAt),
		timePtrToPgTimestamptz(appliedAt), timeToPgTimestamptz(updatedAt))

	return err
}

// ListByInvoice lists credit notes raised against an invoice.
func (r *CreditNoteRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.CreditNote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+creditNoteColumns+`
		FROM credit_notes
		WHERE invoice_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]*domain.CreditNote, 0)
	for rows.Next() {
		note, err := scanCreditNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	return notes, rows.Err()
}

// NextSequence allocates the next number in a monthly credit note series,
// e.g. 3 when CN-202609-0002 is the highest existing number.
func (r *CreditNoteRepository) NextSequence(ctx context.Context, prefix string) (int, error) {
	var next int

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(CAST(RIGHT(credit_note_number, 4) AS INTEGER)), 0) + 1
		FROM credit_notes
		WHERE credit_note_number LIKE $1 || '-%'`, prefix).
		Scan(&next)
	if err != nil {
		return 0, err
	}

	return next, nil
}

func scanCreditNote(row pgx.Row) (*domain.CreditNote, error) {
	var (
		note      domain.CreditNote
		amount    pgtype.Numeric
		status    string
		issuedAt  pgtype.Timestamptz
		appliedAt pgtype.Timestamptz
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
		deletedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&note.ID,
		&note.CreditNoteNumber,
		&note.InvoiceID,
		&note.DisputeID,
		&note.AdvocateID,
		&amount,
		&note.Reason,
		&note.ReasonCategory,
		&status,
		&issuedAt,
		&appliedAt,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCreditNoteNotFound
		}

		return nil, err
	}

	note.Amount = numericToDecimal(amount)
	note.Status = domain.CreditNoteStatus(status)
	note.IssuedAt = pgTimestamptzToTimePtr(issuedAt)
	note.AppliedAt = pgTimestamptzToTimePtr(appliedAt)
	note.CreatedAt = createdAt.Time
	note.UpdatedAt = updatedAt.Time
	note.DeletedAt = pgTimestamptzToTimePtr(deletedAt)

	return &note, nil
}
