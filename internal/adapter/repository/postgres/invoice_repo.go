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

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

const invoiceColumns = `
	id, matter_id, advocate_id, invoice_number, total_amount, amount_paid,
	payment_status, due_date, created_at, updated_at, deleted_at`

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1 AND deleted_at IS NULL`, id))
}

// GetByIDForUpdate retrieves an invoice with a FOR UPDATE lock.
func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return scanInvoice(pgxTx.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`, id))
}

// UpdateTotals rewrites the invoice total and payment status after a credit
// note is applied.
func (r *InvoiceRepository) UpdateTotals(ctx context.Context, tx usecase.Transaction, id string, total decimal.Decimal, status domain.PaymentStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE invoices
		SET total_amount = $2, payment_status = $3, updated_at = $4
		WHERE id = $1`,
		id, decimalToNumeric(total), string(status), timeToPgTimestamptz(updatedAt))

	return err
}

// UpdatePaymentStatus updates only the payment status.
func (r *InvoiceRepository) UpdatePaymentStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.PaymentStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE invoices
		SET payment_status = $2, updated_at = $3
		WHERE id = $1`,
		id, string(status), timeToPgTimestamptz(updatedAt))

	return err
}

// HasOpenDisputesByMatter reports whether any invoice of the matter carries
// a dispute that is not yet resolved or closed.
func (r *InvoiceRepository) HasOpenDisputesByMatter(ctx context.Context, matterID string) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM payment_disputes d
			JOIN invoices i ON i.id = d.invoice_id
			WHERE i.matter_id = $1
			  AND d.status NOT IN ('resolved', 'closed')
			  AND d.deleted_at IS NULL
			  AND i.deleted_at IS NULL
		)`, matterID).Scan(&exists)

	return exists, err
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		inv           domain.Invoice
		totalAmount   pgtype.Numeric
		amountPaid    pgtype.Numeric
		paymentStatus string
		dueDate       pgtype.Timestamptz
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
		deletedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&inv.ID,
		&inv.MatterID,
		&inv.AdvocateID,
		&inv.InvoiceNumber,
		&totalAmount,
		&amountPaid,
		&paymentStatus,
		&dueDate,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}

		return nil, err
	}

	inv.TotalAmount = numericToDecimal(totalAmount)
	inv.AmountPaid = numericToDecimal(amountPaid)
	inv.PaymentStatus = domain.PaymentStatus(paymentStatus)
	inv.DueDate = pgTimestamptzToTimePtr(dueDate)
	inv.CreatedAt = createdAt.Time
	inv.UpdatedAt = updatedAt.Time
	inv.DeletedAt = pgTimestamptzToTimePtr(deletedAt)

	return &inv, nil
}
