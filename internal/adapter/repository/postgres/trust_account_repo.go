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

// TrustAccountRepository implements usecase.TrustAccountRepository.
type TrustAccountRepository struct {
	pool *pgxpool.Pool
}

// NewTrustAccountRepository creates a new TrustAccountRepository.
func NewTrustAccountRepository(pool *pgxpool.Pool) *TrustAccountRepository {
	return &TrustAccountRepository{pool: pool}
}

const trustAccountColumns = `
	id, advocate_id, bank_name, account_holder_name, account_number,
	current_balance, low_balance_threshold, lpc_compliant,
	negative_balance_alert_sent, last_reconciliation_date,
	last_reconciliation_balance, created_at, updated_at`

// Create creates a new trust account.
func (r *TrustAccountRepository) Create(ctx context.Context, account *domain.TrustAccount) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trust_accounts (
			id, advocate_id, bank_name, account_holder_name, account_number,
			current_balance, low_balance_threshold, lpc_compliant,
			negative_balance_alert_sent, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		account.ID,
		account.AdvocateID,
		account.BankName,
		account.AccountHolderName,
		account.AccountNumber,
		decimalToNumeric(account.CurrentBalance),
		decimalToNumeric(account.LowBalanceThreshold),
		account.LPCCompliant,
		account.NegativeBalanceAlertSent,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves a trust account by ID.
func (r *TrustAccountRepository) GetByID(ctx context.Context, id string) (*domain.TrustAccount, error) {
	return scanTrustAccount(r.pool.QueryRow(ctx, `
		SELECT `+trustAccountColumns+`
		FROM trust_accounts
		WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves a trust account by ID with a FOR UPDATE lock.
func (r *TrustAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.TrustAccount, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return scanTrustAccount(pgxTx.QueryRow(ctx, `
		SELECT `+trustAccountColumns+`
		FROM trust_accounts
		WHERE id = $1
		FOR UPDATE`, id))
}

// GetByAdvocate retrieves the trust account belonging to an advocate.
func (r *TrustAccountRepository) GetByAdvocate(ctx context.Context, advocateID string) (*domain.TrustAccount, error) {
	return scanTrustAccount(r.pool.QueryRow(ctx, `
		SELECT `+trustAccountColumns+`
		FROM trust_accounts
		WHERE advocate_id = $1`, advocateID))
}

// UpdateBalance updates the denormalized running balance.
func (r *TrustAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE trust_accounts
		SET current_balance = $2, updated_at = $3
		WHERE id = $1`,
		id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))

	return err
}

// SetNegativeBalanceAlert latches or re-arms the negative balance alert.
func (r *TrustAccountRepository) SetNegativeBalanceAlert(ctx context.Context, tx usecase.Transaction, id string, sent bool) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE trust_accounts
		SET negative_balance_alert_sent = $2
		WHERE id = $1`, id, sent)

	return err
}

// MarkReconciled records the last reconciliation point on the account.
func (r *TrustAccountRepository) MarkReconciled(ctx context.Context, tx usecase.Transaction, id string, asOf time.Time, balance decimal.Decimal) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE trust_accounts
		SET last_reconciliation_date = $2,
		    last_reconciliation_balance = $3,
		    updated_at = $2
		WHERE id = $1`,
		id, timeToPgTimestamptz(asOf), decimalToNumeric(balance))

	return err
}

func scanTrustAccount(row pgx.Row) (*domain.TrustAccount, error) {
	var (
		a                domain.TrustAccount
		currentBalance   pgtype.Numeric
		threshold        pgtype.Numeric
		lastReconDate    pgtype.Timestamptz
		lastReconBalance pgtype.Numeric
		createdAt        pgtype.Timestamptz
		updatedAt        pgtype.Timestamptz
	)

	err := row.Scan(
		&a.ID,
		&a.AdvocateID,
		&a.BankName,
		&a.AccountHolderName,
		&a.AccountNumber,
		&currentBalance,
		&threshold,
		&a.LPCCompliant,
		&a.NegativeBalanceAlertSent,
		&lastReconDate,
		&lastReconBalance,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTrustAccountNotFound
		}

		return nil, err
	}

	a.CurrentBalance = numericToDecimal(currentBalance)
	a.LowBalanceThreshold = numericToDecimal(threshold)
	a.LastReconciliationDate = pgTimestamptzToTimePtr(lastReconDate)
	a.LastReconciliationBalance = numericToDecimalPtr(lastReconBalance)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}
