package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// TrustTransactionRepository implements usecase.TrustTransactionRepository.
// Ledger rows are append-only: there is no update statement here other than
// the reconciliation flag.
type TrustTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTrustTransactionRepository creates a new TrustTransactionRepository.
func NewTrustTransactionRepository(pool *pgxpool.Pool) *TrustTransactionRepository {
	return &TrustTransactionRepository{pool: pool}
}

const trustTransactionColumns = `
	id, trust_account_id, retainer_id, matter_id, advocate_id, type, amount,
	balance_before, balance_after, reference, description, receipt_number,
	payment_method, client_id, invoice_id, time_entry_id, expense_id,
	transaction_date, reconciled, reconciliation_date, created_at, deleted_at`

// Create appends a ledger entry inside the caller's transaction.
func (r *TrustTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.TrustTransaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO trust_transactions (
			id, trust_account_id, retainer_id, matter_id, advocate_id, type,
			amount, balance_before, balance_after, reference, description,
			receipt_number, payment_method, client_id, invoice_id,
			time_entry_id, expense_id, transaction_date, reconciled, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)`,
		txn.ID,
		txn.TrustAccountID,
		txn.RetainerID,
		txn.MatterID,
		txn.AdvocateID,
		string(txn.Type),
		decimalToNumeric(txn.Amount),
		decimalToNumeric(txn.BalanceBefore),
		decimalToNumeric(txn.BalanceAfter),
		txn.Reference,
		txn.Description,
		txn.ReceiptNumber,
		string(txn.PaymentMethod),
		txn.ClientID,
		txn.InvoiceID,
		txn.TimeEntryID,
		txn.ExpenseID,
		timeToPgTimestamptz(txn.TransactionDate),
		txn.Reconciled,
		timeToPgTimestamptz(txn.CreatedAt),
	)

	return err
}

// GetByID retrieves a ledger entry by ID.
func (r *TrustTransactionRepository) GetByID(ctx context.Context, id string) (*domain.TrustTransaction, error) {
	txn, err := scanTrustTransaction(r.pool.QueryRow(ctx, `
		SELECT `+trustTransactionColumns+`
		FROM trust_transactions
		WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return txn, nil
}

// ListByAccount lists ledger entries for an account, newest first.
func (r *TrustTransactionRepository) ListByAccount(ctx context.Context, accountID string, filter usecase.TransactionFilter) ([]*domain.TrustTransaction, error) {
	query := `
		SELECT ` + trustTransactionColumns + `
		FROM trust_transactions
		WHERE trust_account_id = $1 AND deleted_at IS NULL`
	args := []any{accountID}

	if filter.StartDate != nil {
		args = append(args, timeToPgTimestamptz(*filter.StartDate))
		query += fmt.Sprintf(" AND transaction_date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, timeToPgTimestamptz(*filter.EndDate))
		query += fmt.Sprintf(" AND transaction_date <= $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Reconciled != nil {
		args = append(args, *filter.Reconciled)
		query += fmt.Sprintf(" AND reconciled = $%d", len(args))
	}

	query += " ORDER BY transaction_date DESC, created_at DESC"

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrustTransactions(rows)
}

// ListByRetainer lists ledger entries recorded against a retainer, newest
// first.
func (r *TrustTransactionRepository) ListByRetainer(ctx context.Context, retainerID string, limit, offset int) ([]*domain.TrustTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+trustTransactionColumns+`
		FROM trust_transactions
		WHERE retainer_id = $1 AND deleted_at IS NULL
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $2 OFFSET $3`, retainerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrustTransactions(rows)
}

// SumByRetainer totals deposits and drawdowns recorded against a retainer.
func (r *TrustTransactionRepository) SumByRetainer(ctx context.Context, retainerID string) (decimal.Decimal, decimal.Decimal, error) {
	var deposits, drawdowns pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'deposit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'drawdown'), 0)
		FROM trust_transactions
		WHERE retainer_id = $1 AND deleted_at IS NULL`, retainerID).
		Scan(&deposits, &drawdowns)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(deposits), numericToDecimal(drawdowns), nil
}

// LastBalanceBefore returns the running balance just before the given date.
func (r *TrustTransactionRepository) LastBalanceBefore(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, bool, error) {
	return r.lastBalance(ctx, accountID, "transaction_date < $2", date)
}

// LastBalanceAsOf returns the running balance at or before the given date.
func (r *TrustTransactionRepository) LastBalanceAsOf(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, bool, error) {
	return r.lastBalance(ctx, accountID, "transaction_date <= $2", date)
}

// Balances chain in creation order, not transaction_date order: entries may
// carry a backdated transaction_date. Within the date cutoff, the most
// recently created entry holds the balance.
func (r *TrustTransactionRepository) lastBalance(ctx context.Context, accountID, dateCond string, date time.Time) (decimal.Decimal, bool, error) {
	var balance pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT balance_after
		FROM trust_transactions
		WHERE trust_account_id = $1 AND `+dateCond+` AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`, accountID, timeToPgTimestamptz(date)).
		Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}

		return decimal.Zero, false, err
	}

	return numericToDecimal(balance), true, nil
}

// MarkReconciled flags every entry up to the cutoff as reconciled.
func (r *TrustTransactionRepository) MarkReconciled(ctx context.Context, tx usecase.Transaction, accountID string, asOf time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE trust_transactions
		SET reconciled = TRUE, reconciliation_date = $2
		WHERE trust_account_id = $1
		  AND transaction_date <= $2
		  AND deleted_at IS NULL
		  AND NOT reconciled`,
		accountID, timeToPgTimestamptz(asOf))

	return err
}

func collectTrustTransactions(rows pgx.Rows) ([]*domain.TrustTransaction, error) {
	txns := make([]*domain.TrustTransaction, 0)
	for rows.Next() {
		txn, err := scanTrustTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

func scanTrustTransaction(row pgx.Row) (*domain.TrustTransaction, error) {
	var (
		txn             domain.TrustTransaction
		txnType         string
		paymentMethod   string
		amount          pgtype.Numeric
		balanceBefore   pgtype.Numeric
		balanceAfter    pgtype.Numeric
		transactionDate pgtype.Timestamptz
		reconDate       pgtype.Timestamptz
		createdAt       pgtype.Timestamptz
		deletedAt       pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID,
		&txn.TrustAccountID,
		&txn.RetainerID,
		&txn.MatterID,
		&txn.AdvocateID,
		&txnType,
		&amount,
		&balanceBefore,
		&balanceAfter,
		&txn.Reference,
		&txn.Description,
		&txn.ReceiptNumber,
		&paymentMethod,
		&txn.ClientID,
		&txn.InvoiceID,
		&txn.TimeEntryID,
		&txn.ExpenseID,
		&transactionDate,
		&txn.Reconciled,
		&reconDate,
		&createdAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.Type = domain.TransactionType(txnType)
	txn.PaymentMethod = domain.PaymentMethod(paymentMethod)
	txn.Amount = numericToDecimal(amount)
	txn.BalanceBefore = numericToDecimal(balanceBefore)
	txn.BalanceAfter = numericToDecimal(balanceAfter)
	txn.TransactionDate = transactionDate.Time
	txn.ReconciliationDate = pgTimestamptzToTimePtr(reconDate)
	txn.CreatedAt = createdAt.Time
	txn.DeletedAt = pgTimestamptzToTimePtr(deletedAt)

	return &txn, nil
}
