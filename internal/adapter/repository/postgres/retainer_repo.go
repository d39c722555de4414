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

// RetainerRepository implements usecase.RetainerRepository.
type RetainerRepository struct {
	pool *pgxpool.Pool
}

// NewRetainerRepository creates a new RetainerRepository.
func NewRetainerRepository(pool *pgxpool.Pool) *RetainerRepository {
	return &RetainerRepository{pool: pool}
}

const retainerColumns = `
	id, matter_id, trust_account_id, engagement_agreement_id, advocate_id,
	type, retainer_amount, balance, status, low_balance_alert_sent,
	start_date, end_date, auto_renew, notes, created_at, updated_at,
	deleted_at`

// Create creates a new retainer agreement.
func (r *RetainerRepository) Create(ctx context.Context, retainer *domain.RetainerAgreement) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO retainer_agreements (
			id, matter_id, trust_account_id, engagement_agreement_id,
			advocate_id, type, retainer_amount, balance, status,
			low_balance_alert_sent, start_date, end_date, auto_renew, notes,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16
		)`,
		retainer.ID,
		retainer.MatterID,
		retainer.TrustAccountID,
		retainer.EngagementAgreementID,
		retainer.AdvocateID,
		string(retainer.Type),
		decimalToNumeric(retainer.RetainerAmount),
		decimalToNumeric(retainer.Balance),
		string(retainer.Status),
		retainer.LowBalanceAlertSent,
		timeToPgTimestamptz(retainer.StartDate),
		timePtrToPgTimestamptz(retainer.EndDate),
		retainer.AutoRenew,
		retainer.Notes,
		timeToPgTimestamptz(retainer.CreatedAt),
		timeToPgTimestamptz(retainer.UpdatedAt),
	)

	return err
}

// GetByID retrieves a retainer agreement by ID.
func (r *RetainerRepository) GetByID(ctx context.Context, id string) (*domain.RetainerAgreement, error) {
	return scanRetainer(r.pool.QueryRow(ctx, `
		SELECT `+retainerColumns+`
		FROM retainer_agreements
		WHERE id = $1 AND deleted_at IS NULL`, id))
}

// GetByIDForUpdate retrieves a retainer agreement with a FOR UPDATE lock.
func (r *RetainerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.RetainerAgreement, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return scanRetainer(pgxTx.QueryRow(ctx, `
		SELECT `+retainerColumns+`
		FROM retainer_agreements
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`, id))
}

// GetActiveByMatter retrieves the current non-cancelled retainer for a
// matter.
func (r *RetainerRepository) GetActiveByMatter(ctx context.Context, matterID string) (*domain.RetainerAgreement, error) {
	return scanRetainer(r.pool.QueryRow(ctx, `
		SELECT `+retainerColumns+`
		FROM retainer_agreements
		WHERE matter_id = $1 AND status <> 'cancelled' AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`, matterID))
}

// UpdateBalance updates the retainer balance, lifecycle status and alert
// latch inside the ledger transaction.
func (r *RetainerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, status domain.RetainerStatus, alertSent bool, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE retainer_agreements
		SET balance = $2,
		    status = $3,
		    low_balance_alert_sent = $4,
		    updated_at = $5
		WHERE id = $1`,
		id, decimalToNumeric(balance), string(status), alertSent,
		timeToPgTimestamptz(updatedAt))

	return err
}

// UpdateStatus updates the lifecycle status and notes.
func (r *RetainerRepository) UpdateStatus(ctx context.Context, id string, status domain.RetainerStatus, notes string, updatedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE retainer_agreements
		SET status = $2, notes = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL`,
		id, string(status), notes, timeToPgTimestamptz(updatedAt))

	return err
}

// UpdateEndDate moves the agreement end date on renewal.
func (r *RetainerRepository) UpdateEndDate(ctx context.Context, id string, endDate *time.Time, updatedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE retainer_agreements
		SET end_date = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL`,
		id, timePtrToPgTimestamptz(endDate), timeToPgTimestamptz(updatedAt))

	return err
}

// ListLowBalance lists active retainers at or below the account's low
// balance threshold percentage.
func (r *RetainerRepository) ListLowBalance(ctx context.Context, advocateID string) ([]*domain.RetainerAgreement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+qualifiedRetainerColumns("r")+`
		FROM retainer_agreements r
		JOIN trust_accounts a ON a.id = r.trust_account_id
		WHERE r.advocate_id = $1
		  AND r.status = 'active'
		  AND r.deleted_at IS NULL
		  AND r.retainer_amount > 0
		  AND r.balance * 100 <= r.retainer_amount * a.low_balance_threshold
		ORDER BY r.balance / r.retainer_amount ASC`, advocateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRetainers(rows)
}

// ListExpiring lists active retainers whose end date falls before the cutoff.
func (r *RetainerRepository) ListExpiring(ctx context.Context, advocateID string, before time.Time) ([]*domain.RetainerAgreement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+retainerColumns+`
		FROM retainer_agreements
		WHERE advocate_id = $1
		  AND status = 'active'
		  AND deleted_at IS NULL
		  AND end_date IS NOT NULL
		  AND end_date <= $2
		ORDER BY end_date ASC`, advocateID, timeToPgTimestamptz(before))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRetainers(rows)
}

func qualifiedRetainerColumns(alias string) string {
	return alias + `.id, ` + alias + `.matter_id, ` + alias + `.trust_account_id, ` +
		alias + `.engagement_agreement_id, ` + alias + `.advocate_id, ` +
		alias + `.type, ` + alias + `.retainer_amount, ` + alias + `.balance, ` +
		alias + `.status, ` + alias + `.low_balance_alert_sent, ` +
		alias + `.start_date, ` + alias + `.end_date, ` + alias + `.auto_renew, ` +
		alias + `.notes, ` + alias + `.created_at, ` + alias + `.updated_at, ` +
		alias + `.deleted_at`
}

func collectRetainers(rows pgx.Rows) ([]*domain.RetainerAgreement, error) {
	retainers := make([]*domain.RetainerAgreement, 0)
	for rows.Next() {
		retainer, err := scanRetainer(rows)
		if err != nil {
			return nil, err
		}
		retainers = append(retainers, retainer)
	}

	return retainers, rows.Err()
}

func scanRetainer(row pgx.Row) (*domain.RetainerAgreement, error) {
	var (
		ret            domain.RetainerAgreement
		retainerType   string
		status         string
		retainerAmount pgtype.Numeric
		balance        pgtype.Numeric
		startDate      pgtype.Timestamptz
		endDate        pgtype.Timestamptz
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
		deletedAt      pgtype.Timestamptz
	)

	err := row.Scan(
		&ret.ID,
		&ret.MatterID,
		&ret.TrustAccountID,
		&ret.EngagementAgreementID,
		&ret.AdvocateID,
		&retainerType,
		&retainerAmount,
		&balance,
		&status,
		&ret.LowBalanceAlertSent,
		&startDate,
		&endDate,
		&ret.AutoRenew,
		&ret.Notes,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRetainerNotFound
		}

		return nil, err
	}

	ret.Type = domain.RetainerType(retainerType)
	ret.Status = domain.RetainerStatus(status)
	ret.RetainerAmount = numericToDecimal(retainerAmount)
	ret.Balance = numericToDecimal(balance)
	ret.StartDate = startDate.Time
	ret.EndDate = pgTimestamptzToTimePtr(endDate)
	ret.CreatedAt = createdAt.Time
	ret.UpdatedAt = updatedAt.Time
	ret.DeletedAt = pgTimestamptzToTimePtr(deletedAt)

	return &ret, nil
}
