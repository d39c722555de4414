package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
)

// ReconciliationUseCase produces reconciliation reports and records
// reconciliation sign-off against bank statements.
type ReconciliationUseCase struct {
	txManager   TransactionManager
	accountRepo TrustAccountRepository
	txnRepo     TrustTransactionRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	txManager TransactionManager,
	accountRepo TrustAccountRepository,
	txnRepo TrustTransactionRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// ReconciliationReport is the period statement for one trust account.
// ComputedClosing is recomputed from the opening balance and the period's
// entries, independent of the stored running balances.
type ReconciliationReport struct {
	TrustAccountID  string                     `json:"trust_account_id"`
	PeriodStart     time.Time                  `json:"period_start"`
	PeriodEnd       time.Time                  `json:"period_end"`
	OpeningBalance  decimal.Decimal            `json:"opening_balance"`
	ClosingBalance  decimal.Decimal            `json:"closing_balance"`
	ComputedClosing decimal.Decimal            `json:"computed_closing"`
	TotalDeposits   decimal.Decimal            `json:"total_deposits"`
	TotalDrawdowns  decimal.Decimal            `json:"total_drawdowns"`
	TotalRefunds    decimal.Decimal            `json:"total_refunds"`
	TotalTransfers  decimal.Decimal            `json:"total_transfers"`
	Transactions    []*domain.TrustTransaction `json:"transactions"`
	GeneratedAt     time.Time                  `json:"generated_at"`
}

// GenerateReport builds the reconciliation report for a period. The closing
// balance is recomputed by summing signed amounts from the opening balance;
// disagreement with the ledger's stored balance as of the period end fails
// with ErrLedgerCorrupt rather than producing a report that hides the
// corruption. Entries are not chained against each other in date order:
// callers may backdate transaction dates, while balances chain in creation
// order (VerifyChain covers that invariant).
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context, accountID string, start, end time.Time) (*ReconciliationReport, error) {
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	opening, found, err := uc.txnRepo.LastBalanceBefore(ctx, accountID, start)
	if err != nil {
		return nil, err
	}

	if !found {
		opening = decimal.Zero
	}

	txns, err := uc.collectPeriod(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TrustAccountID: accountID,
		PeriodStart:    start,
		PeriodEnd:      end,
		OpeningBalance: opening,
		TotalDeposits:  decimal.Zero,
		TotalDrawdowns: decimal.Zero,
		TotalRefunds:   decimal.Zero,
		TotalTransfers: decimal.Zero,
		Transactions:   txns,
		GeneratedAt:    time.Now().UTC(),
	}

	running := opening
	for _, txn := range txns {
		if err := txn.CheckBalances(); err != nil {
			return nil, err
		}

		running = running.Add(txn.SignedAmount())

		switch txn.Type {
		case domain.TransactionTypeDeposit:
			report.TotalDeposits = report.TotalDeposits.Add(txn.Amount)
		case domain.TransactionTypeDrawdown:
			report.TotalDrawdowns = report.TotalDrawdowns.Add(txn.Amount)
		case domain.TransactionTypeRefund:
			report.TotalRefunds = report.TotalRefunds.Add(txn.Amount)
		case domain.TransactionTypeTransfer:
			report.TotalTransfers = report.TotalTransfers.Add(txn.Amount)
		}
	}

	report.ComputedClosing = running

	stored, found, err := uc.txnRepo.LastBalanceAsOf(ctx, accountID, end)
	if err != nil {
		return nil, err
	}

	if !found {
		stored = decimal.Zero
	}

	if !report.ComputedClosing.Equal(stored) {
		return nil, domain.ErrLedgerCorrupt
	}

	report.ClosingBalance = stored

	return report, nil
}

// collectPeriod pages through the full period oldest first.
func (uc *ReconciliationUseCase) collectPeriod(ctx context.Context, accountID string, start, end time.Time) ([]*domain.TrustTransaction, error) {
	const page = 500

	var all []*domain.TrustTransaction

	for offset := 0; ; offset += page {
		txns, err := uc.txnRepo.ListByAccount(ctx, accountID, TransactionFilter{
			StartDate: &start,
			EndDate:   &end,
			Limit:     page,
			Offset:    offset,
		})
		if err != nil {
			return nil, err
		}

		all = append(all, txns...)

		if len(txns) < page {
			break
		}
	}

	// Newest first from the repository; reverse into chronological order.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}

	return all, nil
}

// MarkReconciled records sign-off that the ledger matches the bank statement
// as of a date. The stated closing balance must equal the ledger's balance at
// that date; repeating the call with the same date and balance is a no-op.
func (uc *ReconciliationUseCase) MarkReconciled(ctx context.Context, accountID, actorID, requestID string, asOf time.Time, statedClosing decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return err
	}

	ledgerBalance, found, err := uc.txnRepo.LastBalanceAsOf(ctx, accountID, asOf)
	if err != nil {
		return err
	}

	if !found {
		ledgerBalance = decimal.Zero
	}

	if !ledgerBalance.Equal(statedClosing) {
		return domain.ErrReconciliationMismatch
	}

	if account.LastReconciliationDate != nil && account.LastReconciliationDate.Equal(asOf) &&
		account.LastReconciliationBalance != nil && account.LastReconciliationBalance.Equal(statedClosing) {
		return nil
	}

	now := time.Now().UTC()

	if err := uc.txnRepo.MarkReconciled(ctx, tx, accountID, asOf); err != nil {
		return err
	}

	if err := uc.accountRepo.MarkReconciled(ctx, tx, accountID, asOf, statedClosing); err != nil {
		return err
	}

	if err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   accountID,
		AggregateType: domain.AggregateTypeTrustAccount,
		EventType:     domain.EventTypeAccountReconciled,
		Payload: map[string]any{
			"trust_account_id": accountID,
			"as_of":            asOf.Format(time.RFC3339),
			"closing_balance":  statedClosing.String(),
		},
		CreatedAt: now,
	}); err != nil {
		return err
	}

	if err := uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       string(domain.AuditActionMarkReconciled),
		ResourceType: "trust_account",
		ResourceID:   accountID,
		RequestID:    requestID,
		BeforeState:  domain.MarshalState(account),
		AfterState: domain.JSON{
			"last_reconciliation_date":    asOf.Format(time.RFC3339),
			"last_reconciliation_balance": statedClosing.String(),
		},
		Status:    string(domain.AuditStatusSuccess),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
