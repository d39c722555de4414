package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
)

// LedgerUseCase owns the append-only trust ledger. Every balance movement in
// the system goes through Append, which performs the sufficiency check, the
// balance chaining and the denormalized balance updates inside one database
// transaction.
type LedgerUseCase struct {
	txManager    TransactionManager
	accountRepo  TrustAccountRepository
	txnRepo      TrustTransactionRepository
	retainerRepo RetainerRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	idGen        IDGenerator
	retrier      Retrier
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo TrustAccountRepository,
	txnRepo TrustTransactionRepository,
	retainerRepo RetainerRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		txnRepo:      txnRepo,
		retainerRepo: retainerRepo,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		idGen:        idGen,
		retrier:      retrier,
	}
}

// AppendInput represents input for recording a ledger entry.
type AppendInput struct {
	TrustAccountID  string
	RetainerID      *string
	MatterID        string
	AdvocateID      string
	ActorID         string
	RequestID       string
	Type            domain.TransactionType
	Amount          decimal.Decimal
	Reference       string
	Description     string
	PaymentMethod   domain.PaymentMethod
	ClientID        *string
	InvoiceID       *string
	TimeEntryID     *string
	ExpenseID       *string
	TransactionDate *time.Time
}

// Append records a trust transaction. Outflows that would take the account
// balance below zero fail with ErrInsufficientBalance; the check and the
// write happen under the same row lock so no concurrent interleaving can
// overdraw the account.
func (uc *LedgerUseCase) Append(ctx context.Context, input AppendInput) (*domain.TrustTransaction, error) {
	if !input.Type.Valid() {
		return nil, domain.ErrInvalidTransactionType
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.Description == "" {
		return nil, domain.ErrDescriptionRequired
	}

	if err := domain.ValidatePaymentMethod(input.PaymentMethod); err != nil {
		return nil, err
	}

	var txn *domain.TrustTransaction

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		txn, err = uc.append(ctx, input)

		return err
	})
	if err != nil {
		uc.auditFailure(ctx, input, err)
		return nil, err
	}

	return txn, nil
}

func (uc *LedgerUseCase) append(ctx context.Context, input AppendInput) (*domain.TrustTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.TrustAccountID)
	if err != nil {
		return nil, err
	}

	var retainer *domain.RetainerAgreement
	if input.RetainerID != nil {
		retainer, err = uc.retainerRepo.GetByIDForUpdate(ctx, tx, *input.RetainerID)
		if err != nil {
			return nil, err
		}

		if retainer.Status == domain.RetainerStatusCancelled {
			return nil, domain.ErrRetainerCancelled
		}
	}

	// The sufficiency check must see the locked balance, not a stale read.
	if input.Type.IsOutflow() && account.CurrentBalance.LessThan(input.Amount) {
		return nil, domain.ErrInsufficientBalance
	}

	now := time.Now().UTC()

	txDate := now
	if input.TransactionDate != nil {
		txDate = *input.TransactionDate
	}

	txn := &domain.TrustTransaction{
		ID:              uc.idGen.Generate(),
		TrustAccountID:  account.ID,
		RetainerID:      input.RetainerID,
		MatterID:        input.MatterID,
		AdvocateID:      input.AdvocateID,
		Type:            input.Type,
		Amount:          input.Amount,
		BalanceBefore:   account.CurrentBalance,
		Reference:       input.Reference,
		Description:     input.Description,
		ReceiptNumber:   fmt.Sprintf("%s-%s", ReceiptNumberPrefix, uc.idGen.Generate()),
		PaymentMethod:   input.PaymentMethod,
		ClientID:        input.ClientID,
		InvoiceID:       input.InvoiceID,
		TimeEntryID:     input.TimeEntryID,
		ExpenseID:       input.ExpenseID,
		TransactionDate: txDate,
		CreatedAt:       now,
	}
	txn.BalanceAfter = txn.BalanceBefore.Add(txn.SignedAmount())

	if err := txn.CheckBalances(); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, txn.BalanceAfter, now); err != nil {
		return nil, err
	}

	if err := uc.handleNegativeBalanceAlert(ctx, tx, account, txn.BalanceAfter, now); err != nil {
		return nil, err
	}

	if retainer != nil {
		if err := uc.applyToRetainer(ctx, tx, account, retainer, txn, now); err != nil {
			return nil, err
		}
	}

	if err := uc.emitEvent(ctx, tx, account.ID, domain.AggregateTypeTrustAccount, domain.EventTypeTransactionRecorded, map[string]any{
		"transaction_id": txn.ID,
		"type":           string(txn.Type),
		"amount":         txn.Amount.String(),
		"balance_after":  txn.BalanceAfter.String(),
	}, now); err != nil {
		return nil, err
	}

	audit := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      input.ActorID,
		Action:       string(domain.AuditActionLedgerAppend),
		ResourceType: "trust_transaction",
		ResourceID:   txn.ID,
		RequestID:    input.RequestID,
		BeforeState:  domain.JSON{"balance": txn.BalanceBefore.String()},
		AfterState:   domain.MarshalState(txn),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}
	if err := uc.auditRepo.CreateTx(ctx, tx, audit); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return txn, nil
}

// applyToRetainer moves the retainer's denormalized balance by the same delta
// as the account and drives the active/depleted lifecycle. Low balance alerts
// latch: one event per threshold crossing, re-armed once the balance recovers.
func (uc *LedgerUseCase) applyToRetainer(
	ctx context.Context,
	tx Transaction,
	account *domain.TrustAccount,
	retainer *domain.RetainerAgreement,
	txn *domain.TrustTransaction,
	now time.Time,
) error {
	newBalance := retainer.Balance.Add(txn.SignedAmount())
	newStatus := retainer.StatusAfterBalance(newBalance)

	after := *retainer
	after.Balance = newBalance
	after.Status = newStatus

	alertSent := retainer.LowBalanceAlertSent

	if after.IsLowBalance(account.LowBalanceThreshold) {
		if !alertSent {
			alertSent = true

			if err := uc.emitEvent(ctx, tx, retainer.ID, domain.AggregateTypeRetainer, domain.EventTypeLowBalance, domain.MarshalState(domain.LowBalanceEvent{
				RetainerID:          retainer.ID,
				MatterID:            retainer.MatterID,
				Balance:             newBalance.String(),
				PercentageRemaining: after.PercentageRemaining().String(),
				ThresholdPercentage: account.LowBalanceThreshold.String(),
			}), now); err != nil {
				return err
			}
		}
	} else {
		alertSent = false
	}

	if newStatus == domain.RetainerStatusDepleted && retainer.Status != domain.RetainerStatusDepleted {
		if err := uc.emitEvent(ctx, tx, retainer.ID, domain.AggregateTypeRetainer, domain.EventTypeRetainerDepleted, map[string]any{
			"retainer_id": retainer.ID,
			"matter_id":   retainer.MatterID,
		}, now); err != nil {
			return err
		}
	}

	return uc.retainerRepo.UpdateBalance(ctx, tx, retainer.ID, newBalance, newStatus, alertSent, now)
}

// handleNegativeBalanceAlert emits at most one alert per excursion below zero.
func (uc *LedgerUseCase) handleNegativeBalanceAlert(
	ctx context.Context,
	tx Transaction,
	account *domain.TrustAccount,
	newBalance decimal.Decimal,
	now time.Time,
) error {
	if newBalance.IsNegative() {
		if account.NegativeBalanceAlertSent {
			return nil
		}

		if err := uc.emitEvent(ctx, tx, account.ID, domain.AggregateTypeTrustAccount, domain.EventTypeNegativeBalance, domain.MarshalState(domain.NegativeBalanceEvent{
			TrustAccountID: account.ID,
			Balance:        newBalance.String(),
		}), now); err != nil {
			return err
		}

		return uc.accountRepo.SetNegativeBalanceAlert(ctx, tx, account.ID, true)
	}

	if account.NegativeBalanceAlertSent {
		return uc.accountRepo.SetNegativeBalanceAlert(ctx, tx, account.ID, false)
	}

	return nil
}

func (uc *LedgerUseCase) emitEvent(
	ctx context.Context,
	tx Transaction,
	aggregateID, aggregateType, eventType string,
	payload map[string]any,
	now time.Time,
) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	})
}

func (uc *LedgerUseCase) auditFailure(ctx context.Context, input AppendInput, cause error) {
	// Best effort; a failed audit write must not mask the original error.
	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      input.ActorID,
		Action:       string(domain.AuditActionLedgerAppend),
		ResourceType: "trust_transaction",
		RequestID:    input.RequestID,
		Status:       string(domain.AuditStatusFailure),
		ErrorMessage: cause.Error(),
		CreatedAt:    time.Now().UTC(),
	})
}

// GetTransaction retrieves a ledger entry by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.TrustTransaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// ListTransactionsInput represents input for listing ledger entries.
type ListTransactionsInput struct {
	TrustAccountID string
	StartDate      *time.Time
	EndDate        *time.Time
	Type           domain.TransactionType
	Reconciled     *bool
	Limit          int
	Offset         int
}

// ListTransactions lists ledger entries for a trust account, newest first.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.TrustTransaction, error) {
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}

	if input.Type != "" && !input.Type.Valid() {
		return nil, domain.ErrInvalidTransactionType
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.txnRepo.ListByAccount(ctx, input.TrustAccountID, TransactionFilter{
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Type:       input.Type,
		Reconciled: input.Reconciled,
		Limit:      limit,
		Offset:     offset,
	})
}

// VerifyChain walks the full ledger of an account oldest first and checks
// that every entry satisfies its own balance equation and chains from its
// predecessor. Returns the IDs of offending entries.
func (uc *LedgerUseCase) VerifyChain(ctx context.Context, accountID string) ([]string, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	const page = 500

	var all []*domain.TrustTransaction

	for offset := 0; ; offset += page {
		txns, err := uc.txnRepo.ListByAccount(ctx, accountID, TransactionFilter{Limit: page, Offset: offset})
		if err != nil {
			return nil, err
		}

		all = append(all, txns...)

		if len(txns) < page {
			break
		}
	}

	var corrupt []string

	// ListByAccount returns newest first; walk in reverse so the chain
	// check runs in chronological order.
	prev := decimal.Zero
	for i := len(all) - 1; i >= 0; i-- {
		txn := all[i]
		if err := txn.CheckBalances(); err != nil {
			corrupt = append(corrupt, txn.ID)
			prev = txn.BalanceAfter

			continue
		}

		if !txn.BalanceBefore.Equal(prev) {
			corrupt = append(corrupt, txn.ID)
		}

		prev = txn.BalanceAfter
	}

	if !account.CurrentBalance.Equal(prev) {
		corrupt = append(corrupt, account.ID)
	}

	return corrupt, nil
}
