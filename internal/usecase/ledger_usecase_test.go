package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
	"github.com/NathiDhliso/lexo-core/internal/usecase/mocks"
)

type ledgerFixture struct {
	uc           *usecase.LedgerUseCase
	accountRepo  *mocks.MockTrustAccountRepository
	txnRepo      *mocks.MockTrustTransactionRepository
	retainerRepo *mocks.MockRetainerRepository
	outboxRepo   *mocks.MockOutboxRepository
	auditRepo    *mocks.MockAuditRepository
	txMgr        *mocks.MockTransactionManager
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		accountRepo:  mocks.NewMockTrustAccountRepository(),
		txnRepo:      mocks.NewMockTrustTransactionRepository(),
		retainerRepo: mocks.NewMockRetainerRepository(),
		outboxRepo:   mocks.NewMockOutboxRepository(),
		auditRepo:    mocks.NewMockAuditRepository(),
		txMgr:        mocks.NewMockTransactionManager(),
	}
	f.uc = usecase.NewLedgerUseCase(
		f.txMgr,
		f.accountRepo,
		f.txnRepo,
		f.retainerRepo,
		f.outboxRepo,
		f.auditRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
	)
	return f
}

func seedAccount(f *ledgerFixture, balance int64) *domain.TrustAccount {
	account := &domain.TrustAccount{
		ID:                  "ta-1",
		AdvocateID:          "adv-1",
		CurrentBalance:      decimal.NewFromInt(balance),
		LowBalanceThreshold: decimal.NewFromInt(20),
	}
	f.accountRepo.Seed(account)
	return account
}

func TestLedgerUseCase_Append(t *testing.T) {
	tests := []struct {
		name        string
		balance     int64
		input       usecase.AppendInput
		expectError error
	}{
		{
			name:    "deposit succeeds",
			balance: 0,
			input: usecase.AppendInput{
				TrustAccountID: "ta-1",
				MatterID:       "m-1",
				AdvocateID:     "adv-1",
				Type:           domain.TransactionTypeDeposit,
				Amount:         decimal.NewFromInt(10000),
				Description:    "initial retainer deposit",
				PaymentMethod:  domain.PaymentMethodEFT,
			},
		},
		{
			name:    "drawdown within balance succeeds",
			balance: 10000,
			input: usecase.AppendInput{
				TrustAccountID: "ta-1",
				MatterID:       "m-1",
				AdvocateID:     "adv-1",
				Type:           domain.TransactionTypeDrawdown,
				Amount:         decimal.NewFromInt(2500),
				Description:    "fees for October",
				PaymentMethod:  domain.PaymentMethodEFT,
			},
		},
		{
			name:    "drawdown exceeding balance rejected",
			balance: 1000,
			input: usecase.AppendInput{
				TrustAccountID: "ta-1",
				MatterID:       "m-1",
				AdvocateID:     "adv-1",
				Type:           domain.TransactionTypeDrawdown,
				Amount:         decimal.NewFromInt(5000),
				Description:    "fees",
				PaymentMethod:  domain.PaymentMethodEFT,
			},
			expectError: domain.ErrInsufficientBalance,
		},
		{
			name:    "refund exceeding balance rejected",
			balance: 100,
			input: usecase.AppendInput{
				TrustAccountID: "ta-1",
				MatterID:       "m-1",
				AdvocateID:     "adv-1",
				Type:           domain.TransactionTypeRefund,
				Amount:         decimal.NewFromInt(500),
				Description:    "refund unearned funds",
				PaymentMethod:  domain.PaymentMethodEFT,
			},
			expectError: domain.ErrInsufficientBalance,
		},
		{
			name:    "zero amount rejected",
			balance: 1000,
			input: usecase.AppendInput{
				TrustAccountID: "ta-1",
				MatterID:       "m-1",
				AdvocateID:     "adv-1",
				Type:           domain.TransactionTypeDeposit,
				Amount:         decimal.Zero,
				Description:    "nothing",
				PaymentMethod:  domain.PaymentMethodEFT,
			},
			expectError: domain.ErrInvalidAmount,
		},
		{
			name:    "missing description rejected",
			balance: 1000,
			input: usecase.AppendInput{
				TrustAccountID: "ta-1",
				MatterID:       "m-1",
				AdvocateID:     "adv-1",
				Type:           domain.TransactionTypeDeposit,
				Amount:         decimal.NewFromInt(100),
				PaymentMethod:  domain.PaymentMethodEFT,
			},
			expectError: domain.ErrDescriptionRequired,
		},
		{
			name:    "unknown transaction type rejected",
			balance: 1000,
			input: usecase.AppendInput{
				TrustAccountID: "ta-1",
				MatterID:       "m-1",
				AdvocateID:     "adv-1",
				Type:           domain.TransactionType("wire"),
				Amount:         decimal.NewFromInt(100),
				Description:    "bad type",
				PaymentMethod:  domain.PaymentMethodEFT,
			},
			expectError: domain.ErrInvalidTransactionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			seedAccount(f, tt.balance)

			txn, err := f.uc.Append(context.Background(), tt.input)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := txn.CheckBalances(); err != nil {
				t.Fatalf("balance invariant broken: %v", err)
			}

			account, _ := f.accountRepo.GetByID(context.Background(), "ta-1")
			if !account.CurrentBalance.Equal(txn.BalanceAfter) {
				t.Fatalf("account balance %s, want %s", account.CurrentBalance, txn.BalanceAfter)
			}

			if txn.ReceiptNumber == "" {
				t.Fatal("receipt number not assigned")
			}

			if len(f.outboxRepo.EventsOfType(domain.EventTypeTransactionRecorded)) != 1 {
				t.Fatal("transaction_recorded event not emitted")
			}

			if len(f.auditRepo.LogsForAction(domain.AuditActionLedgerAppend)) != 1 {
				t.Fatal("audit log not written")
			}
		})
	}
}

func TestLedgerUseCase_Append_BalanceChaining(t *testing.T) {
	f := newLedgerFixture()
	seedAccount(f, 0)

	amounts := []int64{10000, 2500, 1500}
	types := []domain.TransactionType{
		domain.TransactionTypeDeposit,
		domain.TransactionTypeDrawdown,
		domain.TransactionTypeDrawdown,
	}

	prev := decimal.Zero
	for i := range amounts {
		txn, err := f.uc.Append(context.Background(), usecase.AppendInput{
			TrustAccountID: "ta-1",
			MatterID:       "m-1",
			AdvocateID:     "adv-1",
			Type:           types[i],
			Amount:         decimal.NewFromInt(amounts[i]),
			Description:    "entry",
			PaymentMethod:  domain.PaymentMethodEFT,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}

		if !txn.BalanceBefore.Equal(prev) {
			t.Fatalf("entry %d chains from %s, want %s", i, txn.BalanceBefore, prev)
		}
		prev = txn.BalanceAfter
	}

	if !prev.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("final balance %s, want 6000", prev)
	}
}

func TestLedgerUseCase_Append_RetainerLifecycle(t *testing.T) {
	f := newLedgerFixture()
	seedAccount(f, 0)

	retainerID := "r-1"
	f.retainerRepo.Seed(&domain.RetainerAgreement{
		ID:             retainerID,
		MatterID:       "m-1",
		TrustAccountID: "ta-1",
		AdvocateID:     "adv-1",
		RetainerAmount: decimal.NewFromInt(10000),
		Balance:        decimal.Zero,
		Status:         domain.RetainerStatusActive,
	})

	deposit := func(amount int64) {
		t.Helper()
		if _, err := f.uc.Append(context.Background(), usecase.AppendInput{
			TrustAccountID: "ta-1",
			RetainerID:     &retainerID,
			MatterID:       "m-1",
			AdvocateID:     "adv-1",
			Type:           domain.TransactionTypeDeposit,
			Amount:         decimal.NewFromInt(amount),
			Description:    "deposit",
			PaymentMethod:  domain.PaymentMethodEFT,
		}); err != nil {
			t.Fatalf("deposit: %v", err)
		}
	}
	drawdown := func(amount int64) {
		t.Helper()
		if _, err := f.uc.Append(context.Background(), usecase.AppendInput{
			TrustAccountID: "ta-1",
			RetainerID:     &retainerID,
			MatterID:       "m-1",
			AdvocateID:     "adv-1",
			Type:           domain.TransactionTypeDrawdown,
			Amount:         decimal.NewFromInt(amount),
			Description:    "drawdown",
			PaymentMethod:  domain.PaymentMethodEFT,
		}); err != nil {
			t.Fatalf("drawdown: %v", err)
		}
	}

	deposit(10000)

	r, _ := f.retainerRepo.GetByID(context.Background(), retainerID)
	if r.Status != domain.RetainerStatusActive || !r.Balance.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("after deposit: status=%s balance=%s", r.Status, r.Balance)
	}

	// Draw down to 10% of the retainer amount, under the 20% threshold.
	drawdown(9000)

	r, _ = f.retainerRepo.GetByID(context.Background(), retainerID)
	if !r.LowBalanceAlertSent {
		t.Fatal("low balance alert latch not set")
	}
	if n := len(f.outboxRepo.EventsOfType(domain.EventTypeLowBalance)); n != 1 {
		t.Fatalf("low_balance events = %d, want 1", n)
	}

	// Still low; the latch must suppress a second event.
	drawdown(500)
	if n := len(f.outboxRepo.EventsOfType(domain.EventTypeLowBalance)); n != 1 {
		t.Fatalf("low_balance events after second drawdown = %d, want 1", n)
	}

	// Drain fully; retainer goes depleted.
	drawdown(500)

	r, _ = f.retainerRepo.GetByID(context.Background(), retainerID)
	if r.Status != domain.RetainerStatusDepleted {
		t.Fatalf("status = %s, want depleted", r.Status)
	}
	if n := len(f.outboxRepo.EventsOfType(domain.EventTypeRetainerDepleted)); n != 1 {
		t.Fatalf("depleted events = %d, want 1", n)
	}

	// A fresh deposit reactivates the retainer and re-arms the latch.
	deposit(8000)

	r, _ = f.retainerRepo.GetByID(context.Background(), retainerID)
	if r.Status != domain.RetainerStatusActive {
		t.Fatalf("status after top-up = %s, want active", r.Status)
	}
	if r.LowBalanceAlertSent {
		t.Fatal("latch should re-arm once balance recovers")
	}
}

func TestLedgerUseCase_Append_CancelledRetainerRejected(t *testing.T) {
	f := newLedgerFixture()
	seedAccount(f, 5000)

	retainerID := "r-1"
	f.retainerRepo.Seed(&domain.RetainerAgreement{
		ID:             retainerID,
		MatterID:       "m-1",
		TrustAccountID: "ta-1",
		AdvocateID:     "adv-1",
		RetainerAmount: decimal.NewFromInt(5000),
		Balance:        decimal.NewFromInt(5000),
		Status:         domain.RetainerStatusCancelled,
	})

	_, err := f.uc.Append(context.Background(), usecase.AppendInput{
		TrustAccountID: "ta-1",
		RetainerID:     &retainerID,
		MatterID:       "m-1",
		AdvocateID:     "adv-1",
		Type:           domain.TransactionTypeDrawdown,
		Amount:         decimal.NewFromInt(100),
		Description:    "drawdown",
		PaymentMethod:  domain.PaymentMethodEFT,
	})
	if !errors.Is(err, domain.ErrRetainerCancelled) {
		t.Fatalf("expected ErrRetainerCancelled, got %v", err)
	}
}

func TestLedgerUseCase_Append_FailureAudited(t *testing.T) {
	f := newLedgerFixture()
	seedAccount(f, 0)

	_, err := f.uc.Append(context.Background(), usecase.AppendInput{
		TrustAccountID: "ta-1",
		MatterID:       "m-1",
		AdvocateID:     "adv-1",
		Type:           domain.TransactionTypeDrawdown,
		Amount:         decimal.NewFromInt(100),
		Description:    "overdraw",
		PaymentMethod:  domain.PaymentMethodEFT,
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	logs := f.auditRepo.LogsForAction(domain.AuditActionLedgerAppend)
	if len(logs) != 1 || logs[0].Status != string(domain.AuditStatusFailure) {
		t.Fatalf("expected one failure audit log, got %+v", logs)
	}
}

func TestLedgerUseCase_VerifyChain(t *testing.T) {
	f := newLedgerFixture()
	account := seedAccount(f, 0)

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	seed := func(id string, txType domain.TransactionType, amount, before, after int64, at time.Time) {
		f.txnRepo.Seed(&domain.TrustTransaction{
			ID:              id,
			TrustAccountID:  account.ID,
			Type:            txType,
			Amount:          decimal.NewFromInt(amount),
			BalanceBefore:   decimal.NewFromInt(before),
			BalanceAfter:    decimal.NewFromInt(after),
			TransactionDate: at,
		})
	}

	seed("t-1", domain.TransactionTypeDeposit, 1000, 0, 1000, base)
	seed("t-2", domain.TransactionTypeDrawdown, 400, 1000, 600, base.Add(time.Hour))
	account.CurrentBalance = decimal.NewFromInt(600)

	corrupt, err := f.uc.VerifyChain(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(corrupt) != 0 {
		t.Fatalf("clean chain flagged: %v", corrupt)
	}

	// Break the chain: entry claims a balance_before the ledger never held.
	seed("t-3", domain.TransactionTypeDrawdown, 100, 700, 600, base.Add(2*time.Hour))

	corrupt, err = f.uc.VerifyChain(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(corrupt) == 0 {
		t.Fatal("broken chain not flagged")
	}
}

func TestLedgerUseCase_ListTransactions_InvalidRange(t *testing.T) {
	f := newLedgerFixture()
	seedAccount(f, 0)

	start := time.Now()
	end := start.Add(-time.Hour)

	_, err := f.uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{
		TrustAccountID: "ta-1",
		StartDate:      &start,
		EndDate:        &end,
	})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}
