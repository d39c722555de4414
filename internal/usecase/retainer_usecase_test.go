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

type retainerFixture struct {
	uc           *usecase.RetainerUseCase
	ledger       *ledgerFixture
	retainerRepo *mocks.MockRetainerRepository
	cache        *mocks.MockCache
}

func newRetainerFixture() *retainerFixture {
	lf := newLedgerFixture()
	f := &retainerFixture{
		ledger:       lf,
		retainerRepo: lf.retainerRepo,
		cache:        mocks.NewMockCache(),
	}
	f.uc = usecase.NewRetainerUseCase(
		lf.uc,
		lf.retainerRepo,
		lf.accountRepo,
		lf.txnRepo,
		lf.auditRepo,
		mocks.NewMockIDGenerator(),
		f.cache,
	)
	return f
}

func (f *retainerFixture) seedFundedRetainer(balance int64) {
	seedAccount(f.ledger, balance)
	f.retainerRepo.Seed(&domain.RetainerAgreement{
		ID:             "r-1",
		MatterID:       "m-1",
		TrustAccountID: "ta-1",
		AdvocateID:     "adv-1",
		Type:           domain.RetainerTypeProject,
		RetainerAmount: decimal.NewFromInt(balance),
		Balance:        decimal.NewFromInt(balance),
		Status:         domain.RetainerStatusActive,
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}

func TestRetainerUseCase_CreateRetainer(t *testing.T) {
	f := newRetainerFixture()
	seedAccount(f.ledger, 0)

	retainer, err := f.uc.CreateRetainer(context.Background(), usecase.CreateRetainerInput{
		MatterID:       "m-1",
		TrustAccountID: "ta-1",
		AdvocateID:     "adv-1",
		Type:           domain.RetainerTypeMonthly,
		RetainerAmount: decimal.NewFromInt(20000),
		StartDate:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if retainer.Status != domain.RetainerStatusActive {
		t.Fatalf("status = %s, want active", retainer.Status)
	}
	if !retainer.Balance.IsZero() {
		t.Fatalf("new retainer balance = %s, want 0", retainer.Balance)
	}
}

func TestRetainerUseCase_CreateRetainer_UnknownAccount(t *testing.T) {
	f := newRetainerFixture()

	_, err := f.uc.CreateRetainer(context.Background(), usecase.CreateRetainerInput{
		MatterID:       "m-1",
		TrustAccountID: "ta-404",
		AdvocateID:     "adv-1",
		RetainerAmount: decimal.NewFromInt(20000),
		StartDate:      time.Now(),
	})
	if !errors.Is(err, domain.ErrTrustAccountNotFound) {
		t.Fatalf("expected ErrTrustAccountNotFound, got %v", err)
	}
}

func TestRetainerUseCase_DepositAndDrawdown(t *testing.T) {
	f := newRetainerFixture()
	f.seedFundedRetainer(0)

	txn, err := f.uc.Deposit(context.Background(), usecase.RetainerMovementInput{
		RetainerID:    "r-1",
		ActorID:       "actor-1",
		Amount:        decimal.NewFromInt(15000),
		Description:   "opening deposit",
		PaymentMethod: domain.PaymentMethodEFT,
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if txn.Type != domain.TransactionTypeDeposit {
		t.Fatalf("type = %s, want deposit", txn.Type)
	}

	txn, err = f.uc.Drawdown(context.Background(), usecase.RetainerMovementInput{
		RetainerID:    "r-1",
		ActorID:       "actor-1",
		Amount:        decimal.NewFromInt(4000),
		Description:   "September fees",
		PaymentMethod: domain.PaymentMethodEFT,
	})
	if err != nil {
		t.Fatalf("drawdown: %v", err)
	}
	if !txn.BalanceAfter.Equal(decimal.NewFromInt(11000)) {
		t.Fatalf("balance after drawdown = %s, want 11000", txn.BalanceAfter)
	}

	r, _ := f.retainerRepo.GetByID(context.Background(), "r-1")
	if !r.Balance.Equal(decimal.NewFromInt(11000)) {
		t.Fatalf("retainer balance = %s, want 11000", r.Balance)
	}
}

func TestRetainerUseCase_Drawdown_Insufficient(t *testing.T) {
	f := newRetainerFixture()
	f.seedFundedRetainer(1000)

	_, err := f.uc.Drawdown(context.Background(), usecase.RetainerMovementInput{
		RetainerID:    "r-1",
		ActorID:       "actor-1",
		Amount:        decimal.NewFromInt(5000),
		Description:   "too much",
		PaymentMethod: domain.PaymentMethodEFT,
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestRetainerUseCase_CancelRetainer(t *testing.T) {
	f := newRetainerFixture()
	f.seedFundedRetainer(5000)

	if _, err := f.uc.CancelRetainer(context.Background(), "r-1", "actor-1", "req-1", ""); !errors.Is(err, domain.ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	cancelled, err := f.uc.CancelRetainer(context.Background(), "r-1", "actor-1", "req-2", "matter settled early")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.RetainerStatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}

	// No further movements against a cancelled retainer.
	_, err = f.uc.Deposit(context.Background(), usecase.RetainerMovementInput{
		RetainerID:    "r-1",
		ActorID:       "actor-1",
		Amount:        decimal.NewFromInt(100),
		Description:   "late deposit",
		PaymentMethod: domain.PaymentMethodEFT,
	})
	if !errors.Is(err, domain.ErrRetainerCancelled) {
		t.Fatalf("expected ErrRetainerCancelled, got %v", err)
	}

	if _, err := f.uc.CancelRetainer(context.Background(), "r-1", "actor-1", "req-3", "again"); !errors.Is(err, domain.ErrRetainerCancelled) {
		t.Fatalf("double cancel: expected ErrRetainerCancelled, got %v", err)
	}
}

func TestRetainerUseCase_RenewRetainer(t *testing.T) {
	f := newRetainerFixture()
	f.seedFundedRetainer(5000)

	newEnd := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	renewed, err := f.uc.RenewRetainer(context.Background(), "r-1", "actor-1", "req-1", newEnd)
	if err != nil {
		t.Fatalf("renew: %v", err)
	}
	if renewed.EndDate == nil || !renewed.EndDate.Equal(newEnd) {
		t.Fatalf("end date = %v, want %v", renewed.EndDate, newEnd)
	}

	badEnd := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := f.uc.RenewRetainer(context.Background(), "r-1", "actor-1", "req-2", badEnd); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestRetainerUseCase_GetSummary(t *testing.T) {
	f := newRetainerFixture()
	f.seedFundedRetainer(0)

	deposit := func(amount int64) {
		t.Helper()
		if _, err := f.uc.Deposit(context.Background(), usecase.RetainerMovementInput{
			RetainerID:    "r-1",
			ActorID:       "actor-1",
			Amount:        decimal.NewFromInt(amount),
			Description:   "deposit",
			PaymentMethod: domain.PaymentMethodEFT,
		}); err != nil {
			t.Fatalf("deposit: %v", err)
		}
	}

	deposit(10000)

	if _, err := f.uc.Drawdown(context.Background(), usecase.RetainerMovementInput{
		RetainerID:    "r-1",
		ActorID:       "actor-1",
		Amount:        decimal.NewFromInt(3000),
		Description:   "fees",
		PaymentMethod: domain.PaymentMethodEFT,
	}); err != nil {
		t.Fatalf("drawdown: %v", err)
	}

	summary, err := f.uc.GetSummary(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if !summary.TotalDeposits.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("deposits = %s, want 10000", summary.TotalDeposits)
	}
	if !summary.TotalDrawdowns.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("drawdowns = %s, want 3000", summary.TotalDrawdowns)
	}
	if !summary.Retainer.Balance.Equal(decimal.NewFromInt(7000)) {
		t.Fatalf("balance = %s, want 7000", summary.Retainer.Balance)
	}
}
