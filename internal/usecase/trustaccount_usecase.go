package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
)

// TrustAccountUseCase handles trust account lifecycle and compliance checks.
type TrustAccountUseCase struct {
	accountRepo TrustAccountRepository
	idGen       IDGenerator
}

// NewTrustAccountUseCase creates a new TrustAccountUseCase.
func NewTrustAccountUseCase(accountRepo TrustAccountRepository, idGen IDGenerator) *TrustAccountUseCase {
	return &TrustAccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for opening a trust account.
type CreateAccountInput struct {
	AdvocateID          string
	BankName            string
	AccountHolderName   string
	AccountNumber       string
	LowBalanceThreshold decimal.Decimal
}

// CreateAccount opens a trust account with a zero balance.
func (uc *TrustAccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.TrustAccount, error) {
	threshold := input.LowBalanceThreshold
	if threshold.IsZero() {
		threshold = decimal.NewFromInt(20)
	}

	if threshold.IsNegative() || threshold.GreaterThan(decimal.NewFromInt(100)) {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()

	account := &domain.TrustAccount{
		ID:                  uc.idGen.Generate(),
		AdvocateID:          input.AdvocateID,
		BankName:            input.BankName,
		AccountHolderName:   input.AccountHolderName,
		AccountNumber:       input.AccountNumber,
		CurrentBalance:      decimal.Zero,
		LowBalanceThreshold: threshold,
		LPCCompliant:        true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves a trust account by ID.
func (uc *TrustAccountUseCase) GetAccount(ctx context.Context, id string) (*domain.TrustAccount, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetAccountByAdvocate retrieves an advocate's trust account.
func (uc *TrustAccountUseCase) GetAccountByAdvocate(ctx context.Context, advocateID string) (*domain.TrustAccount, error) {
	return uc.accountRepo.GetByAdvocate(ctx, advocateID)
}

// ViolationReport is the outcome of a compliance probe on one account.
type ViolationReport struct {
	TrustAccountID       string          `json:"trust_account_id"`
	Balance              decimal.Decimal `json:"balance"`
	NegativeBalance      bool            `json:"negative_balance"`
	LPCCompliant         bool            `json:"lpc_compliant"`
	ReconciliationStale  bool            `json:"reconciliation_stale"`
	LastReconciliation   *time.Time      `json:"last_reconciliation,omitempty"`
	CheckedAt            time.Time       `json:"checked_at"`
}

// reconciliationMaxAge is how old the last reconciliation may be before the
// account is flagged. LPC practice is a monthly reconciliation cycle.
const reconciliationMaxAge = 35 * 24 * time.Hour

// CheckViolations probes a trust account for compliance violations. It never
// mutates state; alerting is driven by the ledger's outbox events.
func (uc *TrustAccountUseCase) CheckViolations(ctx context.Context, accountID string) (*ViolationReport, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	report := &ViolationReport{
		TrustAccountID:     account.ID,
		Balance:            account.CurrentBalance,
		NegativeBalance:    account.HasViolation(),
		LPCCompliant:       account.LPCCompliant,
		LastReconciliation: account.LastReconciliationDate,
		CheckedAt:          now,
	}

	if account.LastReconciliationDate == nil || now.Sub(*account.LastReconciliationDate) > reconciliationMaxAge {
		report.ReconciliationStale = true
	}

	return report, nil
}
