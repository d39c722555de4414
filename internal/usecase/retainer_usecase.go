package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
)

// RetainerUseCase handles retainer agreement business logic. Balance
// movements are delegated to the ledger so the sufficiency check and the
// balance chaining always run in one place.
type RetainerUseCase struct {
	ledger       *LedgerUseCase
	retainerRepo RetainerRepository
	accountRepo  TrustAccountRepository
	txnRepo      TrustTransactionRepository
	auditRepo    AuditRepository
	idGen        IDGenerator
	cache        Cache
}

// NewRetainerUseCase creates a new RetainerUseCase.
func NewRetainerUseCase(
	ledger *LedgerUseCase,
	retainerRepo RetainerRepository,
	accountRepo TrustAccountRepository,
	txnRepo TrustTransactionRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
) *RetainerUseCase {
	return &RetainerUseCase{
		ledger:       ledger,
		retainerRepo: retainerRepo,
		accountRepo:  accountRepo,
		txnRepo:      txnRepo,
		auditRepo:    auditRepo,
		idGen:        idGen,
		cache:        cache,
	}
}

// CreateRetainerInput represents input for creating a retainer agreement.
type CreateRetainerInput struct {
	MatterID              string
	TrustAccountID        string
	EngagementAgreementID *string
	AdvocateID            string
	ActorID               string
	RequestID             string
	Type                  domain.RetainerType
	RetainerAmount        decimal.Decimal
	StartDate             time.Time
	EndDate               *time.Time
	AutoRenew             bool
	Notes                 string
}

// CreateRetainer creates an active retainer with a zero balance. Funds
// arrive through Deposit so the opening balance is itself a ledger entry.
func (uc *RetainerUseCase) CreateRetainer(ctx context.Context, input CreateRetainerInput) (*domain.RetainerAgreement, error) {
	if err := domain.ValidateAmount(input.RetainerAmount); err != nil {
		return nil, err
	}

	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}

	if _, err := uc.accountRepo.GetByID(ctx, input.TrustAccountID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	retainer := &domain.RetainerAgreement{
		ID:                    uc.idGen.Generate(),
		MatterID:              input.MatterID,
		TrustAccountID:        input.TrustAccountID,
		EngagementAgreementID: input.EngagementAgreementID,
		AdvocateID:            input.AdvocateID,
		Type:                  input.Type,
		RetainerAmount:        input.RetainerAmount,
		Balance:               decimal.Zero,
		Status:                domain.RetainerStatusActive,
		StartDate:             input.StartDate,
		EndDate:               input.EndDate,
		AutoRenew:             input.AutoRenew,
		Notes:                 input.Notes,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := uc.retainerRepo.Create(ctx, retainer); err != nil {
		return nil, err
	}

	uc.audit(ctx, input.ActorID, input.RequestID, domain.AuditActionRetainerCreate, retainer.ID, nil, retainer)

	return retainer, nil
}

// RetainerMovementInput represents input for a deposit, drawdown or refund
// against a retainer.
type RetainerMovementInput struct {
	RetainerID    string
	ActorID       string
	RequestID     string
	Amount        decimal.Decimal
	Reference     string
	Description   string
	PaymentMethod domain.PaymentMethod
	ClientID      *string
	InvoiceID     *string
	TimeEntryID   *string
	ExpenseID     *string
}

// Deposit records client funds arriving into trust against a retainer.
func (uc *RetainerUseCase) Deposit(ctx context.Context, input RetainerMovementInput) (*domain.TrustTransaction, error) {
	return uc.move(ctx, domain.TransactionTypeDeposit, domain.AuditActionRetainerDeposit, input)
}

// Drawdown transfers earned fees out of trust against a retainer.
func (uc *RetainerUseCase) Drawdown(ctx context.Context, input RetainerMovementInput) (*domain.TrustTransaction, error) {
	return uc.move(ctx, domain.TransactionTypeDrawdown, domain.AuditActionRetainerDrawdown, input)
}

// Refund returns unearned funds to the client.
func (uc *RetainerUseCase) Refund(ctx context.Context, input RetainerMovementInput) (*domain.TrustTransaction, error) {
	return uc.move(ctx, domain.TransactionTypeRefund, domain.AuditActionRetainerRefund, input)
}

func (uc *RetainerUseCase) move(
	ctx context.Context,
	txType domain.TransactionType,
	action domain.AuditAction,
	input RetainerMovementInput,
) (*domain.TrustTransaction, error) {
	retainer, err := uc.retainerRepo.GetByID(ctx, input.RetainerID)
	if err != nil {
		return nil, err
	}

	if retainer.Status == domain.RetainerStatusCancelled {
		return nil, domain.ErrRetainerCancelled
	}

	txn, err := uc.ledger.Append(ctx, AppendInput{
		TrustAccountID: retainer.TrustAccountID,
		RetainerID:     &retainer.ID,
		MatterID:       retainer.MatterID,
		AdvocateID:     retainer.AdvocateID,
		ActorID:        input.ActorID,
		RequestID:      input.RequestID,
		Type:           txType,
		Amount:         input.Amount,
		Reference:      input.Reference,
		Description:    input.Description,
		PaymentMethod:  input.PaymentMethod,
		ClientID:       input.ClientID,
		InvoiceID:      input.InvoiceID,
		TimeEntryID:    input.TimeEntryID,
		ExpenseID:      input.ExpenseID,
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateSummary(ctx, retainer.ID)
	uc.audit(ctx, input.ActorID, input.RequestID, action, txn.ID, nil, txn)

	return txn, nil
}

// CancelRetainer cancels a retainer agreement. The remaining balance stays
// in trust; returning it is a separate Refund recorded before or after.
func (uc *RetainerUseCase) CancelRetainer(ctx context.Context, id, actorID, requestID, reason string) (*domain.RetainerAgreement, error) {
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}

	retainer, err := uc.retainerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if retainer.Status == domain.RetainerStatusCancelled {
		return nil, domain.ErrRetainerCancelled
	}

	before := *retainer
	now := time.Now().UTC()
	notes := appendNote(retainer.Notes, "CANCELLED: "+reason)

	if err := uc.retainerRepo.UpdateStatus(ctx, id, domain.RetainerStatusCancelled, notes, now); err != nil {
		return nil, err
	}

	retainer.Status = domain.RetainerStatusCancelled
	retainer.Notes = notes
	retainer.UpdatedAt = now

	uc.invalidateSummary(ctx, id)
	uc.audit(ctx, actorID, requestID, domain.AuditActionRetainerCancel, id, &before, retainer)

	return retainer, nil
}

// RenewRetainer extends the agreement's end date. Topping the balance back
// up is a separate Deposit.
func (uc *RetainerUseCase) RenewRetainer(ctx context.Context, id, actorID, requestID string, newEndDate time.Time) (*domain.RetainerAgreement, error) {
	retainer, err := uc.retainerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if retainer.Status == domain.RetainerStatusCancelled {
		return nil, domain.ErrRetainerCancelled
	}

	if newEndDate.Before(retainer.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}

	before := *retainer
	now := time.Now().UTC()

	if err := uc.retainerRepo.UpdateEndDate(ctx, id, &newEndDate, now); err != nil {
		return nil, err
	}

	retainer.EndDate = &newEndDate
	retainer.UpdatedAt = now

	uc.invalidateSummary(ctx, id)
	uc.audit(ctx, actorID, requestID, domain.AuditActionRetainerRenew, id, &before, retainer)

	return retainer, nil
}

// GetRetainer retrieves a retainer agreement by ID.
func (uc *RetainerUseCase) GetRetainer(ctx context.Context, id string) (*domain.RetainerAgreement, error) {
	return uc.retainerRepo.GetByID(ctx, id)
}

// RetainerSummary is the funding picture of one retainer.
type RetainerSummary struct {
	Retainer            *domain.RetainerAgreement `json:"retainer"`
	TotalDeposits       decimal.Decimal           `json:"total_deposits"`
	TotalDrawdowns      decimal.Decimal           `json:"total_drawdowns"`
	PercentageRemaining decimal.Decimal           `json:"percentage_remaining"`
	LowBalance          bool                      `json:"low_balance"`
}

// GetSummary returns the funding summary for a retainer. Summaries are
// cached briefly; any balance movement invalidates the cache.
func (uc *RetainerUseCase) GetSummary(ctx context.Context, id string) (*RetainerSummary, error) {
	cacheKey := summaryCacheKey(id)

	if cached, err := uc.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var summary RetainerSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
	}

	retainer, err := uc.retainerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, retainer.TrustAccountID)
	if err != nil {
		return nil, err
	}

	deposits, drawdowns, err := uc.txnRepo.SumByRetainer(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := &RetainerSummary{
		Retainer:            retainer,
		TotalDeposits:       deposits,
		TotalDrawdowns:      drawdowns,
		PercentageRemaining: retainer.PercentageRemaining(),
		LowBalance:          retainer.IsLowBalance(account.LowBalanceThreshold),
	}

	if data, err := json.Marshal(summary); err == nil {
		_ = uc.cache.Set(ctx, cacheKey, string(data), SummaryCacheTTL)
	}

	return summary, nil
}

// GetTransactionHistory lists ledger entries recorded against a retainer,
// newest first.
func (uc *RetainerUseCase) GetTransactionHistory(ctx context.Context, id string, limit, offset int) ([]*domain.TrustTransaction, error) {
	if _, err := uc.retainerRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.txnRepo.ListByRetainer(ctx, id, limit, offset)
}

// ListLowBalance lists an advocate's retainers at or below the low-balance
// threshold.
func (uc *RetainerUseCase) ListLowBalance(ctx context.Context, advocateID string) ([]*domain.RetainerAgreement, error) {
	return uc.retainerRepo.ListLowBalance(ctx, advocateID)
}

// ListExpiring lists an advocate's retainers whose end date falls within
// the given horizon.
func (uc *RetainerUseCase) ListExpiring(ctx context.Context, advocateID string, within time.Duration) ([]*domain.RetainerAgreement, error) {
	return uc.retainerRepo.ListExpiring(ctx, advocateID, time.Now().UTC().Add(within))
}

func (uc *RetainerUseCase) invalidateSummary(ctx context.Context, id string) {
	_ = uc.cache.Delete(ctx, summaryCacheKey(id))
}

func (uc *RetainerUseCase) audit(ctx context.Context, actorID, requestID string, action domain.AuditAction, resourceID string, before, after any) {
	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       string(action),
		ResourceType: "retainer_agreement",
		ResourceID:   resourceID,
		RequestID:    requestID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}

func summaryCacheKey(id string) string {
	return fmt.Sprintf("retainer:summary:%s", id)
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}

	return existing + "\n" + note
}
