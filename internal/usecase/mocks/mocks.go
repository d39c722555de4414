// Package mocks provides hand-written in-memory mocks for the usecase
// ports. Every method can be overridden per test through its Func field;
// without an override the mock behaves as a small in-memory store.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NathiDhliso/lexo-core/internal/domain"
	"github.com/NathiDhliso/lexo-core/internal/usecase"
)

// MockTransaction is a mock database transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu    sync.Mutex
	Begun []*MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Begun = append(m.Begun, tx)
	return tx, nil
}

// MockIDGenerator generates sequential IDs for deterministic tests.
type MockIDGenerator struct {
	GenerateFunc func() string

	mu   sync.Mutex
	next int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return "id-" + itoa(m.next)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

// MockRetrier runs the operation once without retrying.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockCache is an in-memory Cache.
type MockCache struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error

	mu    sync.RWMutex
	items map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{items: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[key], nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// MockTrustAccountRepository is an in-memory TrustAccountRepository.
type MockTrustAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.TrustAccount

	CreateFunc                  func(ctx context.Context, account *domain.TrustAccount) error
	GetByIDFunc                 func(ctx context.Context, id string) (*domain.TrustAccount, error)
	GetByIDForUpdateFunc        func(ctx context.Context, tx usecase.Transaction, id string) (*domain.TrustAccount, error)
	GetByAdvocateFunc           func(ctx context.Context, advocateID string) (*domain.TrustAccount, error)
	UpdateBalanceFunc           func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetNegativeBalanceAlertFunc func(ctx context.Context, tx usecase.Transaction, id string, sent bool) error
	MarkReconciledFunc          func(ctx context.Context, tx usecase.Transaction, id string, asOf time.Time, balance decimal.Decimal) error
}

func NewMockTrustAccountRepository() *MockTrustAccountRepository {
	return &MockTrustAccountRepository{accounts: make(map[string]*domain.TrustAccount)}
}

// Seed adds an account directly to the store.
func (m *MockTrustAccountRepository) Seed(account *domain.TrustAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockTrustAccountRepository) Create(ctx context.Context, account *domain.TrustAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockTrustAccountRepository) GetByID(ctx context.Context, id string) (*domain.TrustAccount, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrTrustAccountNotFound
}

func (m *MockTrustAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.TrustAccount, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTrustAccountRepository) GetByAdvocate(ctx context.Context, advocateID string) (*domain.TrustAccount, error) {
	if m.GetByAdvocateFunc != nil {
		return m.GetByAdvocateFunc(ctx, advocateID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.AdvocateID == advocateID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrTrustAccountNotFound
}

func (m *MockTrustAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrTrustAccountNotFound
	}
	a.CurrentBalance = balance
	a.UpdatedAt = updatedAt
	return nil
}

func (m *MockTrustAccountRepository) SetNegativeBalanceAlert(ctx context.Context, tx usecase.Transaction, id string, sent bool) error {
	if m.SetNegativeBalanceAlertFunc != nil {
		return m.SetNegativeBalanceAlertFunc(ctx, tx, id, sent)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrTrustAccountNotFound
	}
	a.NegativeBalanceAlertSent = sent
	return nil
}

func (m *MockTrustAccountRepository) MarkReconciled(ctx context.Context, tx usecase.Transaction, id string, asOf time.Time, balance decimal.Decimal) error {
	if m.MarkReconciledFunc != nil {
		return m.MarkReconciledFunc(ctx, tx, id, asOf, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrTrustAccountNotFound
	}
	a.LastReconciliationDate = &asOf
	a.LastReconciliationBalance = &balance
	return nil
}

// MockTrustTransactionRepository is an in-memory ledger.
type MockTrustTransactionRepository struct {
	mu   sync.RWMutex
	txns []*domain.TrustTransaction

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, txn *domain.TrustTransaction) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.TrustTransaction, error)
	ListByAccountFunc     func(ctx context.Context, accountID string, filter usecase.TransactionFilter) ([]*domain.TrustTransaction, error)
	ListByRetainerFunc    func(ctx context.Context, retainerID string, limit, offset int) ([]*domain.TrustTransaction, error)
	SumByRetainerFunc     func(ctx context.Context, retainerID string) (decimal.Decimal, decimal.Decimal, error)
	LastBalanceBeforeFunc func(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, bool, error)
	LastBalanceAsOfFunc   func(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, bool, error)
	MarkReconciledFunc    func(ctx context.Context, tx usecase.Transaction, accountID string, asOf time.Time) error
}

func NewMockTrustTransactionRepository() *MockTrustTransactionRepository {
	return &MockTrustTransactionRepository{}
}

// Seed adds a transaction directly to the store.
func (m *MockTrustTransactionRepository) Seed(txn *domain.TrustTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns = append(m.txns, txn)
}

// All returns every stored transaction in insertion order.
func (m *MockTrustTransactionRepository) All() []*domain.TrustTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.TrustTransaction, len(m.txns))
	copy(out, m.txns)
	return out
}

func (m *MockTrustTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.TrustTransaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns = append(m.txns, txn)
	return nil
}

func (m *MockTrustTransactionRepository) GetByID(ctx context.Context, id string) (*domain.TrustTransaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.txns {
		if t.ID == id && t.DeletedAt == nil {
			return t, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTrustTransactionRepository) ListByAccount(ctx context.Context, accountID string, filter usecase.TransactionFilter) ([]*domain.TrustTransaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.TrustTransaction
	for _, t := range m.txns {
		if t.TrustAccountID != accountID || t.DeletedAt != nil {
			continue
		}
		if filter.StartDate != nil && t.TransactionDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && t.TransactionDate.After(*filter.EndDate) {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Reconciled != nil && t.Reconciled != *filter.Reconciled {
			continue
		}
		out = append(out, t)
	}

	// Newest first, matching the SQL ordering.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TransactionDate.After(out[j].TransactionDate)
	})

	return paginate(out, filter.Limit, filter.Offset), nil
}

func (m *MockTrustTransactionRepository) ListByRetainer(ctx context.Context, retainerID string, limit, offset int) ([]*domain.TrustTransaction, error) {
	if m.ListByRetainerFunc != nil {
		return m.ListByRetainerFunc(ctx, retainerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.TrustTransaction
	for _, t := range m.txns {
		if t.RetainerID != nil && *t.RetainerID == retainerID && t.DeletedAt == nil {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TransactionDate.After(out[j].TransactionDate)
	})

	return paginate(out, limit, offset), nil
}

func (m *MockTrustTransactionRepository) SumByRetainer(ctx context.Context, retainerID string) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumByRetainerFunc != nil {
		return m.SumByRetainerFunc(ctx, retainerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	deposits, drawdowns := decimal.Zero, decimal.Zero
	for _, t := range m.txns {
		if t.RetainerID == nil || *t.RetainerID != retainerID || t.DeletedAt != nil {
			continue
		}
		switch t.Type {
		case domain.TransactionTypeDeposit:
			deposits = deposits.Add(t.Amount)
		case domain.TransactionTypeDrawdown:
			drawdowns = drawdowns.Add(t.Amount)
		}
	}
	return deposits, drawdowns, nil
}

func (m *MockTrustTransactionRepository) LastBalanceBefore(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, bool, error) {
	if m.LastBalanceBeforeFunc != nil {
		return m.LastBalanceBeforeFunc(ctx, accountID, date)
	}
	return m.lastBalance(accountID, func(t time.Time) bool { return t.Before(date) })
}

func (m *MockTrustTransactionRepository) LastBalanceAsOf(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, bool, error) {
	if m.LastBalanceAsOfFunc != nil {
		return m.LastBalanceAsOfFunc(ctx, accountID, date)
	}
	return m.lastBalance(accountID, func(t time.Time) bool { return !t.After(date) })
}

func (m *MockTrustTransactionRepository) lastBalance(accountID string, in func(time.Time) bool) (decimal.Decimal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// txns is in creation order; the latest created entry within the date
	// cutoff carries the balance, matching the SQL ordering.
	var last *domain.TrustTransaction
	for _, t := range m.txns {
		if t.TrustAccountID != accountID || t.DeletedAt != nil || !in(t.TransactionDate) {
			continue
		}
		last = t
	}
	if last == nil {
		return decimal.Zero, false, nil
	}
	return last.BalanceAfter, true, nil
}

func (m *MockTrustTransactionRepository) MarkReconciled(ctx context.Context, tx usecase.Transaction, accountID string, asOf time.Time) error {
	if m.MarkReconciledFunc != nil {
		return m.MarkReconciledFunc(ctx, tx, accountID, asOf)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, t := range m.txns {
		if t.TrustAccountID == accountID && t.DeletedAt == nil && !t.Reconciled && !t.TransactionDate.After(asOf) {
			t.Reconciled = true
			t.ReconciliationDate = &now
		}
	}
	return nil
}

func paginate(txns []*domain.TrustTransaction, limit, offset int) []*domain.TrustTransaction {
	if offset >= len(txns) {
		return nil
	}
	txns = txns[offset:]
	if limit > 0 && limit < len(txns) {
		txns = txns[:limit]
	}
	return txns
}

// MockRetainerRepository is an in-memory RetainerRepository.
type MockRetainerRepository struct {
	mu        sync.RWMutex
	retainers map[string]*domain.RetainerAgreement

	CreateFunc           func(ctx context.Context, retainer *domain.RetainerAgreement) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.RetainerAgreement, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.RetainerAgreement, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, status domain.RetainerStatus, alertSent bool, updatedAt time.Time) error
	UpdateStatusFunc     func(ctx context.Context, id string, status domain.RetainerStatus, notes string, updatedAt time.Time) error
}

func NewMockRetainerRepository() *MockRetainerRepository {
	return &MockRetainerRepository{retainers: make(map[string]*domain.RetainerAgreement)}
}

// Seed adds a retainer directly to the store.
func (m *MockRetainerRepository) Seed(retainer *domain.RetainerAgreement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retainers[retainer.ID] = retainer
}

func (m *MockRetainerRepository) Create(ctx context.Context, retainer *domain.RetainerAgreement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, retainer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retainers[retainer.ID] = retainer
	return nil
}

func (m *MockRetainerRepository) GetByID(ctx context.Context, id string) (*domain.RetainerAgreement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.retainers[id]; ok && r.DeletedAt == nil {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrRetainerNotFound
}

func (m *MockRetainerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.RetainerAgreement, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockRetainerRepository) GetActiveByMatter(ctx context.Context, matterID string) (*domain.RetainerAgreement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.retainers {
		if r.MatterID == matterID && r.Status != domain.RetainerStatusCancelled && r.DeletedAt == nil {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrRetainerNotFound
}

func (m *MockRetainerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, status domain.RetainerStatus, alertSent bool, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, status, alertSent, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.retainers[id]
	if !ok {
		return domain.ErrRetainerNotFound
	}
	r.Balance = balance
	r.Status = status
	r.LowBalanceAlertSent = alertSent
	r.UpdatedAt = updatedAt
	return nil
}

func (m *MockRetainerRepository) UpdateStatus(ctx context.Context, id string, status domain.RetainerStatus, notes string, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, notes, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.retainers[id]
	if !ok {
		return domain.ErrRetainerNotFound
	}
	r.Status = status
	r.Notes = notes
	r.UpdatedAt = updatedAt
	return nil
}

func (m *MockRetainerRepository) UpdateEndDate(ctx context.Context, id string, endDate *time.Time, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.retainers[id]
	if !ok {
		return domain.ErrRetainerNotFound
	}
	r.EndDate = endDate
	r.UpdatedAt = updatedAt
	return nil
}

func (m *MockRetainerRepository) ListLowBalance(ctx context.Context, advocateID string) ([]*domain.RetainerAgreement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.RetainerAgreement
	for _, r := range m.retainers {
		if r.AdvocateID == advocateID && r.LowBalanceAlertSent && r.DeletedAt == nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockRetainerRepository) ListExpiring(ctx context.Context, advocateID string, before time.Time) ([]*domain.RetainerAgreement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.RetainerAgreement
	for _, r := range m.retainers {
		if r.AdvocateID == advocateID && r.EndDate != nil && r.EndDate.Before(before) && r.DeletedAt == nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// MockMatterRepository is an in-memory MatterRepository.
type MockMatterRepository struct {
	mu      sync.RWMutex
	matters map[string]*domain.Matter

	// Unbilled totals returned by UnbilledTotals, keyed by matter ID.
	UnbilledTime     map[string]decimal.Decimal
	UnbilledExpenses map[string]decimal.Decimal

	GetByIDFunc        func(ctx context.Context, id string) (*domain.Matter, error)
	UnbilledTotalsFunc func(ctx context.Context, matterID string) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockMatterRepository() *MockMatterRepository {
	return &MockMatterRepository{
		matters:          make(map[string]*domain.Matter),
		UnbilledTime:     make(map[string]decimal.Decimal),
		UnbilledExpenses: make(map[string]decimal.Decimal),
	}
}

// Seed adds a matter directly to the store.
func (m *MockMatterRepository) Seed(matter *domain.Matter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matters[matter.ID] = matter
}

func (m *MockMatterRepository) GetByID(ctx context.Context, id string) (*domain.Matter, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mt, ok := m.matters[id]; ok && mt.DeletedAt == nil {
		cp := *mt
		return &cp, nil
	}
	return nil, domain.ErrMatterNotFound
}

func (m *MockMatterRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Matter, error) {
	return m.GetByID(ctx, id)
}

func (m *MockMatterRepository) UpdateCompletionStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.CompletionStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.matters[id]
	if !ok {
		return domain.ErrMatterNotFound
	}
	mt.CompletionStatus = status
	mt.UpdatedAt = updatedAt
	return nil
}

func (m *MockMatterRepository) SetBillingReady(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.matters[id]
	if !ok {
		return domain.ErrMatterNotFound
	}
	mt.BillingReadyAt = &at
	return nil
}

func (m *MockMatterRepository) SetReviewNotes(ctx context.Context, tx usecase.Transaction, id string, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.matters[id]
	if !ok {
		return domain.ErrMatterNotFound
	}
	mt.BillingReviewNotes = notes
	return nil
}

func (m *MockMatterRepository) RecordApproval(ctx context.Context, tx usecase.Transaction, id, approverID, notes string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.matters[id]
	if !ok {
		return domain.ErrMatterNotFound
	}
	mt.PartnerApprovedBy = &approverID
	mt.PartnerApprovedAt = &at
	mt.PartnerApprovalNotes = notes
	return nil
}

func (m *MockMatterRepository) UpdateEstimatedTotal(ctx context.Context, tx usecase.Transaction, id string, estimate decimal.Decimal, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.matters[id]
	if !ok {
		return domain.ErrMatterNotFound
	}
	mt.EstimatedTotal = estimate
	mt.UpdatedAt = updatedAt
	return nil
}

func (m *MockMatterRepository) UnbilledTotals(ctx context.Context, matterID string) (decimal.Decimal, decimal.Decimal, error) {
	if m.UnbilledTotalsFunc != nil {
		return m.UnbilledTotalsFunc(ctx, matterID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.UnbilledTime[matterID]
	if !ok {
		t = decimal.Zero
	}
	e, ok := m.UnbilledExpenses[matterID]
	if !ok {
		e = decimal.Zero
	}
	return t, e, nil
}

func (m *MockMatterRepository) ListByCompletionStatus(ctx context.Context, advocateID string, status domain.CompletionStatus) ([]*domain.Matter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Matter
	for _, mt := range m.matters {
		if mt.AdvocateID == advocateID && mt.CompletionStatus == status && mt.DeletedAt == nil {
			out = append(out, mt)
		}
	}
	return out, nil
}

func (m *MockMatterRepository) CountByCompletionStatus(ctx context.Context, advocateID string) (map[domain.CompletionStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.CompletionStatus]int)
	for _, mt := range m.matters {
		if mt.AdvocateID == advocateID && mt.DeletedAt == nil {
			counts[mt.CompletionStatus]++
		}
	}
	return counts, nil
}

// MockInvoiceRepository is an in-memory InvoiceRepository.
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice

	// OpenDisputeMatters marks matter IDs that have unresolved disputes.
	OpenDisputeMatters map[string]bool

	GetByIDFunc func(ctx context.Context, id string) (*domain.Invoice, error)
}

func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		invoices:           make(map[string]*domain.Invoice),
		OpenDisputeMatters: make(map[string]bool),
	}
}

// Seed adds an invoice directly to the store.
func (m *MockInvoiceRepository) Seed(invoice *domain.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[invoice.ID] = invoice
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if inv, ok := m.invoices[id]; ok && inv.DeletedAt == nil {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrInvoiceNotFound
}

func (m *MockInvoiceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error) {
	return m.GetByID(ctx, id)
}

func (m *MockInvoiceRepository) UpdateTotals(ctx context.Context, tx usecase.Transaction, id string, total decimal.Decimal, status domain.PaymentStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	inv.TotalAmount = total
	inv.PaymentStatus = status
	inv.UpdatedAt = updatedAt
	return nil
}

func (m *MockInvoiceRepository) UpdatePaymentStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.PaymentStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	inv.PaymentStatus = status
	inv.UpdatedAt = updatedAt
	return nil
}

func (m *MockInvoiceRepository) HasOpenDisputesByMatter(ctx context.Context, matterID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.OpenDisputeMatters[matterID], nil
}

// MockCreditNoteRepository is an in-memory CreditNoteRepository.
type MockCreditNoteRepository struct {
	mu    sync.RWMutex
	notes map[string]*domain.CreditNote
	seq   map[string]int

	GetByIDFunc      func(ctx context.Context, id string) (*domain.CreditNote, error)
	NextSequenceFunc func(ctx context.Context, prefix string) (int, error)
}

func NewMockCreditNoteRepository() *MockCreditNoteRepository {
	return &MockCreditNoteRepository{
		notes: make(map[string]*domain.CreditNote),
		seq:   make(map[string]int),
	}
}

// Seed adds a credit note directly to the store.
func (m *MockCreditNoteRepository) Seed(note *domain.CreditNote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[note.ID] = note
}

func (m *MockCreditNoteRepository) Create(ctx context.Context, note *domain.CreditNote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[note.ID] = note
	return nil
}

func (m *MockCreditNoteRepository) GetByID(ctx context.Context, id string) (*domain.CreditNote, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n, ok := m.notes[id]; ok && n.DeletedAt == nil {
		cp := *n
		return &cp, nil
	}
	return nil, domain.ErrCreditNoteNotFound
}

func (m *MockCreditNoteRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CreditNote, error) {
	return m.GetByID(ctx, id)
}

func (m *MockCreditNoteRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.CreditNoteStatus, issuedAt, appliedAt *time.Time, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return domain.ErrCreditNoteNotFound
	}
	n.Status = status
	n.IssuedAt = issuedAt
	n.AppliedAt = appliedAt
	n.UpdatedAt = updatedAt
	return nil
}

func (m *MockCreditNoteRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.CreditNote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.CreditNote
	for _, n := range m.notes {
		if n.InvoiceID == invoiceID && n.DeletedAt == nil {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MockCreditNoteRepository) NextSequence(ctx context.Context, prefix string) (int, error) {
	if m.NextSequenceFunc != nil {
		return m.NextSequenceFunc(ctx, prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq[prefix]++
	return m.seq[prefix], nil
}

// MockDisputeRepository is an in-memory DisputeRepository.
type MockDisputeRepository struct {
	mu       sync.RWMutex
	disputes map[string]*domain.PaymentDispute

	GetByIDFunc func(ctx context.Context, id string) (*domain.PaymentDispute, error)
}

func NewMockDisputeRepository() *MockDisputeRepository {
	return &MockDisputeRepository{disputes: make(map[string]*domain.PaymentDispute)}
}

// Seed adds a dispute directly to the store.
func (m *MockDisputeRepository) Seed(dispute *domain.PaymentDispute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disputes[dispute.ID] = dispute
}

func (m *MockDisputeRepository) Create(ctx context.Context, tx usecase.Transaction, dispute *domain.PaymentDispute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disputes[dispute.ID] = dispute
	return nil
}

func (m *MockDisputeRepository) GetByID(ctx context.Context, id string) (*domain.PaymentDispute, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.disputes[id]; ok && d.DeletedAt == nil {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrDisputeNotFound
}

func (m *MockDisputeRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PaymentDispute, error) {
	return m.GetByID(ctx, id)
}

func (m *MockDisputeRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, dispute *domain.PaymentDispute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.disputes[dispute.ID]; !ok {
		return domain.ErrDisputeNotFound
	}
	cp := *dispute
	m.disputes[dispute.ID] = &cp
	return nil
}

func (m *MockDisputeRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.PaymentDispute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PaymentDispute
	for _, d := range m.disputes {
		if d.InvoiceID == invoiceID && d.DeletedAt == nil {
			out = append(out, d)
		}
	}
	return out, nil
}

// MockAmendmentRepository is an in-memory AmendmentRepository.
type MockAmendmentRepository struct {
	mu         sync.RWMutex
	amendments map[string]*domain.ScopeAmendment
}

func NewMockAmendmentRepository() *MockAmendmentRepository {
	return &MockAmendmentRepository{amendments: make(map[string]*domain.ScopeAmendment)}
}

// Seed adds an amendment directly to the store.
func (m *MockAmendmentRepository) Seed(amendment *domain.ScopeAmendment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.amendments[amendment.ID] = amendment
}

func (m *MockAmendmentRepository) Create(ctx context.Context, amendment *domain.ScopeAmendment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.amendments[amendment.ID] = amendment
	return nil
}

func (m *MockAmendmentRepository) GetByID(ctx context.Context, id string) (*domain.ScopeAmendment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.amendments[id]; ok && a.DeletedAt == nil {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrAmendmentNotFound
}

func (m *MockAmendmentRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, amendment *domain.ScopeAmendment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.amendments[amendment.ID]; !ok {
		return domain.ErrAmendmentNotFound
	}
	cp := *amendment
	m.amendments[amendment.ID] = &cp
	return nil
}

func (m *MockAmendmentRepository) ListByMatter(ctx context.Context, matterID string) ([]*domain.ScopeAmendment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ScopeAmendment
	for _, a := range m.amendments {
		if a.MatterID == matterID && a.DeletedAt == nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockAmendmentRepository) ListPending(ctx context.Context, advocateID string) ([]*domain.ScopeAmendment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ScopeAmendment
	for _, a := range m.amendments {
		if a.AdvocateID == advocateID && a.Status == domain.AmendmentStatusPending && a.DeletedAt == nil {
			out = append(out, a)
		}
	}
	return out, nil
}

// MockOutboxRepository is an in-memory OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns every stored event in insertion order.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOfType filters stored events by type.
func (m *MockOutboxRepository) EventsOfType(eventType string) []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// MockAuditRepository is an in-memory AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

// Logs returns every stored audit log in insertion order.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditLog, len(m.logs))
	copy(out, m.logs)
	return out
}

// LogsForAction filters stored logs by action.
func (m *MockAuditRepository) LogsForAction(action domain.AuditAction) []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.logs {
		if l.Action == string(action) {
			out = append(out, l)
		}
	}
	return out
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.logs {
		if filter.Action != "" && !strings.HasPrefix(l.Action, filter.Action) {
			continue
		}
		if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// MockIdempotencyStore is an in-memory IdempotencyStore.
type MockIdempotencyStore struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{items: make(map[string][]byte)}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.items[key]; ok {
		return true, existing, nil
	}
	m.items[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = response
	return nil
}
