// Package memory provides in-memory repository adapters. They are the
// default store for standalone deployments and the fixture store for tests;
// each adapter carries the same atomicity guarantees as its Postgres
// counterpart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/domain"
)

// account is one principal's balance with its own lock, so debits for
// different principals never contend.
type account struct {
	mu      sync.Mutex
	credits int64
}

// LedgerRepository keeps per-principal balances guarded by per-principal
// mutexes. The outer map lock is held only to locate or create an account,
// never across a balance check-and-mutate.
type LedgerRepository struct {
	mu       sync.RWMutex
	accounts map[string]*account
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{accounts: make(map[string]*account)}
}

func (r *LedgerRepository) account(principalID string) *account {
	r.mu.RLock()
	a, ok := r.accounts[principalID]
	r.mu.RUnlock()
	if ok {
		return a
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok = r.accounts[principalID]; ok {
		return a
	}
	a = &account{}
	r.accounts[principalID] = a
	return a
}

func (r *LedgerRepository) Balance(ctx context.Context, principalID string) (int64, error) {
	a := r.account(principalID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.credits, nil
}

func (r *LedgerRepository) TryDebit(ctx context.Context, principalID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("debit amount must be non-negative, got %d", amount)
	}
	a := r.account(principalID)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.credits < amount {
		return a.credits, domain.ErrInsufficientCredits
	}
	a.credits -= amount
	return a.credits, nil
}

func (r *LedgerRepository) Credit(ctx context.Context, principalID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit amount must be non-negative, got %d", amount)
	}
	a := r.account(principalID)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.credits += amount
	return a.credits, nil
}

func (r *LedgerRepository) SetBalance(ctx context.Context, principalID string, credits int64) (int64, error) {
	if credits < 0 {
		return 0, fmt.Errorf("balance must be non-negative, got %d", credits)
	}
	a := r.account(principalID)
	a.mu.Lock()
	defer a.mu.Unlock()
	prev := a.credits
	a.credits = credits
	return prev, nil
}

var _ outbound.LedgerRepository = (*LedgerRepository)(nil)
