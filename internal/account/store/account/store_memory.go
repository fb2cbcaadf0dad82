package account

import (
	"context"
	"sort"
	"sync"

	"coreteller/internal/account/models"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/sentinel"
)

// InMemory keeps accounts in a map, holder relations included.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[domain.AccountID]*models.Account
}

func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[domain.AccountID]*models.Account)}
}

func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.ID]; exists {
		return sentinel.ErrConflict
	}
	s.accounts[account.ID] = clone(account)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(account), nil
}

func (s *InMemory) ListByHolder(_ context.Context, customerID domain.CustomerID) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Account
	for _, account := range s.accounts {
		if account.HeldBy(customerID) {
			out = append(out, clone(account))
		}
	}
	sortByOpenedAt(out)
	return out, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, clone(account))
	}
	sortByOpenedAt(out)
	return out, nil
}

func (s *InMemory) Update(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.accounts[account.ID] = clone(account)
	return nil
}

func clone(a *models.Account) *models.Account {
	cp := *a
	cp.HolderIDs = append([]domain.CustomerID(nil), a.HolderIDs...)
	if a.FdID != nil {
		fd := *a.FdID
		cp.FdID = &fd
	}
	return &cp
}

func sortByOpenedAt(accounts []*models.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].OpenedAt.Before(accounts[j].OpenedAt)
	})
}
