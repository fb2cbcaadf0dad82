package fixeddeposit

import (
	"context"
	"sort"
	"sync"
	"time"

	"coreteller/internal/fd/models"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/sentinel"
)

// InMemory keeps fixed deposits in a map.
type InMemory struct {
	mu       sync.RWMutex
	deposits map[domain.FixedDepositID]*models.FixedDeposit
}

func NewInMemory() *InMemory {
	return &InMemory{deposits: make(map[domain.FixedDepositID]*models.FixedDeposit)}
}

func (s *InMemory) Create(_ context.Context, fd *models.FixedDeposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.deposits[fd.ID]; exists {
		return sentinel.ErrConflict
	}
	// Same backstop as the partial unique index in postgres: at most one
	// active deposit per account.
	if fd.IsActive() {
		for _, existing := range s.deposits {
			if existing.AccountID == fd.AccountID && existing.IsActive() {
				return sentinel.ErrConflict
			}
		}
	}
	s.deposits[fd.ID] = clone(fd)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.FixedDepositID) (*models.FixedDeposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fd, ok := s.deposits[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(fd), nil
}

func (s *InMemory) FindActiveByAccount(_ context.Context, accountID domain.AccountID) (*models.FixedDeposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fd := range s.deposits {
		if fd.AccountID == accountID && fd.IsActive() {
			return clone(fd), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]*models.FixedDeposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.FixedDeposit, 0, len(s.deposits))
	for _, fd := range s.deposits {
		out = append(out, clone(fd))
	}
	sortByOpenedAt(out)
	return out, nil
}

func (s *InMemory) ListDueForMaturity(_ context.Context, asOf time.Time) ([]*models.FixedDeposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.FixedDeposit
	for _, fd := range s.deposits {
		if fd.IsActive() && !fd.MaturityDate.After(asOf) {
			out = append(out, clone(fd))
		}
	}
	sortByOpenedAt(out)
	return out, nil
}

func (s *InMemory) Update(_ context.Context, fd *models.FixedDeposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deposits[fd.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.deposits[fd.ID] = clone(fd)
	return nil
}

func clone(fd *models.FixedDeposit) *models.FixedDeposit {
	cp := *fd
	return &cp
}

func sortByOpenedAt(deposits []*models.FixedDeposit) {
	sort.Slice(deposits, func(i, j int) bool {
		return deposits[i].OpenedAt.Before(deposits[j].OpenedAt)
	})
}
