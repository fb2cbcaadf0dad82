package customer

import (
	"context"
	"sync"

	"coreteller/internal/account/models"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/sentinel"
)

// InMemory keeps customers in a map. Used in tests and single-node dev runs.
type InMemory struct {
	mu    sync.RWMutex
	byID  map[domain.CustomerID]*models.Customer
	byNIC map[domain.NIC]domain.CustomerID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:  make(map[domain.CustomerID]*models.Customer),
		byNIC: make(map[domain.NIC]domain.CustomerID),
	}
}

func (s *InMemory) Create(_ context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byNIC[customer.NIC]; exists {
		return sentinel.ErrConflict
	}
	cp := *customer
	s.byID[cp.ID] = &cp
	s.byNIC[cp.NIC] = cp.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.CustomerID) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *customer
	return &cp, nil
}

func (s *InMemory) FindByNIC(_ context.Context, nic domain.NIC) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNIC[nic]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Customer, 0, len(s.byID))
	for _, customer := range s.byID {
		cp := *customer
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemory) UpdateNIC(_ context.Context, id domain.CustomerID, nic domain.NIC) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	customer, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing, taken := s.byNIC[nic]; taken && existing != id {
		return sentinel.ErrConflict
	}
	delete(s.byNIC, customer.NIC)
	customer.NIC = nic
	s.byNIC[nic] = id
	return nil
}
