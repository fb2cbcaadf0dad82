package plan

import (
	"context"
	"sort"
	"sync"

	"coreteller/internal/account/models"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/sentinel"
)

// InMemory serves the savings plan catalog from a map. The catalog is
// reference data, so the store only supports seeding and reads.
type InMemory struct {
	mu    sync.RWMutex
	plans map[domain.SavingsPlanID]*models.SavingsPlan
}

func NewInMemory() *InMemory {
	return &InMemory{plans: make(map[domain.SavingsPlanID]*models.SavingsPlan)}
}

// Seed loads catalog rows. Not part of the PlanStore interface.
func (s *InMemory) Seed(plans ...models.SavingsPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range plans {
		cp := p
		s.plans[p.ID] = &cp
	}
}

func (s *InMemory) FindByID(_ context.Context, id domain.SavingsPlanID) (*models.SavingsPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.SavingsPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.SavingsPlan, 0, len(s.plans))
	for _, plan := range s.plans {
		cp := *plan
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}
