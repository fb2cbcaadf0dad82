package fdplan

import (
	"context"
	"sort"
	"sync"

	"coreteller/internal/fd/models"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/sentinel"
)

// InMemory serves the fd plan catalog from a map. Seed once at startup.
type InMemory struct {
	mu    sync.RWMutex
	plans map[domain.FdPlanID]models.FdPlan
}

func NewInMemory() *InMemory {
	return &InMemory{plans: make(map[domain.FdPlanID]models.FdPlan)}
}

func (s *InMemory) Seed(plans ...models.FdPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range plans {
		s.plans[p.ID] = p
	}
}

func (s *InMemory) FindByID(_ context.Context, id domain.FdPlanID) (*models.FdPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &plan, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.FdPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.FdPlan, 0, len(s.plans))
	for _, plan := range s.plans {
		p := plan
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Term.Years().LessThan(out[j].Term.Years())
	})
	return out, nil
}
