package plan

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"coreteller/internal/account/models"
	platformredis "coreteller/internal/platform/redis"
	"coreteller/pkg/domain"
)

// Cached is a read-through redis cache in front of another plan store. The
// catalog changes rarely and is read on every account operation, so a short
// TTL keeps the hot path off postgres without a dedicated invalidation
// channel.
type Cached struct {
	next interface {
		FindByID(ctx context.Context, id domain.SavingsPlanID) (*models.SavingsPlan, error)
		List(ctx context.Context) ([]*models.SavingsPlan, error)
	}
	client *platformredis.Client
	ttl    time.Duration
}

const catalogKey = "coreteller:saving_plans"

func NewCached(next *Postgres, client *platformredis.Client, ttl time.Duration) *Cached {
	return &Cached{next: next, client: client, ttl: ttl}
}

func (s *Cached) FindByID(ctx context.Context, id domain.SavingsPlanID) (*models.SavingsPlan, error) {
	plans, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, plan := range plans {
		if plan.ID == id {
			return plan, nil
		}
	}
	// Miss against the cached catalog: fall through in case the row is newer
	// than the cache entry.
	return s.next.FindByID(ctx, id)
}

func (s *Cached) List(ctx context.Context) ([]*models.SavingsPlan, error) {
	raw, err := s.client.Get(ctx, catalogKey).Bytes()
	if err == nil {
		var plans []*models.SavingsPlan
		if jsonErr := json.Unmarshal(raw, &plans); jsonErr == nil {
			return plans, nil
		}
		// Corrupt entry: drop it and reload from the source of truth.
		_ = s.client.Del(ctx, catalogKey).Err()
	} else if !errors.Is(err, goredis.Nil) {
		// Redis being down must not take the catalog down with it.
		return s.next.List(ctx)
	}

	plans, err := s.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, jsonErr := json.Marshal(plans); jsonErr == nil {
		_ = s.client.Set(ctx, catalogKey, encoded, s.ttl).Err()
	}
	return plans, nil
}
