package service

import (
	"context"
	"sync"
	"time"

	dErrors "coreteller/pkg/domain-errors"
)

// defaultTxTimeout bounds a transaction so a stuck store cannot pin a lock.
const defaultTxTimeout = 5 * time.Second

// inMemoryStoreTx serializes mutations behind one mutex. Good enough for the
// in-memory stores; postgres deployments wire the BeginTx implementation
// from cmd/server instead.
type inMemoryStoreTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

func NewInMemoryStoreTx() StoreTx {
	return &inMemoryStoreTx{}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}
