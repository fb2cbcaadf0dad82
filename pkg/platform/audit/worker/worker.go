package worker

import (
	"context"
	"log/slog"

	"coreteller/pkg/platform/audit"
)

// Sink receives compliance events for durable external delivery (kafka).
type Sink interface {
	Publish(ctx context.Context, event audit.Event) error
}

// Worker consumes audit events from the publisher inbox, persists them, and
// forwards compliance events to the sink. Persistence failures are logged
// rather than propagated: audit lag must never fail teller operations.
type Worker struct {
	store  audit.Store
	sink   Sink
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func New(store audit.Store, sink Sink, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.Error("append audit event", "action", event.Action, "err", err)
			}
			if w.sink != nil && event.Category == audit.CategoryCompliance {
				if err := w.sink.Publish(ctx, event); err != nil {
					w.logger.Error("publish audit event", "action", event.Action, "err", err)
				}
			}
		}
	}
}
