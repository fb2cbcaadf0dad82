package audit

import (
	"context"
	"log/slog"

	"coreteller/pkg/requestcontext"
)

// Store persists audit events. Implementations live under store/.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher hands events from request handling to the background worker.
// Emit never blocks a request: when the inbox is full the event is dropped
// and logged, trading completeness for latency on the hot path.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

const defaultInboxSize = 256

func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, defaultInboxSize),
		logger: logger,
	}
}

// Emit fills in category, timestamp, and request correlation before queuing.
func (p *Publisher) Emit(ctx context.Context, action AuditEvent, event Event) {
	event.Action = string(action)
	event.Category = CategoryFor(action)
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.AgentID == "" {
		event.AgentID = requestcontext.AgentID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, dropping event", "action", event.Action)
	}
}

// Events exposes the inbox to the worker.
func (p *Publisher) Events() <-chan Event {
	return p.inbox
}
