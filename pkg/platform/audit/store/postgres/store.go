package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"coreteller/pkg/platform/audit"
)

// Store persists audit events in PostgreSQL, append-only.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	const q = `
		INSERT INTO audit_events
			(category, occurred_at, action, agent_id, customer_id, account_id, fixed_deposit_id, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.db.ExecContext(ctx, q,
		string(event.Category),
		event.Timestamp,
		event.Action,
		nullString(event.AgentID),
		nullString(event.CustomerID),
		nullString(event.AccountID),
		nullString(event.FixedDepositID),
		nullString(event.Reason),
		nullString(event.RequestID),
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
