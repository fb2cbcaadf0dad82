package fdplan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coreteller/internal/fd/models"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/sentinel"
	"coreteller/pkg/platform/tx"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindByID(ctx context.Context, id domain.FdPlanID) (*models.FdPlan, error) {
	const q = `SELECT id, term, interest_rate FROM fd_plans WHERE id = $1`
	plan, err := scanPlan(tx.Resolve(ctx, s.db).QueryRowContext(ctx, q, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find fd plan: %w", err)
	}
	return plan, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.FdPlan, error) {
	const q = `SELECT id, term, interest_rate FROM fd_plans ORDER BY term`
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list fd plans: %w", err)
	}
	defer rows.Close()

	var out []*models.FdPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fd plan: %w", err)
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*models.FdPlan, error) {
	var (
		id   uuid.UUID
		term string
		rate decimal.Decimal
	)
	if err := row.Scan(&id, &term, &rate); err != nil {
		return nil, err
	}
	return &models.FdPlan{
		ID:           domain.FdPlanID(id),
		Term:         models.Term(term),
		InterestRate: rate,
	}, nil
}
