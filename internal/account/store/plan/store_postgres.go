package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coreteller/internal/account/models"
	"coreteller/internal/eligibility"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/sentinel"
	"coreteller/pkg/platform/tx"
)

// Postgres serves the savings plan catalog from the saving_plans table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindByID(ctx context.Context, id domain.SavingsPlanID) (*models.SavingsPlan, error) {
	const q = `SELECT id, plan_type, interest, min_balance FROM saving_plans WHERE id = $1`
	plan, err := scanPlan(tx.Resolve(ctx, s.db).QueryRowContext(ctx, q, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find saving plan: %w", err)
	}
	return plan, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.SavingsPlan, error) {
	const q = `SELECT id, plan_type, interest, min_balance FROM saving_plans ORDER BY plan_type`
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list saving plans: %w", err)
	}
	defer rows.Close()

	var out []*models.SavingsPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("list saving plans: %w", err)
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*models.SavingsPlan, error) {
	var (
		id       uuid.UUID
		planType string
		interest decimal.Decimal
		minBal   decimal.Decimal
	)
	if err := row.Scan(&id, &planType, &interest, &minBal); err != nil {
		return nil, err
	}
	return &models.SavingsPlan{
		ID:           domain.SavingsPlanID(id),
		Type:         eligibility.PlanType(planType),
		InterestRate: interest,
		MinBalance:   minBal,
	}, nil
}
