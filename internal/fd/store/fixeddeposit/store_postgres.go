package fixeddeposit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

const columns = `id, account_id, fd_plan_id, principal, interest_rate, term,
	opened_at, maturity_date, maturity_amount, auto_renew, status, updated_at`

// Create inserts the deposit. The conflict target is the partial unique
// index on (account_id) WHERE status = 'Active': a second active deposit on
// the same account, the losing side of a concurrent open, inserts zero rows
// and reports ErrConflict.
func (s *Postgres) Create(ctx context.Context, fd *models.FixedDeposit) error {
	const q = `
		INSERT INTO fixed_deposits (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (account_id) WHERE status = 'Active' DO NOTHING`
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, q,
		uuid.UUID(fd.ID), uuid.UUID(fd.AccountID), uuid.UUID(fd.PlanID),
		fd.Principal, fd.InterestRate, string(fd.Term),
		fd.OpenedAt, fd.MaturityDate, fd.MaturityAmount,
		fd.AutoRenew, string(fd.Status), fd.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create fixed deposit: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create fixed deposit: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.FixedDepositID) (*models.FixedDeposit, error) {
	const q = `SELECT ` + columns + ` FROM fixed_deposits WHERE id = $1`
	fd, err := scanDeposit(tx.Resolve(ctx, s.db).QueryRowContext(ctx, q, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find fixed deposit: %w", err)
	}
	return fd, nil
}

func (s *Postgres) FindActiveByAccount(ctx context.Context, accountID domain.AccountID) (*models.FixedDeposit, error) {
	const q = `SELECT ` + columns + ` FROM fixed_deposits WHERE account_id = $1 AND status = 'Active'`
	fd, err := scanDeposit(tx.Resolve(ctx, s.db).QueryRowContext(ctx, q, uuid.UUID(accountID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find active fixed deposit: %w", err)
	}
	return fd, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.FixedDeposit, error) {
	const q = `SELECT ` + columns + ` FROM fixed_deposits ORDER BY opened_at`
	return s.queryDeposits(ctx, q)
}

func (s *Postgres) ListDueForMaturity(ctx context.Context, asOf time.Time) ([]*models.FixedDeposit, error) {
	const q = `
		SELECT ` + columns + ` FROM fixed_deposits
		WHERE status = 'Active' AND maturity_date <= $1
		ORDER BY opened_at`
	return s.queryDeposits(ctx, q, asOf)
}

func (s *Postgres) Update(ctx context.Context, fd *models.FixedDeposit) error {
	const q = `
		UPDATE fixed_deposits
		SET auto_renew = $2, status = $3, updated_at = $4
		WHERE id = $1`
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, q,
		uuid.UUID(fd.ID), fd.AutoRenew, string(fd.Status), fd.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update fixed deposit: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update fixed deposit: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) queryDeposits(ctx context.Context, query string, args ...any) ([]*models.FixedDeposit, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fixed deposits: %w", err)
	}
	defer rows.Close()

	var out []*models.FixedDeposit
	for rows.Next() {
		fd, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fixed deposit: %w", err)
		}
		out = append(out, fd)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeposit(row rowScanner) (*models.FixedDeposit, error) {
	var (
		fd             models.FixedDeposit
		id             uuid.UUID
		accountID      uuid.UUID
		planID         uuid.UUID
		principal      decimal.Decimal
		rate           decimal.Decimal
		term           string
		maturityAmount decimal.Decimal
		status         string
	)
	if err := row.Scan(&id, &accountID, &planID, &principal, &rate, &term,
		&fd.OpenedAt, &fd.MaturityDate, &maturityAmount, &fd.AutoRenew, &status, &fd.UpdatedAt); err != nil {
		return nil, err
	}
	fd.ID = domain.FixedDepositID(id)
	fd.AccountID = domain.AccountID(accountID)
	fd.PlanID = domain.FdPlanID(planID)
	fd.Principal = principal
	fd.InterestRate = rate
	fd.Term = models.Term(term)
	fd.MaturityAmount = maturityAmount
	fd.Status = models.FDStatus(status)
	return &fd, nil
}
