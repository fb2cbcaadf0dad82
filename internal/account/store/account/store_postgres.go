package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coreteller/internal/account/models"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/sentinel"
	"coreteller/pkg/platform/tx"
)

// Postgres persists accounts and the account_holders relation. Holder
// membership is a relation table keyed by customer id: lookups never compare
// display names.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, account *models.Account) error {
	q := tx.Resolve(ctx, s.db)

	const insertAccount = `
		INSERT INTO accounts (id, saving_plan_id, balance, status, opened_at, updated_at, fd_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := q.ExecContext(ctx, insertAccount,
		uuid.UUID(account.ID), uuid.UUID(account.PlanID), account.Balance,
		string(account.Status), account.OpenedAt, account.UpdatedAt, fdIDValue(account.FdID))
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	const insertHolder = `
		INSERT INTO account_holders (account_id, customer_id, position)
		VALUES ($1, $2, $3)`
	for i, holderID := range account.HolderIDs {
		if _, err := q.ExecContext(ctx, insertHolder, uuid.UUID(account.ID), uuid.UUID(holderID), i); err != nil {
			return fmt.Errorf("create account holder: %w", err)
		}
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.AccountID) (*models.Account, error) {
	const q = `
		SELECT id, saving_plan_id, balance, status, opened_at, updated_at, fd_id
		FROM accounts WHERE id = $1`
	account, err := scanAccount(tx.Resolve(ctx, s.db).QueryRowContext(ctx, q, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if err := s.loadHolders(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Postgres) ListByHolder(ctx context.Context, customerID domain.CustomerID) ([]*models.Account, error) {
	const q = `
		SELECT a.id, a.saving_plan_id, a.balance, a.status, a.opened_at, a.updated_at, a.fd_id
		FROM accounts a
		JOIN account_holders h ON h.account_id = a.id
		WHERE h.customer_id = $1
		ORDER BY a.opened_at`
	return s.queryAccounts(ctx, q, uuid.UUID(customerID))
}

func (s *Postgres) List(ctx context.Context) ([]*models.Account, error) {
	const q = `
		SELECT id, saving_plan_id, balance, status, opened_at, updated_at, fd_id
		FROM accounts ORDER BY opened_at`
	return s.queryAccounts(ctx, q)
}

func (s *Postgres) Update(ctx context.Context, account *models.Account) error {
	const q = `
		UPDATE accounts
		SET saving_plan_id = $2, balance = $3, status = $4, updated_at = $5, fd_id = $6
		WHERE id = $1`
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, q,
		uuid.UUID(account.ID), uuid.UUID(account.PlanID), account.Balance,
		string(account.Status), account.UpdatedAt, fdIDValue(account.FdID))
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) queryAccounts(ctx context.Context, query string, args ...any) ([]*models.Account, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, account := range out {
		if err := s.loadHolders(ctx, account); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Postgres) loadHolders(ctx context.Context, account *models.Account) error {
	const q = `
		SELECT customer_id FROM account_holders
		WHERE account_id = $1 ORDER BY position`
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, q, uuid.UUID(account.ID))
	if err != nil {
		return fmt.Errorf("load account holders: %w", err)
	}
	defer rows.Close()

	account.HolderIDs = account.HolderIDs[:0]
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan account holder: %w", err)
		}
		account.HolderIDs = append(account.HolderIDs, domain.CustomerID(id))
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a       models.Account
		id      uuid.UUID
		planID  uuid.UUID
		balance decimal.Decimal
		status  string
		fdID    uuid.NullUUID
	)
	if err := row.Scan(&id, &planID, &balance, &status, &a.OpenedAt, &a.UpdatedAt, &fdID); err != nil {
		return nil, err
	}
	a.ID = domain.AccountID(id)
	a.PlanID = domain.SavingsPlanID(planID)
	a.Balance = balance
	a.Status = models.AccountStatus(status)
	if fdID.Valid {
		fd := domain.FixedDepositID(fdID.UUID)
		a.FdID = &fd
	}
	return &a, nil
}

func fdIDValue(id *domain.FixedDepositID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*id), Valid: true}
}
