package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"coreteller/internal/account/models"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/sentinel"
	"coreteller/pkg/platform/tx"
)

// Postgres persists customers. All methods honor a transaction carried in
// the context so NIC replacement commits with the plan update.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, customer *models.Customer) error {
	const q = `
		INSERT INTO customers (id, first_name, last_name, nic, date_of_birth, gender, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (nic) DO NOTHING`
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, q,
		uuid.UUID(customer.ID), customer.FirstName, customer.LastName,
		customer.NIC.String(), customer.DateOfBirth, string(customer.Gender), customer.CreatedAt)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.CustomerID) (*models.Customer, error) {
	const q = `
		SELECT id, first_name, last_name, nic, date_of_birth, gender, created_at
		FROM customers WHERE id = $1`
	return s.scanOne(tx.Resolve(ctx, s.db).QueryRowContext(ctx, q, uuid.UUID(id)))
}

func (s *Postgres) FindByNIC(ctx context.Context, nic domain.NIC) (*models.Customer, error) {
	const q = `
		SELECT id, first_name, last_name, nic, date_of_birth, gender, created_at
		FROM customers WHERE nic = $1`
	return s.scanOne(tx.Resolve(ctx, s.db).QueryRowContext(ctx, q, nic.String()))
}

func (s *Postgres) List(ctx context.Context) ([]*models.Customer, error) {
	const q = `
		SELECT id, first_name, last_name, nic, date_of_birth, gender, created_at
		FROM customers ORDER BY created_at`
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []*models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, customer)
	}
	return out, rows.Err()
}

func (s *Postgres) UpdateNIC(ctx context.Context, id domain.CustomerID, nic domain.NIC) error {
	const q = `UPDATE customers SET nic = $2 WHERE id = $1`
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, q, uuid.UUID(id), nic.String())
	if err != nil {
		return fmt.Errorf("update customer nic: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update customer nic: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) scanOne(row rowScanner) (*models.Customer, error) {
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var (
		c      models.Customer
		id     uuid.UUID
		nic    string
		gender string
	)
	if err := row.Scan(&id, &c.FirstName, &c.LastName, &nic, &c.DateOfBirth, &gender, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ID = domain.CustomerID(id)
	c.NIC = domain.NIC(nic)
	c.Gender = models.Gender(gender)
	return &c, nil
}
