package service

import (
	"context"

	"coreteller/internal/account/models"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/audit"
)

// Stores return pkg/platform/sentinel errors; the service translates them
// into coded domain errors.

type CustomerStore interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id domain.CustomerID) (*models.Customer, error)
	FindByNIC(ctx context.Context, nic domain.NIC) (*models.Customer, error)
	List(ctx context.Context) ([]*models.Customer, error)
	// UpdateNIC is the single permitted customer mutation, used for the
	// Teen → Adult birth-certificate replacement.
	UpdateNIC(ctx context.Context, id domain.CustomerID, nic domain.NIC) error
}

// PlanStore serves the savings plan catalog. Reference data, read-only.
type PlanStore interface {
	FindByID(ctx context.Context, id domain.SavingsPlanID) (*models.SavingsPlan, error)
	List(ctx context.Context) ([]*models.SavingsPlan, error)
}

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id domain.AccountID) (*models.Account, error)
	ListByHolder(ctx context.Context, customerID domain.CustomerID) ([]*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
}

// StoreTx provides the transaction boundary around each approval so its
// effects commit together or not at all.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditPublisher is the slice of the audit pipeline the service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, action audit.AuditEvent, event audit.Event)
}
