package service

import (
	"context"
	"time"

	accountmodels "coreteller/internal/account/models"
	"coreteller/internal/fd/models"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/audit"
)

// Stores return pkg/platform/sentinel errors; the service translates them
// into coded domain errors.

type CustomerStore interface {
	FindByID(ctx context.Context, id domain.CustomerID) (*accountmodels.Customer, error)
	FindByNIC(ctx context.Context, nic domain.NIC) (*accountmodels.Customer, error)
}

// SavingsPlanStore serves the savings plan catalog. Reference data, read-only.
type SavingsPlanStore interface {
	FindByID(ctx context.Context, id domain.SavingsPlanID) (*accountmodels.SavingsPlan, error)
	List(ctx context.Context) ([]*accountmodels.SavingsPlan, error)
}

// AccountStore is the slice of the account store the FD engine needs: it
// reads accounts for eligibility and writes them to move principal and to
// maintain the one-to-one FD link.
type AccountStore interface {
	FindByID(ctx context.Context, id domain.AccountID) (*accountmodels.Account, error)
	ListByHolder(ctx context.Context, customerID domain.CustomerID) ([]*accountmodels.Account, error)
	Update(ctx context.Context, account *accountmodels.Account) error
}

// FdPlanStore serves the fixed deposit term catalog.
type FdPlanStore interface {
	FindByID(ctx context.Context, id domain.FdPlanID) (*models.FdPlan, error)
	List(ctx context.Context) ([]*models.FdPlan, error)
}

type FixedDepositStore interface {
	Create(ctx context.Context, fd *models.FixedDeposit) error
	FindByID(ctx context.Context, id domain.FixedDepositID) (*models.FixedDeposit, error)
	FindActiveByAccount(ctx context.Context, accountID domain.AccountID) (*models.FixedDeposit, error)
	List(ctx context.Context) ([]*models.FixedDeposit, error)
	ListDueForMaturity(ctx context.Context, asOf time.Time) ([]*models.FixedDeposit, error)
	Update(ctx context.Context, fd *models.FixedDeposit) error
}

// StoreTx provides the transaction boundary: the debit of the savings
// account, the FD row, and the account link commit together or not at all.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditPublisher is the slice of the audit pipeline the service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, action audit.AuditEvent, event audit.Event)
}
