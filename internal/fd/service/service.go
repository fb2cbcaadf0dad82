package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	accountmodels "coreteller/internal/account/models"
	"coreteller/internal/eligibility"
	fdmetrics "coreteller/internal/fd/metrics"
	"coreteller/internal/fd/models"
	"coreteller/pkg/domain"
	dErrors "coreteller/pkg/domain-errors"
	"coreteller/pkg/platform/audit"
	"coreteller/pkg/platform/sentinel"
	"coreteller/pkg/requestcontext"
)

// Service orchestrates the fixed deposit lifecycle around the pure rules in
// rules.go. Opening an FD debits the funding account; closing or maturing
// credits it back. Each of those runs inside the transaction boundary so the
// money move and the status change commit together.
type Service struct {
	customers    CustomerStore
	savingsPlans SavingsPlanStore
	accounts     AccountStore
	fdPlans      FdPlanStore
	deposits     FixedDepositStore
	tx           StoreTx
	auditPub     AuditPublisher
	metrics      *fdmetrics.Metrics
	logger       *slog.Logger
}

type serviceConfig struct {
	tx       StoreTx
	auditPub AuditPublisher
	metrics  *fdmetrics.Metrics
	logger   *slog.Logger
}

type Option func(*serviceConfig)

func WithTx(tx StoreTx) Option { return func(c *serviceConfig) { c.tx = tx } }

func WithAudit(pub AuditPublisher) Option { return func(c *serviceConfig) { c.auditPub = pub } }

func WithMetrics(m *fdmetrics.Metrics) Option { return func(c *serviceConfig) { c.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(c *serviceConfig) { c.logger = l } }

func New(customers CustomerStore, savingsPlans SavingsPlanStore, accounts AccountStore, fdPlans FdPlanStore, deposits FixedDepositStore, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tx == nil {
		cfg.tx = NewInMemoryStoreTx()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		customers:    customers,
		savingsPlans: savingsPlans,
		accounts:     accounts,
		fdPlans:      fdPlans,
		deposits:     deposits,
		tx:           cfg.tx,
		auditPub:     cfg.auditPub,
		metrics:      cfg.metrics,
		logger:       cfg.logger,
	}
}

func (s *Service) ListPlans(ctx context.Context) ([]*models.FdPlan, error) {
	plans, err := s.fdPlans.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fd plans")
	}
	return plans, nil
}

// EligibleAccounts resolves the customer by NIC and returns their accounts
// that may host a new fixed deposit.
func (s *Service) EligibleAccounts(ctx context.Context, nic domain.NIC) ([]*accountmodels.Account, error) {
	customer, err := s.customers.FindByNIC(ctx, nic)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up customer")
	}

	accounts, err := s.accounts.ListByHolder(ctx, customer.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}

	planTypes, err := s.planTypes(ctx)
	if err != nil {
		return nil, err
	}
	return EligibleAccountsForFD(customer.ID, accounts, planTypes), nil
}

// Projection is a maturity preview for a candidate principal and term. It is
// never stored; the figures are recomputed and frozen at open time.
type Projection struct {
	Principal      decimal.Decimal
	InterestRate   decimal.Decimal
	Term           models.Term
	MaturityDate   time.Time
	MaturityAmount decimal.Decimal
}

// Preview computes the maturity projection for a principal under an fd plan
// without opening anything.
func (s *Service) Preview(ctx context.Context, fdPlanID domain.FdPlanID, principal decimal.Decimal) (*Projection, error) {
	if !principal.IsPositive() {
		v := &accountmodels.Violations{}
		v.Add(accountmodels.FieldPrincipalAmount, "Principal amount must be greater than 0")
		return nil, v.AsError()
	}
	plan, err := s.findFdPlan(ctx, fdPlanID)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	return &Projection{
		Principal:      principal,
		InterestRate:   plan.InterestRate,
		Term:           plan.Term,
		MaturityDate:   MaturityDate(now, plan.Term),
		MaturityAmount: MaturityAmount(principal, plan.InterestRate, plan.Term),
	}, nil
}

// OpenFDRequest captures the fixed deposit creation form.
type OpenFDRequest struct {
	CustomerID domain.CustomerID
	AccountID  domain.AccountID
	FdPlanID   domain.FdPlanID
	Principal  decimal.Decimal
	AutoRenew  bool
}

// OpenFD validates the request against the eligibility rules and, on
// approval, debits the principal from the funding account, creates the FD
// with its maturity figures frozen, and links it to the account. The account
// is re-read inside the transaction so two concurrent opens against the same
// account resolve to one success and one conflict.
func (s *Service) OpenFD(ctx context.Context, req OpenFDRequest) (*models.FixedDeposit, error) {
	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
	}

	fdPlan, err := s.findFdPlan(ctx, req.FdPlanID)
	if err != nil {
		return nil, err
	}

	account, savingsPlan, err := s.loadAccountWithPlan(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	approval, violations := ValidateNewFD(*customer, account, *savingsPlan, *fdPlan, req.Principal, requestcontext.Now(ctx))
	if err := violations.AsError(); err != nil {
		s.countRejection("open_fd")
		return nil, err
	}

	var fd *models.FixedDeposit
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.accounts.FindByID(txCtx, req.AccountID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reload account")
		}
		if current.HasFixedDeposit() {
			return dErrors.New(dErrors.CodeConflict, "account already has a fixed deposit")
		}
		// The account link is the fast check; the deposit table is the source
		// of truth for the one-active-deposit invariant.
		if _, err := s.deposits.FindActiveByAccount(txCtx, req.AccountID); err == nil {
			return dErrors.New(dErrors.CodeConflict, "account already has a fixed deposit")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check for an active fixed deposit")
		}
		if !current.IsActive() {
			return dErrors.New(dErrors.CodeConflict, "account is not active")
		}

		now := requestcontext.Now(txCtx)
		if err := current.Debit(approval.Principal, now); err != nil {
			return err
		}

		created := &models.FixedDeposit{
			ID:             domain.NewFixedDepositID(),
			AccountID:      current.ID,
			PlanID:         fdPlan.ID,
			Principal:      approval.Principal,
			InterestRate:   fdPlan.InterestRate,
			Term:           fdPlan.Term,
			OpenedAt:       now,
			MaturityDate:   approval.MaturityDate,
			MaturityAmount: approval.MaturityAmount,
			AutoRenew:      req.AutoRenew,
			Status:         models.FDActive,
			UpdatedAt:      now,
		}
		if err := s.deposits.Create(txCtx, created); err != nil {
			// The storage backstop for the one-active-deposit invariant: a
			// race lost after the recheck still resolves to a conflict.
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "account already has a fixed deposit")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create fixed deposit")
		}
		if err := current.LinkFixedDeposit(created.ID, now); err != nil {
			return err
		}
		if err := s.accounts.Update(txCtx, current); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
		}
		fd = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.EventFDOpened, audit.Event{
		FixedDepositID: fd.ID.String(),
		AccountID:      fd.AccountID.String(),
		CustomerID:     customer.ID.String(),
	})
	if s.metrics != nil {
		s.metrics.FDsOpened.Inc()
	}
	return fd, nil
}

func (s *Service) GetFD(ctx context.Context, id domain.FixedDepositID) (*models.FixedDeposit, error) {
	fd, err := s.deposits.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "fixed deposit not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fixed deposit")
	}
	return fd, nil
}

func (s *Service) ListFDs(ctx context.Context) ([]*models.FixedDeposit, error) {
	fds, err := s.deposits.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fixed deposits")
	}
	return fds, nil
}

// CloseFD closes an active fixed deposit before maturity and returns the
// principal, without interest, to the linked savings account.
func (s *Service) CloseFD(ctx context.Context, id domain.FixedDepositID, reason string) (*models.FixedDeposit, error) {
	if reason == "" {
		v := &accountmodels.Violations{}
		v.Add(accountmodels.FieldReason, "Reason for closing the fixed deposit is required")
		return nil, v.AsError()
	}

	fd, err := s.GetFD(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fd.CanClose(); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.settle(txCtx, fd, fd.Principal, func(now time.Time) { fd.ApplyClose(now) })
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.EventFDClosed, audit.Event{
		FixedDepositID: fd.ID.String(),
		AccountID:      fd.AccountID.String(),
		Reason:         reason,
	})
	if s.metrics != nil {
		s.metrics.FDsClosed.Inc()
	}
	return fd, nil
}

// MatureFD settles a fixed deposit whose maturity date has arrived: the
// maturity amount, principal plus interest, is credited to the linked
// savings account.
func (s *Service) MatureFD(ctx context.Context, id domain.FixedDepositID) (*models.FixedDeposit, error) {
	fd, err := s.GetFD(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fd.CanMature(); err != nil {
		return nil, err
	}
	if requestcontext.Now(ctx).Before(fd.MaturityDate) {
		return nil, dErrors.New(dErrors.CodeConflict, "fixed deposit has not reached its maturity date")
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.settle(txCtx, fd, fd.MaturityAmount, func(now time.Time) { fd.ApplyMature(now) })
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.EventFDMatured, audit.Event{
		FixedDepositID: fd.ID.String(),
		AccountID:      fd.AccountID.String(),
	})
	if s.metrics != nil {
		s.metrics.FDsMatured.Inc()
	}
	return fd, nil
}

// MatureDue sweeps every active fixed deposit whose maturity date has
// passed. Failures are logged per deposit and do not stop the sweep.
func (s *Service) MatureDue(ctx context.Context) (int, error) {
	due, err := s.deposits.ListDueForMaturity(ctx, requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list matured deposits")
	}
	settled := 0
	for _, fd := range due {
		if _, err := s.MatureFD(ctx, fd.ID); err != nil {
			s.logger.Error("maturity sweep failed for deposit", "fd_id", fd.ID, "err", err)
			continue
		}
		settled++
	}
	return settled, nil
}

// settle credits amount back to the linked account, unlinks the deposit, and
// applies the status transition. Runs inside the caller's transaction.
func (s *Service) settle(ctx context.Context, fd *models.FixedDeposit, amount decimal.Decimal, transition func(now time.Time)) error {
	account, err := s.accounts.FindByID(ctx, fd.AccountID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load linked account")
	}

	now := requestcontext.Now(ctx)
	if err := account.Credit(amount, now); err != nil {
		return err
	}
	account.UnlinkFixedDeposit(now)
	if err := s.accounts.Update(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update linked account")
	}

	transition(now)
	if err := s.deposits.Update(ctx, fd); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update fixed deposit")
	}
	return nil
}

func (s *Service) findFdPlan(ctx context.Context, id domain.FdPlanID) (*models.FdPlan, error) {
	plan, err := s.fdPlans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "fd plan not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fd plan")
	}
	return plan, nil
}

func (s *Service) loadAccountWithPlan(ctx context.Context, id domain.AccountID) (*accountmodels.Account, *accountmodels.SavingsPlan, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	plan, err := s.savingsPlans.FindByID(ctx, account.PlanID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load saving plan")
	}
	return account, plan, nil
}

func (s *Service) planTypes(ctx context.Context) (map[domain.SavingsPlanID]eligibility.PlanType, error) {
	plans, err := s.savingsPlans.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load plan catalog")
	}
	types := make(map[domain.SavingsPlanID]eligibility.PlanType, len(plans))
	for _, p := range plans {
		types[p.ID] = p.Type
	}
	return types, nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, event audit.Event) {
	if s.auditPub == nil {
		return
	}
	s.auditPub.Emit(ctx, action, event)
}

func (s *Service) countRejection(operation string) {
	if s.metrics != nil {
		s.metrics.ValidationFailures.WithLabelValues(operation).Inc()
	}
}
