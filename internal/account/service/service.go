package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	accountmetrics "coreteller/internal/account/metrics"
	"coreteller/internal/account/models"
	"coreteller/pkg/domain"
	dErrors "coreteller/pkg/domain-errors"
	"coreteller/pkg/platform/audit"
	"coreteller/pkg/platform/sentinel"
	"coreteller/pkg/requestcontext"
)

// Service orchestrates account lifecycle operations around the pure rules in
// rules.go. It supplies entities from the stores, runs each approval inside
// the transaction boundary, and emits audit events after commit.
type Service struct {
	customers CustomerStore
	plans     PlanStore
	accounts  AccountStore
	tx        StoreTx
	auditPub  AuditPublisher
	metrics   *accountmetrics.Metrics
	logger    *slog.Logger
}

type serviceConfig struct {
	tx       StoreTx
	auditPub AuditPublisher
	metrics  *accountmetrics.Metrics
	logger   *slog.Logger
}

type Option func(*serviceConfig)

func WithTx(tx StoreTx) Option { return func(c *serviceConfig) { c.tx = tx } }

func WithAudit(pub AuditPublisher) Option { return func(c *serviceConfig) { c.auditPub = pub } }

func WithMetrics(m *accountmetrics.Metrics) Option { return func(c *serviceConfig) { c.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(c *serviceConfig) { c.logger = l } }

func New(customers CustomerStore, plans PlanStore, accounts AccountStore, opts ...Option) *Service {
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
		customers: customers,
		plans:     plans,
		accounts:  accounts,
		tx:        cfg.tx,
		auditPub:  cfg.auditPub,
		metrics:   cfg.metrics,
		logger:    cfg.logger,
	}
}

// RegisterCustomerRequest captures the registration form fields.
type RegisterCustomerRequest struct {
	FirstName   string
	LastName    string
	NIC         domain.NIC
	DateOfBirth time.Time
	Gender      models.Gender
}

func (s *Service) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*models.Customer, error) {
	v := &models.Violations{}
	if req.FirstName == "" {
		v.Add("first_name", "First name is required")
	}
	if req.LastName == "" {
		v.Add("last_name", "Last name is required")
	}
	if req.NIC.IsZero() {
		v.Add("nic", "NIC or birth certificate number is required")
	}
	if req.DateOfBirth.IsZero() || req.DateOfBirth.After(requestcontext.Now(ctx)) {
		v.Add("date_of_birth", "Date of birth must be in the past")
	}
	if err := v.AsError(); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		ID:          domain.NewCustomerID(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		NIC:         req.NIC,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		CreatedAt:   requestcontext.Now(ctx),
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.customers.Create(txCtx, customer); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "a customer with this NIC already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register customer")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.EventCustomerRegistered, audit.Event{CustomerID: customer.ID.String()})
	if s.metrics != nil {
		s.metrics.CustomersRegistered.Inc()
	}
	return customer, nil
}

func (s *Service) FindCustomerByNIC(ctx context.Context, nic domain.NIC) (*models.Customer, error) {
	customer, err := s.customers.FindByNIC(ctx, nic)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up customer")
	}
	return customer, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list customers")
	}
	return customers, nil
}

func (s *Service) ListPlans(ctx context.Context) ([]*models.SavingsPlan, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list saving plans")
	}
	return plans, nil
}

// OpenAccountRequest captures the account creation form.
type OpenAccountRequest struct {
	PrimaryCustomerID domain.CustomerID
	JointHolderIDs    []domain.CustomerID
	PlanID            domain.SavingsPlanID
	InitialDeposit    decimal.Decimal
}

// OpenAccount validates the request against the eligibility rules and, on
// approval, creates the account with status Active and balance equal to the
// initial deposit.
func (s *Service) OpenAccount(ctx context.Context, req OpenAccountRequest) (*models.Account, error) {
	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "saving plan not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load saving plan")
	}

	holderIDs := append([]domain.CustomerID{req.PrimaryCustomerID}, req.JointHolderIDs...)
	holders := make([]models.Customer, 0, len(holderIDs))
	for _, id := range holderIDs {
		customer, err := s.customers.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.Newf(dErrors.CodeNotFound, "customer %s not found", id)
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
		}
		holders = append(holders, *customer)
	}

	approval, violations := ValidateNewAccount(holders, *plan, req.InitialDeposit, requestcontext.Now(ctx))
	if err := violations.AsError(); err != nil {
		s.countRejection("open_account")
		return nil, err
	}

	var account *models.Account
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := models.NewAccount(domain.NewAccountID(), holderIDs, approval.Plan, approval.InitialDeposit, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.accounts.Create(txCtx, a); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.EventAccountOpened, audit.Event{
		AccountID:  account.ID.String(),
		CustomerID: req.PrimaryCustomerID.String(),
	})
	if s.metrics != nil {
		s.metrics.AccountsOpened.WithLabelValues(string(plan.Type)).Inc()
	}
	return account, nil
}

func (s *Service) GetAccount(ctx context.Context, id domain.AccountID) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	return accounts, nil
}

// FindAccountsByNIC resolves the customer by NIC and returns the accounts
// they hold. Matching is by customer ID through the holder relation, never
// by display name.
func (s *Service) FindAccountsByNIC(ctx context.Context, nic domain.NIC) ([]*models.Account, error) {
	customer, err := s.FindCustomerByNIC(ctx, nic)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounts.ListByHolder(ctx, customer.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	return accounts, nil
}

// EligiblePlans returns the plans the account may change to. Joint-held
// accounts get an empty list: they are excluded from plan changes by
// construction.
func (s *Service) EligiblePlans(ctx context.Context, accountID domain.AccountID) ([]models.SavingsPlan, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	currentPlan, err := s.plans.FindByID(ctx, account.PlanID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load current plan")
	}
	if err := account.VerifyHolderInvariant(currentPlan.Type); err != nil {
		return nil, err
	}
	if currentPlan.Type.IsJoint() {
		return []models.SavingsPlan{}, nil
	}
	catalog, err := s.planCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return EligibleTargetPlans(account, catalog), nil
}

// ChangePlanRequest is the ephemeral plan-change value object; it is consumed
// entirely within one validation and apply cycle.
type ChangePlanRequest struct {
	AccountID domain.AccountID
	NewPlanID domain.SavingsPlanID
	Reason    string
	NewNIC    domain.NIC
}

// ChangePlanResult reports the applied change.
type ChangePlanResult struct {
	AccountID      domain.AccountID
	NewPlanID      domain.SavingsPlanID
	RequiresNewNIC bool
}

// ChangePlan validates and applies a plan change. The plan update and the
// NIC replacement (for Teen → Adult) run in one transaction: both commit or
// neither does.
func (s *Service) ChangePlan(ctx context.Context, req ChangePlanRequest) (*ChangePlanResult, error) {
	account, err := s.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, dErrors.New(dErrors.CodeConflict, "account is not active")
	}

	currentPlan, err := s.plans.FindByID(ctx, account.PlanID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load current plan")
	}
	if err := account.VerifyHolderInvariant(currentPlan.Type); err != nil {
		s.logger.Error("holder invariant violated", "account_id", account.ID, "err", err)
		return nil, err
	}

	newPlan, err := s.plans.FindByID(ctx, req.NewPlanID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "saving plan not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load saving plan")
	}

	catalog, err := s.planCatalog(ctx)
	if err != nil {
		return nil, err
	}

	approval, violations := ValidatePlanChange(account, *currentPlan, *newPlan, catalog, req.Reason, req.NewNIC)
	if err := violations.AsError(); err != nil {
		s.countRejection("change_plan")
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		account.PlanID = approval.NewPlanID
		account.UpdatedAt = requestcontext.Now(txCtx)
		if err := s.accounts.Update(txCtx, account); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account plan")
		}
		if approval.RequiresNewNIC {
			if err := s.customers.UpdateNIC(txCtx, account.HolderIDs[0], approval.NewNIC); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to replace NIC")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.EventPlanChanged, audit.Event{
		AccountID: account.ID.String(),
		Reason:    approval.Reason,
	})
	if approval.RequiresNewNIC {
		s.emit(ctx, audit.EventNICReplaced, audit.Event{
			AccountID:  account.ID.String(),
			CustomerID: account.HolderIDs[0].String(),
		})
	}
	if s.metrics != nil {
		s.metrics.PlanChanges.Inc()
	}
	return &ChangePlanResult{
		AccountID:      account.ID,
		NewPlanID:      approval.NewPlanID,
		RequiresNewNIC: approval.RequiresNewNIC,
	}, nil
}

// DeactivateAccount closes an account. Rejected while an active fixed
// deposit remains attached.
func (s *Service) DeactivateAccount(ctx context.Context, accountID domain.AccountID, reason string) error {
	if reason == "" {
		v := &models.Violations{}
		v.Add(models.FieldReason, "Reason for the deactivation is required")
		return v.AsError()
	}

	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := account.CanClose(); err != nil {
		return err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		account.ApplyClose(requestcontext.Now(txCtx))
		if err := s.accounts.Update(txCtx, account); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close account")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.emit(ctx, audit.EventAccountClosed, audit.Event{
		AccountID: account.ID.String(),
		Reason:    reason,
	})
	if s.metrics != nil {
		s.metrics.AccountsClosed.Inc()
	}
	return nil
}

func (s *Service) planCatalog(ctx context.Context) ([]models.SavingsPlan, error) {
	rows, err := s.plans.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load plan catalog")
	}
	catalog := make([]models.SavingsPlan, 0, len(rows))
	for _, p := range rows {
		catalog = append(catalog, *p)
	}
	return catalog, nil
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
