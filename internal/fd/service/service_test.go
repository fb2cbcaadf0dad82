package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	accountmodels "coreteller/internal/account/models"
	accountstore "coreteller/internal/account/store"
	accountmemory "coreteller/internal/account/store/account"
	customermemory "coreteller/internal/account/store/customer"
	planmemory "coreteller/internal/account/store/plan"
	"coreteller/internal/eligibility"
	"coreteller/internal/fd/models"
	fdstore "coreteller/internal/fd/store"
	fdplanmemory "coreteller/internal/fd/store/fdplan"
	depositmemory "coreteller/internal/fd/store/fixeddeposit"
	"coreteller/pkg/domain"
	dErrors "coreteller/pkg/domain-errors"
	"coreteller/pkg/platform/sentinel"
	"coreteller/pkg/testutil"
)

type FDServiceSuite struct {
	suite.Suite
	customers *customermemory.InMemory
	plans     *planmemory.InMemory
	accounts  *accountmemory.InMemory
	fdPlans   *fdplanmemory.InMemory
	deposits  *depositmemory.InMemory
	service   *Service
	ctx       context.Context

	planByType   map[eligibility.PlanType]accountmodels.SavingsPlan
	fdPlanByTerm map[models.Term]models.FdPlan
}

func TestFDServiceSuite(t *testing.T) {
	suite.Run(t, new(FDServiceSuite))
}

func (s *FDServiceSuite) SetupTest() {
	s.customers = customermemory.NewInMemory()
	s.plans = planmemory.NewInMemory()
	s.accounts = accountmemory.NewInMemory()
	s.fdPlans = fdplanmemory.NewInMemory()
	s.deposits = depositmemory.NewInMemory()

	s.planByType = make(map[eligibility.PlanType]accountmodels.SavingsPlan)
	for _, plan := range accountstore.DefaultSavingsPlans() {
		s.plans.Seed(plan)
		s.planByType[plan.Type] = plan
	}
	s.fdPlanByTerm = make(map[models.Term]models.FdPlan)
	for _, plan := range fdstore.DefaultFdPlans() {
		s.fdPlans.Seed(plan)
		s.fdPlanByTerm[plan.Term] = plan
	}

	s.service = New(s.customers, s.plans, s.accounts, s.fdPlans, s.deposits)
	s.ctx = testutil.ContextWithTime(s.T(), s.date("2024-03-15"))
}

func (s *FDServiceSuite) date(v string) time.Time {
	return testutil.MustParseDate(s.T(), v)
}

func (s *FDServiceSuite) seedAdult(nic string) *accountmodels.Customer {
	customer := &accountmodels.Customer{
		ID:          domain.NewCustomerID(),
		FirstName:   "Nimal",
		LastName:    "Perera",
		NIC:         domain.NIC(nic),
		DateOfBirth: s.date("1990-06-01"),
		Gender:      accountmodels.GenderMale,
		CreatedAt:   s.date("2024-01-01"),
	}
	s.Require().NoError(s.customers.Create(s.ctx, customer))
	return customer
}

func (s *FDServiceSuite) seedAccount(customer *accountmodels.Customer, planType eligibility.PlanType, balance int64) *accountmodels.Account {
	plan := s.planByType[planType]
	account, err := accountmodels.NewAccount(domain.NewAccountID(),
		[]domain.CustomerID{customer.ID}, plan, decimal.NewFromInt(balance), s.date("2024-01-02"))
	s.Require().NoError(err)
	s.Require().NoError(s.accounts.Create(s.ctx, account))
	return account
}

func (s *FDServiceSuite) openFD(customer *accountmodels.Customer, account *accountmodels.Account, principal int64) *models.FixedDeposit {
	fd, err := s.service.OpenFD(s.ctx, OpenFDRequest{
		CustomerID: customer.ID,
		AccountID:  account.ID,
		FdPlanID:   s.fdPlanByTerm[models.TermOneYear].ID,
		Principal:  decimal.NewFromInt(principal),
	})
	s.Require().NoError(err)
	return fd
}

func (s *FDServiceSuite) TestOpenFD() {
	s.Run("debits the principal and links the deposit", func() {
		customer := s.seedAdult("199012345678")
		account := s.seedAccount(customer, eligibility.PlanAdult, 51000)

		fd := s.openFD(customer, account, 50000)

		s.Equal(models.FDActive, fd.Status)
		s.Equal(s.date("2025-03-15"), fd.MaturityDate)
		// 14% for one year on the seeded plan sheet.
		s.True(fd.MaturityAmount.Equal(decimal.NewFromInt(57000)))

		funded, err := s.accounts.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		s.True(funded.Balance.Equal(decimal.NewFromInt(1000)))
		s.Require().NotNil(funded.FdID)
		s.Equal(fd.ID, *funded.FdID)
	})

	s.Run("second deposit on the same account is rejected", func() {
		customer := s.seedAdult("199112345678")
		account := s.seedAccount(customer, eligibility.PlanAdult, 100000)
		s.openFD(customer, account, 10000)

		_, err := s.service.OpenFD(s.ctx, OpenFDRequest{
			CustomerID: customer.ID,
			AccountID:  account.ID,
			FdPlanID:   s.fdPlanByTerm[models.TermOneYear].ID,
			Principal:  decimal.NewFromInt(10000),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("teen plan account is rejected", func() {
		customer := s.seedAdult("199212345678")
		account := s.seedAccount(customer, eligibility.PlanTeen, 50000)

		_, err := s.service.OpenFD(s.ctx, OpenFDRequest{
			CustomerID: customer.ID,
			AccountID:  account.ID,
			FdPlanID:   s.fdPlanByTerm[models.TermOneYear].ID,
			Principal:  decimal.NewFromInt(10000),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("validation failure leaves the balance untouched", func() {
		customer := s.seedAdult("199312345678")
		account := s.seedAccount(customer, eligibility.PlanAdult, 51000)

		_, err := s.service.OpenFD(s.ctx, OpenFDRequest{
			CustomerID: customer.ID,
			AccountID:  account.ID,
			FdPlanID:   s.fdPlanByTerm[models.TermOneYear].ID,
			Principal:  decimal.NewFromInt(50001),
		})
		s.Require().Error(err)

		untouched, err := s.accounts.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		s.True(untouched.Balance.Equal(decimal.NewFromInt(51000)))
		s.Nil(untouched.FdID)
	})

	s.Run("active deposit without an account link is still a conflict", func() {
		customer := s.seedAdult("199412345678")
		account := s.seedAccount(customer, eligibility.PlanAdult, 51000)
		// The deposit table, not the account link, is the source of truth.
		s.Require().NoError(s.deposits.Create(s.ctx, &models.FixedDeposit{
			ID:             domain.NewFixedDepositID(),
			AccountID:      account.ID,
			PlanID:         s.fdPlanByTerm[models.TermOneYear].ID,
			Principal:      decimal.NewFromInt(10000),
			InterestRate:   decimal.NewFromInt(14),
			Term:           models.TermOneYear,
			OpenedAt:       s.date("2024-02-01"),
			MaturityDate:   s.date("2025-02-01"),
			MaturityAmount: decimal.NewFromInt(11400),
			Status:         models.FDActive,
		}))

		_, err := s.service.OpenFD(s.ctx, OpenFDRequest{
			CustomerID: customer.ID,
			AccountID:  account.ID,
			FdPlanID:   s.fdPlanByTerm[models.TermOneYear].ID,
			Principal:  decimal.NewFromInt(10000),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		untouched, err := s.accounts.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		s.True(untouched.Balance.Equal(decimal.NewFromInt(51000)))
		s.Nil(untouched.FdID)
	})

	s.Run("race lost at insert surfaces as a conflict", func() {
		customer := s.seedAdult("199512345678")
		account := s.seedAccount(customer, eligibility.PlanAdult, 51000)
		deposits := &uncommittedReadDepositStore{InMemory: s.deposits}
		svc := New(s.customers, s.plans, s.accounts, s.fdPlans, deposits)

		first, err := svc.OpenFD(s.ctx, OpenFDRequest{
			CustomerID: customer.ID,
			AccountID:  account.ID,
			FdPlanID:   s.fdPlanByTerm[models.TermOneYear].ID,
			Principal:  decimal.NewFromInt(10000),
		})
		s.Require().NoError(err)
		s.Equal(models.FDActive, first.Status)

		// Undo the link so the second open passes every read-side check and
		// only the insert backstop can catch it.
		funded, err := s.accounts.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		funded.UnlinkFixedDeposit(s.date("2024-03-15"))
		s.Require().NoError(s.accounts.Update(s.ctx, funded))

		_, err = svc.OpenFD(s.ctx, OpenFDRequest{
			CustomerID: customer.ID,
			AccountID:  account.ID,
			FdPlanID:   s.fdPlanByTerm[models.TermOneYear].ID,
			Principal:  decimal.NewFromInt(10000),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

// uncommittedReadDepositStore hides active deposits from reads, the way a
// concurrent writer's uncommitted row is invisible under read committed
// isolation. Only the create backstop can catch the duplicate.
type uncommittedReadDepositStore struct {
	*depositmemory.InMemory
}

func (s *uncommittedReadDepositStore) FindActiveByAccount(context.Context, domain.AccountID) (*models.FixedDeposit, error) {
	return nil, sentinel.ErrNotFound
}

func (s *FDServiceSuite) TestEligibleAccounts() {
	s.Run("lists only accounts that can host a deposit", func() {
		customer := s.seedAdult("199012345678")
		eligibleAccount := s.seedAccount(customer, eligibility.PlanAdult, 51000)
		s.seedAccount(customer, eligibility.PlanTeen, 51000)
		funded := s.seedAccount(customer, eligibility.PlanSenior, 51000)
		s.openFD(customer, funded, 10000)

		accounts, err := s.service.EligibleAccounts(s.ctx, customer.NIC)
		s.Require().NoError(err)
		s.Require().Len(accounts, 1)
		s.Equal(eligibleAccount.ID, accounts[0].ID)
	})

	s.Run("unknown NIC is not found", func() {
		_, err := s.service.EligibleAccounts(s.ctx, domain.NIC("000000000000"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *FDServiceSuite) TestPreview() {
	s.Run("projects without persisting", func() {
		projection, err := s.service.Preview(s.ctx, s.fdPlanByTerm[models.TermSixMonths].ID, decimal.NewFromInt(100000))
		s.Require().NoError(err)
		// 13% for six months on the seeded plan sheet.
		s.True(projection.MaturityAmount.Equal(decimal.NewFromInt(106500)))
		s.Equal(s.date("2024-09-15"), projection.MaturityDate)

		fds, err := s.service.ListFDs(s.ctx)
		s.Require().NoError(err)
		s.Empty(fds)
	})

	s.Run("rejects non-positive principal", func() {
		_, err := s.service.Preview(s.ctx, s.fdPlanByTerm[models.TermSixMonths].ID, decimal.Zero)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *FDServiceSuite) TestCloseFD() {
	s.Run("returns the principal without interest and unlinks", func() {
		customer := s.seedAdult("199012345678")
		account := s.seedAccount(customer, eligibility.PlanAdult, 51000)
		fd := s.openFD(customer, account, 50000)

		closed, err := s.service.CloseFD(s.ctx, fd.ID, "customer request")
		s.Require().NoError(err)
		s.Equal(models.FDClosed, closed.Status)

		settled, err := s.accounts.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		s.True(settled.Balance.Equal(decimal.NewFromInt(51000)))
		s.Nil(settled.FdID)
	})

	s.Run("requires a reason", func() {
		customer := s.seedAdult("199112345678")
		account := s.seedAccount(customer, eligibility.PlanAdult, 51000)
		fd := s.openFD(customer, account, 10000)

		_, err := s.service.CloseFD(s.ctx, fd.ID, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("closing twice is an invariant violation", func() {
		customer := s.seedAdult("199212345678")
		account := s.seedAccount(customer, eligibility.PlanAdult, 51000)
		fd := s.openFD(customer, account, 10000)

		_, err := s.service.CloseFD(s.ctx, fd.ID, "first")
		s.Require().NoError(err)
		_, err = s.service.CloseFD(s.ctx, fd.ID, "second")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *FDServiceSuite) TestMatureFD() {
	s.Run("before the maturity date is a conflict", func() {
		customer := s.seedAdult("199012345678")
		account := s.seedAccount(customer, eligibility.PlanAdult, 51000)
		fd := s.openFD(customer, account, 50000)

		_, err := s.service.MatureFD(s.ctx, fd.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("credits the maturity amount on the due date", func() {
		customer := s.seedAdult("199112345678")
		account := s.seedAccount(customer, eligibility.PlanAdult, 51000)
		fd := s.openFD(customer, account, 50000)

		dueCtx := testutil.ContextWithTime(s.T(), s.date("2025-03-15"))
		matured, err := s.service.MatureFD(dueCtx, fd.ID)
		s.Require().NoError(err)
		s.Equal(models.FDMatured, matured.Status)

		settled, err := s.accounts.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		// 1000 residual + 57000 maturity amount.
		s.True(settled.Balance.Equal(decimal.NewFromInt(58000)))
		s.Nil(settled.FdID)
	})
}

func (s *FDServiceSuite) TestMatureDue() {
	s.Run("sweeps only deposits past their maturity date", func() {
		first := s.seedAdult("199012345678")
		firstAccount := s.seedAccount(first, eligibility.PlanAdult, 51000)
		dueFD := s.openFD(first, firstAccount, 10000)

		second := s.seedAdult("199112345678")
		secondAccount := s.seedAccount(second, eligibility.PlanAdult, 51000)
		notDueFD := s.openFD(second, secondAccount, 10000)
		// Push the second deposit's maturity past the sweep date.
		notDue, err := s.deposits.FindByID(s.ctx, notDueFD.ID)
		s.Require().NoError(err)
		notDue.MaturityDate = s.date("2026-03-15")
		s.Require().NoError(s.deposits.Update(s.ctx, notDue))

		sweepCtx := testutil.ContextWithTime(s.T(), s.date("2025-03-15"))
		settled, err := s.service.MatureDue(sweepCtx)
		s.Require().NoError(err)
		s.Equal(1, settled)

		matured, err := s.deposits.FindByID(s.ctx, dueFD.ID)
		s.Require().NoError(err)
		s.Equal(models.FDMatured, matured.Status)

		stillActive, err := s.deposits.FindByID(s.ctx, notDueFD.ID)
		s.Require().NoError(err)
		s.Equal(models.FDActive, stillActive.Status)
	})
}
