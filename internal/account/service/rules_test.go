package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coreteller/internal/account/models"
	"coreteller/internal/eligibility"
	"coreteller/pkg/domain"
	dErrors "coreteller/pkg/domain-errors"
	"coreteller/pkg/testutil"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	return testutil.MustParseDate(t, s)
}

func testCustomer(t *testing.T, name, dob string) models.Customer {
	t.Helper()
	return models.Customer{
		ID:          domain.NewCustomerID(),
		FirstName:   name,
		LastName:    "Perera",
		NIC:         domain.NIC("200012345678"),
		DateOfBirth: mustDate(t, dob),
	}
}

func testPlan(planType eligibility.PlanType, minBalance int64) models.SavingsPlan {
	return models.SavingsPlan{
		ID:           domain.NewSavingsPlanID(),
		Type:         planType,
		InterestRate: decimal.NewFromInt(10),
		MinBalance:   decimal.NewFromInt(minBalance),
	}
}

func violationFields(v *models.Violations) map[string]string {
	out := make(map[string]string)
	for _, fv := range v.List() {
		out[fv.Field] = fv.Message
	}
	return out
}

func TestValidateNewAccount(t *testing.T) {
	asOf := mustDate(t, "2024-03-15")

	t.Run("approves adult on adult plan", func(t *testing.T) {
		adult := testCustomer(t, "Nimal", "1990-06-01")
		approval, v := ValidateNewAccount([]models.Customer{adult}, testPlan(eligibility.PlanAdult, 1000), decimal.NewFromInt(1500), asOf)
		require.True(t, v.Empty(), "violations: %v", v.List())
		require.NotNil(t, approval)
		assert.Equal(t, eligibility.PlanAdult, approval.Plan.Type)
	})

	t.Run("rejects ten year old on adult plan against customer_id", func(t *testing.T) {
		child := testCustomer(t, "Sachini", "2014-01-01")
		approval, v := ValidateNewAccount([]models.Customer{child}, testPlan(eligibility.PlanAdult, 1000), decimal.NewFromInt(1500), asOf)
		assert.Nil(t, approval)
		fields := violationFields(v)
		assert.Contains(t, fields, models.FieldCustomerID)
		assert.Equal(t, "Adult account requires account holder to be at least 18 years old. Current age: 10", fields[models.FieldCustomerID])
	})

	t.Run("accumulates age and deposit violations together", func(t *testing.T) {
		child := testCustomer(t, "Sachini", "2014-01-01")
		_, v := ValidateNewAccount([]models.Customer{child}, testPlan(eligibility.PlanAdult, 1000), decimal.NewFromInt(100), asOf)
		fields := violationFields(v)
		assert.Len(t, fields, 2)
		assert.Contains(t, fields, models.FieldCustomerID)
		assert.Contains(t, fields, models.FieldInitialDeposit)
		assert.Equal(t, "Minimum balance for Adult plan is LKR 1000", fields[models.FieldInitialDeposit])
	})

	t.Run("rejects negative deposit", func(t *testing.T) {
		adult := testCustomer(t, "Nimal", "1990-06-01")
		_, v := ValidateNewAccount([]models.Customer{adult}, testPlan(eligibility.PlanAdult, 1000), decimal.NewFromInt(-5), asOf)
		fields := violationFields(v)
		assert.Equal(t, "Initial deposit cannot be negative", fields[models.FieldInitialDeposit])
	})

	t.Run("on-birthday age counts as reached", func(t *testing.T) {
		// Turns 18 exactly on the reference date.
		turning := testCustomer(t, "Kasun", "2006-03-15")
		_, v := ValidateNewAccount([]models.Customer{turning}, testPlan(eligibility.PlanAdult, 1000), decimal.NewFromInt(1500), asOf)
		assert.True(t, v.Empty(), "violations: %v", v.List())
	})

	t.Run("joint plan requires a second holder", func(t *testing.T) {
		adult := testCustomer(t, "Nimal", "1990-06-01")
		_, v := ValidateNewAccount([]models.Customer{adult}, testPlan(eligibility.PlanJoint, 5000), decimal.NewFromInt(6000), asOf)
		fields := violationFields(v)
		assert.Equal(t, "Joint account requires at least one joint holder", fields[models.FieldJointHolders])
	})

	t.Run("underage joint holder produces one violation naming the holder", func(t *testing.T) {
		primary := testCustomer(t, "Nimal", "1990-06-01")
		minor := testCustomer(t, "Tharindu", "2010-01-01")
		minor2 := testCustomer(t, "Dilini", "2011-01-01")
		_, v := ValidateNewAccount([]models.Customer{primary, minor, minor2}, testPlan(eligibility.PlanJoint, 5000), decimal.NewFromInt(6000), asOf)

		var jointViolations []string
		for _, fv := range v.List() {
			if fv.Field == models.FieldJointHolders {
				jointViolations = append(jointViolations, fv.Message)
			}
		}
		require.Len(t, jointViolations, 1)
		assert.Equal(t, "Joint holder Tharindu Perera must be at least 18 years old. Current age: 14", jointViolations[0])
	})

	t.Run("approves joint account with two adults", func(t *testing.T) {
		primary := testCustomer(t, "Nimal", "1990-06-01")
		second := testCustomer(t, "Kumari", "1992-09-20")
		approval, v := ValidateNewAccount([]models.Customer{primary, second}, testPlan(eligibility.PlanJoint, 5000), decimal.NewFromInt(6000), asOf)
		require.True(t, v.Empty(), "violations: %v", v.List())
		assert.Len(t, approval.Holders, 2)
	})
}

func TestEligibleTargetPlans(t *testing.T) {
	adultPlan := testPlan(eligibility.PlanAdult, 1000)
	teenPlan := testPlan(eligibility.PlanTeen, 500)
	seniorPlan := testPlan(eligibility.PlanSenior, 1000)
	jointPlan := testPlan(eligibility.PlanJoint, 5000)
	catalog := []models.SavingsPlan{adultPlan, teenPlan, seniorPlan, jointPlan}

	account := &models.Account{
		ID:        domain.NewAccountID(),
		HolderIDs: []domain.CustomerID{domain.NewCustomerID()},
		PlanID:    teenPlan.ID,
		Status:    models.AccountActive,
	}

	t.Run("excludes joint and the current plan", func(t *testing.T) {
		eligible := EligibleTargetPlans(account, catalog)
		require.Len(t, eligible, 2)
		for _, plan := range eligible {
			assert.NotEqual(t, eligibility.PlanJoint, plan.Type)
			assert.NotEqual(t, account.PlanID, plan.ID)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		first := EligibleTargetPlans(account, catalog)
		second := EligibleTargetPlans(account, catalog)
		assert.Equal(t, first, second)
	})
}

func TestValidatePlanChange(t *testing.T) {
	adultPlan := testPlan(eligibility.PlanAdult, 1000)
	teenPlan := testPlan(eligibility.PlanTeen, 500)
	jointPlan := testPlan(eligibility.PlanJoint, 5000)
	catalog := []models.SavingsPlan{adultPlan, teenPlan, jointPlan}

	singleAccount := func(planID domain.SavingsPlanID) *models.Account {
		return &models.Account{
			ID:        domain.NewAccountID(),
			HolderIDs: []domain.CustomerID{domain.NewCustomerID()},
			PlanID:    planID,
			Status:    models.AccountActive,
		}
	}

	t.Run("teen to adult requires a new NIC", func(t *testing.T) {
		account := singleAccount(teenPlan.ID)
		_, v := ValidatePlanChange(account, teenPlan, adultPlan, catalog, "customer turned 18", domain.NIC(""))
		fields := violationFields(v)
		assert.Equal(t, "A new NIC is required when changing from a Teen plan to an Adult plan", fields[models.FieldNewNIC])
	})

	t.Run("teen to adult with NIC passes and flags the replacement", func(t *testing.T) {
		account := singleAccount(teenPlan.ID)
		approval, v := ValidatePlanChange(account, teenPlan, adultPlan, catalog, "customer turned 18", domain.NIC("200012345678"))
		require.True(t, v.Empty(), "violations: %v", v.List())
		assert.True(t, approval.RequiresNewNIC)
		assert.Equal(t, domain.NIC("200012345678"), approval.NewNIC)
	})

	t.Run("adult to teen does not require a NIC", func(t *testing.T) {
		account := singleAccount(adultPlan.ID)
		approval, v := ValidatePlanChange(account, adultPlan, teenPlan, catalog, "downgrade request", domain.NIC(""))
		require.True(t, v.Empty(), "violations: %v", v.List())
		assert.False(t, approval.RequiresNewNIC)
	})

	t.Run("rejects joint-held account", func(t *testing.T) {
		account := &models.Account{
			ID:        domain.NewAccountID(),
			HolderIDs: []domain.CustomerID{domain.NewCustomerID(), domain.NewCustomerID()},
			PlanID:    jointPlan.ID,
			Status:    models.AccountActive,
		}
		_, v := ValidatePlanChange(account, jointPlan, adultPlan, catalog, "split", domain.NIC(""))
		fields := violationFields(v)
		assert.Equal(t, "Joint accounts are not eligible for plan changes", fields[models.FieldAccountID])
	})

	t.Run("rejects change to the current plan", func(t *testing.T) {
		account := singleAccount(adultPlan.ID)
		_, v := ValidatePlanChange(account, adultPlan, adultPlan, catalog, "no-op", domain.NIC(""))
		fields := violationFields(v)
		assert.Equal(t, "Selected plan is not available for this account", fields[models.FieldSavingPlanID])
	})

	t.Run("requires a reason", func(t *testing.T) {
		account := singleAccount(adultPlan.ID)
		_, v := ValidatePlanChange(account, adultPlan, teenPlan, catalog, "   ", domain.NIC(""))
		fields := violationFields(v)
		assert.Equal(t, "Reason for the plan change is required", fields[models.FieldReason])
	})

	t.Run("violations carry the validation error code", func(t *testing.T) {
		account := singleAccount(adultPlan.ID)
		_, v := ValidatePlanChange(account, adultPlan, adultPlan, catalog, "", domain.NIC(""))
		err := v.AsError()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Len(t, dErrors.ViolationsOf(err), 2)
	})
}
