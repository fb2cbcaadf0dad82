package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"coreteller/internal/account/models"
	"coreteller/internal/eligibility"
	"coreteller/pkg/domain"
)

// This file is the account eligibility rules engine: pure functions of their
// inputs, no I/O. The service methods around them supply entities from the
// stores and run approvals inside a transaction boundary.

// Approval carries what persistence needs after a new-account validation
// passes: the resolved plan and the holder list, primary holder first.
type Approval struct {
	Plan           models.SavingsPlan
	Holders        []models.Customer
	InitialDeposit decimal.Decimal
}

// ChangeApproval is the outcome of a passing plan-change validation.
type ChangeApproval struct {
	NewPlanID domain.SavingsPlanID
	Reason    string
	// RequiresNewNIC is set for Teen → Adult transitions: the holder's
	// birth-certificate number must be replaced by a legally issued NIC.
	// Plan update and NIC replacement are separate effects that commit
	// together or not at all.
	RequiresNewNIC bool
	NewNIC         domain.NIC
}

// ValidateNewAccount decides whether the customers may open an account on
// the plan with the given opening deposit. Every rule is evaluated
// independently and all violations are returned together.
func ValidateNewAccount(customers []models.Customer, plan models.SavingsPlan, initialDeposit decimal.Decimal, asOf time.Time) (*Approval, *models.Violations) {
	v := &models.Violations{}

	if len(customers) == 0 {
		v.Add(models.FieldCustomerID, "Please select a customer")
	} else {
		primary := customers[0]
		requiredAge := eligibility.MinimumAgeForPlan(plan.Type)
		if age := primary.Age(asOf); age < requiredAge {
			v.Add(models.FieldCustomerID,
				"%s account requires account holder to be at least %d years old. Current age: %d",
				plan.Type, requiredAge, age)
		}
	}

	if initialDeposit.IsNegative() {
		v.Add(models.FieldInitialDeposit, "Initial deposit cannot be negative")
	} else if initialDeposit.LessThan(plan.MinBalance) {
		v.Add(models.FieldInitialDeposit,
			"Minimum balance for %s plan is LKR %s", plan.Type, plan.MinBalance.String())
	}

	if plan.Type.IsJoint() {
		if len(customers) < 2 {
			v.Add(models.FieldJointHolders, "Joint account requires at least one joint holder")
		} else {
			// Every joint holder besides the primary must be an adult; the
			// first offender is named.
			for _, holder := range customers[1:] {
				if age := holder.Age(asOf); age < eligibility.JointHolderMinAge {
					v.Add(models.FieldJointHolders,
						"Joint holder %s must be at least %d years old. Current age: %d",
						holder.FullName(), eligibility.JointHolderMinAge, age)
					break
				}
			}
		}
	}

	if !v.Empty() {
		return nil, v
	}
	return &Approval{Plan: plan, Holders: customers, InitialDeposit: initialDeposit}, v
}

// EligibleTargetPlans lists the catalog plans an account may change to: every
// plan that is not Joint and not the account's current plan. The new plan's
// own age floor is deliberately not re-checked against the holder; only the
// Teen → Adult NIC rule applies at change time.
func EligibleTargetPlans(account *models.Account, catalog []models.SavingsPlan) []models.SavingsPlan {
	eligible := make([]models.SavingsPlan, 0, len(catalog))
	for _, plan := range catalog {
		if plan.Type.IsJoint() || plan.ID == account.PlanID {
			continue
		}
		eligible = append(eligible, plan)
	}
	return eligible
}

// ValidatePlanChange decides whether the account may move from currentPlan
// to newPlan. Violations accumulate; a passing result carries the
// RequiresNewNIC flag for the Teen → Adult side effect.
func ValidatePlanChange(account *models.Account, currentPlan, newPlan models.SavingsPlan, catalog []models.SavingsPlan, reason string, newNIC domain.NIC) (*ChangeApproval, *models.Violations) {
	v := &models.Violations{}

	if currentPlan.Type.IsJoint() || account.IsJointHeld() {
		v.Add(models.FieldAccountID, "Joint accounts are not eligible for plan changes")
	}

	eligible := false
	for _, plan := range EligibleTargetPlans(account, catalog) {
		if plan.ID == newPlan.ID {
			eligible = true
			break
		}
	}
	if !eligible {
		v.Add(models.FieldSavingPlanID, "Selected plan is not available for this account")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		v.Add(models.FieldReason, "Reason for the plan change is required")
	}

	requiresNewNIC := currentPlan.Type == eligibility.PlanTeen && newPlan.Type == eligibility.PlanAdult
	if requiresNewNIC && newNIC.IsZero() {
		v.Add(models.FieldNewNIC, "A new NIC is required when changing from a Teen plan to an Adult plan")
	}

	if !v.Empty() {
		return nil, v
	}
	return &ChangeApproval{
		NewPlanID:      newPlan.ID,
		Reason:         reason,
		RequiresNewNIC: requiresNewNIC,
		NewNIC:         newNIC,
	}, v
}
