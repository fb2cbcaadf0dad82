package service

import (
	"time"

	"github.com/shopspring/decimal"

	accountmodels "coreteller/internal/account/models"
	"coreteller/internal/eligibility"
	"coreteller/internal/fd/models"
	"coreteller/pkg/domain"
)

// This file is the fixed deposit eligibility and projection engine: pure
// functions of their inputs, no I/O.

// ineligiblePlanTypes are the savings plan types that can never host a
// fixed deposit.
var ineligiblePlanTypes = map[eligibility.PlanType]struct{}{
	eligibility.PlanChildren: {},
	eligibility.PlanTeen:     {},
	eligibility.PlanJoint:    {},
}

// Approval carries the derived figures a passing FD validation produced.
type Approval struct {
	Account        *accountmodels.Account
	Plan           models.FdPlan
	Principal      decimal.Decimal
	MaturityDate   time.Time
	MaturityAmount decimal.Decimal
}

// EligibleAccountsForFD filters the customer's accounts down to those that
// may host a new fixed deposit: held solely by this customer (matched by
// customer id), active, no existing FD, an adult-bracket plan, and a
// positive balance. planTypes resolves each account's plan type from the
// catalog.
func EligibleAccountsForFD(customerID domain.CustomerID, accounts []*accountmodels.Account, planTypes map[domain.SavingsPlanID]eligibility.PlanType) []*accountmodels.Account {
	eligible := make([]*accountmodels.Account, 0, len(accounts))
	for _, account := range accounts {
		if !account.HeldBy(customerID) || account.HolderCount() != 1 {
			continue
		}
		if !account.IsActive() || account.HasFixedDeposit() {
			continue
		}
		planType, ok := planTypes[account.PlanID]
		if !ok {
			continue
		}
		if _, blocked := ineligiblePlanTypes[planType]; blocked {
			continue
		}
		if !account.Balance.IsPositive() {
			continue
		}
		eligible = append(eligible, account)
	}
	return eligible
}

// ValidateNewFD decides whether the customer may open a fixed deposit of the
// given principal against the account. Every rule is evaluated independently
// and all violations are returned together. The principal must leave the
// savings plan's minimum balance intact.
func ValidateNewFD(customer accountmodels.Customer, account *accountmodels.Account, savingsPlan accountmodels.SavingsPlan, fdPlan models.FdPlan, principal decimal.Decimal, asOf time.Time) (*Approval, *accountmodels.Violations) {
	v := &accountmodels.Violations{}

	if age := customer.Age(asOf); age < eligibility.FDMinAge {
		v.Add(accountmodels.FieldCustomerID,
			"Customer must be at least %d years old for Fixed Deposit", eligibility.FDMinAge)
	}

	switch {
	case savingsPlan.Type.IsJoint() || account.IsJointHeld():
		v.Add(accountmodels.FieldAccountID, "Joint accounts are not eligible for fixed deposits")
	case !account.HeldBy(customer.ID):
		v.Add(accountmodels.FieldAccountID, "Account does not belong to the selected customer")
	case !account.IsActive():
		v.Add(accountmodels.FieldAccountID, "Account is not active")
	case account.HasFixedDeposit():
		v.Add(accountmodels.FieldAccountID, "Account already has a fixed deposit")
	case func() bool { _, blocked := ineligiblePlanTypes[savingsPlan.Type]; return blocked }():
		v.Add(accountmodels.FieldAccountID,
			"%s accounts are not eligible for fixed deposits", savingsPlan.Type)
	case !account.Balance.IsPositive():
		v.Add(accountmodels.FieldAccountID, "Account has no available balance")
	}

	if !principal.IsPositive() {
		v.Add(accountmodels.FieldPrincipalAmount, "Principal amount must be greater than 0")
	} else {
		available := account.Balance.Sub(savingsPlan.MinBalance)
		if principal.GreaterThan(available) {
			v.Add(accountmodels.FieldPrincipalAmount,
				"Insufficient balance. Maximum FD amount: LKR %s (Minimum balance of LKR %s must remain in savings account for %s plan)",
				available.String(), savingsPlan.MinBalance.String(), savingsPlan.Type)
		}
	}

	if !v.Empty() {
		return nil, v
	}
	return &Approval{
		Account:        account,
		Plan:           fdPlan,
		Principal:      principal,
		MaturityDate:   MaturityDate(asOf, fdPlan.Term),
		MaturityAmount: MaturityAmount(principal, fdPlan.InterestRate, fdPlan.Term),
	}, v
}

// MaturityDate projects the calendar maturity date for a term.
func MaturityDate(openDate time.Time, term models.Term) time.Time {
	return term.AddTo(openDate)
}

// MaturityAmount projects simple (non-compounding) interest over the term:
// principal x (1 + rate/100 x years).
func MaturityAmount(principal, annualRatePercent decimal.Decimal, term models.Term) decimal.Decimal {
	rate := annualRatePercent.Div(decimal.NewFromInt(100))
	growth := decimal.NewFromInt(1).Add(rate.Mul(term.Years()))
	return principal.Mul(growth)
}
