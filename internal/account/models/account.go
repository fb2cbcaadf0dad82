package models

import (
	"time"

	"github.com/shopspring/decimal"

	"coreteller/internal/eligibility"
	"coreteller/pkg/domain"
	dErrors "coreteller/pkg/domain-errors"
)

// AccountStatus enumerates the savings account lifecycle states.
type AccountStatus string

const (
	AccountActive AccountStatus = "Active"
	AccountClosed AccountStatus = "Closed"
)

// accountTransitions is the full transition table. Closed is terminal.
var accountTransitions = map[AccountStatus][]AccountStatus{
	AccountActive: {AccountClosed},
	AccountClosed: {},
}

// CanTransitionTo reports whether the status may move to target.
func (s AccountStatus) CanTransitionTo(target AccountStatus) bool {
	for _, allowed := range accountTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Account is a savings account.
//
// Invariants:
//   - A Joint-plan account has two or more holders; any other plan exactly one.
//   - Balance never goes negative while Active.
//   - At most one active fixed deposit is linked at a time.
//   - Status transitions: Active → Closed only.
type Account struct {
	ID        domain.AccountID     `json:"account_id"`
	HolderIDs []domain.CustomerID  `json:"holder_ids"`
	PlanID    domain.SavingsPlanID `json:"saving_plan_id"`
	Balance   decimal.Decimal      `json:"balance"`
	Status    AccountStatus        `json:"status"`
	OpenedAt  time.Time            `json:"opened_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	// FdID links the account's active fixed deposit, if any.
	FdID *domain.FixedDepositID `json:"fd_id,omitempty"`
}

// NewAccount constructs an Active account from an approval. The joint-holder
// invariant is enforced here so a malformed account cannot be built at all.
func NewAccount(id domain.AccountID, holders []domain.CustomerID, plan SavingsPlan, initialDeposit decimal.Decimal, now time.Time) (*Account, error) {
	if len(holders) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account requires at least one holder")
	}
	if plan.Type.IsJoint() && len(holders) < 2 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "joint account requires at least two holders")
	}
	if !plan.Type.IsJoint() && len(holders) != 1 {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "%s account must have exactly one holder", plan.Type)
	}
	if initialDeposit.IsNegative() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account balance cannot be negative")
	}
	return &Account{
		ID:        id,
		HolderIDs: holders,
		PlanID:    plan.ID,
		Balance:   initialDeposit,
		Status:    AccountActive,
		OpenedAt:  now,
		UpdatedAt: now,
	}, nil
}

func (a *Account) IsActive() bool { return a.Status == AccountActive }

func (a *Account) HolderCount() int { return len(a.HolderIDs) }

// HeldBy reports whether the customer is a holder. FD eligibility matches on
// customer ID, not display name.
func (a *Account) HeldBy(customerID domain.CustomerID) bool {
	for _, h := range a.HolderIDs {
		if h == customerID {
			return true
		}
	}
	return false
}

func (a *Account) HasFixedDeposit() bool { return a.FdID != nil }

// IsJointHeld reports the structural joint invariant: more than one holder.
// Rules exclude such accounts from plan changes and FDs regardless of the
// catalog row, so a mislabeled plan cannot bypass them.
func (a *Account) IsJointHeld() bool { return len(a.HolderIDs) > 1 }

// VerifyHolderInvariant cross-checks holders against the plan type. A
// violation means corrupted reference data, never an operator mistake.
func (a *Account) VerifyHolderInvariant(planType eligibility.PlanType) error {
	if planType.IsJoint() && len(a.HolderIDs) < 2 {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"joint account %s has %d holder(s)", a.ID, len(a.HolderIDs))
	}
	if !planType.IsJoint() && len(a.HolderIDs) != 1 {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"%s account %s has %d holders", planType, a.ID, len(a.HolderIDs))
	}
	return nil
}

// CanClose checks the Active → Closed transition. Deactivation is gated on
// no active fixed deposit being attached.
func (a *Account) CanClose() error {
	if !a.Status.CanTransitionTo(AccountClosed) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "account is already %s", a.Status)
	}
	if a.HasFixedDeposit() {
		return dErrors.New(dErrors.CodeConflict,
			"account has an active fixed deposit; close the fixed deposit first")
	}
	return nil
}

// ApplyClose transitions the account to Closed. Call CanClose first.
func (a *Account) ApplyClose(now time.Time) {
	a.Status = AccountClosed
	a.UpdatedAt = now
}

// Debit reduces the balance, e.g. to fund a fixed deposit. The caller has
// already validated that the plan minimum remains.
func (a *Account) Debit(amount decimal.Decimal, now time.Time) error {
	if amount.IsNegative() {
		return dErrors.New(dErrors.CodeInvariantViolation, "debit amount cannot be negative")
	}
	next := a.Balance.Sub(amount)
	if next.IsNegative() {
		return dErrors.New(dErrors.CodeInvariantViolation, "debit would overdraw the account")
	}
	a.Balance = next
	a.UpdatedAt = now
	return nil
}

// Credit increases the balance, e.g. principal returned from a closed FD.
func (a *Account) Credit(amount decimal.Decimal, now time.Time) error {
	if amount.IsNegative() {
		return dErrors.New(dErrors.CodeInvariantViolation, "credit amount cannot be negative")
	}
	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = now
	return nil
}

// LinkFixedDeposit attaches a fixed deposit. At most one may be active.
func (a *Account) LinkFixedDeposit(fdID domain.FixedDepositID, now time.Time) error {
	if a.FdID != nil {
		return dErrors.New(dErrors.CodeConflict, "account already has an active fixed deposit")
	}
	a.FdID = &fdID
	a.UpdatedAt = now
	return nil
}

// UnlinkFixedDeposit detaches the fixed deposit on closure.
func (a *Account) UnlinkFixedDeposit(now time.Time) {
	a.FdID = nil
	a.UpdatedAt = now
}
