package models

import (
	"time"

	"github.com/shopspring/decimal"

	"coreteller/pkg/domain"
	dErrors "coreteller/pkg/domain-errors"
)

// FDStatus enumerates the fixed deposit lifecycle states.
type FDStatus string

const (
	FDActive  FDStatus = "Active"
	FDMatured FDStatus = "Matured"
	FDClosed  FDStatus = "Closed"
)

// fdTransitions is the full transition table: Active → Matured (scheduler)
// and Active → Closed (manual deactivation). Both end states are terminal.
var fdTransitions = map[FDStatus][]FDStatus{
	FDActive:  {FDMatured, FDClosed},
	FDMatured: {},
	FDClosed:  {},
}

// CanTransitionTo reports whether the status may move to target.
func (s FDStatus) CanTransitionTo(target FDStatus) bool {
	for _, allowed := range fdTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// FixedDeposit is a term deposit funded from, and linked one-to-one with, a
// savings account. Maturity date and amount are computed once at creation
// and never recomputed.
type FixedDeposit struct {
	ID             domain.FixedDepositID `json:"fd_id"`
	AccountID      domain.AccountID      `json:"account_id"`
	PlanID         domain.FdPlanID       `json:"fd_plan_id"`
	Principal      decimal.Decimal       `json:"principal_amount"`
	InterestRate   decimal.Decimal       `json:"interest"`
	Term           Term                  `json:"fd_options"`
	OpenedAt       time.Time             `json:"opened_at"`
	MaturityDate   time.Time             `json:"maturity_date"`
	MaturityAmount decimal.Decimal       `json:"maturity_amount"`
	AutoRenew      bool                  `json:"auto_renewal"`
	Status         FDStatus              `json:"status"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func (fd *FixedDeposit) IsActive() bool { return fd.Status == FDActive }

// CanClose checks the manual Active → Closed transition. Closing returns the
// principal to the linked savings account; forbidden once Matured or Closed.
func (fd *FixedDeposit) CanClose() error {
	if !fd.Status.CanTransitionTo(FDClosed) {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"fixed deposit is already %s", fd.Status)
	}
	return nil
}

// ApplyClose transitions to Closed. Call CanClose first.
func (fd *FixedDeposit) ApplyClose(now time.Time) {
	fd.Status = FDClosed
	fd.UpdatedAt = now
}

// CanMature checks the scheduler's Active → Matured transition.
func (fd *FixedDeposit) CanMature() error {
	if !fd.Status.CanTransitionTo(FDMatured) {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"fixed deposit is already %s", fd.Status)
	}
	return nil
}

// ApplyMature transitions to Matured. Call CanMature first.
func (fd *FixedDeposit) ApplyMature(now time.Time) {
	fd.Status = FDMatured
	fd.UpdatedAt = now
}
