package models

import (
	"github.com/shopspring/decimal"

	"coreteller/internal/eligibility"
	"coreteller/pkg/domain"
)

// SavingsPlan is a catalog entity: reference data, read-only to the rules
// engine. Interest rate is an annual percentage.
type SavingsPlan struct {
	ID           domain.SavingsPlanID `json:"saving_plan_id"`
	Type         eligibility.PlanType `json:"plan_type"`
	InterestRate decimal.Decimal      `json:"interest"`
	MinBalance   decimal.Decimal      `json:"min_balance"`
}
