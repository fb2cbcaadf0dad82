package models

import (
	"github.com/shopspring/decimal"

	"coreteller/pkg/domain"
)

// FdPlan is a fixed deposit catalog entry: one term option with its annual
// rate. Reference data, read-only to the engine.
type FdPlan struct {
	ID           domain.FdPlanID `json:"fd_plan_id"`
	Term         Term            `json:"fd_options"`
	InterestRate decimal.Decimal `json:"interest"`
}
