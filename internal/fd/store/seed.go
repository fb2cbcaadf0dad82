package store

import (
	"github.com/shopspring/decimal"

	"coreteller/internal/fd/models"
	"coreteller/pkg/domain"
)

// DefaultFdPlans is the development term sheet. Annual rates in percent.
func DefaultFdPlans() []models.FdPlan {
	return []models.FdPlan{
		{
			ID:           domain.NewFdPlanID(),
			Term:         models.TermSixMonths,
			InterestRate: decimal.NewFromFloat(13),
		},
		{
			ID:           domain.NewFdPlanID(),
			Term:         models.TermOneYear,
			InterestRate: decimal.NewFromFloat(14),
		},
		{
			ID:           domain.NewFdPlanID(),
			Term:         models.TermThreeYears,
			InterestRate: decimal.NewFromFloat(15),
		},
	}
}
