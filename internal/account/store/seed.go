package store

import (
	"github.com/shopspring/decimal"

	"coreteller/internal/account/models"
	"coreteller/internal/eligibility"
	"coreteller/pkg/domain"
)

// DefaultSavingsPlans is the development catalog, mirroring the bank's
// production plan sheet. Minimum balances in LKR.
func DefaultSavingsPlans() []models.SavingsPlan {
	return []models.SavingsPlan{
		{
			ID:           domain.NewSavingsPlanID(),
			Type:         eligibility.PlanChildren,
			InterestRate: decimal.NewFromFloat(12),
			MinBalance:   decimal.Zero,
		},
		{
			ID:           domain.NewSavingsPlanID(),
			Type:         eligibility.PlanTeen,
			InterestRate: decimal.NewFromFloat(11),
			MinBalance:   decimal.NewFromInt(500),
		},
		{
			ID:           domain.NewSavingsPlanID(),
			Type:         eligibility.PlanAdult,
			InterestRate: decimal.NewFromFloat(10),
			MinBalance:   decimal.NewFromInt(1000),
		},
		{
			ID:           domain.NewSavingsPlanID(),
			Type:         eligibility.PlanSenior,
			InterestRate: decimal.NewFromFloat(13),
			MinBalance:   decimal.NewFromInt(1000),
		},
		{
			ID:           domain.NewSavingsPlanID(),
			Type:         eligibility.PlanJoint,
			InterestRate: decimal.NewFromFloat(7),
			MinBalance:   decimal.NewFromInt(5000),
		},
	}
}
