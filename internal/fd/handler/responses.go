package handler

import (
	"time"

	accounthandler "coreteller/internal/account/handler"
	accountmodels "coreteller/internal/account/models"
	"coreteller/internal/fd/models"
	"coreteller/internal/fd/service"
)

// FdPlanResponse is the HTTP shape of a fixed deposit plan.
type FdPlanResponse struct {
	FdPlanID     string `json:"fd_plan_id"`
	Term         string `json:"fd_options"`
	InterestRate string `json:"interest"`
}

func FromFdPlan(p *models.FdPlan) FdPlanResponse {
	return FdPlanResponse{
		FdPlanID:     p.ID.String(),
		Term:         string(p.Term),
		InterestRate: p.InterestRate.String(),
	}
}

func FromFdPlans(plans []*models.FdPlan) []FdPlanResponse {
	out := make([]FdPlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, FromFdPlan(p))
	}
	return out
}

// FixedDepositResponse is the HTTP shape of a fixed deposit.
type FixedDepositResponse struct {
	FdID           string    `json:"fd_id"`
	AccountID      string    `json:"account_id"`
	FdPlanID       string    `json:"fd_plan_id"`
	Principal      string    `json:"principal_amount"`
	InterestRate   string    `json:"interest"`
	Term           string    `json:"fd_options"`
	OpenedAt       time.Time `json:"opened_at"`
	MaturityDate   string    `json:"maturity_date"`
	MaturityAmount string    `json:"maturity_amount"`
	AutoRenew      bool      `json:"auto_renewal"`
	Status         string    `json:"status"`
}

func FromFixedDeposit(fd *models.FixedDeposit) *FixedDepositResponse {
	return &FixedDepositResponse{
		FdID:           fd.ID.String(),
		AccountID:      fd.AccountID.String(),
		FdPlanID:       fd.PlanID.String(),
		Principal:      fd.Principal.String(),
		InterestRate:   fd.InterestRate.String(),
		Term:           string(fd.Term),
		OpenedAt:       fd.OpenedAt,
		MaturityDate:   fd.MaturityDate.Format("2006-01-02"),
		MaturityAmount: fd.MaturityAmount.String(),
		AutoRenew:      fd.AutoRenew,
		Status:         string(fd.Status),
	}
}

func FromFixedDeposits(fds []*models.FixedDeposit) []*FixedDepositResponse {
	out := make([]*FixedDepositResponse, 0, len(fds))
	for _, fd := range fds {
		out = append(out, FromFixedDeposit(fd))
	}
	return out
}

// FromEligibleAccounts reuses the account response shape for the
// FD-eligible-accounts listing.
func FromEligibleAccounts(accounts []*accountmodels.Account) []*accounthandler.AccountResponse {
	return accounthandler.FromAccounts(accounts)
}

// ProjectionResponse is the HTTP response for GET /fixed-deposits/preview.
type ProjectionResponse struct {
	Principal      string `json:"principal_amount"`
	InterestRate   string `json:"interest"`
	Term           string `json:"fd_options"`
	MaturityDate   string `json:"maturity_date"`
	MaturityAmount string `json:"maturity_amount"`
}

func FromProjection(p *service.Projection) *ProjectionResponse {
	return &ProjectionResponse{
		Principal:      p.Principal.String(),
		InterestRate:   p.InterestRate.String(),
		Term:           string(p.Term),
		MaturityDate:   p.MaturityDate.Format("2006-01-02"),
		MaturityAmount: p.MaturityAmount.String(),
	}
}

// MatureSweepResponse reports a maturity sweep run.
type MatureSweepResponse struct {
	Settled int `json:"settled"`
}
