package handler

import (
	"time"

	"coreteller/internal/account/models"
	"coreteller/internal/account/service"
	"coreteller/internal/eligibility"
)

// CustomerResponse is the HTTP shape of a customer.
type CustomerResponse struct {
	CustomerID  string `json:"customer_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	NIC         string `json:"nic"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Age         int    `json:"age"`
	AgeBracket  string `json:"age_bracket"`
}

// FromCustomer converts a customer, deriving age and bracket at asOf.
func FromCustomer(c *models.Customer, asOf time.Time) *CustomerResponse {
	age := c.Age(asOf)
	return &CustomerResponse{
		CustomerID:  c.ID.String(),
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		NIC:         c.NIC.String(),
		DateOfBirth: c.DateOfBirth.Format(dateLayout),
		Gender:      string(c.Gender),
		Age:         age,
		AgeBracket:  string(eligibility.BracketForAge(age)),
	}
}

func FromCustomers(customers []*models.Customer, asOf time.Time) []*CustomerResponse {
	out := make([]*CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, FromCustomer(c, asOf))
	}
	return out
}

// SavingsPlanResponse is the HTTP shape of a savings plan catalog entry.
type SavingsPlanResponse struct {
	SavingPlanID string `json:"saving_plan_id"`
	PlanType     string `json:"plan_type"`
	InterestRate string `json:"interest_rate"`
	MinBalance   string `json:"min_balance"`
}

func FromSavingsPlan(p models.SavingsPlan) SavingsPlanResponse {
	return SavingsPlanResponse{
		SavingPlanID: p.ID.String(),
		PlanType:     string(p.Type),
		InterestRate: p.InterestRate.String(),
		MinBalance:   p.MinBalance.String(),
	}
}

func FromSavingsPlans(plans []models.SavingsPlan) []SavingsPlanResponse {
	out := make([]SavingsPlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, FromSavingsPlan(p))
	}
	return out
}

// AccountResponse is the HTTP shape of an account.
type AccountResponse struct {
	AccountID    string    `json:"account_id"`
	HolderIDs    []string  `json:"holder_ids"`
	SavingPlanID string    `json:"saving_plan_id"`
	Balance      string    `json:"balance"`
	Status       string    `json:"status"`
	OpenedAt     time.Time `json:"opened_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	FdID         string    `json:"fd_id,omitempty"`
}

func FromAccount(a *models.Account) *AccountResponse {
	holders := make([]string, 0, len(a.HolderIDs))
	for _, h := range a.HolderIDs {
		holders = append(holders, h.String())
	}
	resp := &AccountResponse{
		AccountID:    a.ID.String(),
		HolderIDs:    holders,
		SavingPlanID: a.PlanID.String(),
		Balance:      a.Balance.String(),
		Status:       string(a.Status),
		OpenedAt:     a.OpenedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.FdID != nil {
		resp.FdID = a.FdID.String()
	}
	return resp
}

func FromAccounts(accounts []*models.Account) []*AccountResponse {
	out := make([]*AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, FromAccount(a))
	}
	return out
}

// ChangePlanResponse is the HTTP response for POST /accounts/change-plan.
type ChangePlanResponse struct {
	AccountID      string `json:"account_id"`
	SavingPlanID   string `json:"saving_plan_id"`
	RequiresNewNIC bool   `json:"requires_new_nic"`
}

func FromChangePlanResult(result *service.ChangePlanResult) *ChangePlanResponse {
	return &ChangePlanResponse{
		AccountID:      result.AccountID.String(),
		SavingPlanID:   result.NewPlanID.String(),
		RequiresNewNIC: result.RequiresNewNIC,
	}
}

// EligiblePlanTypesResponse is the HTTP response for GET /plans/eligible.
type EligiblePlanTypesResponse struct {
	Age        int      `json:"age"`
	AgeBracket string   `json:"age_bracket"`
	PlanTypes  []string `json:"plan_types"`
}
