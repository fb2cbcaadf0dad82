package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"coreteller/internal/account/models"
	"coreteller/internal/account/service"
	"coreteller/pkg/domain"
	dErrors "coreteller/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// RegisterCustomerRequest is the HTTP request body for POST /customers.
type RegisterCustomerRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	NIC         string `json:"nic"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`

	// Parsed values (populated by Validate)
	parsedNIC domain.NIC
	parsedDOB time.Time
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterCustomerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)

	nic, err := domain.ParseNIC(r.NIC)
	if err != nil {
		return err
	}
	r.parsedNIC = nic

	dob, err := time.Parse(dateLayout, r.DateOfBirth)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "date_of_birth must be in YYYY-MM-DD format")
	}
	r.parsedDOB = dob

	switch models.Gender(r.Gender) {
	case models.GenderFemale, models.GenderMale, models.GenderOther:
	default:
		return dErrors.New(dErrors.CodeValidation, "gender must be one of Female, Male, Other")
	}
	return nil
}

// ToDomain builds the service request from the validated body.
func (r *RegisterCustomerRequest) ToDomain() service.RegisterCustomerRequest {
	return service.RegisterCustomerRequest{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		NIC:         r.parsedNIC,
		DateOfBirth: r.parsedDOB,
		Gender:      models.Gender(r.Gender),
	}
}

// OpenAccountRequest is the HTTP request body for POST /accounts.
type OpenAccountRequest struct {
	CustomerID     string   `json:"customer_id"`
	JointHolderIDs []string `json:"joint_holder_ids"`
	SavingPlanID   string   `json:"saving_plan_id"`
	InitialDeposit string   `json:"initial_deposit"`

	parsedCustomerID domain.CustomerID
	parsedHolderIDs  []domain.CustomerID
	parsedPlanID     domain.SavingsPlanID
	parsedDeposit    decimal.Decimal
}

func (r *OpenAccountRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}

	customerID, err := domain.ParseCustomerID(r.CustomerID)
	if err != nil {
		return err
	}
	r.parsedCustomerID = customerID

	r.parsedHolderIDs = r.parsedHolderIDs[:0]
	for _, raw := range r.JointHolderIDs {
		holderID, err := domain.ParseCustomerID(raw)
		if err != nil {
			return err
		}
		r.parsedHolderIDs = append(r.parsedHolderIDs, holderID)
	}

	planID, err := domain.ParseSavingsPlanID(r.SavingPlanID)
	if err != nil {
		return err
	}
	r.parsedPlanID = planID

	deposit, err := decimal.NewFromString(strings.TrimSpace(r.InitialDeposit))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "initial_deposit must be a decimal amount")
	}
	r.parsedDeposit = deposit
	return nil
}

func (r *OpenAccountRequest) ToDomain() service.OpenAccountRequest {
	return service.OpenAccountRequest{
		PrimaryCustomerID: r.parsedCustomerID,
		JointHolderIDs:    r.parsedHolderIDs,
		PlanID:            r.parsedPlanID,
		InitialDeposit:    r.parsedDeposit,
	}
}

// ChangePlanRequest is the HTTP request body for POST /accounts/change-plan.
type ChangePlanRequest struct {
	AccountID    string `json:"account_id"`
	SavingPlanID string `json:"saving_plan_id"`
	Reason       string `json:"reason"`
	NewNIC       string `json:"new_nic,omitempty"`

	parsedAccountID domain.AccountID
	parsedPlanID    domain.SavingsPlanID
	parsedNewNIC    domain.NIC
}

func (r *ChangePlanRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}

	accountID, err := domain.ParseAccountID(r.AccountID)
	if err != nil {
		return err
	}
	r.parsedAccountID = accountID

	planID, err := domain.ParseSavingsPlanID(r.SavingPlanID)
	if err != nil {
		return err
	}
	r.parsedPlanID = planID

	// The NIC is only required for Teen to Adult moves; the rules engine
	// enforces that. Here a supplied value just has to be well formed.
	if strings.TrimSpace(r.NewNIC) != "" {
		nic, err := domain.ParseNIC(r.NewNIC)
		if err != nil {
			return err
		}
		r.parsedNewNIC = nic
	}
	return nil
}

func (r *ChangePlanRequest) ToDomain() service.ChangePlanRequest {
	return service.ChangePlanRequest{
		AccountID: r.parsedAccountID,
		NewPlanID: r.parsedPlanID,
		Reason:    r.Reason,
		NewNIC:    r.parsedNewNIC,
	}
}

// DeactivateAccountRequest is the HTTP request body for POST /accounts/deactivate.
type DeactivateAccountRequest struct {
	AccountID string `json:"account_id"`
	Reason    string `json:"reason"`

	parsedAccountID domain.AccountID
}

func (r *DeactivateAccountRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}
	accountID, err := domain.ParseAccountID(r.AccountID)
	if err != nil {
		return err
	}
	r.parsedAccountID = accountID
	return nil
}
