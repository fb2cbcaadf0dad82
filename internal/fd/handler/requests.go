package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"coreteller/internal/fd/service"
	"coreteller/pkg/domain"
	dErrors "coreteller/pkg/domain-errors"
)

// OpenFDRequest is the HTTP request body for POST /fixed-deposits.
type OpenFDRequest struct {
	CustomerID string `json:"customer_id"`
	AccountID  string `json:"account_id"`
	FdPlanID   string `json:"fd_plan_id"`
	Principal  string `json:"principal_amount"`
	AutoRenew  bool   `json:"auto_renewal"`

	// Parsed values (populated by Validate)
	parsedCustomerID domain.CustomerID
	parsedAccountID  domain.AccountID
	parsedPlanID     domain.FdPlanID
	parsedPrincipal  decimal.Decimal
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *OpenFDRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}

	customerID, err := domain.ParseCustomerID(r.CustomerID)
	if err != nil {
		return err
	}
	r.parsedCustomerID = customerID

	accountID, err := domain.ParseAccountID(r.AccountID)
	if err != nil {
		return err
	}
	r.parsedAccountID = accountID

	planID, err := domain.ParseFdPlanID(r.FdPlanID)
	if err != nil {
		return err
	}
	r.parsedPlanID = planID

	principal, err := decimal.NewFromString(strings.TrimSpace(r.Principal))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "principal_amount must be a decimal amount")
	}
	r.parsedPrincipal = principal
	return nil
}

// ToDomain builds the service request from the validated body.
func (r *OpenFDRequest) ToDomain() service.OpenFDRequest {
	return service.OpenFDRequest{
		CustomerID: r.parsedCustomerID,
		AccountID:  r.parsedAccountID,
		FdPlanID:   r.parsedPlanID,
		Principal:  r.parsedPrincipal,
		AutoRenew:  r.AutoRenew,
	}
}

// CloseFDRequest is the HTTP request body for POST /fixed-deposits/deactivate.
type CloseFDRequest struct {
	FdID   string `json:"fd_id"`
	Reason string `json:"reason"`

	parsedFdID domain.FixedDepositID
}

func (r *CloseFDRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}
	fdID, err := domain.ParseFixedDepositID(r.FdID)
	if err != nil {
		return err
	}
	r.parsedFdID = fdID
	return nil
}
