package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"coreteller/internal/account/models"
	"coreteller/internal/account/service"
	"coreteller/internal/eligibility"
	"coreteller/pkg/domain"
	dErrors "coreteller/pkg/domain-errors"
	"coreteller/pkg/platform/httputil"
	"coreteller/pkg/requestcontext"
)

// Service defines the interface for account operations.
type Service interface {
	RegisterCustomer(ctx context.Context, req service.RegisterCustomerRequest) (*models.Customer, error)
	FindCustomerByNIC(ctx context.Context, nic domain.NIC) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	ListPlans(ctx context.Context) ([]*models.SavingsPlan, error)
	OpenAccount(ctx context.Context, req service.OpenAccountRequest) (*models.Account, error)
	GetAccount(ctx context.Context, id domain.AccountID) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	FindAccountsByNIC(ctx context.Context, nic domain.NIC) ([]*models.Account, error)
	EligiblePlans(ctx context.Context, accountID domain.AccountID) ([]models.SavingsPlan, error)
	ChangePlan(ctx context.Context, req service.ChangePlanRequest) (*service.ChangePlanResult, error)
	DeactivateAccount(ctx context.Context, accountID domain.AccountID, reason string) error
}

// Handler wires customer and account endpoints to the account service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an account handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts customer and account endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/customers", h.HandleRegisterCustomer)
	r.Get("/customers", h.HandleListCustomers)
	r.Get("/customers/by-nic/{nic}", h.HandleFindCustomerByNIC)

	r.Get("/saving-plans", h.HandleListPlans)
	r.Get("/plans/eligible", h.HandleEligiblePlansForAge)

	r.Post("/accounts", h.HandleOpenAccount)
	r.Get("/accounts", h.HandleListAccounts)
	r.Get("/accounts/by-nic/{nic}", h.HandleFindAccountsByNIC)
	r.Get("/accounts/{accountID}", h.HandleGetAccount)
	r.Get("/accounts/{accountID}/eligible-plans", h.HandleEligiblePlans)
	r.Post("/accounts/change-plan", h.HandleChangePlan)
	r.Post("/accounts/deactivate", h.HandleDeactivateAccount)
}

// HandleRegisterCustomer handles POST /customers requests.
func (h *Handler) HandleRegisterCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterCustomerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	customer, err := h.service.RegisterCustomer(ctx, req.ToDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "customer registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "customer registered",
		"request_id", requestID,
		"customer_id", customer.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromCustomer(customer, requestcontext.Now(ctx)))
}

// HandleListCustomers handles GET /customers requests.
func (h *Handler) HandleListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customers, err := h.service.ListCustomers(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCustomers(customers, requestcontext.Now(ctx)))
}

// HandleFindCustomerByNIC handles GET /customers/by-nic/{nic} requests.
func (h *Handler) HandleFindCustomerByNIC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	nic, err := domain.ParseNIC(chi.URLParam(r, "nic"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	customer, err := h.service.FindCustomerByNIC(ctx, nic)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCustomer(customer, requestcontext.Now(ctx)))
}

// HandleListPlans handles GET /saving-plans requests.
func (h *Handler) HandleListPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := h.service.ListPlans(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]models.SavingsPlan, 0, len(plans))
	for _, p := range plans {
		out = append(out, *p)
	}
	httputil.WriteJSON(w, http.StatusOK, FromSavingsPlans(out))
}

// HandleEligiblePlansForAge handles GET /plans/eligible?age= requests.
func (h *Handler) HandleEligiblePlansForAge(w http.ResponseWriter, r *http.Request) {
	age, err := strconv.Atoi(r.URL.Query().Get("age"))
	if err != nil || age < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "age must be a non-negative integer"))
		return
	}
	planTypes := eligibility.EligiblePlansForAge(age)
	names := make([]string, 0, len(planTypes))
	for _, pt := range planTypes {
		names = append(names, string(pt))
	}
	httputil.WriteJSON(w, http.StatusOK, EligiblePlanTypesResponse{
		Age:        age,
		AgeBracket: string(eligibility.BracketForAge(age)),
		PlanTypes:  names,
	})
}

// HandleOpenAccount handles POST /accounts requests.
func (h *Handler) HandleOpenAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OpenAccountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	account, err := h.service.OpenAccount(ctx, req.ToDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "account opening failed",
			"request_id", requestID,
			"customer_id", req.CustomerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "account opened",
		"request_id", requestID,
		"account_id", account.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromAccount(account))
}

// HandleListAccounts handles GET /accounts requests.
func (h *Handler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAccounts(accounts))
}

// HandleGetAccount handles GET /accounts/{accountID} requests.
func (h *Handler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := domain.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAccount(account))
}

// HandleFindAccountsByNIC handles GET /accounts/by-nic/{nic} requests.
func (h *Handler) HandleFindAccountsByNIC(w http.ResponseWriter, r *http.Request) {
	nic, err := domain.ParseNIC(chi.URLParam(r, "nic"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	accounts, err := h.service.FindAccountsByNIC(r.Context(), nic)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAccounts(accounts))
}

// HandleEligiblePlans handles GET /accounts/{accountID}/eligible-plans requests.
func (h *Handler) HandleEligiblePlans(w http.ResponseWriter, r *http.Request) {
	accountID, err := domain.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	plans, err := h.service.EligiblePlans(r.Context(), accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSavingsPlans(plans))
}

// HandleChangePlan handles POST /accounts/change-plan requests.
func (h *Handler) HandleChangePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ChangePlanRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.ChangePlan(ctx, req.ToDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "plan change failed",
			"request_id", requestID,
			"account_id", req.AccountID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "plan changed",
		"request_id", requestID,
		"account_id", result.AccountID,
		"new_plan_id", result.NewPlanID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromChangePlanResult(result))
}

// HandleDeactivateAccount handles POST /accounts/deactivate requests.
func (h *Handler) HandleDeactivateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DeactivateAccountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.DeactivateAccount(ctx, req.parsedAccountID, req.Reason); err != nil {
		h.logger.ErrorContext(ctx, "account deactivation failed",
			"request_id", requestID,
			"account_id", req.AccountID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "account deactivated",
		"request_id", requestID,
		"account_id", req.AccountID,
	)
	w.WriteHeader(http.StatusNoContent)
}
