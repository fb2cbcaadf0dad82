package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	accountmodels "coreteller/internal/account/models"
	accountstore "coreteller/internal/account/store"
	accountmemory "coreteller/internal/account/store/account"
	customermemory "coreteller/internal/account/store/customer"
	planmemory "coreteller/internal/account/store/plan"
	"coreteller/internal/eligibility"
	"coreteller/internal/fd/models"
	"coreteller/internal/fd/service"
	fdstore "coreteller/internal/fd/store"
	fdplanmemory "coreteller/internal/fd/store/fdplan"
	depositmemory "coreteller/internal/fd/store/fixeddeposit"
	"coreteller/internal/jwttoken"
	"coreteller/internal/platform/middleware"
	"coreteller/pkg/domain"
	"coreteller/pkg/requestcontext"
)

const signingKey = "test-signing-key"

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type fdFixture struct {
	router    http.Handler
	token     string
	customer  *accountmodels.Customer
	account   *accountmodels.Account
	oneYearFD models.FdPlan
}

func newFDFixture(t *testing.T) *fdFixture {
	t.Helper()
	customers := customermemory.NewInMemory()
	plans := planmemory.NewInMemory()
	accounts := accountmemory.NewInMemory()
	fdPlans := fdplanmemory.NewInMemory()
	deposits := depositmemory.NewInMemory()

	var adultPlan accountmodels.SavingsPlan
	for _, plan := range accountstore.DefaultSavingsPlans() {
		plans.Seed(plan)
		if plan.Type == eligibility.PlanAdult {
			adultPlan = plan
		}
	}
	fx := &fdFixture{}
	for _, plan := range fdstore.DefaultFdPlans() {
		fdPlans.Seed(plan)
		if plan.Term == models.TermOneYear {
			fx.oneYearFD = plan
		}
	}

	ctx := requestcontext.WithTime(t.Context(), testNow)
	fx.customer = &accountmodels.Customer{
		ID:          domain.NewCustomerID(),
		FirstName:   "Nimal",
		LastName:    "Perera",
		NIC:         domain.NIC("199012345678"),
		DateOfBirth: time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC),
		Gender:      accountmodels.GenderMale,
		CreatedAt:   testNow,
	}
	if err := customers.Create(ctx, fx.customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	account, err := accountmodels.NewAccount(domain.NewAccountID(),
		[]domain.CustomerID{fx.customer.ID}, adultPlan, decimal.NewFromInt(51000), testNow)
	if err != nil {
		t.Fatalf("build account: %v", err)
	}
	if err := accounts.Create(ctx, account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	fx.account = account

	svc := service.New(customers, plans, accounts, fdPlans, deposits)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tokens := jwttoken.NewManager(signingKey)
	fx.token, err = tokens.Issue("agent-007", "colombo-01", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	h := New(svc, logger)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(requestcontext.WithTime(req.Context(), testNow)))
		})
	})
	r.Use(middleware.RequireAgentAuth(tokens, logger))
	h.Register(r)
	fx.router = r
	return fx
}

func (fx *fdFixture) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+fx.token)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func TestFDPlanCatalog(t *testing.T) {
	fx := newFDFixture(t)

	rec := fx.do(t, http.MethodGet, "/fd-plans", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing fd plans, got %d", rec.Code)
	}
	var plans []FdPlanResponse
	if err := json.NewDecoder(rec.Body).Decode(&plans); err != nil {
		t.Fatalf("decode plans: %v", err)
	}
	if len(plans) != 3 {
		t.Fatalf("expected the three term options, got %d", len(plans))
	}
}

func TestFDPreview(t *testing.T) {
	fx := newFDFixture(t)

	rec := fx.do(t, http.MethodGet, "/fixed-deposits/preview?principal=100000&fd_plan_id="+fx.oneYearFD.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 previewing, got %d: %s", rec.Code, rec.Body.String())
	}
	var projection ProjectionResponse
	if err := json.NewDecoder(rec.Body).Decode(&projection); err != nil {
		t.Fatalf("decode projection: %v", err)
	}
	// 14% for one year on the seeded plan sheet.
	if projection.MaturityAmount != "114000" {
		t.Fatalf("expected maturity amount 114000, got %q", projection.MaturityAmount)
	}
	if projection.MaturityDate != "2025-03-15" {
		t.Fatalf("expected maturity date 2025-03-15, got %q", projection.MaturityDate)
	}
}

func TestOpenAndCloseFDViaHandlers(t *testing.T) {
	fx := newFDFixture(t)

	eligRec := fx.do(t, http.MethodGet, "/fixed-deposits/eligible-accounts?nic=199012345678", nil)
	if eligRec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing eligible accounts, got %d", eligRec.Code)
	}
	var eligible []struct {
		AccountID string `json:"account_id"`
	}
	if err := json.NewDecoder(eligRec.Body).Decode(&eligible); err != nil {
		t.Fatalf("decode eligible accounts: %v", err)
	}
	if len(eligible) != 1 || eligible[0].AccountID != fx.account.ID.String() {
		t.Fatalf("expected the seeded account to be eligible, got %+v", eligible)
	}

	openRec := fx.do(t, http.MethodPost, "/fixed-deposits", map[string]any{
		"customer_id":      fx.customer.ID.String(),
		"account_id":       fx.account.ID.String(),
		"fd_plan_id":       fx.oneYearFD.ID.String(),
		"principal_amount": "50000",
	})
	if openRec.Code != http.StatusCreated {
		t.Fatalf("expected 201 opening fd, got %d: %s", openRec.Code, openRec.Body.String())
	}
	var fd FixedDepositResponse
	if err := json.NewDecoder(openRec.Body).Decode(&fd); err != nil {
		t.Fatalf("decode fd response: %v", err)
	}
	if fd.Status != "Active" || fd.MaturityAmount != "57000" {
		t.Fatalf("unexpected fd: %+v", fd)
	}

	// Once funded, the account drops off the eligible list.
	eligRec = fx.do(t, http.MethodGet, "/fixed-deposits/eligible-accounts?nic=199012345678", nil)
	eligible = nil
	if err := json.NewDecoder(eligRec.Body).Decode(&eligible); err != nil {
		t.Fatalf("decode eligible accounts: %v", err)
	}
	if len(eligible) != 0 {
		t.Fatalf("expected no eligible accounts after funding, got %+v", eligible)
	}

	closeRec := fx.do(t, http.MethodPost, "/fixed-deposits/deactivate", map[string]string{
		"fd_id":  fd.FdID,
		"reason": "customer request",
	})
	if closeRec.Code != http.StatusOK {
		t.Fatalf("expected 200 closing fd, got %d: %s", closeRec.Code, closeRec.Body.String())
	}
	var closed FixedDepositResponse
	if err := json.NewDecoder(closeRec.Body).Decode(&closed); err != nil {
		t.Fatalf("decode closed fd: %v", err)
	}
	if closed.Status != "Closed" {
		t.Fatalf("expected Closed, got %q", closed.Status)
	}
}

func TestOpenFDValidationSurface(t *testing.T) {
	fx := newFDFixture(t)

	rec := fx.do(t, http.MethodPost, "/fixed-deposits", map[string]any{
		"customer_id":      fx.customer.ID.String(),
		"account_id":       fx.account.ID.String(),
		"fd_plan_id":       fx.oneYearFD.ID.String(),
		"principal_amount": "50001",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for principal over the maximum, got %d", rec.Code)
	}
	var errBody struct {
		Error      string `json:"error"`
		Violations []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"violations"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if len(errBody.Violations) != 1 || errBody.Violations[0].Field != "principal_amount" {
		t.Fatalf("expected one principal_amount violation, got %+v", errBody.Violations)
	}
}
