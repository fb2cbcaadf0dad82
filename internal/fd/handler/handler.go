package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	accountmodels "coreteller/internal/account/models"
	"coreteller/internal/fd/models"
	"coreteller/internal/fd/service"
	"coreteller/pkg/domain"
	dErrors "coreteller/pkg/domain-errors"
	"coreteller/pkg/platform/httputil"
	"coreteller/pkg/requestcontext"
)

// Service defines the interface for fixed deposit operations.
type Service interface {
	ListPlans(ctx context.Context) ([]*models.FdPlan, error)
	EligibleAccounts(ctx context.Context, nic domain.NIC) ([]*accountmodels.Account, error)
	Preview(ctx context.Context, fdPlanID domain.FdPlanID, principal decimal.Decimal) (*service.Projection, error)
	OpenFD(ctx context.Context, req service.OpenFDRequest) (*models.FixedDeposit, error)
	GetFD(ctx context.Context, id domain.FixedDepositID) (*models.FixedDeposit, error)
	ListFDs(ctx context.Context) ([]*models.FixedDeposit, error)
	CloseFD(ctx context.Context, id domain.FixedDepositID, reason string) (*models.FixedDeposit, error)
	MatureDue(ctx context.Context) (int, error)
}

// Handler wires fixed deposit endpoints to the fd service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a fixed deposit handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts fixed deposit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/fd-plans", h.HandleListPlans)

	r.Post("/fixed-deposits", h.HandleOpenFD)
	r.Get("/fixed-deposits", h.HandleListFDs)
	r.Get("/fixed-deposits/eligible-accounts", h.HandleEligibleAccounts)
	r.Get("/fixed-deposits/preview", h.HandlePreview)
	r.Post("/fixed-deposits/deactivate", h.HandleCloseFD)
	r.Post("/fixed-deposits/mature", h.HandleMatureSweep)
	r.Get("/fixed-deposits/{fdID}", h.HandleGetFD)
}

// HandleListPlans handles GET /fd-plans requests.
func (h *Handler) HandleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFdPlans(plans))
}

// HandleEligibleAccounts handles GET /fixed-deposits/eligible-accounts?nic= requests.
func (h *Handler) HandleEligibleAccounts(w http.ResponseWriter, r *http.Request) {
	nic, err := domain.ParseNIC(r.URL.Query().Get("nic"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	accounts, err := h.service.EligibleAccounts(r.Context(), nic)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEligibleAccounts(accounts))
}

// HandlePreview handles GET /fixed-deposits/preview?principal=&fd_plan_id= requests.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	planID, err := domain.ParseFdPlanID(r.URL.Query().Get("fd_plan_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	principal, err := decimal.NewFromString(strings.TrimSpace(r.URL.Query().Get("principal")))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "principal must be a decimal amount"))
		return
	}
	projection, err := h.service.Preview(r.Context(), planID, principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProjection(projection))
}

// HandleOpenFD handles POST /fixed-deposits requests.
func (h *Handler) HandleOpenFD(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OpenFDRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	fd, err := h.service.OpenFD(ctx, req.ToDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "fixed deposit opening failed",
			"request_id", requestID,
			"account_id", req.AccountID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "fixed deposit opened",
		"request_id", requestID,
		"fd_id", fd.ID,
		"account_id", fd.AccountID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromFixedDeposit(fd))
}

// HandleListFDs handles GET /fixed-deposits requests.
func (h *Handler) HandleListFDs(w http.ResponseWriter, r *http.Request) {
	fds, err := h.service.ListFDs(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFixedDeposits(fds))
}

// HandleGetFD handles GET /fixed-deposits/{fdID} requests.
func (h *Handler) HandleGetFD(w http.ResponseWriter, r *http.Request) {
	fdID, err := domain.ParseFixedDepositID(chi.URLParam(r, "fdID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	fd, err := h.service.GetFD(r.Context(), fdID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFixedDeposit(fd))
}

// HandleCloseFD handles POST /fixed-deposits/deactivate requests.
func (h *Handler) HandleCloseFD(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CloseFDRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	fd, err := h.service.CloseFD(ctx, req.parsedFdID, req.Reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "fixed deposit closure failed",
			"request_id", requestID,
			"fd_id", req.FdID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "fixed deposit closed",
		"request_id", requestID,
		"fd_id", fd.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromFixedDeposit(fd))
}

// HandleMatureSweep handles POST /fixed-deposits/mature requests, run by the
// external maturity scheduler.
func (h *Handler) HandleMatureSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settled, err := h.service.MatureDue(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "maturity sweep completed",
		"request_id", requestcontext.RequestID(ctx),
		"settled", settled,
	)
	httputil.WriteJSON(w, http.StatusOK, MatureSweepResponse{Settled: settled})
}
