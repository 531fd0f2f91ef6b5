package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// AccountHandler handles registration, login and profile endpoints.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := validator.DecodeAndValidate(w, r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	session, err := h.accounts.Register(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, toSessionResponse(session))
}

// Login handles POST /api/v1/auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := validator.DecodeAndValidate(w, r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	session, err := h.accounts.Login(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, toSessionResponse(session))
}

// GetProfile handles GET /api/v1/profile
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.Profile(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	orders := make([]orderResponse, len(profile.Orders))
	for i := range profile.Orders {
		orders[i] = toOrderResponse(&profile.Orders[i])
	}

	httputil.WriteData(w, http.StatusOK, profileResponse{
		User:     toUserResponse(profile.User),
		Customer: toCustomerResponse(profile.Customer),
		Orders:   orders,
	})
}

// UpdateProfile handles PUT /api/v1/profile
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateProfileInput
	if err := validator.DecodeAndValidate(w, r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	customer, err := h.accounts.UpdateProfile(r.Context(), middleware.UserIDFromContext(r.Context()), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCustomerResponse(customer))
}
