package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// OrderHandler handles HTTP requests for checkout endpoints.
type OrderHandler struct {
	carts  *service.CartService
	orders *service.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(carts *service.CartService, orders *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		carts:  carts,
		orders: orders,
		logger: logger,
	}
}

// Checkout handles GET /api/v1/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cart, customer, ok := resolveCart(w, r, h.carts, h.logger)
	if !ok {
		return
	}

	view, err := h.orders.Checkout(r.Context(), customer, cart)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, checkoutResponse{
		Cart:     toCartResponse(view.Cart),
		Customer: toCustomerResponse(view.Customer),
	})
}

// PlaceOrder handles POST /api/v1/orders
// @Summary Place an order from the open cart
// @Tags orders
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/orders [post]
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var input service.PlaceOrderInput
	if err := validator.DecodeAndValidate(w, r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, customer, ok := resolveCart(w, r, h.carts, h.logger)
	if !ok {
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), customer, cart, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, toOrderResponse(order))
}
