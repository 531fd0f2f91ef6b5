package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints. Every handler
// resolves the caller's cart first.
type CartHandler struct {
	carts   *service.CartService
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(carts *service.CartService, catalog *service.CatalogService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		logger:  logger,
	}
}

// ChangeQtyRequest is the JSON request body for changing a line quantity.
type ChangeQtyRequest struct {
	Qty int `json:"qty"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, _, ok := resolveCart(w, r, h.carts, h.logger)
	if !ok {
		return
	}

	httputil.WriteData(w, http.StatusOK, toCartResponse(cart))
}

// AddProduct handles POST /api/v1/cart/products/{slug}. It answers 201
// when a line was created and 200 when the product was already in the cart.
func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	cart, customer, ok := resolveCart(w, r, h.carts, h.logger)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	_, created, err := h.carts.AddLine(r.Context(), cart, customer, product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteData(w, status, toCartResponse(cart))
}

// RemoveProduct handles DELETE /api/v1/cart/products/{slug}
func (h *CartHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	cart, line, ok := h.findLine(w, r)
	if !ok {
		return
	}

	if err := h.carts.RemoveLine(r.Context(), cart, line); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCartResponse(cart))
}

// ChangeQty handles PUT /api/v1/cart/products/{slug}
func (h *CartHandler) ChangeQty(w http.ResponseWriter, r *http.Request) {
	var req ChangeQtyRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, line, ok := h.findLine(w, r)
	if !ok {
		return
	}

	if err := h.carts.ChangeQty(r.Context(), cart, line, req.Qty); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) findLine(w http.ResponseWriter, r *http.Request) (*domain.Cart, *domain.CartProduct, bool) {
	cart, customer, ok := resolveCart(w, r, h.carts, h.logger)
	if !ok {
		return nil, nil, false
	}

	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, nil, false
	}

	line, err := h.carts.FindLine(r.Context(), cart, customer, product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, nil, false
	}
	return cart, line, true
}
