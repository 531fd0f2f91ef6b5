package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"
)

// CatalogHandler handles HTTP requests for category and product endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
	carts   *service.CartService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog *service.CatalogService, carts *service.CartService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		carts:   carts,
		logger:  logger,
	}
}

// ListCategories handles GET /api/v1/categories
// @Summary List categories
// @Tags catalog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/categories [get]
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r, h.catalog.PageSize())

	page, err := h.catalog.ListCategories(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, mapPage(page, toCategoryResponse))
}

// GetCategory handles GET /api/v1/categories/{slug}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, toCategoryDetailResponse(detail))
}

// ListProducts handles GET /api/v1/products
// @Summary List products
// @Tags catalog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/products [get]
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r, h.catalog.PageSize())

	page, err := h.catalog.ListProducts(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, mapPage(page, toProductResponse))
}

// GetProduct handles GET /api/v1/products/{slug}. Signed-in viewers also
// get in_cart.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := toProductResponse(product)

	cart, _, err := h.carts.Resolve(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if cart != nil {
		inCart := cart.HasProduct(product.ID)
		resp.InCart = &inCart
	}

	httputil.WriteData(w, http.StatusOK, resp)
}

// CreateCategory handles POST /api/v1/categories
// @Summary Create a category
// @Tags catalog
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Router /api/v1/categories [post]
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input service.CreateCategoryInput
	if err := validator.DecodeAndValidate(w, r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, toCategoryResponse(category))
}

// CreateProduct handles POST /api/v1/products
// @Summary Create a product
// @Tags catalog
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Router /api/v1/products [post]
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input service.CreateProductInput
	if err := validator.DecodeAndValidate(w, r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, toProductResponse(product))
}

type updatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// UpdateProductPrice handles PUT /api/v1/products/{slug}/price.
func (h *CatalogHandler) UpdateProductPrice(w http.ResponseWriter, r *http.Request) {
	var req updatePriceRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.UpdateProductPrice(r.Context(), chi.URLParam(r, "slug"), req.Price)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, toProductResponse(product))
}
