package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	router  http.Handler
	jwt     *auth.JWTManager
	catalog *service.CatalogService
}

// newTestServer wires the production router over an in-memory store with
// two categories and five products.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := testLogger()
	db := memory.NewDB()
	events := event.NewProducer(event.Discard{}, logger)
	jwt := auth.NewJWTManager("test-secret-key-for-testing", time.Hour)

	catalog := service.NewCatalogService(memory.NewCategoryRepository(db), memory.NewProductRepository(db), 4, logger)
	customers := memory.NewCustomerRepository(db)
	carts := service.NewCartService(customers, memory.NewCartRepository(db), events, logger)
	orders := service.NewOrderService(memory.NewOrderRepository(db), events, logger)
	accounts := service.NewAccountService(memory.NewUserRepository(db), customers, orders, jwt, events, logger)

	ctx := context.Background()
	for _, name := range []string{"Phones", "Laptops"} {
		_, err := catalog.CreateCategory(ctx, service.CreateCategoryInput{Name: name})
		require.NoError(t, err)
	}
	seed := []struct{ category, title, price string }{
		{"phones", "Pixel", "15.00"},
		{"phones", "Galaxy", "10.00"},
		{"phones", "Nokia", "5.50"},
		{"laptops", "ThinkPad", "999.99"},
		{"laptops", "MacBook", "1499.00"},
	}
	for _, p := range seed {
		_, err := catalog.CreateProduct(ctx, service.CreateProductInput{
			CategorySlug: p.category,
			Title:        p.title,
			Price:        decimal.RequireFromString(p.price),
		})
		require.NoError(t, err)
	}

	router := NewRouter(
		Services{Catalog: catalog, Carts: carts, Orders: orders, Account: accounts},
		health.NewHandler(),
		RouterConfig{
			ServiceName:   "storefront-test",
			CORS:          middleware.DefaultCORSConfig(),
			ValidateToken: jwt.TokenValidator(),
			CatalogAdmins: []string{"admin"},
		},
		logger,
	)
	return &testServer{router: router, jwt: jwt, catalog: catalog}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// register creates a user and returns its access token.
func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username":   username,
		"email":      username + "@example.com",
		"password":   "correct-horse",
		"first_name": "Anna",
		"last_name":  "Ivanova",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data sessionResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Data
}

// decodeResponse reads the response body into the standard Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// ============================================================================
// Catalog
// ============================================================================

func TestListProducts_Paginated(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "public")

	type page struct {
		Data       []productResponse `json:"data"`
		TotalCount int               `json:"total_count"`
		TotalPages int               `json:"total_pages"`
		HasNext    bool              `json:"has_next"`
	}
	first := decodeData[page](t, rec)
	assert.Len(t, first.Data, 4)
	assert.Equal(t, 5, first.TotalCount)
	assert.Equal(t, 2, first.TotalPages)
	assert.True(t, first.HasNext)

	rec = srv.do(t, http.MethodGet, "/api/v1/products?page=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeData[page](t, rec)
	assert.Len(t, second.Data, 1)
	assert.False(t, second.HasNext)
}

func TestListCategories(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/categories", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[struct {
		Data []categoryResponse `json:"data"`
	}](t, rec)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "laptops", got.Data[0].Slug)
}

func TestGetCategory(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/categories/phones", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[categoryDetailResponse](t, rec)
	assert.Equal(t, "Phones", got.Name)
	assert.Len(t, got.Products, 3)
}

func TestGetCategory_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/categories/tablets", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestGetProduct_InCartForSignedInViewer(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/products/pixel", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	anon := decodeData[productResponse](t, rec)
	assert.Equal(t, "15.00", anon.Price)
	assert.Nil(t, anon.InCart)
	require.NotNil(t, anon.Category)
	assert.Equal(t, "phones", anon.Category.Slug)

	token := srv.register(t, "anna")
	rec = srv.do(t, http.MethodPost, "/api/v1/cart/products/pixel", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/products/pixel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "private, no-store", rec.Header().Get("Cache-Control"))
	viewer := decodeData[productResponse](t, rec)
	require.NotNil(t, viewer.InCart)
	assert.True(t, *viewer.InCart)
}

func TestCatalogWrites_RequireAdmin(t *testing.T) {
	srv := newTestServer(t)
	shopper := srv.register(t, "anna")
	admin := srv.register(t, "admin")
	body := map[string]string{"name": "Tablets"}

	rec := srv.do(t, http.MethodPost, "/api/v1/categories", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/categories", shopper, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	rec = srv.do(t, http.MethodPut, "/api/v1/products/pixel/price", shopper, map[string]string{"price": "1.00"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/categories", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "tablets", decodeData[categoryResponse](t, rec).Slug)
}

func TestCreateProduct(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.register(t, "admin")

	rec := srv.do(t, http.MethodPost, "/api/v1/products", admin, map[string]string{
		"category": "phones",
		"title":    "Fairphone",
		"price":    "549.90",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[productResponse](t, rec)
	assert.Equal(t, "fairphone", created.Slug)
	assert.Equal(t, "549.90", created.Price)

	rec = srv.do(t, http.MethodGet, "/api/v1/products/fairphone", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/products", admin, map[string]string{
		"category": "phones",
		"title":    "Vertu",
		"price":    "1000000.00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductPrice(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.register(t, "admin")

	rec := srv.do(t, http.MethodPut, "/api/v1/products/pixel/price", admin, map[string]string{"price": "20.00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "20.00", decodeData[productResponse](t, rec).Price)

	rec = srv.do(t, http.MethodGet, "/api/v1/products/pixel", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "20.00", decodeData[productResponse](t, rec).Price)

	tests := []struct {
		name   string
		path   string
		price  string
		status int
	}{
		{"zero price", "/api/v1/products/pixel/price", "0", http.StatusBadRequest},
		{"above max", "/api/v1/products/pixel/price", "1000000.00", http.StatusBadRequest},
		{"unknown product", "/api/v1/products/no-such-product/price", "5.00", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPut, tt.path, admin, map[string]string{"price": tt.price})
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

// ============================================================================
// Cart
// ============================================================================

func TestCart_RequiresAuthentication(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/cart/products/pixel"},
		{http.MethodDelete, "/api/v1/cart/products/pixel"},
		{http.MethodGet, "/api/v1/checkout"},
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/profile"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := srv.do(t, tc.method, tc.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCart_InvalidToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/cart", "not-a-jwt", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCart_LineLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "anna")

	rec := srv.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decodeData[cartResponse](t, rec)
	assert.Equal(t, "0.00", empty.FinalPrice)
	assert.Empty(t, empty.Products)

	rec = srv.do(t, http.MethodPost, "/api/v1/cart/products/pixel", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cart := decodeData[cartResponse](t, rec)
	assert.Equal(t, empty.ID, cart.ID)
	assert.Equal(t, "15.00", cart.FinalPrice)
	assert.Equal(t, 1, cart.NumberOfProducts)

	rec = srv.do(t, http.MethodPost, "/api/v1/cart/products/pixel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "second add reports the existing line")
	cart = decodeData[cartResponse](t, rec)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, 1, cart.Products[0].Qty)

	rec = srv.do(t, http.MethodPut, "/api/v1/cart/products/pixel", token, map[string]int{"qty": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart = decodeData[cartResponse](t, rec)
	assert.Equal(t, "45.00", cart.FinalPrice)
	assert.Equal(t, 3, cart.NumberOfProducts)
	assert.Equal(t, "45.00", cart.Products[0].FinalPrice)

	rec = srv.do(t, http.MethodDelete, "/api/v1/cart/products/pixel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeData[cartResponse](t, rec)
	assert.Equal(t, "0.00", cart.FinalPrice)
	assert.Equal(t, 0, cart.NumberOfProducts)
	assert.Empty(t, cart.Products)
}

func TestCart_ChangeQtyOutOfRange(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "anna")
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/cart/products/galaxy", token, nil).Code)

	for _, qty := range []int{0, -2, 101} {
		rec := srv.do(t, http.MethodPut, "/api/v1/cart/products/galaxy", token, map[string]int{"qty": qty})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	}
}

func TestCart_ProductNotInCart(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "anna")

	rec := srv.do(t, http.MethodDelete, "/api/v1/cart/products/galaxy", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/cart/products/no-such-product", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCart_RejectsNonJSONBody(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "anna")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/products/pixel", bytes.NewBufferString("qty=3"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// ============================================================================
// Checkout
// ============================================================================

func TestPlaceOrder_ClosesCart(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "anna")
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/cart/products/pixel", token, nil).Code)

	rec := srv.do(t, http.MethodGet, "/api/v1/checkout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	checkout := decodeData[checkoutResponse](t, rec)
	assert.Equal(t, "15.00", checkout.Cart.FinalPrice)

	rec = srv.do(t, http.MethodPost, "/api/v1/orders", token, map[string]string{
		"first_name":  "Anna",
		"last_name":   "Ivanova",
		"phone":       "+7 999 123-45-67",
		"address":     "Lenina 1",
		"buying_type": "delivery",
		"order_date":  "2024-05-20",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decodeData[orderResponse](t, rec)
	assert.Equal(t, "new", order.Status)
	assert.Equal(t, "2024-05-20", order.OrderDate)
	require.NotNil(t, order.Cart)
	assert.True(t, order.Cart.InOrder)
	assert.Equal(t, checkout.Cart.ID, order.Cart.ID)

	rec = srv.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	next := decodeData[cartResponse](t, rec)
	assert.NotEqual(t, checkout.Cart.ID, next.ID)
	assert.Equal(t, "0.00", next.FinalPrice)

	rec = srv.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeData[profileResponse](t, rec)
	require.Len(t, profile.Orders, 1)
	assert.Equal(t, 1, profile.Orders[0].Number)
	assert.Equal(t, "15.00", profile.Orders[0].Cart.FinalPrice)
}

func TestPlaceOrder_ValidationError(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "anna")

	rec := srv.do(t, http.MethodPost, "/api/v1/orders", token, map[string]string{
		"first_name":  "Anna",
		"last_name":   "Ivanova",
		"buying_type": "delivery",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "phone")
	assert.Contains(t, resp.Error.Fields, "address")

	rec = srv.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[profileResponse](t, rec).Orders)
}

// ============================================================================
// Account
// ============================================================================

func TestRegister_DuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "anna")

	rec := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username":   "anna",
		"email":      "other@example.com",
		"password":   "correct-horse",
		"first_name": "Anna",
		"last_name":  "Petrova",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "anna")

	rec := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "anna",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	session := decodeData[sessionResponse](t, rec)
	assert.Equal(t, "Bearer", session.TokenType)
	claims, err := srv.jwt.ValidateAccessToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "anna", claims.Username)

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "anna",
		"password": "wrong-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "anna")

	rec := srv.do(t, http.MethodPut, "/api/v1/profile", token, map[string]string{
		"phone":   "+7 999 000-11-22",
		"address": "Tverskaya 7",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/v1/checkout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	checkout := decodeData[checkoutResponse](t, rec)
	assert.Equal(t, "Tverskaya 7", checkout.Customer.Address)
}

// ============================================================================
// Infrastructure routes
// ============================================================================

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/health/ready", "", nil).Code)

	rec := srv.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestCorrelationIDEchoed(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set(middleware.CorrelationHeader, "corr-123")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, "corr-123", rec.Header().Get(middleware.CorrelationHeader))
}
