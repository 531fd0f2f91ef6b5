package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// catalogMaxAge is the public cache lifetime of anonymous catalog reads.
const catalogMaxAge = 60

// Services are the application services the router exposes.
type Services struct {
	Catalog *service.CatalogService
	Carts   *service.CartService
	Orders  *service.OrderService
	Account *service.AccountService
}

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	ServiceName    string
	RequestTimeout time.Duration
	CORS           middleware.CORSConfig
	ValidateToken  middleware.TokenValidator
	// CatalogAdmins may write the catalog. Empty disables catalog writes.
	CatalogAdmins []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(svc Services, healthHandler *health.Handler, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Timeout(cfg.RequestTimeout))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	catalogHandler := NewCatalogHandler(svc.Catalog, svc.Carts, logger)
	cartHandler := NewCartHandler(svc.Carts, svc.Catalog, logger)
	orderHandler := NewOrderHandler(svc.Carts, svc.Orders, logger)
	accountHandler := NewAccountHandler(svc.Account, logger)

	requireAuth := middleware.Auth(cfg.ValidateToken)
	optionalAuth := middleware.OptionalAuth(cfg.ValidateToken)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/auth/register", accountHandler.Register)
		r.Post("/auth/login", accountHandler.Login)

		// Catalog reads. RequestLogger runs again after auth so logs carry
		// the user id.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Use(middleware.RequestLogger(logger))
			r.Use(middleware.CacheControl(catalogMaxAge))

			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/categories/{slug}", catalogHandler.GetCategory)
			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{slug}", catalogHandler.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequestLogger(logger))
			r.Use(middleware.RequireUsername(cfg.CatalogAdmins...))

			r.Post("/categories", catalogHandler.CreateCategory)
			r.Post("/products", catalogHandler.CreateProduct)
			r.Put("/products/{slug}/price", catalogHandler.UpdateProductPrice)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequestLogger(logger))

			r.Get("/cart", cartHandler.GetCart)
			r.Post("/cart/products/{slug}", cartHandler.AddProduct)
			r.Put("/cart/products/{slug}", cartHandler.ChangeQty)
			r.Delete("/cart/products/{slug}", cartHandler.RemoveProduct)

			r.Get("/checkout", orderHandler.Checkout)
			r.Post("/orders", orderHandler.PlaceOrder)

			r.Get("/profile", accountHandler.GetProfile)
			r.Put("/profile", accountHandler.UpdateProfile)
		})
	})

	return r
}
