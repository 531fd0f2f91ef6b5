package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/repository/postgres"
	"github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/migrations"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
)

// store holds the repositories selected by STORE_DRIVER together with the
// connections backing them.
type store struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	users      repository.UserRepository
	customers  repository.CustomerRepository
	carts      repository.CartRepository
	orders     repository.OrderRepository

	pool  *pgxpool.Pool
	redis *goredis.Client
}

// openStore connects the configured backends, runs migrations and wraps the
// catalog repositories with the Redis cache when it is enabled.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store, error) {
	s := &store{}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		db := memory.NewDB()
		s.categories = memory.NewCategoryRepository(db)
		s.products = memory.NewProductRepository(db)
		s.users = memory.NewUserRepository(db)
		s.customers = memory.NewCustomerRepository(db)
		s.carts = memory.NewCartRepository(db)
		s.orders = memory.NewOrderRepository(db)
		logger.Warn("using in-memory store, data is lost on restart")

	default:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, cfg.ServiceName); err != nil {
			logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
		}

		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")

		if cfg.SlowQueryThresholdMs > 0 {
			database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
		}

		s.pool = pool
		s.categories = postgres.NewCategoryRepository(pool)
		s.products = postgres.NewProductRepository(pool)
		s.users = postgres.NewUserRepository(pool)
		s.customers = postgres.NewCustomerRepository(pool)
		s.carts = postgres.NewCartRepository(pool)
		s.orders = postgres.NewOrderRepository(pool)
	}

	if cfg.RedisEnabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			s.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("catalog cache enabled",
			slog.String("addr", cfg.RedisAddr),
			slog.Duration("ttl", cfg.CatalogCacheTTL),
		)
		s.redis = client
		s.categories = redis.NewCategoryCache(s.categories, client, cfg.CatalogCacheTTL, logger)
		s.products = redis.NewProductCache(s.products, client, cfg.CatalogCacheTTL, logger)
	}

	return s, nil
}

// registerChecks adds readiness checks for the open backends. Postgres is
// critical; the cache only degrades reads.
func (s *store) registerChecks(h *health.Handler) {
	if s.pool != nil {
		h.RegisterCritical("postgres", func(ctx context.Context) error {
			return s.pool.Ping(ctx)
		})
	}
	if s.redis != nil {
		h.RegisterOptional("redis", func(ctx context.Context) error {
			return redis.Ping(ctx, s.redis)
		})
	}
}

func (s *store) close() error {
	var err error
	if s.redis != nil {
		err = s.redis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}
