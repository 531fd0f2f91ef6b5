package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/pkg/database"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	return database.NewMockPool(t)
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "test_key"}
}

func foreignKeyViolation() error {
	return &pgconn.PgError{Code: "23503"}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
