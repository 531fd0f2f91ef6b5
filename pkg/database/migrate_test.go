package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/logger"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"000002_orders.up.sql": {Data: []byte("CREATE TABLE orders (id UUID);")},
		"000001_init.up.sql":   {Data: []byte("CREATE TABLE carts (id UUID);")},
		"000001_init.down.sql": {Data: []byte("DROP TABLE carts;")},
		"README.md":            {Data: []byte("docs")},
		"nested/000003.up.sql": {Data: []byte("SELECT 1;")},
	}
}

func TestPendingMigrations_SortedUpOnly(t *testing.T) {
	names, err := PendingMigrations(testMigrations())
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init.up.sql", "000002_orders.up.sql"}, names)
}

func TestRunMigrations_AppliesNewAndSkipsApplied(t *testing.T) {
	mock := NewMockPool(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	mock.ExpectQuery("SELECT EXISTS").WithArgs("000001_init.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery("SELECT EXISTS").WithArgs("000002_orders.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE orders (id UUID);")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("000002_orders.up.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := RunMigrations(context.Background(), mock, testMigrations(), logger.Discard())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_SQLErrorRollsBack(t *testing.T) {
	mock := NewMockPool(t)

	fsys := fstest.MapFS{"000001_init.up.sql": {Data: []byte("CREATE TABLE broken")}}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("000001_init.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE broken").WillReturnError(errors.New("syntax error at end of input"))
	mock.ExpectRollback()

	err := RunMigrations(context.Background(), mock, fsys, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute migration 000001_init.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}
