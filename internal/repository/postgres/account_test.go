package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

var userColumns = []string{"id", "username", "email", "password_hash", "first_name", "last_name", "created_at"}

func sampleUser() (*domain.User, *domain.Customer) {
	u := &domain.User{
		ID:           "user-1",
		Username:     "anna",
		Email:        "anna@example.com",
		PasswordHash: "$2a$12$hash",
		FirstName:    "Anna",
		LastName:     "Ivanova",
		CreatedAt:    now,
	}
	c := &domain.Customer{ID: "cust-1", UserID: u.ID, Phone: "+79990000000", Address: "Moscow", CreatedAt: now}
	return u, c
}

func TestUserRepository_CreateWithCustomer(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	u, c := sampleUser()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO customers").
		WithArgs(c.ID, c.UserID, c.Phone, c.Address, c.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateWithCustomer(context.Background(), u, c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithCustomer_DuplicateUsername(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	u, c := sampleUser()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnError(uniqueViolation())
	mock.ExpectRollback()

	err := repo.CreateWithCustomer(context.Background(), u, c)
	assert.True(t, apperrors.IsAlreadyExists(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithCustomer_CustomerInsertFails(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	u, c := sampleUser()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO customers").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.CreateWithCustomer(context.Background(), u, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert customer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithCustomer_BeginFails(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	u, c := sampleUser()

	mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

	err := repo.CreateWithCustomer(context.Background(), u, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
}

func TestUserRepository_GetByUsername(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	u, _ := sampleUser()

	mock.ExpectQuery("FROM users WHERE username").
		WithArgs("anna").
		WillReturnRows(mock.NewRows(userColumns).
			AddRow(u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt))

	got, err := repo.GetByUsername(context.Background(), "anna")
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("FROM users WHERE id").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCustomerRepository_Create_Race(t *testing.T) {
	mock := newMock(t)
	repo := NewCustomerRepository(mock)
	c := domain.NewCustomer("cust-2", "user-1", now)

	mock.ExpectExec("INSERT INTO customers").
		WithArgs(c.ID, c.UserID, "", "", c.CreatedAt).
		WillReturnError(uniqueViolation())

	err := repo.Create(context.Background(), c)
	assert.True(t, apperrors.IsAlreadyExists(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_GetByUserID(t *testing.T) {
	mock := newMock(t)
	repo := NewCustomerRepository(mock)

	mock.ExpectQuery("FROM customers WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "phone", "address", "created_at"}).
			AddRow("cust-1", "user-1", "+79990000000", "Moscow", now))

	c, err := repo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", c.ID)
	assert.Equal(t, "Moscow", c.Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_UpdateContact(t *testing.T) {
	mock := newMock(t)
	repo := NewCustomerRepository(mock)
	c := &domain.Customer{ID: "cust-1", Phone: "+100000000", Address: "Berlin"}

	mock.ExpectExec("UPDATE customers SET phone").
		WithArgs(c.ID, c.Phone, c.Address).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateContact(context.Background(), c))

	mock.ExpectExec("UPDATE customers SET phone").
		WithArgs(c.ID, c.Phone, c.Address).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.True(t, apperrors.IsNotFound(repo.UpdateContact(context.Background(), c)))

	assert.NoError(t, mock.ExpectationsWereMet())
}
