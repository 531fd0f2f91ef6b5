package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
)

// --- Mock Customer Repository ---

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCustomerRepository) GetByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) UpdateContact(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// --- Mock Cart Repository ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) GetOpen(ctx context.Context, customerID string) (*domain.Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) RecomputeTotals(ctx context.Context, cartID string, now time.Time) (domain.Totals, error) {
	args := m.Called(ctx, cartID, now)
	return args.Get(0).(domain.Totals), args.Error(1)
}

func (m *mockCartRepository) Lines(ctx context.Context, cartID string) ([]domain.CartProduct, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(context.Context, string) []domain.CartProduct); ok {
		return fn(ctx, cartID), args.Error(1)
	}
	return args.Get(0).([]domain.CartProduct), args.Error(1)
}

func (m *mockCartRepository) AddLine(ctx context.Context, line *domain.CartProduct, now time.Time) (domain.Totals, bool, error) {
	args := m.Called(ctx, line, now)
	return args.Get(0).(domain.Totals), args.Bool(1), args.Error(2)
}

func (m *mockCartRepository) GetLine(ctx context.Context, cartID, productID, customerID string) (*domain.CartProduct, error) {
	args := m.Called(ctx, cartID, productID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartProduct), args.Error(1)
}

func (m *mockCartRepository) UpdateLine(ctx context.Context, line *domain.CartProduct, now time.Time) (domain.Totals, error) {
	args := m.Called(ctx, line, now)
	return args.Get(0).(domain.Totals), args.Error(1)
}

func (m *mockCartRepository) DeleteLine(ctx context.Context, line *domain.CartProduct, now time.Time) (domain.Totals, error) {
	args := m.Called(ctx, line, now)
	return args.Get(0).(domain.Totals), args.Error(1)
}

// --- Mock Order Repository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Place(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) CreateWithCustomer(ctx context.Context, u *domain.User, c *domain.Customer) error {
	args := m.Called(ctx, u, c)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock Event Publisher ---

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockEvents) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockEvents) PublishCustomerRegistered(ctx context.Context, user *domain.User, customer *domain.Customer) error {
	args := m.Called(ctx, user, customer)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
