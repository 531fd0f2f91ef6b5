package memory

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// OrderRepository implements repository.OrderRepository in memory.
type OrderRepository struct {
	db *DB
}

// NewOrderRepository creates an order repository over db.
func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Place closes the cart and records the order under one lock, so either
// both happen or neither does.
func (r *OrderRepository) Place(_ context.Context, o *domain.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cart, ok := r.db.carts[o.CartID]
	if !ok || cart.CustomerID != o.CustomerID || cart.InOrder {
		return apperrors.Conflict("cart is already ordered")
	}
	cart.InOrder = true
	cart.UpdatedAt = o.CreatedAt
	r.db.carts[cart.ID] = cart

	stored := *o
	stored.Cart = nil
	stored.Number = 0
	r.db.orders = append(r.db.orders, stored)
	return nil
}

// ListByCustomer returns the customer's orders newest first.
func (r *OrderRepository) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	orders := []domain.Order{}
	for i := len(r.db.orders) - 1; i >= 0; i-- {
		o := r.db.orders[i]
		if o.CustomerID != customerID {
			continue
		}
		if cart, ok := r.db.carts[o.CartID]; ok {
			o.Cart = &cart
		}
		orders = append(orders, o)
	}
	return orders, nil
}
