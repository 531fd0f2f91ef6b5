package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Place closes the cart and inserts the order within one transaction. The
// guarded UPDATE makes a second checkout of the same cart a conflict.
func (r *OrderRepository) Place(ctx context.Context, o *domain.Order) (err error) {
	closeQuery := `
		UPDATE carts SET in_order = true, updated_at = $3
		WHERE id = $1 AND customer_id = $2 AND NOT in_order`

	orderQuery := `
		INSERT INTO orders (id, customer_id, cart_id, first_name, last_name, phone, address, status, buying_type, comment, order_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	ctx, end := database.TraceQuery(ctx, "orders.Place", orderQuery)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, closeQuery, o.CartID, o.CustomerID, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("close cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Conflict("cart is already ordered")
	}

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.CustomerID,
		o.CartID,
		o.FirstName,
		o.LastName,
		o.Phone,
		o.Address,
		string(o.Status),
		string(o.BuyingType),
		o.Comment,
		o.OrderDate,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByCustomer returns the customer's orders newest first with the totals
// of the cart each one closed.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) (_ []domain.Order, err error) {
	query := `
		SELECT o.id, o.customer_id, o.cart_id, o.first_name, o.last_name, o.phone, o.address,
			o.status, o.buying_type, o.comment, o.order_date, o.created_at,
			c.final_price::text, c.number_of_products
		FROM orders o
		JOIN carts c ON c.id = o.cart_id
		WHERE o.customer_id = $1
		ORDER BY o.created_at DESC, o.id`

	ctx, end := database.TraceQuery(ctx, "orders.ListByCustomer", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var (
			o          domain.Order
			status     string
			buyingType string
			finalPrice string
			cart       = domain.Cart{InOrder: true}
		)
		err = rows.Scan(
			&o.ID, &o.CustomerID, &o.CartID, &o.FirstName, &o.LastName, &o.Phone, &o.Address,
			&status, &buyingType, &o.Comment, &o.OrderDate, &o.CreatedAt,
			&finalPrice, &cart.NumberOfProducts,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if cart.FinalPrice, err = decimal.NewFromString(finalPrice); err != nil {
			return nil, fmt.Errorf("parse cart final price %q: %w", finalPrice, err)
		}
		o.Status = domain.OrderStatus(status)
		o.BuyingType = domain.BuyingType(buyingType)
		cart.ID = o.CartID
		cart.CustomerID = o.CustomerID
		o.Cart = &cart
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}
