package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CartRepository implements repository.CartRepository using PostgreSQL.
type CartRepository struct {
	pool database.DBTX
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool database.DBTX) *CartRepository {
	return &CartRepository{pool: pool}
}

// Create inserts an open cart. carts_one_open_per_customer rejects a second
// open cart for the customer.
func (r *CartRepository) Create(ctx context.Context, cart *domain.Cart) (err error) {
	query := `
		INSERT INTO carts (id, customer_id, number_of_products, final_price, in_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "carts.Create", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		cart.ID,
		cart.CustomerID,
		cart.NumberOfProducts,
		cart.FinalPrice.StringFixed(2),
		cart.InOrder,
		cart.CreatedAt,
		cart.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("cart", "customer_id", cart.CustomerID)
		}
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

// GetOpen returns the customer's open cart.
func (r *CartRepository) GetOpen(ctx context.Context, customerID string) (_ *domain.Cart, err error) {
	query := `
		SELECT id, customer_id, number_of_products, final_price::text, in_order, created_at, updated_at
		FROM carts
		WHERE customer_id = $1 AND NOT in_order`

	ctx, end := database.TraceQuery(ctx, "carts.GetOpen", query)
	defer func() { end(err) }()

	var (
		cart  domain.Cart
		price string
	)
	err = r.pool.QueryRow(ctx, query, customerID).Scan(
		&cart.ID,
		&cart.CustomerID,
		&cart.NumberOfProducts,
		&price,
		&cart.InOrder,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("open cart", customerID)
		}
		return nil, fmt.Errorf("get open cart: %w", err)
	}
	if cart.FinalPrice, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse cart final price %q: %w", price, err)
	}
	return &cart, nil
}

// change runs mutate and the totals recompute in one transaction that holds
// the cart row lock. Checkout updates the same row, so a cart is either
// changed before it is ordered or rejected as closed afterwards.
func (r *CartRepository) change(ctx context.Context, cartID string, now time.Time, mutate func(tx pgx.Tx) error) (domain.Totals, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var inOrder bool
	err = tx.QueryRow(ctx, `SELECT in_order FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&inOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Totals{}, apperrors.NotFound("cart", cartID)
		}
		return domain.Totals{}, fmt.Errorf("lock cart: %w", err)
	}
	if inOrder {
		return domain.Totals{}, apperrors.Conflict("cart is already ordered")
	}

	if err := mutate(tx); err != nil {
		return domain.Totals{}, err
	}

	lines, err := queryLines(ctx, tx, cartID)
	if err != nil {
		return domain.Totals{}, err
	}
	totals := domain.CalculateTotals(lines)
	if !totals.WithinLimit() {
		return domain.Totals{}, errCartTotalTooLarge()
	}

	_, err = tx.Exec(ctx, `
		UPDATE carts
		SET final_price = $2, number_of_products = $3, updated_at = $4
		WHERE id = $1`,
		cartID, totals.FinalPrice.StringFixed(2), totals.NumberOfProducts, now,
	)
	if err != nil {
		if database.IsNumericOverflow(err) {
			return domain.Totals{}, errCartTotalTooLarge()
		}
		return domain.Totals{}, fmt.Errorf("update cart totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Totals{}, fmt.Errorf("commit transaction: %w", err)
	}
	return totals, nil
}

func errCartTotalTooLarge() error {
	return apperrors.InvalidInput("cart total exceeds the maximum amount")
}

// RecomputeTotals stores the sum of the cart's lines on the cart.
func (r *CartRepository) RecomputeTotals(ctx context.Context, cartID string, now time.Time) (_ domain.Totals, err error) {
	ctx, end := database.TraceQuery(ctx, "carts.RecomputeTotals", "UPDATE carts SET final_price")
	defer func() { end(err) }()

	return r.change(ctx, cartID, now, func(pgx.Tx) error { return nil })
}

const lineSelect = `
		SELECT cp.id, cp.cart_id, cp.product_id, cp.customer_id, cp.qty, cp.final_price::text,
			p.category_id, p.title, p.slug, p.description, p.image_url, p.price::text, p.created_at
		FROM cart_products cp
		JOIN products p ON p.id = cp.product_id`

func scanLine(row pgx.Row) (*domain.CartProduct, error) {
	var (
		l          domain.CartProduct
		p          domain.Product
		finalPrice string
		unitPrice  string
	)
	err := row.Scan(
		&l.ID, &l.CartID, &l.ProductID, &l.CustomerID, &l.Qty, &finalPrice,
		&p.CategoryID, &p.Title, &p.Slug, &p.Description, &p.ImageURL, &unitPrice, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if l.FinalPrice, err = decimal.NewFromString(finalPrice); err != nil {
		return nil, fmt.Errorf("parse line final price %q: %w", finalPrice, err)
	}
	if p.Price, err = decimal.NewFromString(unitPrice); err != nil {
		return nil, fmt.Errorf("parse product price %q: %w", unitPrice, err)
	}
	p.ID = l.ProductID
	l.Product = &p
	return &l, nil
}

const linesQuery = lineSelect + `
		WHERE cp.cart_id = $1
		ORDER BY cp.created_at, cp.id`

// Lines returns the cart's lines in insertion order.
func (r *CartRepository) Lines(ctx context.Context, cartID string) (_ []domain.CartProduct, err error) {
	ctx, end := database.TraceQuery(ctx, "carts.Lines", linesQuery)
	defer func() { end(err) }()

	return queryLines(ctx, r.pool, cartID)
}

func queryLines(ctx context.Context, db database.DBTX, cartID string) ([]domain.CartProduct, error) {
	rows, err := db.Query(ctx, linesQuery, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	lines := []domain.CartProduct{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return lines, nil
}

// AddLine inserts the line unless the cart already holds the product for
// this customer.
func (r *CartRepository) AddLine(ctx context.Context, line *domain.CartProduct, now time.Time) (_ domain.Totals, _ bool, err error) {
	query := `
		INSERT INTO cart_products (id, cart_id, product_id, customer_id, qty, final_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cart_id, product_id, customer_id) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "carts.AddLine", query)
	defer func() { end(err) }()

	var created bool
	totals, err := r.change(ctx, line.CartID, now, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			line.ID,
			line.CartID,
			line.ProductID,
			line.CustomerID,
			line.Qty,
			line.FinalPrice.StringFixed(2),
		)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return apperrors.NotFound("product", line.ProductID)
			}
			if database.IsNumericOverflow(err) {
				return errCartTotalTooLarge()
			}
			return fmt.Errorf("insert cart line: %w", err)
		}
		created = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return domain.Totals{}, false, err
	}
	return totals, created, nil
}

// GetLine returns the line for a product in the cart.
func (r *CartRepository) GetLine(ctx context.Context, cartID, productID, customerID string) (_ *domain.CartProduct, err error) {
	query := lineSelect + `
		WHERE cp.cart_id = $1 AND cp.product_id = $2 AND cp.customer_id = $3`

	ctx, end := database.TraceQuery(ctx, "carts.GetLine", query)
	defer func() { end(err) }()

	l, err := scanLine(r.pool.QueryRow(ctx, query, cartID, productID, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cart product", productID)
		}
		return nil, fmt.Errorf("get cart line: %w", err)
	}
	return l, nil
}

// UpdateLine stores a line's quantity and final price.
func (r *CartRepository) UpdateLine(ctx context.Context, line *domain.CartProduct, now time.Time) (_ domain.Totals, err error) {
	query := `UPDATE cart_products SET qty = $3, final_price = $4 WHERE id = $1 AND cart_id = $2`

	ctx, end := database.TraceQuery(ctx, "carts.UpdateLine", query)
	defer func() { end(err) }()

	return r.change(ctx, line.CartID, now, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, line.ID, line.CartID, line.Qty, line.FinalPrice.StringFixed(2))
		if err != nil {
			if database.IsNumericOverflow(err) {
				return errCartTotalTooLarge()
			}
			return fmt.Errorf("update cart line: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("cart product", line.ID)
		}
		return nil
	})
}

// DeleteLine removes a line from its cart.
func (r *CartRepository) DeleteLine(ctx context.Context, line *domain.CartProduct, now time.Time) (_ domain.Totals, err error) {
	query := `DELETE FROM cart_products WHERE id = $1 AND cart_id = $2`

	ctx, end := database.TraceQuery(ctx, "carts.DeleteLine", query)
	defer func() { end(err) }()

	return r.change(ctx, line.CartID, now, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, line.ID, line.CartID)
		if err != nil {
			return fmt.Errorf("delete cart line: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("cart product", line.ID)
		}
		return nil
	})
}
