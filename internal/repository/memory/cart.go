package memory

import (
	"context"
	"slices"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CartRepository implements repository.CartRepository in memory.
type CartRepository struct {
	db *DB
}

// NewCartRepository creates a cart repository over db.
func NewCartRepository(db *DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) Create(_ context.Context, cart *domain.Cart) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.customers[cart.CustomerID]; !ok {
		return apperrors.NotFound("customer", cart.CustomerID)
	}
	if !cart.InOrder {
		for _, existing := range r.db.carts {
			if existing.CustomerID == cart.CustomerID && !existing.InOrder {
				return apperrors.AlreadyExists("cart", "customer_id", cart.CustomerID)
			}
		}
	}
	stored := *cart
	stored.Lines = nil
	r.db.carts[cart.ID] = stored
	return nil
}

func (r *CartRepository) GetOpen(_ context.Context, customerID string) (*domain.Cart, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, c := range r.db.carts {
		if c.CustomerID == customerID && !c.InOrder {
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("open cart", customerID)
}

// change locks the store, applies mutate to the open cart's lines and stores
// the recomputed totals. A failed mutation or an oversized total restores the
// lines as they were.
func (r *CartRepository) change(cartID string, now time.Time, mutate func() error) (domain.Totals, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cart, ok := r.db.carts[cartID]
	if !ok {
		return domain.Totals{}, apperrors.NotFound("cart", cartID)
	}
	if cart.InOrder {
		return domain.Totals{}, apperrors.Conflict("cart is already ordered")
	}

	saved := slices.Clone(r.db.lines)
	if err := mutate(); err != nil {
		r.db.lines = saved
		return domain.Totals{}, err
	}

	var lines []domain.CartProduct
	for _, l := range r.db.lines {
		if l.CartID == cartID {
			lines = append(lines, l)
		}
	}
	totals := domain.CalculateTotals(lines)
	if !totals.WithinLimit() {
		r.db.lines = saved
		return domain.Totals{}, apperrors.InvalidInput("cart total exceeds the maximum amount")
	}

	cart.Apply(totals, now)
	r.db.carts[cartID] = cart
	return totals, nil
}

func (r *CartRepository) RecomputeTotals(_ context.Context, cartID string, now time.Time) (domain.Totals, error) {
	return r.change(cartID, now, func() error { return nil })
}

// withProduct attaches a copy of the line's product. Callers hold mu.
func (r *CartRepository) withProduct(l domain.CartProduct) domain.CartProduct {
	if p, ok := r.db.products[l.ProductID]; ok {
		p = r.db.withCategory(p)
		l.Product = &p
	}
	return l
}

func (r *CartRepository) Lines(_ context.Context, cartID string) ([]domain.CartProduct, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	lines := []domain.CartProduct{}
	for _, l := range r.db.lines {
		if l.CartID == cartID {
			lines = append(lines, r.withProduct(l))
		}
	}
	return lines, nil
}

func (r *CartRepository) AddLine(_ context.Context, line *domain.CartProduct, now time.Time) (domain.Totals, bool, error) {
	var created bool
	totals, err := r.change(line.CartID, now, func() error {
		if _, ok := r.db.products[line.ProductID]; !ok {
			return apperrors.NotFound("product", line.ProductID)
		}
		for _, l := range r.db.lines {
			if l.CartID == line.CartID && l.ProductID == line.ProductID && l.CustomerID == line.CustomerID {
				return nil
			}
		}
		stored := *line
		stored.Product = nil
		r.db.lines = append(r.db.lines, stored)
		created = true
		return nil
	})
	if err != nil {
		return domain.Totals{}, false, err
	}
	return totals, created, nil
}

func (r *CartRepository) GetLine(_ context.Context, cartID, productID, customerID string) (*domain.CartProduct, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, l := range r.db.lines {
		if l.CartID == cartID && l.ProductID == productID && l.CustomerID == customerID {
			out := r.withProduct(l)
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("cart product", productID)
}

func (r *CartRepository) UpdateLine(_ context.Context, line *domain.CartProduct, now time.Time) (domain.Totals, error) {
	return r.change(line.CartID, now, func() error {
		for i := range r.db.lines {
			if r.db.lines[i].ID == line.ID && r.db.lines[i].CartID == line.CartID {
				r.db.lines[i].Qty = line.Qty
				r.db.lines[i].FinalPrice = line.FinalPrice
				return nil
			}
		}
		return apperrors.NotFound("cart product", line.ID)
	})
}

func (r *CartRepository) DeleteLine(_ context.Context, line *domain.CartProduct, now time.Time) (domain.Totals, error) {
	return r.change(line.CartID, now, func() error {
		for i := range r.db.lines {
			if r.db.lines[i].ID == line.ID && r.db.lines[i].CartID == line.CartID {
				r.db.lines = slices.Delete(r.db.lines, i, i+1)
				return nil
			}
		}
		return apperrors.NotFound("cart product", line.ID)
	})
}
