package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

// Page selects a window of a listing.
type Page struct {
	Offset int
	Limit  int
}

// CategoryRepository persists catalog categories.
type CategoryRepository interface {
	// Create inserts a category. A taken slug yields ErrAlreadyExists.
	Create(ctx context.Context, c *domain.Category) error

	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)

	// List returns one page of categories ordered by name, and the total count.
	List(ctx context.Context, page Page) ([]domain.Category, int, error)

	SlugExists(ctx context.Context, slug string) (bool, error)
}

// ProductRepository persists catalog products. Returned products carry
// their category.
type ProductRepository interface {
	// Create inserts a product. A taken slug yields ErrAlreadyExists.
	Create(ctx context.Context, p *domain.Product) error

	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// List returns one page of products ordered by category, then title.
	List(ctx context.Context, page Page) ([]domain.Product, int, error)

	// ListByCategory returns every product of a category ordered by title.
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)

	// UpdatePrice sets the product's price. Stored cart lines keep the price
	// they were saved with.
	UpdatePrice(ctx context.Context, p *domain.Product, price decimal.Decimal) error

	SlugExists(ctx context.Context, slug string) (bool, error)
}

// UserRepository persists authentication identities.
type UserRepository interface {
	// CreateWithCustomer inserts a user and its customer profile atomically.
	// A taken username yields ErrAlreadyExists.
	CreateWithCustomer(ctx context.Context, u *domain.User, c *domain.Customer) error

	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// CustomerRepository persists purchasing profiles.
type CustomerRepository interface {
	// Create inserts a customer. A second customer for the same user yields
	// ErrAlreadyExists.
	Create(ctx context.Context, c *domain.Customer) error

	GetByUserID(ctx context.Context, userID string) (*domain.Customer, error)

	// UpdateContact stores the customer's phone and address.
	UpdateContact(ctx context.Context, c *domain.Customer) error
}

// CartRepository persists carts and their lines.
//
// Line writes and RecomputeTotals run as one unit with the totals update:
// the cart row is locked, a closed cart (InOrder true) yields ErrConflict and
// nothing is written, otherwise the change is applied and the cart's totals
// are recomputed from its lines before the lock is released. The returned
// Totals are the ones stored.
type CartRepository interface {
	// Create inserts an open cart. A second open cart for the same customer
	// yields ErrAlreadyExists.
	Create(ctx context.Context, cart *domain.Cart) error

	// GetOpen returns the customer's cart with InOrder false, without lines.
	GetOpen(ctx context.Context, customerID string) (*domain.Cart, error)

	// RecomputeTotals stores the sum of the open cart's lines on the cart.
	RecomputeTotals(ctx context.Context, cartID string, now time.Time) (domain.Totals, error)

	// Lines returns the cart's lines in insertion order, each with its product.
	Lines(ctx context.Context, cartID string) ([]domain.CartProduct, error)

	// AddLine inserts the line unless a line for the same cart, product and
	// customer exists. It reports whether a row was inserted.
	AddLine(ctx context.Context, line *domain.CartProduct, now time.Time) (domain.Totals, bool, error)

	// GetLine returns the line for a product, with its product.
	GetLine(ctx context.Context, cartID, productID, customerID string) (*domain.CartProduct, error)

	// UpdateLine stores a line's quantity and final price.
	UpdateLine(ctx context.Context, line *domain.CartProduct, now time.Time) (domain.Totals, error)

	// DeleteLine removes the line from its cart.
	DeleteLine(ctx context.Context, line *domain.CartProduct, now time.Time) (domain.Totals, error)
}

// OrderRepository persists orders.
type OrderRepository interface {
	// Place closes the order's open cart and inserts the order in one
	// transaction. A cart that is already closed, or not the customer's,
	// yields ErrConflict and nothing is written.
	Place(ctx context.Context, order *domain.Order) error

	// ListByCustomer returns the customer's orders newest first, each with
	// its cart totals.
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
}
