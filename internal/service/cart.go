package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// errNoCart is returned by cart operations on an anonymous request.
func errNoCart() error {
	return apperrors.Unauthorized("authentication is required to use the cart")
}

// CartService resolves a user's open cart and manages its lines. Every line
// mutation stores recomputed cart totals in the same write.
type CartService struct {
	customers repository.CustomerRepository
	carts     repository.CartRepository
	events    EventPublisher
	logger    *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	customers repository.CustomerRepository,
	carts repository.CartRepository,
	events EventPublisher,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		customers: customers,
		carts:     carts,
		events:    events,
		logger:    logger,
	}
}

// Resolve returns the user's open cart, with its lines, and customer
// profile, creating either when missing. An empty userID is an anonymous
// request and yields nil, nil, nil.
func (s *CartService) Resolve(ctx context.Context, userID string) (*domain.Cart, *domain.Customer, error) {
	if userID == "" {
		return nil, nil, nil
	}

	var (
		cart     *domain.Cart
		customer *domain.Customer
	)
	err := retryOnDuplicate(ctx, s.logger, "resolve cart", func() error {
		var err error
		customer, err = findOrCreateCustomer(ctx, s.customers, userID)
		if err != nil {
			return err
		}
		cart, err = findOrCreateCart(ctx, s.carts, customer.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	lines, err := s.carts.Lines(ctx, cart.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load cart lines: %w", err)
	}
	cart.Lines = lines

	return cart, customer, nil
}

// checkOpen rejects carts that are missing or already ordered.
func checkOpen(cart *domain.Cart) error {
	if cart == nil {
		return errNoCart()
	}
	if cart.InOrder {
		return apperrors.Conflict("cart is already ordered")
	}
	return nil
}

// AddLine puts product into the cart with quantity one. A product already
// in the cart is left unchanged: its line is returned with created false.
func (s *CartService) AddLine(ctx context.Context, cart *domain.Cart, customer *domain.Customer, product *domain.Product) (*domain.CartProduct, bool, error) {
	if customer == nil {
		return nil, false, errNoCart()
	}
	if err := checkOpen(cart); err != nil {
		return nil, false, err
	}

	line := domain.NewCartProduct(uuid.New().String(), cart, customer, product)
	totals, created, err := s.carts.AddLine(ctx, line, time.Now().UTC())
	if err != nil {
		return nil, false, fmt.Errorf("add cart line: %w", err)
	}
	if !created {
		existing, err := s.carts.GetLine(ctx, cart.ID, product.ID, customer.ID)
		if err != nil {
			return nil, false, fmt.Errorf("get existing cart line: %w", err)
		}
		return existing, false, nil
	}

	if err := s.applyTotals(ctx, cart, totals); err != nil {
		return nil, false, err
	}

	s.logger.InfoContext(ctx, "product added to cart",
		slog.String("cart_id", cart.ID),
		slog.String("product_id", product.ID),
	)
	return line, true, nil
}

// FindLine returns the cart line for product. A product that is not in the
// cart yields ErrNotFound.
func (s *CartService) FindLine(ctx context.Context, cart *domain.Cart, customer *domain.Customer, product *domain.Product) (*domain.CartProduct, error) {
	if cart == nil || customer == nil {
		return nil, errNoCart()
	}
	line, err := s.carts.GetLine(ctx, cart.ID, product.ID, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart line: %w", err)
	}
	return line, nil
}

// ChangeQty sets the line quantity and reprices it at the product's current
// price.
func (s *CartService) ChangeQty(ctx context.Context, cart *domain.Cart, line *domain.CartProduct, qty int) error {
	if err := checkOpen(cart); err != nil {
		return err
	}
	if !domain.ValidQty(qty) {
		return apperrors.InvalidInput(fmt.Sprintf("qty must be between %d and %d", domain.MinLineQty, domain.MaxLineQty))
	}
	if line.CartID != cart.ID {
		return apperrors.NotFound("cart product", line.ProductID)
	}
	if line.Product == nil {
		return fmt.Errorf("change qty: line %s has no product loaded", line.ID)
	}

	changed := *line
	changed.Qty = qty
	changed.Reprice(line.Product.Price)
	totals, err := s.carts.UpdateLine(ctx, &changed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	*line = changed

	if err := s.applyTotals(ctx, cart, totals); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "cart line quantity changed",
		slog.String("cart_id", cart.ID),
		slog.String("product_id", line.ProductID),
		slog.Int("qty", qty),
	)
	return nil
}

// RemoveLine deletes the line from the cart.
func (s *CartService) RemoveLine(ctx context.Context, cart *domain.Cart, line *domain.CartProduct) error {
	if err := checkOpen(cart); err != nil {
		return err
	}
	if line.CartID != cart.ID {
		return apperrors.NotFound("cart product", line.ProductID)
	}

	totals, err := s.carts.DeleteLine(ctx, line, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}

	if err := s.applyTotals(ctx, cart, totals); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product removed from cart",
		slog.String("cart_id", cart.ID),
		slog.String("product_id", line.ProductID),
	)
	return nil
}

// Recompute stores the sum of the cart's lines on the cart and publishes
// cart.updated. Line mutations recompute as part of their own write.
func (s *CartService) Recompute(ctx context.Context, cart *domain.Cart) error {
	if err := checkOpen(cart); err != nil {
		return err
	}
	totals, err := s.carts.RecomputeTotals(ctx, cart.ID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update cart totals: %w", err)
	}
	return s.applyTotals(ctx, cart, totals)
}

// applyTotals copies stored totals onto cart, reloads its lines and
// publishes cart.updated.
func (s *CartService) applyTotals(ctx context.Context, cart *domain.Cart, totals domain.Totals) error {
	lines, err := s.carts.Lines(ctx, cart.ID)
	if err != nil {
		return fmt.Errorf("load cart lines: %w", err)
	}
	cart.Lines = lines
	cart.Apply(totals, time.Now().UTC())

	// Publish failures never fail the request.
	if err := s.events.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("cart_id", cart.ID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
