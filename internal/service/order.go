package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/validator"
)

// PlaceOrderInput holds the checkout form. Address is required for
// delivery only; an empty OrderDate means today.
type PlaceOrderInput struct {
	FirstName  string `json:"first_name" validate:"required,max=255"`
	LastName   string `json:"last_name" validate:"required,max=255"`
	Phone      string `json:"phone" validate:"required,phone"`
	Address    string `json:"address" validate:"required_if=BuyingType delivery,max=1024"`
	BuyingType string `json:"buying_type" validate:"required,oneof=self delivery"`
	Comment    string `json:"comment" validate:"max=1024"`
	OrderDate  string `json:"order_date" validate:"omitempty,datetime=2006-01-02"`
}

// CheckoutView is what the checkout form is prefilled from.
type CheckoutView struct {
	Cart     *domain.Cart
	Customer *domain.Customer
}

// OrderService turns open carts into orders.
type OrderService struct {
	orders repository.OrderRepository
	events EventPublisher
	logger *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, events EventPublisher, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		events: events,
		logger: logger,
	}
}

// Checkout returns the cart under review and the customer's stored contact
// details.
func (s *OrderService) Checkout(_ context.Context, customer *domain.Customer, cart *domain.Cart) (*CheckoutView, error) {
	if cart == nil || customer == nil {
		return nil, errNoCart()
	}
	return &CheckoutView{Cart: cart, Customer: customer}, nil
}

// PlaceOrder validates input, then closes the cart and records the order in
// one transaction. Invalid input writes nothing; a cart that is already
// closed yields ErrConflict.
func (s *OrderService) PlaceOrder(ctx context.Context, customer *domain.Customer, cart *domain.Cart, input PlaceOrderInput) (*domain.Order, error) {
	if cart == nil || customer == nil {
		return nil, errNoCart()
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	orderDate := now.Truncate(24 * time.Hour)
	if input.OrderDate != "" {
		parsed, err := time.Parse(domain.OrderDateLayout, input.OrderDate)
		if err != nil {
			return nil, fmt.Errorf("parse order date: %w", err)
		}
		orderDate = parsed
	}

	order := &domain.Order{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		CartID:     cart.ID,
		Cart:       cart,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Phone:      input.Phone,
		Address:    input.Address,
		Status:     domain.OrderStatusNew,
		BuyingType: domain.BuyingType(input.BuyingType),
		Comment:    input.Comment,
		OrderDate:  orderDate,
		CreatedAt:  now,
	}

	if err := s.orders.Place(ctx, order); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	cart.InOrder = true
	cart.UpdatedAt = now

	if err := s.events.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("cart_id", cart.ID),
		slog.String("customer_id", customer.ID),
		slog.String("final_price", cart.FinalPrice.StringFixed(2)),
	)
	return order, nil
}

// ListOrders returns the customer's orders newest first, numbered from 1.
func (s *OrderService) ListOrders(ctx context.Context, customer *domain.Customer) ([]domain.Order, error) {
	if customer == nil {
		return nil, errNoCart()
	}
	orders, err := s.orders.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	domain.NumberOrders(orders)
	return orders, nil
}
