package service

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// EventPublisher publishes storefront domain events. *event.Producer
// satisfies it.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
	PublishCustomerRegistered(ctx context.Context, user *domain.User, customer *domain.Customer) error
}
