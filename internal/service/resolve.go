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

// maxResolveAttempts bounds find-or-create retries after losing a creation
// race to a concurrent request.
const maxResolveAttempts = 3

// retryOnDuplicate runs fn until it succeeds or fails with anything other
// than ErrAlreadyExists. Exhausting the attempts yields a Conflict.
func retryOnDuplicate(ctx context.Context, logger *slog.Logger, op string, fn func() error) error {
	for attempt := 1; attempt <= maxResolveAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !apperrors.IsAlreadyExists(err) {
			return err
		}
		logger.DebugContext(ctx, "lost creation race, retrying lookup",
			slog.String("op", op),
			slog.Int("attempt", attempt),
		)
	}
	return apperrors.Conflict(fmt.Sprintf("%s: concurrent update, please retry", op))
}

// findOrCreateCustomer returns the user's customer, creating an empty one
// when absent.
func findOrCreateCustomer(ctx context.Context, customers repository.CustomerRepository, userID string) (*domain.Customer, error) {
	customer, err := customers.GetByUserID(ctx, userID)
	if err == nil {
		return customer, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	customer = domain.NewCustomer(uuid.New().String(), userID, time.Now().UTC())
	if err := customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

// findOrCreateCart returns the customer's open cart, creating an empty one
// when absent.
func findOrCreateCart(ctx context.Context, carts repository.CartRepository, customerID string) (*domain.Cart, error) {
	cart, err := carts.GetOpen(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("get open cart: %w", err)
	}

	cart = domain.NewCart(uuid.New().String(), customerID, time.Now().UTC())
	if err := carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}
