package memory

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// UserRepository implements repository.UserRepository in memory.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a user repository over db.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateWithCustomer(_ context.Context, u *domain.User, c *domain.Customer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.users {
		if existing.Username == u.Username {
			return apperrors.AlreadyExists("user", "username", u.Username)
		}
	}
	r.db.users[u.ID] = *u
	r.db.customers[c.ID] = *c
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if u, ok := r.db.users[id]; ok {
		return &u, nil
	}
	return nil, apperrors.NotFound("user", id)
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user", username)
}

// CustomerRepository implements repository.CustomerRepository in memory.
type CustomerRepository struct {
	db *DB
}

// NewCustomerRepository creates a customer repository over db.
func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(_ context.Context, c *domain.Customer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.customers {
		if existing.UserID == c.UserID {
			return apperrors.AlreadyExists("customer", "user_id", c.UserID)
		}
	}
	r.db.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepository) GetByUserID(_ context.Context, userID string) (*domain.Customer, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, c := range r.db.customers {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("customer", userID)
}

func (r *CustomerRepository) UpdateContact(_ context.Context, c *domain.Customer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.customers[c.ID]
	if !ok {
		return apperrors.NotFound("customer", c.ID)
	}
	existing.Phone = c.Phone
	existing.Address = c.Address
	r.db.customers[c.ID] = existing
	return nil
}
