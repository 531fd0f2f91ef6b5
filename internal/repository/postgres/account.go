package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateWithCustomer inserts the user and its customer profile in one transaction.
func (r *UserRepository) CreateWithCustomer(ctx context.Context, u *domain.User, c *domain.Customer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	userQuery := `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, userQuery,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "username", u.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	customerQuery := `
		INSERT INTO customers (id, user_id, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err = tx.Exec(ctx, customerQuery, c.ID, c.UserID, c.Phone, c.Address, c.CreatedAt); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const userSelect = `SELECT id, username, email, password_hash, first_name, last_name, created_at FROM users`

func (r *UserRepository) get(ctx context.Context, operation, where, key string) (_ *domain.User, err error) {
	query := userSelect + ` WHERE ` + where + ` = $1`

	ctx, end := database.TraceQuery(ctx, "users."+operation, query)
	defer func() { end(err) }()

	var u domain.User
	err = r.pool.QueryRow(ctx, query, key).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", key)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, "GetByID", "id", id)
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.get(ctx, "GetByUsername", "username", username)
}

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	pool database.DBTX
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool database.DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts a customer. The unique user_id turns a concurrent second
// insert into ErrAlreadyExists.
func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) (err error) {
	query := `
		INSERT INTO customers (id, user_id, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	ctx, end := database.TraceQuery(ctx, "customers.Create", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query, c.ID, c.UserID, c.Phone, c.Address, c.CreatedAt)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return apperrors.AlreadyExists("customer", "user_id", c.UserID)
		case database.IsForeignKeyViolation(err):
			return apperrors.NotFound("user", c.UserID)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByUserID retrieves the customer profile of a user.
func (r *CustomerRepository) GetByUserID(ctx context.Context, userID string) (_ *domain.Customer, err error) {
	query := `SELECT id, user_id, phone, address, created_at FROM customers WHERE user_id = $1`

	ctx, end := database.TraceQuery(ctx, "customers.GetByUserID", query)
	defer func() { end(err) }()

	var c domain.Customer
	err = r.pool.QueryRow(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", userID)
		}
		return nil, fmt.Errorf("get customer by user: %w", err)
	}
	return &c, nil
}

// UpdateContact stores the customer's phone and address.
func (r *CustomerRepository) UpdateContact(ctx context.Context, c *domain.Customer) (err error) {
	query := `UPDATE customers SET phone = $2, address = $3 WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "customers.UpdateContact", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, c.ID, c.Phone, c.Address)
	if err != nil {
		return fmt.Errorf("update customer contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("customer", c.ID)
	}
	return nil
}
