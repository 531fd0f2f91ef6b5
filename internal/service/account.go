package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// RegisterInput holds the registration form.
type RegisterInput struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	Address   string `json:"address" validate:"max=1024"`
}

// LoginInput holds the login form.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput holds the editable customer contact data.
type UpdateProfileInput struct {
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Address string `json:"address" validate:"max=1024"`
}

// Session is an authenticated user with a freshly issued access token.
type Session struct {
	User        *domain.User
	Customer    *domain.Customer
	AccessToken string
}

// Profile is a user's account page.
type Profile struct {
	User     *domain.User
	Customer *domain.Customer
	Orders   []domain.Order
}

// AccountService implements registration, login and the profile.
type AccountService struct {
	users     repository.UserRepository
	customers repository.CustomerRepository
	orders    *OrderService
	jwt       *auth.JWTManager
	events    EventPublisher
	logger    *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	users repository.UserRepository,
	customers repository.CustomerRepository,
	orders *OrderService,
	jwt *auth.JWTManager,
	events EventPublisher,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		customers: customers,
		orders:    orders,
		jwt:       jwt,
		events:    events,
		logger:    logger,
	}
}

// Register creates a user and its customer profile and signs the user in.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    now,
	}
	customer := domain.NewCustomer(uuid.New().String(), user.ID, now)
	customer.Phone = input.Phone
	customer.Address = input.Address

	if err := s.users.CreateWithCustomer(ctx, user, customer); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if err := s.events.PublishCustomerRegistered(ctx, user, customer); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish customer.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return &Session{User: user, Customer: customer, AccessToken: token}, nil
}

// Login checks the credentials and issues an access token. Unknown users
// and wrong passwords fail the same way.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("invalid username or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.WarnContext(ctx, "failed login attempt",
			slog.String("username", input.Username),
		)
		return nil, apperrors.Unauthorized("invalid username or password")
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return &Session{User: user, AccessToken: token}, nil
}

// Profile returns the user, its customer profile and its orders.
func (s *AccountService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, customer, err := s.userAndCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.ListOrders(ctx, customer)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Customer: customer, Orders: orders}, nil
}

// UpdateProfile stores the customer's contact data.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.Customer, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	_, customer, err := s.userAndCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	customer.Phone = input.Phone
	customer.Address = input.Address
	if err := s.customers.UpdateContact(ctx, customer); err != nil {
		return nil, fmt.Errorf("update customer contact: %w", err)
	}

	s.logger.InfoContext(ctx, "profile updated", slog.String("customer_id", customer.ID))
	return customer, nil
}

func (s *AccountService) userAndCustomer(ctx context.Context, userID string) (*domain.User, *domain.Customer, error) {
	if userID == "" {
		return nil, nil, apperrors.Unauthorized("authentication is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	var customer *domain.Customer
	err = retryOnDuplicate(ctx, s.logger, "resolve customer", func() error {
		var err error
		customer, err = findOrCreateCustomer(ctx, s.customers, userID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return user, customer, nil
}
