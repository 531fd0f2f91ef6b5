package domain

import "time"

// User is the authentication identity.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Customer is the purchasing profile of exactly one User.
type Customer struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCustomer returns an empty profile for a user seen for the first time.
func NewCustomer(id, userID string, now time.Time) *Customer {
	return &Customer{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
	}
}
