package domain

import (
	"context"
	"time"
)

// User represents a registered account. IsAdmin is decided once at registration.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	City         string
	ZipCode      string
	IsAdmin      bool
	CreatedAt    time.Time
}

// UserRepository defines persistence operations for users.
// Email is not unique: GetByEmail returns the earliest matching record.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ListWithoutPassword returns every user with PasswordHash left empty.
	ListWithoutPassword(ctx context.Context) ([]User, error)
}
