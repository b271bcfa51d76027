package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/teghlab/otp-lab/internal/domain"
)

// UserService serves the admin-only user listing.
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// List returns all users without password hashes.
func (s *UserService) List(ctx context.Context, sess Session) ([]domain.User, error) {
	if err := RequireAdmin(sess); err != nil {
		return nil, err
	}
	users, err := s.users.ListWithoutPassword(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns one user without its password hash.
func (s *UserService) Get(ctx context.Context, sess Session, id int64) (*domain.User, error) {
	if err := RequireAdmin(sess); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}
