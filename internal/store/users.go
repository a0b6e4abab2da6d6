package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tagmarks/tagmarks-server/internal/domain"
)

var (
	// ErrUserNotFound is returned when a user cannot be found by ID or email.
	ErrUserNotFound = ErrNotFound.WithMessage("user not found")
	// ErrEmailExists is returned when another live user already has the email.
	ErrEmailExists = ErrAlreadyExists.WithMessage("email already in use")
)

// CreateUser stores a new user. Emails are unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := s.Users.Create(ctx, user.ID, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves a live user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Users.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.IsDeleted() {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a live user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, indexEmail, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// UpdateUser applies fn to the stored user atomically.
func (s *Store) UpdateUser(ctx context.Context, id string, fn func(*domain.User) error) (*domain.User, error) {
	user, err := s.Users.Modify(ctx, id, func(u *domain.User) error {
		if u.IsDeleted() {
			return ErrUserNotFound
		}
		return fn(u)
	})
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, ErrUserNotFound
	case errors.Is(err, ErrAlreadyExists):
		return nil, ErrEmailExists
	case err != nil:
		return nil, err
	}
	return user, nil
}

// DeleteUser physically removes the user record.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.Users.Delete(ctx, id)
}
