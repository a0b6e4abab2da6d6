package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tagmarks/tagmarks-server/internal/domain"
)

// ErrDirectoryNotFound is returned when a directory cannot be found.
var ErrDirectoryNotFound = ErrNotFound.WithMessage("directory not found")

// CreateDirectory stores a new directory.
func (s *Store) CreateDirectory(ctx context.Context, d *domain.Directory) error {
	if err := s.Directories.Create(ctx, d.ID, d); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}

// GetDirectory retrieves a directory by ID, including soft-deleted ones.
func (s *Store) GetDirectory(ctx context.Context, directoryID string) (*domain.Directory, error) {
	d, err := s.Directories.Get(ctx, directoryID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrDirectoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get directory: %w", err)
	}
	return d, nil
}

// UpdateDirectory applies fn to the stored directory atomically.
func (s *Store) UpdateDirectory(ctx context.Context, directoryID string, fn func(*domain.Directory) error) (*domain.Directory, error) {
	d, err := s.Directories.Modify(ctx, directoryID, fn)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrDirectoryNotFound
	}
	return d, err
}

// ListDirectoriesByUser returns the user's live directories.
func (s *Store) ListDirectoriesByUser(ctx context.Context, userID string) ([]*domain.Directory, error) {
	return collect(s.Directories.ListByIndex(ctx, indexUser, userID))
}

// ListAllDirectoriesOwnedBy returns every directory of the user, soft-deleted ones included.
func (s *Store) ListAllDirectoriesOwnedBy(ctx context.Context, userID string) ([]*domain.Directory, error) {
	return collect(s.Directories.ListByIndex(ctx, indexOwner, userID))
}

// DeleteDirectory physically removes a directory.
func (s *Store) DeleteDirectory(ctx context.Context, directoryID string) error {
	return s.Directories.Delete(ctx, directoryID)
}
