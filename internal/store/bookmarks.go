package store

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/tagmarks/tagmarks-server/internal/domain"
)

// ErrBookmarkNotFound is returned when a bookmark cannot be found.
var ErrBookmarkNotFound = ErrNotFound.WithMessage("bookmark not found")

// CreateBookmark stores a new bookmark.
func (s *Store) CreateBookmark(ctx context.Context, b *domain.Bookmark) error {
	if err := s.Bookmarks.Create(ctx, b.ID, b); err != nil {
		return fmt.Errorf("create bookmark: %w", err)
	}
	return nil
}

// GetBookmark retrieves a bookmark by ID, including soft-deleted ones.
func (s *Store) GetBookmark(ctx context.Context, bookmarkID string) (*domain.Bookmark, error) {
	b, err := s.Bookmarks.Get(ctx, bookmarkID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBookmarkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return b, nil
}

// UpdateBookmark applies fn to the stored bookmark atomically and returns
// the written version. Errors returned by fn abort the write.
func (s *Store) UpdateBookmark(ctx context.Context, bookmarkID string, fn func(*domain.Bookmark) error) (*domain.Bookmark, error) {
	b, err := s.Bookmarks.Modify(ctx, bookmarkID, fn)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBookmarkNotFound
	}
	return b, err
}

// ListBookmarksByUser returns the user's live bookmarks.
func (s *Store) ListBookmarksByUser(ctx context.Context, userID string) ([]*domain.Bookmark, error) {
	return collect(s.Bookmarks.ListByIndex(ctx, indexUser, userID))
}

// ListBookmarksByDirectory returns the user's live bookmarks in a directory.
// The Uncategorized id is scoped to the user like any other.
func (s *Store) ListBookmarksByDirectory(ctx context.Context, userID, directoryID string) ([]*domain.Bookmark, error) {
	return collect(s.Bookmarks.ListByIndex(ctx, indexDirectory, compositeValue(userID, directoryID)))
}

// CountBookmarksInDirectory counts the user's live bookmarks in a directory.
func (s *Store) CountBookmarksInDirectory(ctx context.Context, userID, directoryID string) (int, error) {
	return s.Bookmarks.CountByIndex(ctx, indexDirectory, compositeValue(userID, directoryID))
}

// ListBookmarksByTag returns live bookmarks carrying tagID.
func (s *Store) ListBookmarksByTag(ctx context.Context, tagID string) ([]*domain.Bookmark, error) {
	return collect(s.Bookmarks.ListByIndex(ctx, indexTag, tagID))
}

// ListAllBookmarksOwnedBy returns every bookmark of the user, soft-deleted ones included.
func (s *Store) ListAllBookmarksOwnedBy(ctx context.Context, userID string) ([]*domain.Bookmark, error) {
	return collect(s.Bookmarks.ListByIndex(ctx, indexOwner, userID))
}

// DeleteBookmark physically removes a bookmark.
func (s *Store) DeleteBookmark(ctx context.Context, bookmarkID string) error {
	return s.Bookmarks.Delete(ctx, bookmarkID)
}

// AllBookmarks iterates every stored bookmark of every user.
func (s *Store) AllBookmarks(ctx context.Context) iter.Seq2[*domain.Bookmark, error] {
	return s.Bookmarks.List(ctx)
}
