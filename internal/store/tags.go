package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/id"
)

// ErrTagNotFound is returned when a tag cannot be found.
var ErrTagNotFound = ErrNotFound.WithMessage("tag not found")

// GetTag retrieves a tag by ID, including soft-deleted tags.
func (s *Store) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	t, err := s.Tags.Get(ctx, tagID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

// GetTagByName retrieves the live tag with exactly this name for the user.
func (s *Store) GetTagByName(ctx context.Context, userID, name string) (*domain.Tag, error) {
	t, err := s.Tags.GetByIndex(ctx, indexName, compositeValue(userID, name))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tag by name: %w", err)
	}
	return t, nil
}

// FindOrCreateTag atomically finds the user's live tag with this exact name
// or creates it with the given creator.
// Returns (tag, created, error) where created is true if a new tag was made.
//
// The unique (user, name) index turns a lost race into ErrAlreadyExists, in
// which case the winner is re-read. Badger transaction conflicts are retried;
// if every attempt conflicts ErrConflict is returned.
func (s *Store) FindOrCreateTag(ctx context.Context, userID, name string, creator domain.TagCreator) (*domain.Tag, bool, error) {
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		// Optimistic read.
		existing, err := s.GetTagByName(ctx, userID, name)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, ErrTagNotFound) {
			return nil, false, err
		}

		t := domain.NewTag(id.New(id.PrefixTag), userID, name, creator)
		err = s.Tags.Create(ctx, t.ID, t)
		switch {
		case err == nil:
			return t, true, nil
		case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
			// Another request created it first; loop back and read the winner.
			continue
		default:
			return nil, false, fmt.Errorf("create tag: %w", err)
		}
	}

	return nil, false, ErrConflict
}

// CreateTag stores a new tag. Returns ErrAlreadyExists if the user already
// has a live tag with the same name.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	return s.Tags.Create(ctx, t.ID, t)
}

// SoftDeleteTag marks the tag deleted, releasing its name.
func (s *Store) SoftDeleteTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	t, err := s.Tags.Modify(ctx, tagID, func(t *domain.Tag) error {
		if t.IsDeleted() {
			return ErrTagNotFound
		}
		t.MarkDeleted()
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrTagNotFound
	}
	return t, err
}

// ListTagsByUser returns the user's live tags.
func (s *Store) ListTagsByUser(ctx context.Context, userID string) ([]*domain.Tag, error) {
	return collect(s.Tags.ListByIndex(ctx, indexUser, userID))
}

// ListAllTagsOwnedBy returns every tag of the user, soft-deleted ones included.
func (s *Store) ListAllTagsOwnedBy(ctx context.Context, userID string) ([]*domain.Tag, error) {
	return collect(s.Tags.ListByIndex(ctx, indexOwner, userID))
}

// GetTagsByIDs loads tags by ID, keeping input order and skipping missing ones.
func (s *Store) GetTagsByIDs(ctx context.Context, tagIDs []string) ([]*domain.Tag, error) {
	tags := make([]*domain.Tag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		t, err := s.Tags.Get(ctx, tagID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get tag %s: %w", tagID, err)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// DeleteTag physically removes a tag.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	return s.Tags.Delete(ctx, tagID)
}
