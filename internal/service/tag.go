package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	domainerrors "github.com/tagmarks/tagmarks-server/internal/errors"
	"github.com/tagmarks/tagmarks-server/internal/store"
)

// DefaultSuggestLimit caps tag autocomplete results.
const DefaultSuggestLimit = 10

// TagService manages a user's tag vocabulary.
type TagService struct {
	store    *store.Store
	resolver *TagResolver
	search   *SearchService
	logger   *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *store.Store, resolver *TagResolver, search *SearchService, logger *slog.Logger) *TagService {
	return &TagService{
		store:    store,
		resolver: resolver,
		search:   search,
		logger:   logger,
	}
}

// CreateTagRequest names a tag to create.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,notblank,max=128" maxLength:"128" doc:"Tag name, matched exactly"`
}

// CreateTag returns the user's tag with this name, creating a USER tag if
// none exists. created reports whether a new record was written.
func (s *TagService) CreateTag(ctx context.Context, userID string, req CreateTagRequest) (tag *domain.Tag, created bool, err error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, false, domainerrors.ValidationWithDetails("tag name is required",
			map[string]string{"name": "required"})
	}

	tag, created, err = s.store.FindOrCreateTag(ctx, userID, req.Name, domain.TagCreatorUser)
	if err != nil {
		return nil, false, fromStore(err, errTagNotFound)
	}
	if created {
		s.logger.Info("tag created", "tag_id", tag.ID, "user_id", userID)
	}
	return tag, created, nil
}

// ListTags returns the user's live tags ordered by name.
func (s *TagService) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	tags, err := s.store.ListTagsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortTagsByName(tags)
	return tags, nil
}

// GetTag returns one of the user's live tags.
func (s *TagService) GetTag(ctx context.Context, userID, tagID string) (*domain.Tag, error) {
	t, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, fromStore(err, errTagNotFound)
	}
	if t.IsDeleted() {
		return nil, domainerrors.NotFound(errTagNotFound)
	}
	if t.UserID != userID {
		return nil, domainerrors.Forbidden("user unauthorized to access tag")
	}
	return t, nil
}

// SuggestTags ranks the user's tag names against a partial input for
// autocomplete. A blank query returns the first names alphabetically.
func (s *TagService) SuggestTags(ctx context.Context, userID, q string, limit int) ([]*domain.Tag, error) {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	tags, err := s.ListTags(ctx, userID)
	if err != nil {
		return nil, err
	}

	q = strings.TrimSpace(q)
	if q == "" {
		return tags[:min(limit, len(tags))], nil
	}

	matches := fuzzy.FindFrom(q, tagSource(tags))
	out := make([]*domain.Tag, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, tags[m.Index])
	}
	return out, nil
}

// DeleteTag removes the tag from every bookmark carrying it, soft-deleting
// bookmarks left without tags, then soft-deletes the tag so its name can
// be reused.
func (s *TagService) DeleteTag(ctx context.Context, userID, tagID string) error {
	if _, err := s.GetTag(ctx, userID, tagID); err != nil {
		return err
	}

	bookmarks, err := s.store.ListBookmarksByTag(ctx, tagID)
	if err != nil {
		return fmt.Errorf("list bookmarks for tag: %w", err)
	}

	var emptied int
	for _, b := range bookmarks {
		updated, err := s.store.UpdateBookmark(ctx, b.ID, func(b *domain.Bookmark) error {
			if b.IsDeleted() || !b.RemoveTag(tagID) {
				return errSkip
			}
			if len(b.Tags) == 0 {
				b.MarkDeleted()
				return nil
			}
			b.Touch()
			return nil
		})
		if errors.Is(err, errSkip) {
			continue
		}
		if err != nil {
			return fromStore(err, errBookmarkNotFound)
		}
		if updated.IsDeleted() {
			emptied++
		}
		s.search.sync(ctx, updated)
	}

	if _, err := s.store.SoftDeleteTag(ctx, tagID); err != nil {
		return fromStore(err, errTagNotFound)
	}

	s.logger.Info("tag deleted",
		"tag_id", tagID,
		"user_id", userID,
		"bookmarks_updated", len(bookmarks),
		"bookmarks_deleted", emptied,
	)
	return nil
}

// tagSource adapts tags to fuzzy.Source.
type tagSource []*domain.Tag

func (t tagSource) String(i int) string { return t[i].Name }
func (t tagSource) Len() int            { return len(t) }

func sortTagsByName(tags []*domain.Tag) {
	slices.SortFunc(tags, func(a, b *domain.Tag) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
}
