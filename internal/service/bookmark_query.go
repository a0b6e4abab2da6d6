package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/dto"
	domainerrors "github.com/tagmarks/tagmarks-server/internal/errors"
	"github.com/tagmarks/tagmarks-server/internal/store"
)

// Tag match modes for FilterByTags.
const (
	MatchAll = "AND"
	MatchAny = "OR"
)

// ListAll returns every live bookmark of the user.
func (s *BookmarkService) ListAll(ctx context.Context, userID string) ([]*dto.Bookmark, error) {
	return s.list(ctx, userID, nil)
}

// ListByDirectory returns the user's bookmarks in a directory. The
// Uncategorized id is accepted.
func (s *BookmarkService) ListByDirectory(ctx context.Context, userID, directoryID string) ([]*dto.Bookmark, error) {
	directoryID, err := s.checkDirectory(ctx, userID, directoryID)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.store.ListBookmarksByDirectory(ctx, userID, directoryID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, filterLive(bookmarks, userID))
}

// ListByTag returns the user's bookmarks carrying tagID.
func (s *BookmarkService) ListByTag(ctx context.Context, userID, tagID string) ([]*dto.Bookmark, error) {
	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		return nil, fromStore(err, errTagNotFound)
	}
	if tag.IsDeleted() {
		return nil, domainerrors.NotFound(errTagNotFound)
	}
	if tag.UserID != userID {
		return nil, domainerrors.Forbidden("user unauthorized to access tag")
	}

	bookmarks, err := s.store.ListBookmarksByTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, filterLive(bookmarks, userID))
}

// ListFavorites returns the user's favorite bookmarks.
func (s *BookmarkService) ListFavorites(ctx context.Context, userID string) ([]*dto.Bookmark, error) {
	return s.list(ctx, userID, func(b *domain.Bookmark) bool { return b.IsFavorite })
}

// ListWithNotes returns the user's bookmarks with non-blank notes.
func (s *BookmarkService) ListWithNotes(ctx context.Context, userID string) ([]*dto.Bookmark, error) {
	return s.list(ctx, userID, (*domain.Bookmark).HasNotes)
}

// ListUntagged returns the user's bookmarks without tags.
func (s *BookmarkService) ListUntagged(ctx context.Context, userID string) ([]*dto.Bookmark, error) {
	return s.list(ctx, userID, func(b *domain.Bookmark) bool { return len(b.Tags) == 0 })
}

// ListUncategorized returns the user's bookmarks in the Uncategorized directory.
func (s *BookmarkService) ListUncategorized(ctx context.Context, userID string) ([]*dto.Bookmark, error) {
	return s.list(ctx, userID, (*domain.Bookmark).IsUncategorized)
}

// Search returns the user's bookmarks where any whitespace-separated term of
// q occurs in the title, url, notes or a tag name, ignoring case. A blank
// query returns every bookmark.
func (s *BookmarkService) Search(ctx context.Context, userID, q string) ([]*dto.Bookmark, error) {
	if strings.TrimSpace(q) == "" {
		return s.ListAll(ctx, userID)
	}

	ids, err := s.search.Search(ctx, userID, q)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}

	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	for _, bookmarkID := range ids {
		b, err := s.store.GetBookmark(ctx, bookmarkID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return s.views(ctx, filterLive(bookmarks, userID))
}

// FilterByTags returns the user's bookmarks carrying all (AND) or any (OR)
// of tagIDs. The match type ignores case and defaults to AND; an empty tag
// list returns everything.
func (s *BookmarkService) FilterByTags(ctx context.Context, userID string, tagIDs []string, match string) ([]*dto.Bookmark, error) {
	match = strings.ToUpper(strings.TrimSpace(match))
	if match == "" {
		match = MatchAll
	}
	if match != MatchAll && match != MatchAny {
		return nil, domainerrors.ValidationWithDetails("match type must be AND or OR",
			map[string]string{"match_type": match})
	}

	wanted := make([]string, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if tagID = strings.TrimSpace(tagID); tagID != "" {
			wanted = append(wanted, tagID)
		}
	}
	wanted = domain.UniqueIDs(wanted)
	if len(wanted) == 0 {
		return s.ListAll(ctx, userID)
	}

	return s.list(ctx, userID, func(b *domain.Bookmark) bool {
		if match == MatchAny {
			return b.HasAnyTag(wanted)
		}
		return b.HasAllTags(wanted)
	})
}

// list loads the user's live bookmarks, keeps those matching keep (all when
// nil) and returns them as views.
func (s *BookmarkService) list(ctx context.Context, userID string, keep func(*domain.Bookmark) bool) ([]*dto.Bookmark, error) {
	bookmarks, err := s.store.ListBookmarksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	bookmarks = filterLive(bookmarks, userID)
	if keep != nil {
		bookmarks = slices.DeleteFunc(bookmarks, func(b *domain.Bookmark) bool { return !keep(b) })
	}
	return s.views(ctx, bookmarks)
}

func (s *BookmarkService) views(ctx context.Context, bookmarks []*domain.Bookmark) ([]*dto.Bookmark, error) {
	sortNewestFirst(bookmarks)
	return s.enricher.EnrichBookmarks(ctx, bookmarks)
}

// filterLive drops deleted bookmarks and those of other users.
func filterLive(bookmarks []*domain.Bookmark, userID string) []*domain.Bookmark {
	return slices.DeleteFunc(bookmarks, func(b *domain.Bookmark) bool {
		return b.IsDeleted() || b.UserID != userID
	})
}

// sortNewestFirst orders by creation time, newest first, with the id as a
// tiebreak so equal timestamps sort stably.
func sortNewestFirst(bookmarks []*domain.Bookmark) {
	slices.SortFunc(bookmarks, func(a, b *domain.Bookmark) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
