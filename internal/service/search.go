package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/search"
	"github.com/tagmarks/tagmarks-server/internal/store"
)

// SearchService keeps the bookmark search index in step with the store and
// runs free-text queries against it.
type SearchService struct {
	index    *search.SearchIndex
	store    *store.Store
	resolver *TagResolver
	logger   *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store *store.Store, resolver *TagResolver, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:    index,
		store:    store,
		resolver: resolver,
		logger:   logger,
	}
}

// Search returns the ids of the user's bookmarks matching q, newest first.
func (s *SearchService) Search(ctx context.Context, userID, q string) ([]string, error) {
	return s.index.Search(ctx, userID, q)
}

// IndexBookmark indexes a live bookmark and removes a deleted one.
func (s *SearchService) IndexBookmark(ctx context.Context, b *domain.Bookmark) error {
	if b.IsDeleted() {
		return s.RemoveBookmark(b.ID)
	}

	names, err := s.resolver.TagNamesFor(ctx, b.Tags)
	if err != nil {
		return fmt.Errorf("resolve tag names: %w", err)
	}

	if err := s.index.IndexBookmark(search.NewBookmarkDocument(b, names)); err != nil {
		return fmt.Errorf("index bookmark: %w", err)
	}

	s.logger.Debug("indexed bookmark", "bookmark_id", b.ID)
	return nil
}

// RemoveBookmark drops a bookmark from the index.
func (s *SearchService) RemoveBookmark(bookmarkID string) error {
	if err := s.index.DeleteBookmark(bookmarkID); err != nil {
		return fmt.Errorf("delete bookmark from index: %w", err)
	}
	return nil
}

// RemoveBookmarks drops several bookmarks from the index in one batch.
func (s *SearchService) RemoveBookmarks(bookmarkIDs []string) error {
	if len(bookmarkIDs) == 0 {
		return nil
	}
	if err := s.index.DeleteBookmarks(bookmarkIDs); err != nil {
		return fmt.Errorf("delete bookmarks from index: %w", err)
	}
	return nil
}

// sync indexes or removes b, logging failures.
func (s *SearchService) sync(ctx context.Context, b *domain.Bookmark) {
	if err := s.IndexBookmark(ctx, b); err != nil {
		s.logger.Warn("failed to update search index", "bookmark_id", b.ID, "error", err)
	}
}

// DocumentCount returns the number of indexed bookmarks.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll drops the index and repopulates it with every live bookmark.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	var docs []*search.BookmarkDocument
	for b, err := range s.store.AllBookmarks(ctx) {
		if err != nil {
			return fmt.Errorf("list bookmarks: %w", err)
		}
		if b.IsDeleted() {
			continue
		}
		names, err := s.resolver.TagNamesFor(ctx, b.Tags)
		if err != nil {
			s.logger.Warn("failed to resolve tag names", "bookmark_id", b.ID, "error", err)
			continue
		}
		docs = append(docs, search.NewBookmarkDocument(b, names))
	}

	if len(docs) > 0 {
		if err := s.index.IndexBookmarks(docs); err != nil {
			return fmt.Errorf("index bookmarks: %w", err)
		}
	}

	s.logger.Info("full reindex complete", "bookmarks", len(docs))
	return nil
}

// ReindexIfEmpty repopulates a fresh index, as left behind by a mapping
// version change or a first start.
func (s *SearchService) ReindexIfEmpty(ctx context.Context) error {
	count, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		return nil
	}
	return s.ReindexAll(ctx)
}
