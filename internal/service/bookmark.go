package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/dto"
	domainerrors "github.com/tagmarks/tagmarks-server/internal/errors"
	"github.com/tagmarks/tagmarks-server/internal/id"
	"github.com/tagmarks/tagmarks-server/internal/store"
	"github.com/tagmarks/tagmarks-server/internal/taggen"
	"github.com/tagmarks/tagmarks-server/internal/validation"
)

// PageExtractor fetches display content for a URL. It never fails; an
// unreachable page yields empty content.
type PageExtractor interface {
	Extract(ctx context.Context, url string) domain.PageContent
}

// TagSuggester proposes tag names for a page.
type TagSuggester interface {
	SuggestTags(ctx context.Context, req taggen.Request) ([]string, error)
}

// Bookmark service errors.
var (
	errBookmarkNotFound  = "bookmark not found"
	errDirectoryNotFound = "directory not found"
	errTagNotFound       = "tag not found"

	// errSkip aborts a store update without reporting a failure.
	errSkip = errors.New("skip update")
)

// CreateBookmarkRequest holds the fields of a new bookmark.
type CreateBookmarkRequest struct {
	URL         string   `json:"url" validate:"required,notblank,max=2048" maxLength:"2048" doc:"Bookmarked URL"`
	Title       string   `json:"title,omitempty" validate:"max=1024" maxLength:"1024" doc:"Title; filled from the page when empty"`
	Notes       string   `json:"notes,omitempty" validate:"max=10000" maxLength:"10000" doc:"Free-form notes"`
	ImageURL    string   `json:"imageUrl,omitempty" validate:"max=2048" maxLength:"2048" doc:"Preview image; filled from the page when empty"`
	Tags        []string `json:"tags,omitempty" validate:"max=100,dive,notblank" maxItems:"100" doc:"Tag names; unknown names create tags"`
	DirectoryID string   `json:"directoryId,omitempty" doc:"Target directory; defaults to Uncategorized"`
	Enrich      *bool    `json:"enrich,omitempty" doc:"Fetch page details and suggest tags in the background (default true)"`
}

// UpdateBookmarkRequest holds a partial update. Nil fields are left alone.
type UpdateBookmarkRequest struct {
	URL         *string   `json:"url,omitempty" validate:"omitnil,notblank,max=2048" maxLength:"2048"`
	Title       *string   `json:"title,omitempty" validate:"omitnil,max=1024" maxLength:"1024"`
	Notes       *string   `json:"notes,omitempty" validate:"omitnil,max=10000" maxLength:"10000"`
	ImageURL    *string   `json:"imageUrl,omitempty" validate:"omitnil,max=2048" maxLength:"2048"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitnil,max=100,dive,notblank" maxItems:"100" doc:"Replaces the full tag list"`
	DirectoryID *string   `json:"directoryId,omitempty"`
}

// GenerateTagsResult is the outcome of an explicit tag generation.
type GenerateTagsResult struct {
	Suggestions []string      `json:"suggestions"`
	Bookmark    *dto.Bookmark `json:"bookmark"`
}

// BookmarkService classifies bookmarks into tags and directories.
type BookmarkService struct {
	store     *store.Store
	resolver  *TagResolver
	search    *SearchService
	enricher  *dto.Enricher
	extractor PageExtractor
	generator TagSuggester
	queue     *EnrichmentQueue
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookmarkService creates a new bookmark service. Background enrichment
// is driven by an EnrichmentQueue built from queueCfg.
func NewBookmarkService(
	store *store.Store,
	resolver *TagResolver,
	search *SearchService,
	extractor PageExtractor,
	generator TagSuggester,
	queueCfg EnrichmentConfig,
	logger *slog.Logger,
) *BookmarkService {
	s := &BookmarkService{
		store:     store,
		resolver:  resolver,
		search:    search,
		enricher:  dto.NewEnricher(store),
		extractor: extractor,
		generator: generator,
		validator: validation.New(),
		logger:    logger,
	}
	s.queue = NewEnrichmentQueue(queueCfg, s.enrich, logger)
	return s
}

// Queue exposes the enrichment queue for lifecycle management.
func (s *BookmarkService) Queue() *EnrichmentQueue {
	return s.queue
}

// CreateBookmark stores a bookmark for userID and, unless disabled, queues
// it for enrichment.
func (s *BookmarkService) CreateBookmark(ctx context.Context, userID string, req CreateBookmarkRequest) (*dto.Bookmark, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	directoryID, err := s.checkDirectory(ctx, userID, req.DirectoryID)
	if err != nil {
		return nil, err
	}

	tagIDs, err := s.resolver.ResolveTags(ctx, userID, req.Tags)
	if err != nil {
		return nil, err
	}

	b := &domain.Bookmark{
		UserID:        userID,
		URL:           strings.TrimSpace(req.URL),
		ImageURL:      req.ImageURL,
		Title:         req.Title,
		Notes:         req.Notes,
		Tags:          domain.UniqueIDs(tagIDs),
		GeneratedTags: []string{},
		DirectoryID:   directoryID,
		IsFavorite:    false,
	}
	b.ID = id.New(id.PrefixBookmark)
	b.InitTimestamps()

	if err := s.store.CreateBookmark(ctx, b); err != nil {
		return nil, fromStore(err, errBookmarkNotFound)
	}
	s.search.sync(ctx, b)

	s.logger.Info("bookmark created",
		"bookmark_id", b.ID,
		"user_id", userID,
		"directory_id", directoryID,
		"tags", len(b.Tags),
	)

	if req.Enrich == nil || *req.Enrich {
		s.queue.Enqueue(b.ID)
	}

	return s.enricher.EnrichBookmark(ctx, b)
}

// GetBookmark returns one of the user's live bookmarks.
func (s *BookmarkService) GetBookmark(ctx context.Context, userID, bookmarkID string) (*dto.Bookmark, error) {
	b, err := s.ownedBookmark(ctx, userID, bookmarkID)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichBookmark(ctx, b)
}

// UpdateBookmark applies a partial update. Tags, when present, replace the
// whole list.
func (s *BookmarkService) UpdateBookmark(ctx context.Context, userID, bookmarkID string, req UpdateBookmarkRequest) (*dto.Bookmark, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.ownedBookmark(ctx, userID, bookmarkID); err != nil {
		return nil, err
	}

	var directoryID string
	if req.DirectoryID != nil {
		var err error
		if directoryID, err = s.checkDirectory(ctx, userID, *req.DirectoryID); err != nil {
			return nil, err
		}
	}

	// Tags are resolved only after the ownership check above. A bookmark
	// deleted between that check and the write below leaves any newly created
	// tags in place; they stay in the user's vocabulary like any other tag.
	var tagIDs []string
	if req.Tags != nil {
		var err error
		if tagIDs, err = s.resolver.ResolveTags(ctx, userID, *req.Tags); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.UpdateBookmark(ctx, bookmarkID, func(b *domain.Bookmark) error {
		if err := checkOwner(b, userID); err != nil {
			return err
		}
		if req.URL != nil {
			b.URL = strings.TrimSpace(*req.URL)
		}
		if req.Title != nil {
			b.Title = *req.Title
		}
		if req.Notes != nil {
			b.Notes = *req.Notes
		}
		if req.ImageURL != nil {
			b.ImageURL = *req.ImageURL
		}
		if req.Tags != nil {
			b.SetTags(tagIDs)
		}
		if req.DirectoryID != nil {
			b.DirectoryID = directoryID
		}
		b.Touch()
		return nil
	})
	if err != nil {
		return nil, fromStore(err, errBookmarkNotFound)
	}
	s.search.sync(ctx, updated)

	s.logger.Info("bookmark updated", "bookmark_id", bookmarkID, "user_id", userID)
	return s.enricher.EnrichBookmark(ctx, updated)
}

// DeleteBookmark soft-deletes one of the user's bookmarks.
func (s *BookmarkService) DeleteBookmark(ctx context.Context, userID, bookmarkID string) error {
	if _, err := s.ownedBookmark(ctx, userID, bookmarkID); err != nil {
		return err
	}

	deleted, err := s.store.UpdateBookmark(ctx, bookmarkID, func(b *domain.Bookmark) error {
		if err := checkOwner(b, userID); err != nil {
			return err
		}
		b.MarkDeleted()
		return nil
	})
	if err != nil {
		return fromStore(err, errBookmarkNotFound)
	}
	s.search.sync(ctx, deleted)

	s.logger.Info("bookmark deleted", "bookmark_id", bookmarkID, "user_id", userID)
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *BookmarkService) ToggleFavorite(ctx context.Context, userID, bookmarkID string) (bool, error) {
	if _, err := s.ownedBookmark(ctx, userID, bookmarkID); err != nil {
		return false, err
	}

	updated, err := s.store.UpdateBookmark(ctx, bookmarkID, func(b *domain.Bookmark) error {
		if err := checkOwner(b, userID); err != nil {
			return err
		}
		b.IsFavorite = !b.IsFavorite
		b.Touch()
		return nil
	})
	if err != nil {
		return false, fromStore(err, errBookmarkNotFound)
	}
	return updated.IsFavorite, nil
}

// GenerateTags synchronously suggests tags for a bookmark, records the
// suggestions and applies them as SERVICE tags.
func (s *BookmarkService) GenerateTags(ctx context.Context, userID, bookmarkID string) (*GenerateTagsResult, error) {
	b, err := s.ownedBookmark(ctx, userID, bookmarkID)
	if err != nil {
		return nil, err
	}

	page := s.extractor.Extract(ctx, b.URL)
	suggestions, err := s.suggest(ctx, b, page)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(suggestions))
	for _, name := range suggestions {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	tagIDs, err := s.resolver.ResolveTagsAs(ctx, userID, names, domain.TagCreatorService)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateBookmark(ctx, bookmarkID, func(b *domain.Bookmark) error {
		if err := checkOwner(b, userID); err != nil {
			return err
		}
		b.GeneratedTags = suggestions
		b.AddTags(tagIDs...)
		b.Touch()
		return nil
	})
	if err != nil {
		return nil, fromStore(err, errBookmarkNotFound)
	}
	s.search.sync(ctx, updated)

	view, err := s.enricher.EnrichBookmark(ctx, updated)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tags generated for bookmark",
		"bookmark_id", bookmarkID,
		"user_id", userID,
		"suggestions", len(suggestions),
	)
	return &GenerateTagsResult{Suggestions: suggestions, Bookmark: view}, nil
}

// enrich is the background job: fill title and image from the page and
// record tag suggestions. Tags themselves are never changed here.
func (s *BookmarkService) enrich(ctx context.Context, bookmarkID string) error {
	b, err := s.store.GetBookmark(ctx, bookmarkID)
	if err != nil {
		return fmt.Errorf("load bookmark: %w", err)
	}
	if b.IsDeleted() {
		return nil
	}

	page := s.extractor.Extract(ctx, b.URL)

	suggestions, err := s.suggest(ctx, b, page)
	if err != nil {
		s.logger.Warn("tag suggestion failed during enrichment",
			"bookmark_id", bookmarkID,
			"error", err,
		)
		suggestions = nil
	}

	updated, err := s.store.UpdateBookmark(ctx, bookmarkID, func(b *domain.Bookmark) error {
		if b.IsDeleted() {
			return errSkip
		}
		if b.ImageURL == "" {
			b.ImageURL = page.ImageURL
		}
		if b.Title == "" {
			b.Title = page.Title
		}
		if suggestions != nil {
			b.GeneratedTags = suggestions
		}
		b.Touch()
		return nil
	})
	if errors.Is(err, errSkip) || errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("patch bookmark: %w", err)
	}
	s.search.sync(ctx, updated)

	s.logger.Debug("bookmark enriched",
		"bookmark_id", bookmarkID,
		"title_found", page.Title != "",
		"image_found", page.ImageURL != "",
		"suggestions", len(suggestions),
	)
	return nil
}

func (s *BookmarkService) suggest(ctx context.Context, b *domain.Bookmark, page domain.PageContent) ([]string, error) {
	userTags, liked, err := s.resolver.TagHistory(ctx, b.UserID)
	if err != nil {
		return nil, fmt.Errorf("load tag history: %w", err)
	}

	title := page.Title
	if title == "" {
		title = b.Title
	}
	return s.generator.SuggestTags(ctx, taggen.Request{
		UserID:    b.UserID,
		URL:       b.URL,
		Title:     title,
		Content:   page.Excerpt,
		UserTags:  userTags,
		LikedTags: liked,
	})
}

// ownedBookmark loads a live bookmark and checks it belongs to userID.
func (s *BookmarkService) ownedBookmark(ctx context.Context, userID, bookmarkID string) (*domain.Bookmark, error) {
	b, err := s.store.GetBookmark(ctx, bookmarkID)
	if err != nil {
		return nil, fromStore(err, errBookmarkNotFound)
	}
	if err := checkOwner(b, userID); err != nil {
		return nil, err
	}
	return b, nil
}

func checkOwner(b *domain.Bookmark, userID string) error {
	if b.IsDeleted() {
		return domainerrors.NotFound(errBookmarkNotFound)
	}
	if b.UserID != userID {
		return domainerrors.Forbidden("user unauthorized to access bookmark")
	}
	return nil
}

// checkDirectory validates a target directory and returns the id to store.
// Empty and Uncategorized ids both resolve to Uncategorized.
func (s *BookmarkService) checkDirectory(ctx context.Context, userID, directoryID string) (string, error) {
	directoryID = strings.TrimSpace(directoryID)
	if directoryID == "" || domain.IsUncategorized(directoryID) {
		return domain.UncategorizedID, nil
	}

	d, err := s.store.GetDirectory(ctx, directoryID)
	if err != nil {
		return "", fromStore(err, errDirectoryNotFound)
	}
	if d.IsDeleted() {
		return "", domainerrors.NotFound(errDirectoryNotFound)
	}
	if d.UserID != userID {
		return "", domainerrors.Forbidden("user unauthorized to use directory")
	}
	return d.ID, nil
}
