package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tagmarks/tagmarks-server/internal/dto"
	"github.com/tagmarks/tagmarks-server/internal/service"
)

func (s *Server) registerBookmarkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBookmark",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/bookmarks",
		Summary:       "Create bookmark",
		Description:   "Stores a bookmark, resolving tag names to tags and queueing background enrichment",
		Tags:          tagsBookmarks,
		Security:      userIDSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBookmarks",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/bookmarks/search",
		Summary:     "Search bookmarks",
		Description: "Free-text search over title, URL, notes and tag names",
		Tags:        tagsBookmarks,
		Security:    userIDSecurity,
	}, s.handleSearchBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "filterBookmarksByTags",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/bookmarks/filter-by-tags",
		Summary:     "Filter bookmarks by tags",
		Description: "Returns bookmarks carrying all (AND) or any (OR) of the given tag ids",
		Tags:        tagsBookmarks,
		Security:    userIDSecurity,
	}, s.handleFilterByTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "listDirectoryBookmarks",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/bookmarks/directory/{directoryId}",
		Summary:     "List directory bookmarks",
		Tags:        tagsBookmarks,
		Security:    userIDSecurity,
	}, s.handleListDirectoryBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTagBookmarks",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/bookmarks/tag/{tagId}",
		Summary:     "List tag bookmarks",
		Tags:        tagsBookmarks,
		Security:    userIDSecurity,
	}, s.handleListTagBookmarks)

	lists := []struct {
		id, path, summary string
		list              func(ctx context.Context, userID string) ([]*dto.Bookmark, error)
	}{
		{"listBookmarks", "/bookmarks", "List bookmarks", s.services.Bookmarks.ListAll},
		{"listFavoriteBookmarks", "/bookmarks/favorites", "List favorite bookmarks", s.services.Bookmarks.ListFavorites},
		{"listBookmarksWithNotes", "/bookmarks/with-notes", "List bookmarks with notes", s.services.Bookmarks.ListWithNotes},
		{"listUntaggedBookmarks", "/bookmarks/untagged", "List untagged bookmarks", s.services.Bookmarks.ListUntagged},
		{"listUncategorizedBookmarks", "/bookmarks/uncategorized", "List uncategorized bookmarks", s.services.Bookmarks.ListUncategorized},
	}
	for _, l := range lists {
		huma.Register(s.api, huma.Operation{
			OperationID: l.id,
			Method:      http.MethodGet,
			Path:        APIPrefix + l.path,
			Summary:     l.summary,
			Description: "Returns live bookmarks, newest first",
			Tags:        tagsBookmarks,
			Security:    userIDSecurity,
		}, s.bookmarkListHandler(l.list))
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookmark",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/bookmarks/{id}",
		Summary:     "Get bookmark",
		Tags:        tagsBookmarks,
		Security:    userIDSecurity,
	}, s.handleGetBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBookmark",
		Method:      http.MethodPatch,
		Path:        APIPrefix + "/bookmarks/{id}",
		Summary:     "Update bookmark",
		Description: "Partial update; tags, when given, replace the whole list",
		Tags:        tagsBookmarks,
		Security:    userIDSecurity,
	}, s.handleUpdateBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBookmark",
		Method:      http.MethodDelete,
		Path:        APIPrefix + "/bookmarks/{id}",
		Summary:     "Delete bookmark",
		Tags:        tagsBookmarks,
		Security:    userIDSecurity,
	}, s.handleDeleteBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFavorite",
		Method:      http.MethodPost,
		Path:        APIPrefix + "/bookmarks/{id}/favorite",
		Summary:     "Toggle favorite",
		Tags:        tagsBookmarks,
		Security:    userIDSecurity,
	}, s.handleToggleFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "generateBookmarkTags",
		Method:      http.MethodPost,
		Path:        APIPrefix + "/bookmarks/{id}/generate-tags",
		Summary:     "Generate tags",
		Description: "Asks the language model for tag suggestions and applies them to the bookmark",
		Tags:        tagsBookmarks,
		Security:    userIDSecurity,
	}, s.handleGenerateTags)
}

// === DTOs ===

// AuthInput carries the caller identity.
type AuthInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
}

// CreateBookmarkInput wraps the create bookmark request for Huma.
type CreateBookmarkInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
	Body   service.CreateBookmarkRequest
}

// BookmarkInput identifies a bookmark.
type BookmarkInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
	ID     string `path:"id" doc:"Bookmark ID"`
}

// UpdateBookmarkInput wraps the update bookmark request for Huma.
type UpdateBookmarkInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
	ID     string `path:"id" doc:"Bookmark ID"`
	Body   service.UpdateBookmarkRequest
}

// SearchBookmarksInput holds the search query.
type SearchBookmarksInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
	Query  string `query:"q" doc:"Search text; empty lists everything"`
}

// FilterByTagsInput holds the tag filter.
type FilterByTagsInput struct {
	UserID    string `header:"userId" doc:"Caller user ID"`
	Tags      string `query:"tags" doc:"Comma separated tag IDs"`
	MatchType string `query:"match_type" doc:"AND (default) or OR"`
}

// DirectoryBookmarksInput identifies a directory.
type DirectoryBookmarksInput struct {
	UserID      string `header:"userId" doc:"Caller user ID"`
	DirectoryID string `path:"directoryId" doc:"Directory ID"`
}

// TagBookmarksInput identifies a tag.
type TagBookmarksInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
	TagID  string `path:"tagId" doc:"Tag ID"`
}

// BookmarkOutput wraps a bookmark for Huma.
type BookmarkOutput struct {
	Body *dto.Bookmark
}

// BookmarkListOutput wraps a list of bookmarks for Huma.
type BookmarkListOutput struct {
	Body []*dto.Bookmark
}

// FavoriteResponse reports the favorite flag after a toggle.
type FavoriteResponse struct {
	ID         string `json:"id" doc:"Bookmark ID"`
	IsFavorite bool   `json:"isFavorite" doc:"New favorite state"`
}

// FavoriteOutput wraps the favorite response for Huma.
type FavoriteOutput struct {
	Body FavoriteResponse
}

// GenerateTagsOutput wraps the generation result for Huma.
type GenerateTagsOutput struct {
	Body *service.GenerateTagsResult
}

// === Handlers ===

func (s *Server) handleCreateBookmark(ctx context.Context, input *CreateBookmarkInput) (*BookmarkOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	b, err := s.services.Bookmarks.CreateBookmark(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookmarkOutput{Body: b}, nil
}

func (s *Server) handleGetBookmark(ctx context.Context, input *BookmarkInput) (*BookmarkOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	b, err := s.services.Bookmarks.GetBookmark(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookmarkOutput{Body: b}, nil
}

func (s *Server) handleUpdateBookmark(ctx context.Context, input *UpdateBookmarkInput) (*BookmarkOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	b, err := s.services.Bookmarks.UpdateBookmark(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookmarkOutput{Body: b}, nil
}

func (s *Server) handleDeleteBookmark(ctx context.Context, input *BookmarkInput) (*MessageOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Bookmarks.DeleteBookmark(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "bookmark deleted"}}, nil
}

func (s *Server) handleToggleFavorite(ctx context.Context, input *BookmarkInput) (*FavoriteOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	favorite, err := s.services.Bookmarks.ToggleFavorite(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &FavoriteOutput{Body: FavoriteResponse{ID: input.ID, IsFavorite: favorite}}, nil
}

func (s *Server) handleGenerateTags(ctx context.Context, input *BookmarkInput) (*GenerateTagsOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Bookmarks.GenerateTags(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &GenerateTagsOutput{Body: result}, nil
}

func (s *Server) handleSearchBookmarks(ctx context.Context, input *SearchBookmarksInput) (*BookmarkListOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return bookmarkList(s.services.Bookmarks.Search(ctx, userID, input.Query))
}

func (s *Server) handleFilterByTags(ctx context.Context, input *FilterByTagsInput) (*BookmarkListOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return bookmarkList(s.services.Bookmarks.FilterByTags(ctx, userID, splitCSV(input.Tags), input.MatchType))
}

func (s *Server) handleListDirectoryBookmarks(ctx context.Context, input *DirectoryBookmarksInput) (*BookmarkListOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return bookmarkList(s.services.Bookmarks.ListByDirectory(ctx, userID, input.DirectoryID))
}

func (s *Server) handleListTagBookmarks(ctx context.Context, input *TagBookmarksInput) (*BookmarkListOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return bookmarkList(s.services.Bookmarks.ListByTag(ctx, userID, input.TagID))
}

// bookmarkListHandler adapts a per-user listing to a huma handler.
func (s *Server) bookmarkListHandler(
	list func(ctx context.Context, userID string) ([]*dto.Bookmark, error),
) func(context.Context, *AuthInput) (*BookmarkListOutput, error) {
	return func(ctx context.Context, input *AuthInput) (*BookmarkListOutput, error) {
		userID, err := s.authenticate(ctx, input.UserID)
		if err != nil {
			return nil, err
		}
		return bookmarkList(list(ctx, userID))
	}
}

func bookmarkList(bookmarks []*dto.Bookmark, err error) (*BookmarkListOutput, error) {
	if err != nil {
		return nil, err
	}
	if bookmarks == nil {
		bookmarks = []*dto.Bookmark{}
	}
	return &BookmarkListOutput{Body: bookmarks}, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
