package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/tags",
		Summary:     "List tags",
		Description: "Returns all live tags of the current user sorted by name",
		Tags:        tagsTags,
		Security:    userIDSecurity,
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTag",
		Method:      http.MethodPost,
		Path:        APIPrefix + "/tags",
		Summary:     "Create tag",
		Description: "Returns the tag with this exact name, creating it (201) when missing",
		Tags:        tagsTags,
		Security:    userIDSecurity,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "suggestTags",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/tags/suggest",
		Summary:     "Suggest tags",
		Description: "Fuzzy autocomplete over the user's tag names",
		Tags:        tagsTags,
		Security:    userIDSecurity,
	}, s.handleSuggestTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        tagsTags,
		Security:    userIDSecurity,
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        APIPrefix + "/tags/{id}",
		Summary:     "Delete tag",
		Description: "Removes the tag from every bookmark; bookmarks left without tags are deleted",
		Tags:        tagsTags,
		Security:    userIDSecurity,
	}, s.handleDeleteTag)
}

// === DTOs ===

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
	Body   service.CreateTagRequest
}

// TagInput identifies a tag.
type TagInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
	ID     string `path:"id" doc:"Tag ID"`
}

// SuggestTagsInput holds the autocomplete query.
type SuggestTagsInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
	Query  string `query:"q" doc:"Partial tag name"`
	Limit  int    `query:"limit" minimum:"0" doc:"Maximum results (default 10)"`
}

// TagOutput wraps a tag for Huma.
type TagOutput struct {
	Status int
	Body   *domain.Tag
}

// TagListOutput wraps a list of tags for Huma.
type TagListOutput struct {
	Body []*domain.Tag
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *AuthInput) (*TagListOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tags.ListTags(ctx, userID)
	if err != nil {
		return nil, err
	}
	return tagList(tags), nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	tag, created, err := s.services.Tags.CreateTag(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return &TagOutput{Status: status, Body: tag}, nil
}

func (s *Server) handleSuggestTags(ctx context.Context, input *SuggestTagsInput) (*TagListOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	limit := min(input.Limit, MaxSuggestLimit)
	if limit <= 0 {
		limit = service.DefaultSuggestLimit
	}

	tags, err := s.services.Tags.SuggestTags(ctx, userID, input.Query, limit)
	if err != nil {
		return nil, err
	}
	return tagList(tags), nil
}

func (s *Server) handleGetTag(ctx context.Context, input *TagInput) (*TagOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tags.GetTag(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Status: http.StatusOK, Body: tag}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagInput) (*MessageOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tags.DeleteTag(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "tag deleted"}}, nil
}

func tagList(tags []*domain.Tag) *TagListOutput {
	if tags == nil {
		tags = []*domain.Tag{}
	}
	return &TagListOutput{Body: tags}
}
