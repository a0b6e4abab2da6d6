package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tagmarks/tagmarks-server/internal/dto"
	"github.com/tagmarks/tagmarks-server/internal/service"
)

func (s *Server) registerDirectoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createDirectory",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/directories",
		Summary:       "Create directory",
		Tags:          tagsDirectories,
		Security:      userIDSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateDirectory)

	huma.Register(s.api, huma.Operation{
		OperationID: "listDirectories",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/directories",
		Summary:     "List directories",
		Description: "Uncategorized first, then the user's directories by name, with bookmark counts",
		Tags:        tagsDirectories,
		Security:    userIDSecurity,
	}, s.handleListDirectories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDirectory",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/directories/{id}",
		Summary:     "Get directory",
		Tags:        tagsDirectories,
		Security:    userIDSecurity,
	}, s.handleGetDirectory)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameDirectory",
		Method:      http.MethodPatch,
		Path:        APIPrefix + "/directories/{id}",
		Summary:     "Rename directory",
		Tags:        tagsDirectories,
		Security:    userIDSecurity,
	}, s.handleRenameDirectory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteDirectory",
		Method:      http.MethodDelete,
		Path:        APIPrefix + "/directories/{id}",
		Summary:     "Delete directory",
		Description: "Deletes the directory and either moves its bookmarks to Uncategorized or deletes them",
		Tags:        tagsDirectories,
		Security:    userIDSecurity,
	}, s.handleDeleteDirectory)
}

// === DTOs ===

// CreateDirectoryInput wraps the create directory request for Huma.
type CreateDirectoryInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
	Body   service.DirectoryRequest
}

// DirectoryInput identifies a directory.
type DirectoryInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
	ID     string `path:"id" doc:"Directory ID"`
}

// RenameDirectoryInput wraps the rename request for Huma.
type RenameDirectoryInput struct {
	UserID string `header:"userId" doc:"Caller user ID"`
	ID     string `path:"id" doc:"Directory ID"`
	Body   service.DirectoryRequest
}

// DeleteDirectoryInput identifies a directory and what to do with its bookmarks.
type DeleteDirectoryInput struct {
	UserID        string `header:"userId" doc:"Caller user ID"`
	ID            string `path:"id" doc:"Directory ID"`
	MoveBookmarks bool   `query:"moveBookmarks" default:"true" doc:"Move bookmarks to Uncategorized instead of deleting them"`
}

// DirectoryOutput wraps a directory for Huma.
type DirectoryOutput struct {
	Body *dto.Directory
}

// DirectoryListOutput wraps a list of directories for Huma.
type DirectoryListOutput struct {
	Body []*dto.Directory
}

// === Handlers ===

func (s *Server) handleCreateDirectory(ctx context.Context, input *CreateDirectoryInput) (*DirectoryOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	d, err := s.services.Directories.CreateDirectory(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &DirectoryOutput{Body: d}, nil
}

func (s *Server) handleListDirectories(ctx context.Context, input *AuthInput) (*DirectoryListOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	dirs, err := s.services.Directories.ListDirectories(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &DirectoryListOutput{Body: dirs}, nil
}

func (s *Server) handleGetDirectory(ctx context.Context, input *DirectoryInput) (*DirectoryOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	d, err := s.services.Directories.GetDirectory(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &DirectoryOutput{Body: d}, nil
}

func (s *Server) handleRenameDirectory(ctx context.Context, input *RenameDirectoryInput) (*DirectoryOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	d, err := s.services.Directories.RenameDirectory(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &DirectoryOutput{Body: d}, nil
}

func (s *Server) handleDeleteDirectory(ctx context.Context, input *DeleteDirectoryInput) (*MessageOutput, error) {
	userID, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Directories.DeleteDirectory(ctx, userID, input.ID, input.MoveBookmarks); err != nil {
		return nil, err
	}

	msg := "directory deleted along with its bookmarks"
	if input.MoveBookmarks {
		msg = "directory deleted, bookmarks moved to Uncategorized"
	}
	return &MessageOutput{Body: MessageResponse{Message: msg}}, nil
}
