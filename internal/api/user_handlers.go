package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/users",
		Summary:       "Create user",
		Description:   "Registers a user. The returned id is the value of the userId header.",
		Tags:          tagsUsers,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/users/{userId}",
		Summary:     "Get user",
		Tags:        tagsUsers,
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUser",
		Method:      http.MethodPatch,
		Path:        APIPrefix + "/users/{userId}",
		Summary:     "Update user",
		Description: "Updates the provided profile fields",
		Tags:        tagsUsers,
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteUser",
		Method:      http.MethodDelete,
		Path:        APIPrefix + "/users/{userId}",
		Summary:     "Delete user",
		Description: "Deletes the user with all of their bookmarks, tags and directories",
		Tags:        tagsUsers,
	}, s.handleDeleteUser)
}

// CreateUserInput wraps the create user request for Huma.
type CreateUserInput struct {
	Body service.CreateUserRequest
}

// UserPathInput identifies a user by path.
type UserPathInput struct {
	UserID string `path:"userId" doc:"User ID"`
}

// UpdateUserInput wraps the update user request for Huma.
type UpdateUserInput struct {
	UserID string `path:"userId" doc:"User ID"`
	Body   service.UpdateUserRequest
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body *domain.User
}

// MessageOutput wraps a confirmation for Huma.
type MessageOutput struct {
	Body MessageResponse
}

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	user, err := s.services.Users.CreateUser(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *UserPathInput) (*UserOutput, error) {
	user, err := s.services.Users.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	user, err := s.services.Users.UpdateUser(ctx, input.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *UserPathInput) (*MessageOutput, error) {
	if err := s.services.Users.DeleteUser(ctx, input.UserID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "user deleted"}}, nil
}
