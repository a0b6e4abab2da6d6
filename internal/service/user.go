package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	domainerrors "github.com/tagmarks/tagmarks-server/internal/errors"
	"github.com/tagmarks/tagmarks-server/internal/id"
	"github.com/tagmarks/tagmarks-server/internal/store"
	"github.com/tagmarks/tagmarks-server/internal/validation"
)

const errUserNotFound = "user not found"

// UserService manages the users that own bookmarks, tags and directories.
type UserService struct {
	store     *store.Store
	search    *SearchService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *store.Store, search *SearchService, logger *slog.Logger) *UserService {
	return &UserService{
		store:     store,
		search:    search,
		validator: validation.New(),
		logger:    logger,
	}
}

// CreateUserRequest holds the fields of a new user.
type CreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,notblank,max=100" maxLength:"100"`
	LastName  string `json:"lastName,omitempty" validate:"max=100" maxLength:"100"`
	Email     string `json:"email" validate:"required,email,max=254" maxLength:"254" format:"email"`
	AvatarURL string `json:"avatarUrl,omitempty" validate:"omitempty,url,max=2048" maxLength:"2048"`
}

// UpdateUserRequest holds a partial user update.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitnil,notblank,max=100" maxLength:"100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitnil,max=100" maxLength:"100"`
	Email     *string `json:"email,omitempty" validate:"omitnil,email,max=254" maxLength:"254"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitnil,omitempty,url,max=2048" maxLength:"2048"`
}

// CreateUser stores a new user. Emails are unique ignoring case.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	u := &domain.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		AvatarURL: req.AvatarURL,
	}
	u.ID = id.New(id.PrefixUser)
	u.InitTimestamps()

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fromStore(err, errUserNotFound)
	}

	s.logger.Info("user created", "user_id", u.ID)
	return u, nil
}

// GetUser returns a live user.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fromStore(err, errUserNotFound)
	}
	return u, nil
}

// Authenticate resolves the userId request header to a live user.
func (s *UserService) Authenticate(ctx context.Context, userID string) (*domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domainerrors.Unauthorized("missing key userId in header")
	}
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthorized("invalid userId passed")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser applies a partial update.
func (s *UserService) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.store.UpdateUser(ctx, userID, func(u *domain.User) error {
		if req.FirstName != nil {
			u.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			u.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.Email != nil {
			u.Email = strings.TrimSpace(*req.Email)
		}
		if req.AvatarURL != nil {
			u.AvatarURL = *req.AvatarURL
		}
		u.Touch()
		return nil
	})
	if err != nil {
		return nil, fromStore(err, errUserNotFound)
	}

	s.logger.Info("user updated", "user_id", userID)
	return u, nil
}

// DeleteUser removes the user and everything the user owns.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	bookmarks, err := s.store.ListAllBookmarksOwnedBy(ctx, userID)
	if err != nil {
		return fmt.Errorf("list bookmarks: %w", err)
	}
	removed := make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		if err := s.store.DeleteBookmark(ctx, b.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete bookmark %s: %w", b.ID, err)
		}
		removed = append(removed, b.ID)
	}
	if err := s.search.RemoveBookmarks(removed); err != nil {
		s.logger.Warn("failed to remove bookmarks from index", "user_id", userID, "error", err)
	}

	tags, err := s.store.ListAllTagsOwnedBy(ctx, userID)
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}
	for _, t := range tags {
		if err := s.store.DeleteTag(ctx, t.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete tag %s: %w", t.ID, err)
		}
	}

	dirs, err := s.store.ListAllDirectoriesOwnedBy(ctx, userID)
	if err != nil {
		return fmt.Errorf("list directories: %w", err)
	}
	for _, d := range dirs {
		if err := s.store.DeleteDirectory(ctx, d.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete directory %s: %w", d.ID, err)
		}
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fromStore(err, errUserNotFound)
	}

	s.logger.Info("user deleted",
		"user_id", userID,
		"bookmarks", len(bookmarks),
		"tags", len(tags),
		"directories", len(dirs),
	)
	return nil
}
