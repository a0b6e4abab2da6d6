package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/dto"
	domainerrors "github.com/tagmarks/tagmarks-server/internal/errors"
	"github.com/tagmarks/tagmarks-server/internal/id"
	"github.com/tagmarks/tagmarks-server/internal/store"
)

// DirectoryService manages a user's directories. Every user implicitly owns
// the Uncategorized directory, which is never stored.
type DirectoryService struct {
	store  *store.Store
	search *SearchService
	logger *slog.Logger
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(store *store.Store, search *SearchService, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		store:  store,
		search: search,
		logger: logger,
	}
}

// DirectoryRequest carries a directory name for create and rename.
type DirectoryRequest struct {
	Name string `json:"name" validate:"required,notblank,max=256" maxLength:"256" doc:"Directory name"`
}

// CreateDirectory creates a new modifiable directory.
func (s *DirectoryService) CreateDirectory(ctx context.Context, userID string, req DirectoryRequest) (*dto.Directory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domainerrors.ValidationWithDetails("directory name is required",
			map[string]string{"name": "required"})
	}

	d := &domain.Directory{
		UserID:       userID,
		Name:         name,
		IsModifiable: true,
	}
	d.ID = id.New(id.PrefixDirectory)
	d.InitTimestamps()

	if err := s.store.CreateDirectory(ctx, d); err != nil {
		return nil, fromStore(err, errDirectoryNotFound)
	}

	s.logger.Info("directory created", "directory_id", d.ID, "user_id", userID)
	return &dto.Directory{Directory: d}, nil
}

// RenameDirectory changes a directory's name. Uncategorized cannot be renamed.
func (s *DirectoryService) RenameDirectory(ctx context.Context, userID, directoryID string, req DirectoryRequest) (*dto.Directory, error) {
	if domain.IsUncategorized(directoryID) {
		return nil, domainerrors.Validation("the Uncategorized directory cannot be renamed")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domainerrors.ValidationWithDetails("directory name is required",
			map[string]string{"name": "required"})
	}
	if _, err := s.ownedDirectory(ctx, userID, directoryID); err != nil {
		return nil, err
	}

	d, err := s.store.UpdateDirectory(ctx, directoryID, func(d *domain.Directory) error {
		if d.IsDeleted() {
			return domainerrors.NotFound(errDirectoryNotFound)
		}
		d.Name = name
		d.Touch()
		return nil
	})
	if err != nil {
		return nil, fromStore(err, errDirectoryNotFound)
	}

	s.logger.Info("directory renamed", "directory_id", directoryID, "user_id", userID)
	return s.withCount(ctx, d)
}

// GetDirectory returns a directory with its bookmark count. The
// Uncategorized id is accepted.
func (s *DirectoryService) GetDirectory(ctx context.Context, userID, directoryID string) (*dto.Directory, error) {
	if directoryID == "" || domain.IsUncategorized(directoryID) {
		return s.withCount(ctx, domain.Uncategorized(userID))
	}
	d, err := s.ownedDirectory(ctx, userID, directoryID)
	if err != nil {
		return nil, err
	}
	return s.withCount(ctx, d)
}

// ListDirectories returns Uncategorized followed by the user's live
// directories sorted by name, each with its bookmark count.
func (s *DirectoryService) ListDirectories(ctx context.Context, userID string) ([]*dto.Directory, error) {
	dirs, err := s.store.ListDirectoriesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	coll := collate.New(language.Und, collate.IgnoreCase)
	slices.SortFunc(dirs, func(a, b *domain.Directory) int {
		return cmp.Or(coll.CompareString(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	out := make([]*dto.Directory, 0, len(dirs)+1)
	for _, d := range append([]*domain.Directory{domain.Uncategorized(userID)}, dirs...) {
		view, err := s.withCount(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// DeleteDirectory soft-deletes a directory. Its bookmarks move to
// Uncategorized when moveBookmarks is set and are soft-deleted otherwise.
func (s *DirectoryService) DeleteDirectory(ctx context.Context, userID, directoryID string, moveBookmarks bool) error {
	if domain.IsUncategorized(directoryID) {
		return domainerrors.Validation("the Uncategorized directory cannot be deleted")
	}
	if _, err := s.ownedDirectory(ctx, userID, directoryID); err != nil {
		return err
	}

	bookmarks, err := s.store.ListBookmarksByDirectory(ctx, userID, directoryID)
	if err != nil {
		return fmt.Errorf("list bookmarks in directory: %w", err)
	}

	var affected int
	for _, b := range bookmarks {
		updated, err := s.store.UpdateBookmark(ctx, b.ID, func(b *domain.Bookmark) error {
			if b.IsDeleted() || b.DirectoryID != directoryID {
				return errSkip
			}
			if moveBookmarks {
				b.DirectoryID = domain.UncategorizedID
				b.Touch()
			} else {
				b.MarkDeleted()
			}
			return nil
		})
		if errors.Is(err, errSkip) {
			continue
		}
		if err != nil {
			return fromStore(err, errBookmarkNotFound)
		}
		affected++
		s.search.sync(ctx, updated)
	}

	_, err = s.store.UpdateDirectory(ctx, directoryID, func(d *domain.Directory) error {
		if d.IsDeleted() {
			return domainerrors.NotFound(errDirectoryNotFound)
		}
		d.MarkDeleted()
		return nil
	})
	if err != nil {
		return fromStore(err, errDirectoryNotFound)
	}

	s.logger.Info("directory deleted",
		"directory_id", directoryID,
		"user_id", userID,
		"moved", moveBookmarks,
		"bookmarks", affected,
	)
	return nil
}

func (s *DirectoryService) ownedDirectory(ctx context.Context, userID, directoryID string) (*domain.Directory, error) {
	d, err := s.store.GetDirectory(ctx, directoryID)
	if err != nil {
		return nil, fromStore(err, errDirectoryNotFound)
	}
	if d.IsDeleted() {
		return nil, domainerrors.NotFound(errDirectoryNotFound)
	}
	if d.UserID != userID {
		return nil, domainerrors.Forbidden("user unauthorized to access directory")
	}
	return d, nil
}

func (s *DirectoryService) withCount(ctx context.Context, d *domain.Directory) (*dto.Directory, error) {
	n, err := s.store.CountBookmarksInDirectory(ctx, d.UserID, d.ID)
	if err != nil {
		return nil, fmt.Errorf("count bookmarks: %w", err)
	}
	return &dto.Directory{Directory: d, BookmarksCount: n}, nil
}
