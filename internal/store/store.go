// Package store persists users, directories, tags and bookmarks in Badger.
package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/tagmarks/tagmarks-server/internal/domain"
)

// Index names shared by the typed accessors.
const (
	indexOwner     = "owner"     // every record of a user, deleted included
	indexUser      = "user"      // live records of a user
	indexEmail     = "email"     // users by normalized email
	indexName      = "name"      // live tags by user and exact name
	indexDirectory = "directory" // live bookmarks by user and directory
	indexTag       = "tag"       // live bookmarks by tag id
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Users       *Entity[domain.User]
	Directories *Entity[domain.Directory]
	Tags        *Entity[domain.Tag]
	Bookmarks   *Entity[domain.Bookmark]
}

// New opens (or creates) the Badger database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initUsers()
	store.initDirectories()
	store.initTags()
	store.initBookmarks()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// initUsers indexes users by case-insensitive email.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform(indexEmail,
			func(u *domain.User) []string {
				if u.IsDeleted() {
					return nil
				}
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail,
		)
}

func (s *Store) initDirectories() {
	s.Directories = NewEntity[domain.Directory](s, "directory:").
		WithMultiIndex(indexOwner, func(d *domain.Directory) []string {
			return []string{d.UserID}
		}).
		WithMultiIndex(indexUser, func(d *domain.Directory) []string {
			return liveOnly(d.IsDeleted(), d.UserID)
		})
}

// initTags sets up the (user, name) unique index that makes tag resolution
// atomic. Only live tags hold a name, so soft-deleting a tag frees it.
func (s *Store) initTags() {
	s.Tags = NewEntity[domain.Tag](s, "tag:").
		WithMultiIndex(indexOwner, func(t *domain.Tag) []string {
			return []string{t.UserID}
		}).
		WithMultiIndex(indexUser, func(t *domain.Tag) []string {
			return liveOnly(t.IsDeleted(), t.UserID)
		}).
		WithIndex(indexName, func(t *domain.Tag) []string {
			return liveOnly(t.IsDeleted(), compositeValue(t.UserID, t.Name))
		})
}

// initBookmarks indexes live bookmarks by user, directory and each tag id.
func (s *Store) initBookmarks() {
	s.Bookmarks = NewEntity[domain.Bookmark](s, "bookmark:").
		WithMultiIndex(indexOwner, func(b *domain.Bookmark) []string {
			return []string{b.UserID}
		}).
		WithMultiIndex(indexUser, func(b *domain.Bookmark) []string {
			return liveOnly(b.IsDeleted(), b.UserID)
		}).
		WithMultiIndex(indexDirectory, func(b *domain.Bookmark) []string {
			return liveOnly(b.IsDeleted(), compositeValue(b.UserID, directoryOf(b)))
		}).
		WithMultiIndex(indexTag, func(b *domain.Bookmark) []string {
			if b.IsDeleted() {
				return nil
			}
			return domain.UniqueIDs(b.Tags)
		})
}

func liveOnly(deleted bool, value string) []string {
	if deleted {
		return nil
	}
	return []string{value}
}

func directoryOf(b *domain.Bookmark) string {
	if b.DirectoryID == "" {
		return domain.UncategorizedID
	}
	return b.DirectoryID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
