package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/store"
)

func newBookmark(id, userID, directoryID string, tags ...string) *domain.Bookmark {
	b := &domain.Bookmark{
		UserID:      userID,
		URL:         "https://example.com/" + id,
		DirectoryID: directoryID,
		Tags:        tags,
	}
	b.ID = id
	b.InitTimestamps()
	return b
}

func TestBookmarks_IndexesFollowLifecycle(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateBookmark(ctx, newBookmark("bookmark-1", "user-1", "directory-a", "tag-1")))
	require.NoError(t, s.CreateBookmark(ctx, newBookmark("bookmark-2", "user-1", domain.UncategorizedID, "tag-1", "tag-2")))
	require.NoError(t, s.CreateBookmark(ctx, newBookmark("bookmark-3", "user-2", domain.UncategorizedID)))

	byUser, err := s.ListBookmarksByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byTag, err := s.ListBookmarksByTag(ctx, "tag-1")
	require.NoError(t, err)
	assert.Len(t, byTag, 2)

	// Uncategorized is shared as an id but scoped per user.
	count, err := s.CountBookmarksInDirectory(ctx, "user-1", domain.UncategorizedID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Soft delete drops the bookmark out of every live index.
	_, err = s.UpdateBookmark(ctx, "bookmark-2", func(b *domain.Bookmark) error {
		b.MarkDeleted()
		return nil
	})
	require.NoError(t, err)

	byTag, err = s.ListBookmarksByTag(ctx, "tag-2")
	require.NoError(t, err)
	assert.Empty(t, byTag)

	count, err = s.CountBookmarksInDirectory(ctx, "user-1", domain.UncategorizedID)
	require.NoError(t, err)
	assert.Zero(t, count)

	all, err := s.ListAllBookmarksOwnedBy(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, all, 2, "owner index keeps deleted bookmarks")
}

func TestBookmarks_MoveDirectory(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.CreateBookmark(ctx, newBookmark("bookmark-1", "user-1", "directory-a")))

	_, err := s.UpdateBookmark(ctx, "bookmark-1", func(b *domain.Bookmark) error {
		b.DirectoryID = "directory-b"
		return nil
	})
	require.NoError(t, err)

	inA, err := s.ListBookmarksByDirectory(ctx, "user-1", "directory-a")
	require.NoError(t, err)
	assert.Empty(t, inA)

	inB, err := s.ListBookmarksByDirectory(ctx, "user-1", "directory-b")
	require.NoError(t, err)
	require.Len(t, inB, 1)
	assert.Equal(t, "bookmark-1", inB[0].ID)
}

func TestBookmarks_GetMissing(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetBookmark(context.Background(), "bookmark-missing")
	assert.ErrorIs(t, err, store.ErrBookmarkNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.UpdateBookmark(context.Background(), "bookmark-missing", func(*domain.Bookmark) error { return nil })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_EmailUniqueCaseInsensitive(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	u1 := &domain.User{FirstName: "Ada", Email: "ada@example.com"}
	u1.ID = "user-1"
	require.NoError(t, s.CreateUser(ctx, u1))

	u2 := &domain.User{FirstName: "Imposter", Email: "ADA@example.com "}
	u2.ID = "user-2"
	err := s.CreateUser(ctx, u2)
	assert.ErrorIs(t, err, store.ErrEmailExists)

	found, err := s.GetUserByEmail(ctx, "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", found.ID)
}
