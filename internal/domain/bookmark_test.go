package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookmark_RemoveTag(t *testing.T) {
	b := &Bookmark{Tags: []string{"tag-1", "tag-2"}}

	removed := b.RemoveTag("tag-1")

	assert.True(t, removed)
	assert.Equal(t, []string{"tag-2"}, b.Tags)
}

func TestBookmark_RemoveTag_Missing(t *testing.T) {
	b := &Bookmark{Tags: []string{"tag-1"}}

	removed := b.RemoveTag("tag-9")

	assert.False(t, removed)
	assert.Equal(t, []string{"tag-1"}, b.Tags)
}

func TestBookmark_RemoveTag_LastLeavesEmpty(t *testing.T) {
	b := &Bookmark{Tags: []string{"tag-1"}}

	b.RemoveTag("tag-1")

	assert.Empty(t, b.Tags)
}

func TestBookmark_SetTags_DropsDuplicatesKeepingOrder(t *testing.T) {
	b := &Bookmark{}

	b.SetTags([]string{"tag-b", "tag-a", "tag-b"})

	assert.Equal(t, []string{"tag-b", "tag-a"}, b.Tags)
}

func TestBookmark_AddTags(t *testing.T) {
	b := &Bookmark{Tags: []string{"tag-1"}}

	b.AddTags("tag-2", "tag-1", "tag-3")

	assert.Equal(t, []string{"tag-1", "tag-2", "tag-3"}, b.Tags)
}

func TestBookmark_TagMatching(t *testing.T) {
	b := &Bookmark{Tags: []string{"t1", "t2"}}

	assert.True(t, b.HasAllTags([]string{"t1", "t2"}))
	assert.False(t, b.HasAllTags([]string{"t1", "t3"}))
	assert.True(t, b.HasAnyTag([]string{"t3", "t2"}))
	assert.False(t, b.HasAnyTag([]string{"t3"}))
	assert.True(t, b.HasAllTags(nil))
}

func TestBookmark_HasNotes(t *testing.T) {
	assert.False(t, (&Bookmark{Notes: "   "}).HasNotes())
	assert.True(t, (&Bookmark{Notes: "read later"}).HasNotes())
}

func TestBookmark_IsUncategorized(t *testing.T) {
	assert.True(t, (&Bookmark{DirectoryID: UncategorizedID}).IsUncategorized())
	assert.True(t, (&Bookmark{}).IsUncategorized())
	assert.False(t, (&Bookmark{DirectoryID: "directory-1"}).IsUncategorized())
}

func TestUniqueIDs_NeverNil(t *testing.T) {
	assert.NotNil(t, UniqueIDs(nil))
	assert.Empty(t, UniqueIDs(nil))
}
