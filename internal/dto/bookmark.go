// Package dto provides the client-facing shapes of bookmarks and directories.
//
// DTOs carry denormalized display fields (tag names, directory names) next
// to the normalized ids, so a response can be rendered without follow-up
// lookups.
package dto

import "github.com/tagmarks/tagmarks-server/internal/domain"

// Bookmark is the client-facing representation of a bookmark.
// Tags holds tag names; TagIDs keeps the ids for navigation and filtering.
type Bookmark struct {
	*domain.Bookmark

	Tags          []string `json:"tags"`
	TagIDs        []string `json:"tagIds"`
	DirectoryName string   `json:"directoryName"`
}

// Directory is a directory with the number of live bookmarks in it.
type Directory struct {
	*domain.Directory

	BookmarksCount int `json:"bookmarksCount"`
}
