// Package search indexes bookmarks in Bleve for case-insensitive substring
// search over title, url, notes and tag names.
package search

import (
	"github.com/tagmarks/tagmarks-server/internal/domain"
)

// Field names used by the index mapping.
const (
	fieldUserID    = "user_id"
	fieldTitle     = "title"
	fieldURL       = "url"
	fieldNotes     = "notes"
	fieldTags      = "tags"
	fieldCreatedAt = "created_at"
)

// searchableFields are the fields a query term may match.
var searchableFields = []string{fieldTitle, fieldURL, fieldNotes, fieldTags}

// BookmarkDocument is the indexed form of a bookmark. Tag names are
// denormalized so a query can match them without a store lookup.
type BookmarkDocument struct {
	ID        string
	UserID    string
	Title     string
	URL       string
	Notes     string
	Tags      []string
	CreatedAt int64 // Unix millis
}

// NewBookmarkDocument builds a document from a bookmark and the names of
// its tags.
func NewBookmarkDocument(b *domain.Bookmark, tagNames []string) *BookmarkDocument {
	return &BookmarkDocument{
		ID:        b.ID,
		UserID:    b.UserID,
		Title:     b.Title,
		URL:       b.URL,
		Notes:     b.Notes,
		Tags:      tagNames,
		CreatedAt: b.CreatedAt.UnixMilli(),
	}
}

// toMap converts the document to a map keyed by mapping field names.
func (d *BookmarkDocument) toMap() map[string]any {
	m := map[string]any{
		fieldUserID:    d.UserID,
		fieldCreatedAt: d.CreatedAt,
	}
	if d.Title != "" {
		m[fieldTitle] = d.Title
	}
	if d.URL != "" {
		m[fieldURL] = d.URL
	}
	if d.Notes != "" {
		m[fieldNotes] = d.Notes
	}
	if len(d.Tags) > 0 {
		m[fieldTags] = d.Tags
	}
	return m
}
