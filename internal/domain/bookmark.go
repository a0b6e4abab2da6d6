package domain

import (
	"slices"
	"strings"
)

// Bookmark is a saved URL. Tags holds resolved tag IDs of the same user;
// GeneratedTags holds raw suggestions that have not been applied.
type Bookmark struct {
	Syncable
	UserID        string   `json:"userId"`
	URL           string   `json:"url"`
	ImageURL      string   `json:"imageUrl"`
	Title         string   `json:"title"`
	Notes         string   `json:"notes"`
	Tags          []string `json:"tags"`
	GeneratedTags []string `json:"generatedTags"`
	DirectoryID   string   `json:"directoryId"`
	IsFavorite    bool     `json:"isFavorite"`
}

// HasTag reports whether the bookmark carries tagID.
func (b *Bookmark) HasTag(tagID string) bool {
	return slices.Contains(b.Tags, tagID)
}

// HasAllTags reports whether every id in tagIDs is on the bookmark.
func (b *Bookmark) HasAllTags(tagIDs []string) bool {
	for _, t := range tagIDs {
		if !b.HasTag(t) {
			return false
		}
	}
	return true
}

// HasAnyTag reports whether at least one id in tagIDs is on the bookmark.
func (b *Bookmark) HasAnyTag(tagIDs []string) bool {
	return slices.ContainsFunc(tagIDs, b.HasTag)
}

// RemoveTag drops every occurrence of tagID and reports whether anything changed.
func (b *Bookmark) RemoveTag(tagID string) bool {
	before := len(b.Tags)
	b.Tags = slices.DeleteFunc(b.Tags, func(t string) bool { return t == tagID })
	return len(b.Tags) != before
}

// SetTags replaces the tag list, dropping duplicates but keeping first-seen order.
func (b *Bookmark) SetTags(tagIDs []string) {
	b.Tags = UniqueIDs(tagIDs)
}

// AddTags appends tagIDs that are not already present.
func (b *Bookmark) AddTags(tagIDs ...string) {
	b.Tags = UniqueIDs(append(slices.Clone(b.Tags), tagIDs...))
}

// HasNotes reports whether the bookmark has non-blank notes.
func (b *Bookmark) HasNotes() bool {
	return strings.TrimSpace(b.Notes) != ""
}

// IsUncategorized reports whether the bookmark sits in the reserved directory.
func (b *Bookmark) IsUncategorized() bool {
	return b.DirectoryID == "" || IsUncategorized(b.DirectoryID)
}

// UniqueIDs returns ids without duplicates, in first-seen order.
// The result is never nil.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
