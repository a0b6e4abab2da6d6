package dto

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/store"
)

// Store is the read access the enricher needs; *store.Store satisfies it.
type Store interface {
	GetTagsByIDs(ctx context.Context, tagIDs []string) ([]*domain.Tag, error)
	GetDirectory(ctx context.Context, directoryID string) (*domain.Directory, error)
}

// Enricher denormalizes bookmarks for client consumption.
//
// Tags and directories are fetched once per batch, not once per bookmark.
// Missing or soft-deleted tags are dropped from the name list, and a missing
// directory leaves DirectoryName empty.
type Enricher struct {
	store Store
}

// NewEnricher creates a new enricher.
func NewEnricher(store Store) *Enricher {
	return &Enricher{store: store}
}

// EnrichBookmark denormalizes a single bookmark.
func (e *Enricher) EnrichBookmark(ctx context.Context, b *domain.Bookmark) (*Bookmark, error) {
	out, err := e.EnrichBookmarks(ctx, []*domain.Bookmark{b})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EnrichBookmarks denormalizes bookmarks, preserving their order.
func (e *Enricher) EnrichBookmarks(ctx context.Context, bookmarks []*domain.Bookmark) ([]*Bookmark, error) {
	if len(bookmarks) == 0 {
		return []*Bookmark{}, nil
	}

	var tagIDs []string
	for _, b := range bookmarks {
		tagIDs = append(tagIDs, b.Tags...)
	}
	tagNames, err := e.tagNameMap(ctx, domain.UniqueIDs(tagIDs))
	if err != nil {
		return nil, err
	}

	dirNames := make(map[string]string)
	out := make([]*Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		dirName, err := e.directoryName(ctx, b, dirNames)
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(b.Tags))
		for _, id := range b.Tags {
			if name, ok := tagNames[id]; ok {
				names = append(names, name)
			}
		}

		tagIDs := slices.Clone(b.Tags)
		if tagIDs == nil {
			tagIDs = []string{}
		}
		out = append(out, &Bookmark{
			Bookmark:      b,
			Tags:          names,
			TagIDs:        tagIDs,
			DirectoryName: dirName,
		})
	}
	return out, nil
}

func (e *Enricher) tagNameMap(ctx context.Context, tagIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(tagIDs))
	if len(tagIDs) == 0 {
		return names, nil
	}
	tags, err := e.store.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch tags: %w", err)
	}
	for _, t := range tags {
		if !t.IsDeleted() {
			names[t.ID] = t.Name
		}
	}
	return names, nil
}

func (e *Enricher) directoryName(ctx context.Context, b *domain.Bookmark, cache map[string]string) (string, error) {
	if b.IsUncategorized() {
		return domain.UncategorizedName, nil
	}
	if name, ok := cache[b.DirectoryID]; ok {
		return name, nil
	}

	d, err := e.store.GetDirectory(ctx, b.DirectoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cache[b.DirectoryID] = ""
			return "", nil
		}
		return "", fmt.Errorf("fetch directory: %w", err)
	}

	name := d.Name
	if d.IsDeleted() {
		name = ""
	}
	cache[b.DirectoryID] = name
	return name, nil
}
