package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SearchIndex wraps a Bleve index of bookmark documents.
//
// All public methods are safe for concurrent use. The mutex guards the
// index handle during Rebuild.
type SearchIndex struct {
	index  bleve.Index
	path   string // empty for in-memory indexes
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	InMemory bool         // Keep the index in memory only; DataPath is ignored
	Logger   *slog.Logger // Logger for operations (uses discard if nil)
}

// mappingVersion is bumped whenever the mapping changes. A mismatch on
// startup drops the index so it can be rebuilt from the store.
const mappingVersion = "1"

// NewSearchIndex creates or opens a search index. An existing index that
// is corrupted or was built with another mapping version is recreated empty
// and must be repopulated by the caller.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	indexMapping, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("build mapping: %w", err)
	}

	if opts.InMemory {
		index, err := bleve.NewMemOnly(indexMapping)
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &SearchIndex{index: index, logger: logger}, nil
	}

	index, indexPath, err := openOnDisk(opts.DataPath, indexMapping, logger)
	if err != nil {
		return nil, err
	}
	return &SearchIndex{index: index, path: indexPath, logger: logger}, nil
}

// openOnDisk opens dir/bookmarks.bleve when its recorded mapping version is
// current, and otherwise replaces it with an empty index.
func openOnDisk(dir string, m mapping.IndexMapping, logger *slog.Logger) (bleve.Index, string, error) {
	indexPath := filepath.Join(dir, "bookmarks.bleve")
	versionPath := filepath.Join(dir, "bookmarks.version")

	if _, err := os.Stat(indexPath); err == nil {
		recorded, _ := os.ReadFile(versionPath)
		if string(recorded) == mappingVersion {
			index, err := bleve.Open(indexPath)
			if err == nil {
				logger.Info("opened existing search index", "path", indexPath)
				return index, indexPath, nil
			}
			logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
		} else {
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(recorded),
				"new_version", mappingVersion,
			)
		}
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, "", fmt.Errorf("remove old index: %w", err)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create index dir: %w", err)
	}
	index, err := bleve.New(indexPath, m)
	if err != nil {
		return nil, "", fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
		logger.Warn("failed to write search version file", "error", err)
	}
	logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	return index, indexPath, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBookmark adds or replaces a bookmark document.
func (s *SearchIndex) IndexBookmark(doc *BookmarkDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.toMap())
}

// IndexBookmarks indexes documents in batches.
func (s *SearchIndex) IndexBookmarks(docs []*BookmarkDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.toMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// DeleteBookmark removes a document from the index.
func (s *SearchIndex) DeleteBookmark(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DeleteBookmarks removes multiple documents from the index.
func (s *SearchIndex) DeleteBookmarks(ids []string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}

	return s.index.Batch(batch)
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document and starts from an empty index.
// It blocks all other operations while running.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	indexMapping, err := buildIndexMapping()
	if err != nil {
		return fmt.Errorf("build mapping: %w", err)
	}

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var index bleve.Index
	if s.path == "" {
		index, err = bleve.NewMemOnly(indexMapping)
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, indexMapping)
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)

	return nil
}
