package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/dto"
	"github.com/tagmarks/tagmarks-server/internal/search"
	"github.com/tagmarks/tagmarks-server/internal/store"
	"github.com/tagmarks/tagmarks-server/internal/taggen"
)

// fakeExtractor returns the same page for every URL.
type fakeExtractor struct {
	mu    sync.Mutex
	page  domain.PageContent
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, url string) domain.PageContent {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	p := f.page
	p.URL = url
	return p
}

// fakeSuggester returns fixed suggestions or a fixed error.
type fakeSuggester struct {
	mu       sync.Mutex
	tags     []string
	err      error
	requests []taggen.Request
}

func (f *fakeSuggester) SuggestTags(_ context.Context, req taggen.Request) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.tags...), nil
}

func (f *fakeSuggester) lastRequest() taggen.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type testEnv struct {
	store       *store.Store
	index       *search.SearchIndex
	resolver    *TagResolver
	search      *SearchService
	bookmarks   *BookmarkService
	tags        *TagService
	directories *DirectoryService
	users       *UserService
	extractor   *fakeExtractor
	suggester   *fakeSuggester
}

// setupServices wires every service against a temp Badger store and an
// in-memory search index. Enrichment is disabled unless a config is passed.
func setupServices(t *testing.T, enrichment ...EnrichmentConfig) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := store.New(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(search.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	cfg := EnrichmentConfig{Enabled: false}
	if len(enrichment) > 0 {
		cfg = enrichment[0]
	}

	env := &testEnv{
		store:     s,
		index:     index,
		extractor: &fakeExtractor{},
		suggester: &fakeSuggester{},
	}
	env.resolver = NewTagResolver(s, logger)
	env.search = NewSearchService(index, s, env.resolver, logger)
	env.bookmarks = NewBookmarkService(s, env.resolver, env.search, env.extractor, env.suggester, cfg, logger)
	env.tags = NewTagService(s, env.resolver, env.search, logger)
	env.directories = NewDirectoryService(s, env.search, logger)
	env.users = NewUserService(s, env.search, logger)
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), CreateUserRequest{
		FirstName: "Test",
		Email:     email,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) createBookmark(t *testing.T, userID, url string, tags ...string) string {
	t.Helper()
	noEnrich := false
	b, err := e.bookmarks.CreateBookmark(context.Background(), userID, CreateBookmarkRequest{
		URL:    url,
		Tags:   tags,
		Enrich: &noEnrich,
	})
	require.NoError(t, err)
	return b.ID
}

func (e *testEnv) createDirectory(t *testing.T, userID, name string) string {
	t.Helper()
	d, err := e.directories.CreateDirectory(context.Background(), userID, DirectoryRequest{Name: name})
	require.NoError(t, err)
	return d.ID
}

func (e *testEnv) loadBookmark(t *testing.T, bookmarkID string) *domain.Bookmark {
	t.Helper()
	b, err := e.store.GetBookmark(context.Background(), bookmarkID)
	require.NoError(t, err)
	return b
}

func (e *testEnv) tagCount(t *testing.T, userID string) int {
	t.Helper()
	tags, err := e.store.ListTagsByUser(context.Background(), userID)
	require.NoError(t, err)
	return len(tags)
}

func viewIDs(views []*dto.Bookmark) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}
