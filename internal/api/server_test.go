package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/search"
	"github.com/tagmarks/tagmarks-server/internal/service"
	"github.com/tagmarks/tagmarks-server/internal/store"
	"github.com/tagmarks/tagmarks-server/internal/taggen"
)

type stubExtractor struct {
	page domain.PageContent
}

func (e *stubExtractor) Extract(_ context.Context, url string) domain.PageContent {
	p := e.page
	p.URL = url
	return p
}

type stubSuggester struct {
	mu   sync.Mutex
	tags []string
	err  error
}

func (s *stubSuggester) SuggestTags(_ context.Context, _ taggen.Request) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]string(nil), s.tags...), nil
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api       humatest.TestAPI
	store     *store.Store
	extractor *stubExtractor
	suggester *stubSuggester
}

func setupTestServer(t *testing.T, opts ...Options) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := store.New(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	extractor := &stubExtractor{}
	suggester := &stubSuggester{}

	resolver := service.NewTagResolver(st, logger)
	searchService := service.NewSearchService(index, st, resolver, logger)
	services := &Services{
		Users: service.NewUserService(st, searchService, logger),
		Bookmarks: service.NewBookmarkService(st, resolver, searchService, extractor, suggester,
			service.EnrichmentConfig{Enabled: false}, logger),
		Tags:        service.NewTagService(st, resolver, searchService, logger),
		Directories: service.NewDirectoryService(st, searchService, logger),
		Search:      searchService,
	}

	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	s := NewServer(st, services, o, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server:    s,
		api:       humatest.Wrap(t, s.API()),
		store:     st,
		extractor: extractor,
		suggester: suggester,
	}
}

// envelope mirrors response.Envelope with a typed payload.
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Message string         `json:"message"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

// bookmarkView is the subset of the bookmark payload the tests inspect.
type bookmarkView struct {
	ID            string   `json:"id"`
	UserID        string   `json:"userId"`
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Notes         string   `json:"notes"`
	Tags          []string `json:"tags"`
	TagIDs        []string `json:"tagIds"`
	GeneratedTags []string `json:"generatedTags"`
	DirectoryID   string   `json:"directoryId"`
	DirectoryName string   `json:"directoryName"`
	IsFavorite    bool     `json:"isFavorite"`
	IsDeleted     bool     `json:"isDeleted"`
}

type directoryView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IsModifiable   bool   `json:"isModifiable"`
	BookmarksCount int    `json:"bookmarksCount"`
}

type tagView struct {
	ID      string `json:"id"`
	Name    string `json:"tagName"`
	Creator string `json:"creator"`
}

func auth(userID string) string {
	return UserIDHeader + ": " + userID
}

func (ts *testServer) createUser(t *testing.T, email string) string {
	t.Helper()
	resp := ts.api.Post(APIPrefix+"/users", map[string]any{
		"firstName": "Test",
		"email":     email,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[domain.User](t, resp).Data.ID
}

func (ts *testServer) createBookmark(t *testing.T, userID string, body map[string]any) bookmarkView {
	t.Helper()
	if _, ok := body["enrich"]; !ok {
		body["enrich"] = false
	}
	resp := ts.api.Post(APIPrefix+"/bookmarks", auth(userID), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[bookmarkView](t, resp).Data
}

func (ts *testServer) createDirectory(t *testing.T, userID, name string) string {
	t.Helper()
	resp := ts.api.Post(APIPrefix+"/directories", auth(userID), map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[directoryView](t, resp).Data.ID
}

func bookmarkIDs(views []bookmarkView) []string {
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	return ids
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "healthy", env.Data.Components["search"].Status)
	assert.Equal(t, "enrichment disabled", env.Data.Components["enrichment"].Message)
	assert.Equal(t, "healthy", env.Data.Status)
}

func TestAuthentication(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get(APIPrefix + "/bookmarks")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
	assert.Equal(t, "missing key userId in header", env.Error)

	resp = ts.api.Get(APIPrefix+"/bookmarks", auth("user-nobody"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "invalid userId passed", decode[any](t, resp).Error)

	userID := ts.createUser(t, "auth@example.com")
	resp = ts.api.Get(APIPrefix+"/bookmarks", auth(userID))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[[]bookmarkView](t, resp).Data)
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nothing-here", nil)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode[any](t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestOpenAPIDocument(t *testing.T) {
	ts := setupTestServer(t)

	doc := ts.API().OpenAPI()
	for _, path := range []string{
		"/api/v1/bookmarks",
		"/api/v1/bookmarks/{id}/generate-tags",
		"/api/v1/bookmarks/filter-by-tags",
		"/api/v1/tags/suggest",
		"/api/v1/directories/{id}",
		"/api/v1/users/{userId}",
	} {
		assert.Contains(t, doc.Paths, path)
	}
}
