package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createTag(t *testing.T, userID, name string) tagView {
	t.Helper()
	resp := ts.api.Post(APIPrefix+"/tags", auth(userID), map[string]any{"name": name})
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, resp.Code, resp.Body.String())
	return decode[tagView](t, resp).Data
}

func TestCreateTag_FindOrCreate(t *testing.T) {
	ts := setupTestServer(t)
	userID := ts.createUser(t, "tags@example.com")

	resp := ts.api.Post(APIPrefix+"/tags", auth(userID), map[string]any{"name": "golang"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	first := decode[tagView](t, resp).Data
	assert.Equal(t, "golang", first.Name)
	assert.Equal(t, "USER", first.Creator)

	resp = ts.api.Post(APIPrefix+"/tags", auth(userID), map[string]any{"name": "golang"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, first.ID, decode[tagView](t, resp).Data.ID)

	// Names are matched exactly.
	resp = ts.api.Post(APIPrefix+"/tags", auth(userID), map[string]any{"name": "GoLang"})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.NotEqual(t, first.ID, decode[tagView](t, resp).Data.ID)

	resp = ts.api.Post(APIPrefix+"/tags", auth(userID), map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListTags(t *testing.T) {
	ts := setupTestServer(t)
	userID := ts.createUser(t, "list-tags@example.com")
	other := ts.createUser(t, "other-tags@example.com")

	ts.createTag(t, userID, "zeta")
	ts.createTag(t, userID, "alpha")
	ts.createTag(t, other, "hidden")

	resp := ts.api.Get(APIPrefix+"/tags", auth(userID))
	require.Equal(t, http.StatusOK, resp.Code)

	tags := decode[[]tagView](t, resp).Data
	require.Len(t, tags, 2)
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "zeta", tags[1].Name)
}

func TestGetTag(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.createUser(t, "alice-tag@example.com")
	bob := ts.createUser(t, "bob-tag@example.com")
	tag := ts.createTag(t, alice, "private")

	resp := ts.api.Get(APIPrefix+"/tags/"+tag.ID, auth(alice))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "private", decode[tagView](t, resp).Data.Name)

	resp = ts.api.Get(APIPrefix+"/tags/"+tag.ID, auth(bob))
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", decode[any](t, resp).Code)

	resp = ts.api.Get(APIPrefix+"/tags/tag-missing", auth(alice))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSuggestTags(t *testing.T) {
	ts := setupTestServer(t)
	userID := ts.createUser(t, "suggest@example.com")
	for _, name := range []string{"golang", "google", "rust"} {
		ts.createTag(t, userID, name)
	}

	suggest := func(query string) []string {
		t.Helper()
		resp := ts.api.Get(APIPrefix+"/tags/suggest?"+query, auth(userID))
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		var names []string
		for _, tag := range decode[[]tagView](t, resp).Data {
			names = append(names, tag.Name)
		}
		return names
	}

	assert.ElementsMatch(t, []string{"golang", "google"}, suggest("q=go"))
	assert.Len(t, suggest("q=go&limit=1"), 1)
	assert.Equal(t, []string{"golang", "google", "rust"}, suggest(""))
	assert.Empty(t, suggest("q=xyz"))
}

func TestDeleteTag_Cascade(t *testing.T) {
	ts := setupTestServer(t)
	userID := ts.createUser(t, "cascade@example.com")

	only := ts.createBookmark(t, userID, map[string]any{"url": "https://only.example.com", "tags": []string{"doomed"}})
	shared := ts.createBookmark(t, userID, map[string]any{"url": "https://shared.example.com", "tags": []string{"doomed", "kept"}})
	tagID := only.TagIDs[0]

	resp := ts.api.Delete(APIPrefix+"/tags/"+tagID, auth(userID))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "tag deleted", decode[any](t, resp).Message)

	resp = ts.api.Get(APIPrefix+"/bookmarks/"+only.ID, auth(userID))
	assert.Equal(t, http.StatusNotFound, resp.Code, "bookmark left without tags is deleted")

	resp = ts.api.Get(APIPrefix+"/bookmarks/"+shared.ID, auth(userID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"kept"}, decode[bookmarkView](t, resp).Data.Tags)

	resp = ts.api.Get(APIPrefix+"/tags/"+tagID, auth(userID))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// The name is free again.
	resp = ts.api.Post(APIPrefix+"/tags", auth(userID), map[string]any{"name": "doomed"})
	assert.Equal(t, http.StatusCreated, resp.Code)
}
