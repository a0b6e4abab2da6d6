package api

// API limits and constants.
const (
	// APIPrefix is the base path of every versioned route.
	APIPrefix = "/api/v1"

	// UserIDHeader carries the caller's user id.
	UserIDHeader = "userId"

	// MaxBodySize caps request bodies (1 MB).
	MaxBodySize = 1 << 20

	// MaxSuggestLimit caps tag autocomplete results.
	MaxSuggestLimit = 50
)

// OpenAPI tags.
var (
	tagsUsers       = []string{"Users"}
	tagsBookmarks   = []string{"Bookmarks"}
	tagsTags        = []string{"Tags"}
	tagsDirectories = []string{"Directories"}
)

// userIDSecurity documents the userId header requirement.
var userIDSecurity = []map[string][]string{{"userId": {}}}
