// Package id generates entity identifiers.
package id

import (
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity ID prefixes.
const (
	PrefixUser      = "user"
	PrefixDirectory = "directory"
	PrefixTag       = "tag"
	PrefixBookmark  = "bookmark"
)

// New creates a prefixed entity ID backed by a random (v4) UUID.
// Format: prefix-uuid (e.g., "bookmark-1b4e28ba-2fa1-41d2-883f-0016cb7ac4b4").
func New(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Short returns a compact NanoID used to label background jobs in logs.
func Short() string {
	s, err := gonanoid.New(12)
	if err != nil {
		return uuid.NewString()
	}
	return s
}

// HasPrefix reports whether id has the shape produced by New(prefix).
func HasPrefix(id, prefix string) bool {
	rest, ok := strings.CutPrefix(id, prefix+"-")
	if !ok {
		return false
	}
	return uuid.Validate(rest) == nil
}
