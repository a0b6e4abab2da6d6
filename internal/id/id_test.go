package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id := New(PrefixBookmark)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestNew_Format(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"user", PrefixUser},
		{"directory", PrefixDirectory},
		{"tag", PrefixTag},
		{"bookmark", PrefixBookmark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := New(tt.prefix)

			require.True(t, strings.HasPrefix(id, tt.prefix+"-"))

			// prefix + hyphen + canonical 36-char UUID
			assert.Len(t, id, len(tt.prefix)+1+36)

			parsed, err := uuid.Parse(strings.TrimPrefix(id, tt.prefix+"-"))
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(4), parsed.Version())
			assert.True(t, HasPrefix(id, tt.prefix))
		})
	}
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("directory-165ee178-7c68-4134-a2f6-9455be8ec55e", PrefixDirectory))
	assert.False(t, HasPrefix("directory-165ee178-7c68-4134-a2f6-9455be8ec55e", PrefixTag))
	assert.False(t, HasPrefix("tag-not-a-uuid", PrefixTag))
	assert.False(t, HasPrefix("", PrefixTag))
}

func TestShort(t *testing.T) {
	a, b := Short(), Short()
	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
}

func BenchmarkNew(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = New("bench")
	}
}
