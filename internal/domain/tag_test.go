package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTagCreator(t *testing.T) {
	c, err := ParseTagCreator("SERVICE")
	require.NoError(t, err)
	assert.Equal(t, TagCreatorService, c)

	_, err = ParseTagCreator("service")
	assert.Error(t, err)

	_, err = ParseTagCreator("")
	assert.Error(t, err)
}

func TestTag_JSONRejectsUnknownCreator(t *testing.T) {
	var tag Tag
	err := json.Unmarshal([]byte(`{"id":"tag-1","tagName":"go","creator":"ROBOT"}`), &tag)
	assert.Error(t, err)
}

func TestTag_JSONRoundTripsCreator(t *testing.T) {
	tag := NewTag("tag-1", "user-1", "golang", TagCreatorUser)

	data, err := json.Marshal(tag)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"creator":"USER"`)
	assert.Contains(t, string(data), `"tagName":"golang"`)

	var decoded Tag
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TagCreatorUser, decoded.Creator)
	assert.False(t, decoded.IsDeleted())
}

func TestUncategorized(t *testing.T) {
	d := Uncategorized("user-1")

	assert.Equal(t, UncategorizedID, d.ID)
	assert.Equal(t, UncategorizedName, d.Name)
	assert.False(t, d.IsModifiable)
	assert.True(t, IsUncategorized(d.ID))
}
