package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	domainerrors "github.com/tagmarks/tagmarks-server/internal/errors"
)

func TestResolveTags_Idempotent(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	u := env.createUser(t, "idem@example.com")

	first, err := env.resolver.ResolveTags(ctx, u.ID, []string{"x"})
	require.NoError(t, err)
	second, err := env.resolver.ResolveTags(ctx, u.ID, []string{"x"})
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, env.tagCount(t, u.ID))
}

func TestResolveTags_PreservesOrderAndDuplicates(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	u := env.createUser(t, "order@example.com")

	ids, err := env.resolver.ResolveTags(ctx, u.ID, []string{"b", "a", "b"})
	require.NoError(t, err)

	require.Len(t, ids, 3)
	assert.Equal(t, ids[0], ids[2])
	assert.NotEqual(t, ids[0], ids[1])
	assert.Equal(t, 2, env.tagCount(t, u.ID))

	names, err := env.resolver.TagNamesFor(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "b"}, names)
}

func TestResolveTags_ExactMatch(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	u := env.createUser(t, "exact@example.com")

	ids, err := env.resolver.ResolveTags(ctx, u.ID, []string{"Go", "go"})
	require.NoError(t, err)
	assert.NotEqual(t, ids[0], ids[1])
	assert.Equal(t, 2, env.tagCount(t, u.ID))
}

func TestResolveTags_ScopedPerUser(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	a, err := env.resolver.ResolveTags(ctx, alice.ID, []string{"news"})
	require.NoError(t, err)
	b, err := env.resolver.ResolveTags(ctx, bob.ID, []string{"news"})
	require.NoError(t, err)

	assert.NotEqual(t, a[0], b[0])
}

func TestResolveTags_BlankNameRejected(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	u := env.createUser(t, "blank@example.com")

	_, err := env.resolver.ResolveTags(ctx, u.ID, []string{"ok", "   "})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Equal(t, 0, env.tagCount(t, u.ID), "no tag is created when any name is invalid")
}

func TestResolveTags_EmptyInput(t *testing.T) {
	env := setupServices(t)
	u := env.createUser(t, "empty@example.com")

	ids, err := env.resolver.ResolveTags(context.Background(), u.ID, nil)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestResolveTags_ConcurrentSameName(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	u := env.createUser(t, "race@example.com")

	const workers = 16
	results := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids, err := env.resolver.ResolveTags(ctx, u.ID, []string{"shared"})
			errs[i] = err
			if err == nil {
				results[i] = ids[0]
			}
		}()
	}
	wg.Wait()

	var winner string
	for i := range workers {
		if errs[i] != nil {
			// Only exhausted conflict retries may fail.
			assert.True(t, domainerrors.Is(errs[i], domainerrors.ErrConflictRisk), "unexpected error: %v", errs[i])
			continue
		}
		if winner == "" {
			winner = results[i]
		}
		assert.Equal(t, winner, results[i])
	}
	assert.Equal(t, 1, env.tagCount(t, u.ID))
}

func TestResolveTagsAs_ServiceCreator(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	u := env.createUser(t, "creator@example.com")

	userIDs, err := env.resolver.ResolveTags(ctx, u.ID, []string{"go"})
	require.NoError(t, err)
	serviceIDs, err := env.resolver.ResolveTagsAs(ctx, u.ID, []string{"go", "rust"}, domain.TagCreatorService)
	require.NoError(t, err)

	assert.Equal(t, userIDs[0], serviceIDs[0], "existing tag keeps its record")

	goTag, err := env.store.GetTag(ctx, serviceIDs[0])
	require.NoError(t, err)
	assert.Equal(t, domain.TagCreatorUser, goTag.Creator)

	rustTag, err := env.store.GetTag(ctx, serviceIDs[1])
	require.NoError(t, err)
	assert.Equal(t, domain.TagCreatorService, rustTag.Creator)

	_, err = env.resolver.ResolveTagsAs(ctx, u.ID, []string{"x"}, domain.TagCreator("ROBOT"))
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestTagNamesFor_DropsMissingAndDeleted(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	u := env.createUser(t, "names@example.com")

	ids, err := env.resolver.ResolveTags(ctx, u.ID, []string{"keep", "drop"})
	require.NoError(t, err)
	_, err = env.store.SoftDeleteTag(ctx, ids[1])
	require.NoError(t, err)

	names, err := env.resolver.TagNamesFor(ctx, []string{ids[0], "tag-missing", ids[1]})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, names)
}

func TestTagHistory(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	u := env.createUser(t, "history@example.com")

	_, err := env.resolver.ResolveTags(ctx, u.ID, []string{"zeta", "alpha"})
	require.NoError(t, err)
	_, err = env.resolver.ResolveTagsAs(ctx, u.ID, []string{"mid"}, domain.TagCreatorService)
	require.NoError(t, err)

	all, liked, err := env.resolver.TagHistory(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, all)
	assert.Equal(t, []string{"mid"}, liked)
}
