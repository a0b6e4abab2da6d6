package store_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagmarks/tagmarks-server/internal/store"
)

type TestEntity struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Groups []string `json:"groups"`
}

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "entity-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func newTestEntity(s *store.Store) *store.Entity[TestEntity] {
	return store.NewEntity[TestEntity](s, "test:").
		WithIndex("email", func(e *TestEntity) []string {
			return []string{e.Email}
		}).
		WithMultiIndex("group", func(e *TestEntity) []string {
			return e.Groups
		})
}

func TestEntity_Create_Success(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	testData := &TestEntity{ID: "1", Name: "John Doe", Email: "john@example.com"}

	err := entity.Create(context.Background(), "1", testData)
	require.NoError(t, err)

	retrieved, err := entity.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, testData, retrieved)
}

func TestEntity_Create_AlreadyExists(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	testData := &TestEntity{ID: "1", Name: "John Doe", Email: "john@example.com"}

	require.NoError(t, entity.Create(context.Background(), "1", testData))

	err := entity.Create(context.Background(), "1", testData)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrAlreadyExists))
}

func TestEntity_Create_UniqueIndexConflict(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "same@example.com"}))

	err := entity.Create(ctx, "2", &TestEntity{ID: "2", Email: "same@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = entity.Get(ctx, "2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Get_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := newTestEntity(s).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_GetByIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	ctx := context.Background()
	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Name: "John", Email: "john@example.com"}))

	found, err := entity.GetByIndex(ctx, "email", "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, "John", found.Name)

	_, err = entity.GetByIndex(ctx, "email", "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_ListByIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "a@x", Groups: []string{"g1"}}))
	require.NoError(t, entity.Create(ctx, "2", &TestEntity{ID: "2", Email: "b@x", Groups: []string{"g1", "g2"}}))
	require.NoError(t, entity.Create(ctx, "3", &TestEntity{ID: "3", Email: "c@x", Groups: []string{"g2"}}))

	var ids []string
	for e, err := range entity.ListByIndex(ctx, "group", "g1") {
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{"1", "2"}, ids)

	count, err := entity.CountByIndex(ctx, "group", "g2")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = entity.CountByIndex(ctx, "group", "g")
	require.NoError(t, err)
	assert.Zero(t, count, "prefix of a value must not match")
}

func TestEntity_Update_MovesIndexes(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "old@x", Groups: []string{"g1"}}))
	require.NoError(t, entity.Update(ctx, "1", &TestEntity{ID: "1", Email: "new@x", Groups: []string{"g2"}}))

	_, err := entity.GetByIndex(ctx, "email", "old@x")
	assert.ErrorIs(t, err, store.ErrNotFound)

	found, err := entity.GetByIndex(ctx, "email", "new@x")
	require.NoError(t, err)
	assert.Equal(t, "1", found.ID)

	ids, err := entity.IDsByIndex(ctx, "group", "g1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = entity.IDsByIndex(ctx, "group", "g2")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)
}

func TestEntity_Update_KeepsOwnUniqueValue(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	ctx := context.Background()

	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Name: "A", Email: "a@x"}))
	require.NoError(t, entity.Update(ctx, "1", &TestEntity{ID: "1", Name: "B", Email: "a@x"}))

	found, err := entity.GetByIndex(ctx, "email", "a@x")
	require.NoError(t, err)
	assert.Equal(t, "B", found.Name)
}

func TestEntity_Update_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := newTestEntity(s).Update(context.Background(), "missing", &TestEntity{ID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Modify(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	ctx := context.Background()
	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Name: "before", Email: "a@x"}))

	updated, err := entity.Modify(ctx, "1", func(e *TestEntity) error {
		e.Name = "after"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Name)

	stored, err := entity.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "after", stored.Name)
}

func TestEntity_Modify_AbortsOnError(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	ctx := context.Background()
	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Name: "before", Email: "a@x"}))

	boom := fmt.Errorf("boom")
	_, err := entity.Modify(ctx, "1", func(e *TestEntity) error {
		e.Name = "after"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := entity.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "before", stored.Name)
}

func TestEntity_Delete_RemovesIndexes(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	ctx := context.Background()
	require.NoError(t, entity.Create(ctx, "1", &TestEntity{ID: "1", Email: "a@x", Groups: []string{"g1"}}))

	require.NoError(t, entity.Delete(ctx, "1"))
	require.NoError(t, entity.Delete(ctx, "1"), "delete is idempotent")

	_, err := entity.Get(ctx, "1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = entity.GetByIndex(ctx, "email", "a@x")
	assert.ErrorIs(t, err, store.ErrNotFound)

	ids, err := entity.IDsByIndex(ctx, "group", "g1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// The unique value is free again.
	require.NoError(t, entity.Create(ctx, "2", &TestEntity{ID: "2", Email: "a@x"}))
}

func TestEntity_List_SkipsIndexKeys(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("%d", i)
		require.NoError(t, entity.Create(ctx, id, &TestEntity{ID: id, Email: id + "@x", Groups: []string{"g"}}))
	}

	count := 0
	for e, err := range entity.List(ctx) {
		require.NoError(t, err)
		require.NotEmpty(t, e.ID)
		count++
	}
	assert.Equal(t, 5, count)
}

func TestEntity_List_EarlyStop(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := newTestEntity(s)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("%d", i)
		require.NoError(t, entity.Create(ctx, id, &TestEntity{ID: id, Email: id + "@x"}))
	}

	count := 0
	for range entity.List(ctx) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestEntity_CanceledContext(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestEntity(s).Create(ctx, "1", &TestEntity{ID: "1"})
	assert.ErrorIs(t, err, context.Canceled)
}
