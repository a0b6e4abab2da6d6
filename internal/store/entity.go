package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// maxTxnRetries bounds optimistic retries on badger transaction conflicts.
const maxTxnRetries = 5

// Entity provides generic CRUD operations for any domain type.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []Index[T]
}

// IndexKind selects how an index maps values to IDs.
type IndexKind int

const (
	// IndexUnique maps each value to at most one ID. Writes that would
	// reuse a value held by another entity fail with ErrAlreadyExists.
	IndexUnique IndexKind = iota
	// IndexMulti maps a value to any number of IDs (equality and
	// array-contains lookups).
	IndexMulti
)

// Index defines a secondary index on an entity.
// keyGen may return no values, in which case the entity is not indexed.
type Index[T any] struct {
	name            string
	kind            IndexKind
	keyGen          func(*T) []string
	lookupTransform func(string) string // Optional transformation for lookups
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{
		store:   s,
		prefix:  prefix,
		indexes: make([]Index[T], 0),
	}
}

// WithIndex adds a unique secondary index to the entity.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		kind:   IndexUnique,
		keyGen: keyGen,
	})
	return e
}

// WithIndexTransform adds a unique secondary index with lookup transformation.
// The lookupTransform function is applied to search values before index lookup,
// enabling case-insensitive searches, normalization, etc.
func (e *Entity[T]) WithIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		kind:            IndexUnique,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
	})
	return e
}

// WithMultiIndex adds a non-unique secondary index to the entity.
func (e *Entity[T]) WithMultiIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		kind:   IndexMulti,
		keyGen: keyGen,
	})
	return e
}

// indexKey returns the badger key for one index value of entity id.
func (e *Entity[T]) indexKey(idx Index[T], value, id string) []byte {
	if idx.kind == IndexMulti {
		return multiIndexKey(e.prefix, idx.name, value, id)
	}
	return uniqueIndexKey(e.prefix, idx.name, value)
}

func (e *Entity[T]) findIndex(name string) (Index[T], bool) {
	for _, idx := range e.indexes {
		if idx.name == name {
			return idx, true
		}
	}
	return Index[T]{}, false
}

// Create creates a new entity with the given ID.
// Returns ErrAlreadyExists if the ID or any unique index value is taken,
// and ErrConflict if a concurrent transaction won the race.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	err = e.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(primaryKey(e.prefix, id))
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		if err := e.checkUnique(txn, entity, nil); err != nil {
			return err
		}

		if err := txn.Set(primaryKey(e.prefix, id), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}

		return e.setIndexes(txn, id, entity)
	})

	return translateTxnErr(err)
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.getTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return entity, nil
}

// GetByIndex retrieves an entity by a unique secondary index.
// If the index has a lookup transform, it will be applied to the value before lookup.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx, ok := e.findIndex(indexName)
	if !ok || idx.kind != IndexUnique {
		return nil, fmt.Errorf("unknown unique index %q", indexName)
	}
	if idx.lookupTransform != nil {
		value = idx.lookupTransform(value)
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(uniqueIndexKey(e.prefix, indexName, value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		entity, err = e.getTxn(txn, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}

	return entity, nil
}

// IDsByIndex returns the IDs stored under value in a multi index.
func (e *Entity[T]) IDsByIndex(ctx context.Context, indexName, value string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx, ok := e.findIndex(indexName)
	if !ok || idx.kind != IndexMulti {
		return nil, fmt.Errorf("unknown multi index %q", indexName)
	}

	prefix := multiIndexPrefix(e.prefix, indexName, value)
	var ids []string

	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// CountByIndex counts entries under value in a multi index without loading entities.
func (e *Entity[T]) CountByIndex(ctx context.Context, indexName, value string) (int, error) {
	ids, err := e.IDsByIndex(ctx, indexName, value)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// ListByIndex returns an iterator over entities stored under value in a multi index.
// Entities removed between the index scan and the load are skipped.
func (e *Entity[T]) ListByIndex(ctx context.Context, indexName, value string) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		ids, err := e.IDsByIndex(ctx, indexName, value)
		if err != nil {
			yield(nil, err)
			return
		}

		for _, id := range ids {
			entity, err := e.Get(ctx, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if !yield(entity, err) || err != nil {
				return
			}
		}
	}
}

// Update replaces an existing entity.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := e.store.db.Update(func(txn *badger.Txn) error {
		old, err := e.getTxn(txn, id)
		if err != nil {
			return err
		}
		return e.replaceTxn(txn, id, old, entity)
	})

	return translateTxnErr(err)
}

// Modify loads the entity, applies fn and writes the result in one transaction.
// Conflicting concurrent writes are retried, so fn may run more than once and
// must only mutate the entity it is given. Returning an error from fn aborts
// without writing.
func (e *Entity[T]) Modify(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	var result *T

	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := e.store.db.Update(func(txn *badger.Txn) error {
			old, err := e.getTxn(txn, id)
			if err != nil {
				return err
			}

			next, err := e.getTxn(txn, id)
			if err != nil {
				return err
			}
			if err := fn(next); err != nil {
				return err
			}

			if err := e.replaceTxn(txn, id, old, next); err != nil {
				return err
			}
			result = next
			return nil
		})

		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	return nil, ErrConflict
}

// Delete physically removes an entity and its index entries.
// This operation is idempotent - it does not return an error if the entity does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := e.store.db.Update(func(txn *badger.Txn) error {
		entity, err := e.getTxn(txn, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := e.deleteIndexes(txn, id, entity); err != nil {
			return err
		}

		if err := txn.Delete(primaryKey(e.prefix, id)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}

		return nil
	})

	return translateTxnErr(err)
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				// Skip index keys
				key := string(it.Item().Key())
				if strings.HasPrefix(key[len(e.prefix):], indexMarker) {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, err)
					return err
				}

				if !yield(&entity, nil) {
					return nil // Consumer stopped early
				}
			}

			return nil
		})
	}
}

func (e *Entity[T]) getTxn(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(primaryKey(e.prefix, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &entity); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &entity, nil
}

// replaceTxn swaps old for entity under id, moving index entries as needed.
func (e *Entity[T]) replaceTxn(txn *badger.Txn, id string, old, entity *T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	if err := e.checkUnique(txn, entity, old); err != nil {
		return err
	}

	if err := e.deleteIndexes(txn, id, old); err != nil {
		return err
	}

	if err := txn.Set(primaryKey(e.prefix, id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	return e.setIndexes(txn, id, entity)
}

// checkUnique fails if entity would take a unique index value held by
// another record. Values already held by old (the previous version of the
// same entity) are allowed.
func (e *Entity[T]) checkUnique(txn *badger.Txn, entity, old *T) error {
	for _, idx := range e.indexes {
		if idx.kind != IndexUnique {
			continue
		}

		owned := make(map[string]bool)
		if old != nil {
			for _, v := range idx.keyGen(old) {
				owned[v] = true
			}
		}

		for _, value := range idx.keyGen(entity) {
			if owned[value] {
				continue
			}
			_, err := txn.Get(uniqueIndexKey(e.prefix, idx.name, value))
			if err == nil {
				return fmt.Errorf("index %s conflict on key %s: %w", idx.name, value, ErrAlreadyExists)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) setIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			if err := txn.Set(e.indexKey(idx, value, id), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			if err := txn.Delete(e.indexKey(idx, value, id)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}

// collect drains an entity iterator into a slice.
func collect[T any](seq iter.Seq2[*T, error]) ([]*T, error) {
	var out []*T
	for entity, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

func translateTxnErr(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return ErrConflict
	}
	return err
}
