// Package main prints a summary of a tagmarks badger store.
//
// Usage:
//
//	DB_PATH=~/.tagmarks/store go run ./cmd/dbinspect
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/tagmarks/tagmarks-server/internal/domain"
)

type counts struct {
	live, deleted int
}

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.tagmarks/store")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	var (
		users, directories, tags, bookmarks counts
		perUser                             = map[string]int{}
		byCreator                           = map[domain.TagCreator]int{}
		untagged, favorites, withSuggestion int
	)

	err = db.View(func(txn *badger.Txn) error {
		if err := scan(txn, "user:", func(u *domain.User) {
			users.add(u.IsDeleted())
		}); err != nil {
			return err
		}
		if err := scan(txn, "directory:", func(d *domain.Directory) {
			directories.add(d.IsDeleted())
		}); err != nil {
			return err
		}
		if err := scan(txn, "tag:", func(t *domain.Tag) {
			tags.add(t.IsDeleted())
			if !t.IsDeleted() {
				byCreator[t.Creator]++
			}
		}); err != nil {
			return err
		}
		return scan(txn, "bookmark:", func(b *domain.Bookmark) {
			bookmarks.add(b.IsDeleted())
			if b.IsDeleted() {
				return
			}
			perUser[b.UserID]++
			if len(b.Tags) == 0 {
				untagged++
			}
			if b.IsFavorite {
				favorites++
			}
			if len(b.GeneratedTags) > 0 {
				withSuggestion++
			}
		})
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Users:       %d live, %d deleted\n", users.live, users.deleted)
	fmt.Printf("Directories: %d live, %d deleted\n", directories.live, directories.deleted)
	fmt.Printf("Tags:        %d live, %d deleted (USER %d, SERVICE %d)\n",
		tags.live, tags.deleted, byCreator[domain.TagCreatorUser], byCreator[domain.TagCreatorService])
	fmt.Printf("Bookmarks:   %d live, %d deleted\n", bookmarks.live, bookmarks.deleted)
	fmt.Printf("  untagged: %d, favorites: %d, with suggestions: %d\n", untagged, favorites, withSuggestion)

	if len(perUser) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("=== Bookmarks per user ===")
	ids := make([]string, 0, len(perUser))
	for userID := range perUser {
		ids = append(ids, userID)
	}
	sort.Slice(ids, func(i, j int) bool { return perUser[ids[i]] > perUser[ids[j]] })
	for i, userID := range ids {
		if i == 10 {
			fmt.Printf("  ... and %d more users\n", len(ids)-10)
			break
		}
		fmt.Printf("  %s: %d\n", userID, perUser[userID])
	}
}

func (c *counts) add(deleted bool) {
	if deleted {
		c.deleted++
	} else {
		c.live++
	}
}

// scan decodes every primary record under prefix, skipping index keys.
func scan[T any](txn *badger.Txn, prefix string, fn func(*T)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := string(item.Key())
		if strings.HasPrefix(key[len(prefix):], "idx:") {
			continue
		}

		err := item.Value(func(val []byte) error {
			var v T
			if err := json.Unmarshal(val, &v); err != nil {
				return err
			}
			fn(&v)
			return nil
		})
		if err != nil {
			log.Printf("Error reading %s: %v", key, err)
		}
	}
	return nil
}
