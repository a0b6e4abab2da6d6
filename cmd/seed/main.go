// Package main seeds a tagmarks store with a demo user and bookmarks.
//
// The search index is not touched; run `tagmarks reindex` afterwards.
//
// Usage:
//
//	DB_PATH=~/.tagmarks/store go run ./cmd/seed
//	DB_PATH=~/.tagmarks/store go run ./cmd/seed --email demo2@example.com
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tagmarks/tagmarks-server/internal/domain"
	"github.com/tagmarks/tagmarks-server/internal/id"
	"github.com/tagmarks/tagmarks-server/internal/store"
)

var email = flag.String("email", "demo@example.com", "Email of the demo user")

type seedBookmark struct {
	url, title, notes, directory string
	tags                         []string
	favorite                     bool
}

var seedBookmarks = []seedBookmark{
	{url: "https://go.dev/doc/effective_go", title: "Effective Go", directory: "Reading", tags: []string{"golang", "docs"}, favorite: true},
	{url: "https://go.dev/blog/pipelines", title: "Go Concurrency Patterns: Pipelines", directory: "Reading", tags: []string{"golang", "concurrency"}},
	{url: "https://dgraph.io/docs/badger/", title: "Badger documentation", directory: "Work", tags: []string{"database", "docs"}},
	{url: "https://blevesearch.com/", title: "Bleve", directory: "Work", tags: []string{"search"}, notes: "index mapping reference"},
	{url: "https://news.ycombinator.com/", title: "Hacker News", tags: []string{"news", "tech"}},
	{url: "https://example.com/later", title: "Read later"},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.tagmarks/store")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	user, err := ensureUser(ctx, s, *email)
	if err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	fmt.Printf("Demo user: %s <%s> (userId header: %s)\n", user.DisplayName(), user.Email, user.ID)

	directories := map[string]string{}
	created := 0
	for _, sb := range seedBookmarks {
		directoryID := domain.UncategorizedID
		if sb.directory != "" {
			if directoryID = directories[sb.directory]; directoryID == "" {
				d := &domain.Directory{UserID: user.ID, Name: sb.directory, IsModifiable: true}
				d.ID = id.New(id.PrefixDirectory)
				d.InitTimestamps()
				if err := s.CreateDirectory(ctx, d); err != nil {
					log.Fatalf("Failed to create directory %q: %v", sb.directory, err)
				}
				directories[sb.directory] = d.ID
				directoryID = d.ID
			}
		}

		tagIDs := make([]string, 0, len(sb.tags))
		for _, name := range sb.tags {
			tag, _, err := s.FindOrCreateTag(ctx, user.ID, name, domain.TagCreatorUser)
			if err != nil {
				log.Fatalf("Failed to resolve tag %q: %v", name, err)
			}
			tagIDs = append(tagIDs, tag.ID)
		}

		b := &domain.Bookmark{
			UserID:        user.ID,
			URL:           sb.url,
			Title:         sb.title,
			Notes:         sb.notes,
			Tags:          tagIDs,
			GeneratedTags: []string{},
			DirectoryID:   directoryID,
			IsFavorite:    sb.favorite,
		}
		b.ID = id.New(id.PrefixBookmark)
		b.InitTimestamps()
		if err := s.CreateBookmark(ctx, b); err != nil {
			log.Printf("Failed to create bookmark %s: %v", sb.url, err)
			continue
		}
		created++
	}

	fmt.Println("\n=== Summary ===")
	fmt.Printf("Directories: %d\n", len(directories))
	fmt.Printf("Bookmarks: %d\n", created)
}

// ensureUser returns the live user with email, creating it if missing.
func ensureUser(ctx context.Context, s *store.Store, email string) (*domain.User, error) {
	existing, err := s.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	u := &domain.User{FirstName: "Demo", LastName: "User", Email: email}
	u.ID = id.New(id.PrefixUser)
	u.InitTimestamps()
	if err := s.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
