package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tagmarks/tagmarks-server/internal/domain"
)

// ErrPageNotCached is returned when no fresh entry exists for a URL.
var ErrPageNotCached = errors.New("page not cached")

// GetPage returns the cached content for url if it was fetched within maxAge.
// A non-positive maxAge accepts entries of any age.
func (s *Store) GetPage(ctx context.Context, url string, maxAge time.Duration) (*domain.PageContent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT url, title, image_url, excerpt, fetched_at FROM page_cache WHERE url = ?`, url)

	var (
		p         domain.PageContent
		fetchedAt string
	)
	err := row.Scan(&p.URL, &p.Title, &p.ImageURL, &p.Excerpt, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPageNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("get cached page: %w", err)
	}

	p.FetchedAt, err = parseTime(fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parse fetched_at: %w", err)
	}

	if maxAge > 0 && time.Since(p.FetchedAt) > maxAge {
		return nil, ErrPageNotCached
	}

	return &p, nil
}

// PutPage inserts or replaces the cached content for p.URL.
func (s *Store) PutPage(ctx context.Context, p *domain.PageContent) error {
	fetchedAt := p.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_cache (url, title, image_url, excerpt, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			image_url = excluded.image_url,
			excerpt = excluded.excerpt,
			fetched_at = excluded.fetched_at`,
		p.URL, p.Title, p.ImageURL, p.Excerpt, formatTime(fetchedAt),
	)
	if err != nil {
		return fmt.Errorf("put cached page: %w", err)
	}
	return nil
}

// PurgeOlderThan deletes entries fetched before cutoff and returns how many were removed.
func (s *Store) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM page_cache WHERE fetched_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge page cache: %w", err)
	}
	return res.RowsAffected()
}
