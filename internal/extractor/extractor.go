// Package extractor fetches web pages and derives the title, preview image
// and text excerpt used to enrich bookmarks.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/tagmarks/tagmarks-server/internal/domain"
)

// DefaultUserAgent is sent with every page fetch.
const DefaultUserAgent = "Mozilla/5.0"

// DefaultDenylist holds class/id substrings that mark non-content regions.
var DefaultDenylist = []string{
	"nav", "header", "footer", "aside", "form", "input", "button", "banner", "tracking", "sponsored",
	"signup", "subs", "register", "login", "terms", "privacy", "contact", "about",
	"social", "share", "follow", "media", "tweet", "like",
	"popup", "modal", "overlay", "newsletter", "alert",
	"ads", "advert", "promo", "sidebar", "interstitial", "call-to-action",
	"cookie", "consent", "disclaimer", "analytics", "widget",
	"comment", "related", "trending", "breaking", "more_articles",
}

// Options configures fetching and parsing.
type Options struct {
	Timeout      time.Duration
	MaxExcerpt   int   // runes
	MaxBodyBytes int64 // response bytes read before parsing
	UserAgent    string
	Denylist     []string
	CacheTTL     time.Duration // 0 disables the cache
}

// DefaultOptions returns the reference extraction settings.
func DefaultOptions() Options {
	return Options{
		Timeout:      10 * time.Second,
		MaxExcerpt:   1000,
		MaxBodyBytes: 5 << 20,
		UserAgent:    DefaultUserAgent,
		Denylist:     DefaultDenylist,
		CacheTTL:     24 * time.Hour,
	}
}

// Cache stores extracted pages by URL.
type Cache interface {
	GetPage(ctx context.Context, url string, maxAge time.Duration) (*domain.PageContent, error)
	PutPage(ctx context.Context, p *domain.PageContent) error
}

// Extractor fetches and parses pages. It never fails its caller: every
// problem is logged and turned into an empty result.
type Extractor struct {
	opts   Options
	client *http.Client
	cache  Cache
	logger *slog.Logger
}

// New creates an Extractor. cache may be nil.
func New(opts Options, cache Cache, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Extractor{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		cache:  cache,
		logger: logger,
	}
}

// Extract returns the page content for rawURL, or an empty PageContent if
// the page could not be fetched or parsed.
func (e *Extractor) Extract(ctx context.Context, rawURL string) domain.PageContent {
	empty := domain.PageContent{URL: rawURL}
	if rawURL == "" {
		return empty
	}

	if e.cache != nil && e.opts.CacheTTL > 0 {
		if cached, err := e.cache.GetPage(ctx, rawURL, e.opts.CacheTTL); err == nil {
			return *cached
		}
	}

	page, err := e.fetch(ctx, rawURL)
	if err != nil {
		e.logger.Warn("page extraction failed", "url", rawURL, "error", err)
		return empty
	}

	if e.cache != nil && e.opts.CacheTTL > 0 && !page.IsEmpty() {
		if err := e.cache.PutPage(ctx, &page); err != nil {
			e.logger.Warn("failed to cache extracted page", "url", rawURL, "error", err)
		}
	}

	return page
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) (domain.PageContent, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.PageContent{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", e.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.PageContent{}, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.PageContent{}, errors.New("unexpected status " + resp.Status)
	}

	var body io.Reader = resp.Body
	if e.opts.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, e.opts.MaxBodyBytes)
	}

	utf8Body, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return domain.PageContent{}, fmt.Errorf("decode charset: %w", err)
	}

	page := Parse(utf8Body, rawURL, e.opts)
	page.FetchedAt = time.Now()
	return page, nil
}
