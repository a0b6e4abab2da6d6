package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/tagmarks/tagmarks-server/internal/config"
	"github.com/tagmarks/tagmarks-server/internal/logger"
	"github.com/tagmarks/tagmarks-server/internal/service"
)

// pageCachePurgeInterval is how often expired pages are dropped from the cache.
const pageCachePurgeInterval = time.Hour

// EnrichmentQueueHandle wraps the bookmark enrichment queue with shutdown capability.
type EnrichmentQueueHandle struct {
	*service.EnrichmentQueue
}

// Shutdown drains queued jobs until ctx ends.
func (h *EnrichmentQueueHandle) Shutdown(ctx context.Context) error {
	return h.EnrichmentQueue.Shutdown(ctx)
}

// ProvideEnrichmentQueue starts the background enrichment workers.
func ProvideEnrichmentQueue(i do.Injector) (*EnrichmentQueueHandle, error) {
	bookmarks := do.MustInvoke[*service.BookmarkService](i)
	log := do.MustInvoke[*logger.Logger](i)

	queue := bookmarks.Queue()
	if !queue.Enabled() {
		log.Info("Bookmark enrichment disabled by configuration")
		return &EnrichmentQueueHandle{EnrichmentQueue: queue}, nil
	}

	queue.Start()

	return &EnrichmentQueueHandle{EnrichmentQueue: queue}, nil
}

// PageCachePurgeJob periodically drops cached pages older than the cache TTL.
type PageCachePurgeJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown stops the job and waits for a running purge to return.
func (j *PageCachePurgeJob) Shutdown(ctx context.Context) error {
	j.cancel()
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProvidePageCachePurgeJob provides the periodic page cache purge.
func ProvidePageCachePurgeJob(i do.Injector) (*PageCachePurgeJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	cache := do.MustInvoke[*PageCacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	job := &PageCachePurgeJob{cancel: cancel, done: make(chan struct{})}

	ttl := cfg.Extractor.CacheTTL
	if ttl <= 0 {
		close(job.done)
		log.Info("Page cache disabled, purge job not started")
		return job, nil
	}

	purge := func() {
		count, err := cache.PurgeOlderThan(ctx, time.Now().Add(-ttl))
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("Page cache purge failed", "error", err)
			}
			return
		}
		if count > 0 {
			log.Info("Page cache purge completed", "deleted", count)
		}
	}

	go func() {
		defer close(job.done)

		ticker := time.NewTicker(pageCachePurgeInterval)
		defer ticker.Stop()

		purge()

		for {
			select {
			case <-ticker.C:
				purge()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Page cache purge job started", "interval", pageCachePurgeInterval)

	return job, nil
}
