package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/tagmarks/tagmarks-server/internal/config"
	"github.com/tagmarks/tagmarks-server/internal/logger"
	"github.com/tagmarks/tagmarks-server/internal/store"
	"github.com/tagmarks/tagmarks-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.ShutdownerWithContextAndError.
func (h *StoreHandle) Shutdown(context.Context) error {
	return h.Close()
}

// ProvideStore provides the badger document store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.Store.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Store.Path)

	return &StoreHandle{Store: db}, nil
}

// PageCacheHandle wraps the sqlite page cache with shutdown capability.
type PageCacheHandle struct {
	*sqlite.Store
}

// Shutdown implements do.ShutdownerWithContextAndError.
func (h *PageCacheHandle) Shutdown(context.Context) error {
	return h.Close()
}

// ProvidePageCache provides the sqlite cache of extracted pages.
func ProvidePageCache(i do.Injector) (*PageCacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Extractor.CachePath), 0o755); err != nil {
		return nil, fmt.Errorf("create page cache dir: %w", err)
	}

	cache, err := sqlite.Open(cfg.Extractor.CachePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Page cache initialized", "path", cfg.Extractor.CachePath, "ttl", cfg.Extractor.CacheTTL)

	return &PageCacheHandle{Store: cache}, nil
}
