// Package di provides dependency injection configuration for the tagmarks server.
package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/viper"

	"github.com/tagmarks/tagmarks-server/internal/config"
	"github.com/tagmarks/tagmarks-server/internal/di/providers"
	"github.com/tagmarks/tagmarks-server/internal/extractor"
	"github.com/tagmarks/tagmarks-server/internal/logger"
	"github.com/tagmarks/tagmarks-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// v carries the bound command line flags and is read by the config provider.
func NewContainer(v *viper.Viper) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, v)
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvidePageCache)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// External clients
	do.Provide(injector, providers.ProvideExtractor)
	do.Provide(injector, providers.ProvideTagGenerator)

	// Business services
	do.Provide(injector, providers.ProvideTagResolver)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideDirectoryService)
	do.Provide(injector, providers.ProvideBookmarkService)

	// Workers
	do.Provide(injector, providers.ProvideEnrichmentQueue)
	do.Provide(injector, providers.ProvidePageCachePurgeJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns the HTTP server ready to serve.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) (*providers.HTTPServerHandle, error) {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return nil, err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	// Storage and search open files and may fail on a bad data dir.
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.PageCacheHandle](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.TagGeneratorHandle](injector); err != nil {
		return nil, err
	}
	_ = do.MustInvoke[*extractor.Extractor](injector)
	_ = do.MustInvoke[*service.SearchService](injector)

	// Business services
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.DirectoryService](injector)
	_ = do.MustInvoke[*service.BookmarkService](injector)

	// Trigger search reindex if needed, before workers touch the index
	providers.TriggerSearchReindexIfNeeded(injector)

	// Workers
	_ = do.MustInvoke[*providers.EnrichmentQueueHandle](injector)
	_ = do.MustInvoke[*providers.PageCachePurgeJob](injector)

	return do.Invoke[*providers.HTTPServerHandle](injector)
}
