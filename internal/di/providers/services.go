package providers

import (
	"github.com/samber/do/v2"

	"github.com/tagmarks/tagmarks-server/internal/config"
	"github.com/tagmarks/tagmarks-server/internal/extractor"
	"github.com/tagmarks/tagmarks-server/internal/logger"
	"github.com/tagmarks/tagmarks-server/internal/service"
)

// ProvideTagResolver provides the tag name resolver.
func ProvideTagResolver(i do.Injector) (*service.TagResolver, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagResolver(storeHandle.Store, log.Logger), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, searchService, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	resolver := do.MustInvoke[*service.TagResolver](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, resolver, searchService, log.Logger), nil
}

// ProvideDirectoryService provides the directory service.
func ProvideDirectoryService(i do.Injector) (*service.DirectoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDirectoryService(storeHandle.Store, searchService, log.Logger), nil
}

// ProvideBookmarkService provides the bookmark service. Its enrichment queue
// is started separately by ProvideEnrichmentQueue.
func ProvideBookmarkService(i do.Injector) (*service.BookmarkService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	resolver := do.MustInvoke[*service.TagResolver](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	pages := do.MustInvoke[*extractor.Extractor](i)
	generator := do.MustInvoke[*TagGeneratorHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	queueCfg := service.EnrichmentConfig{
		Enabled:    cfg.Enrichment.Enabled,
		Workers:    cfg.Enrichment.Workers,
		QueueSize:  cfg.Enrichment.QueueSize,
		JobTimeout: cfg.Enrichment.JobTimeout,
	}

	return service.NewBookmarkService(
		storeHandle.Store,
		resolver,
		searchService,
		pages,
		generator.Generator,
		queueCfg,
		log.Logger,
	), nil
}
