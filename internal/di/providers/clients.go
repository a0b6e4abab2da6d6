package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/tagmarks/tagmarks-server/internal/config"
	"github.com/tagmarks/tagmarks-server/internal/extractor"
	"github.com/tagmarks/tagmarks-server/internal/logger"
	"github.com/tagmarks/tagmarks-server/internal/taggen"
)

// ProvideExtractor provides the page content extractor backed by the page cache.
func ProvideExtractor(i do.Injector) (*extractor.Extractor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	cache := do.MustInvoke[*PageCacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := extractor.DefaultOptions()
	opts.Timeout = cfg.Extractor.Timeout
	opts.MaxExcerpt = cfg.Extractor.MaxExcerpt
	opts.CacheTTL = cfg.Extractor.CacheTTL
	if len(cfg.Extractor.Denylist) > 0 {
		opts.Denylist = cfg.Extractor.Denylist
	}

	return extractor.New(opts, cache.Store, log.Logger), nil
}

// TagGeneratorHandle wraps the tag generator with shutdown capability.
type TagGeneratorHandle struct {
	*taggen.Generator
}

// Shutdown implements do.ShutdownerWithContextAndError.
func (h *TagGeneratorHandle) Shutdown(context.Context) error {
	h.Close()
	return nil
}

// ProvideTagGenerator provides the LLM tag generator.
func ProvideTagGenerator(i do.Injector) (*TagGeneratorHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	gen, err := taggen.New(taggen.Config{
		Provider:          taggen.Provider(cfg.TagGen.Provider),
		BaseURL:           cfg.TagGen.BaseURL,
		Model:             cfg.TagGen.Model,
		APIKey:            cfg.TagGen.APIKey,
		MaxTokens:         cfg.TagGen.MaxTokens,
		Count:             cfg.TagGen.Count,
		Timeout:           cfg.TagGen.Timeout,
		RequestsPerMinute: cfg.TagGen.RequestsPerMinute,
		Burst:             cfg.TagGen.Burst,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Tag generator ready",
		"provider", cfg.TagGen.Provider,
		"configured", gen.Configured(),
	)

	return &TagGeneratorHandle{Generator: gen}, nil
}
