// Package providers contains dependency injection providers for the tagmarks server.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"
	"github.com/spf13/viper"

	"github.com/tagmarks/tagmarks-server/internal/config"
	"github.com/tagmarks/tagmarks-server/internal/logger"
)

// ProvideConfig loads the application configuration from the viper instance
// the command line was bound to.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	v := do.MustInvoke[*viper.Viper](i)
	return config.Load(v)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Format:      cfg.Logger.Format,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting tagmarks server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.App.DataDir,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
