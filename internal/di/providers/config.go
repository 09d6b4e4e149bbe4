// Package providers contains dependency injection providers for booknotes.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/booknotes/booknotes/internal/config"
	"github.com/booknotes/booknotes/internal/logger"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development" && cfg.Logger.Level == "debug",
		Environment: cfg.App.Environment,
	})

	log.Debug("Starting booknotes",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"store_backend", cfg.Data.Backend,
		"cover_lookup", cfg.Covers.LookupEnabled,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
