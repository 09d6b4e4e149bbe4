// Package di provides dependency injection configuration for booknotes.
package di

import (
	"github.com/samber/do/v2"

	"github.com/booknotes/booknotes/internal/config"
	"github.com/booknotes/booknotes/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
// Everything is lazy: a command only opens what it invokes.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideKV)
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Metadata layer
	do.Provide(injector, providers.ProvideOpenLibraryClient)

	// Storage layer
	do.Provide(injector, providers.ProvideCoverStorage)
	do.Provide(injector, providers.ProvideCoverCache)

	// Business services
	do.Provide(injector, providers.ProvideCoverService)
	do.Provide(injector, providers.ProvideCardService)
	do.Provide(injector, providers.ProvideBackupService)
	do.Provide(injector, providers.ProvidePreferenceService)
	do.Provide(injector, providers.ProvideReviewSession)
	do.Provide(injector, providers.ProvideSorter)

	return injector
}
