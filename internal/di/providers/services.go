package providers

import (
	"github.com/samber/do/v2"

	"github.com/booknotes/booknotes/internal/config"
	"github.com/booknotes/booknotes/internal/logger"
	"github.com/booknotes/booknotes/internal/query"
	"github.com/booknotes/booknotes/internal/review"
	"github.com/booknotes/booknotes/internal/service"
	"github.com/booknotes/booknotes/internal/store"
)

// ProvideCoverService provides the cover resolution service.
func ProvideCoverService(i do.Injector) (*service.CoverService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*store.Store](i)
	clientHandle := do.MustInvoke[*OpenLibraryClientHandle](i)

	// The cache is attached by ProvideCoverCache when a command needs it.
	return service.NewCoverService(st, clientHandle.Client, nil, cfg.Covers.LookupEnabled, log.Logger), nil
}

// ProvideCardService provides the card service.
func ProvideCardService(i do.Injector) (*service.CardService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*store.Store](i)
	coverService := do.MustInvoke[*service.CoverService](i)

	return service.NewCardService(st, coverService, log.Logger), nil
}

// ProvideBackupService provides the backup service.
func ProvideBackupService(i do.Injector) (*service.BackupService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*store.Store](i)

	return service.NewBackupService(st, cfg.Export.Dir, log.Logger), nil
}

// ProvidePreferenceService provides the preference service.
func ProvidePreferenceService(i do.Injector) (*service.PreferenceService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	kvHandle, err := do.Invoke[*KVHandle](i)
	if err != nil {
		return nil, err
	}

	return service.NewPreferenceService(kvHandle.Store, log.Logger), nil
}

// ProvideSorter provides the locale-aware collection sorter.
func ProvideSorter(i do.Injector) (*query.Sorter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return query.NewSorter(cfg.Query.SortLocale), nil
}

// ProvideReviewSession provides the review session over the store.
func ProvideReviewSession(i do.Injector) (*review.Session, error) {
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*store.Store](i)

	return review.NewSession(st, log.Logger), nil
}
