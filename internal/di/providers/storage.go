package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/booknotes/booknotes/internal/config"
	"github.com/booknotes/booknotes/internal/logger"
	"github.com/booknotes/booknotes/internal/media/covers"
	"github.com/booknotes/booknotes/internal/media/images"
	"github.com/booknotes/booknotes/internal/service"
)

// ProvideCoverStorage provides the on-disk cover image cache.
func ProvideCoverStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Data.BasePath)
	if err != nil {
		return nil, fmt.Errorf("cover storage: %w", err)
	}

	log.Debug("Cover storage initialized", "dir", storage.Dir())

	return storage, nil
}

// ProvideCoverCache provides the cover cache, downloading through the
// Open Library client's HTTP client, and attaches it to the cover service.
func ProvideCoverCache(i do.Injector) (*covers.Cache, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*images.Storage](i)
	kvHandle := do.MustInvoke[*KVHandle](i)
	clientHandle := do.MustInvoke[*OpenLibraryClientHandle](i)

	coverService := do.MustInvoke[*service.CoverService](i)

	downloader := covers.NewDownloader(clientHandle.HTTPClient(), storage, log.Logger)
	cache := covers.NewCache(kvHandle.Store, storage, downloader, log.Logger)
	coverService.SetCache(cache)

	return cache, nil
}
