package providers

import (
	"github.com/samber/do/v2"

	"github.com/booknotes/booknotes/internal/config"
	"github.com/booknotes/booknotes/internal/logger"
	"github.com/booknotes/booknotes/internal/metadata/openlibrary"
)

// OpenLibraryClientHandle wraps the Open Library client with shutdown capability.
type OpenLibraryClientHandle struct {
	*openlibrary.Client
}

// Shutdown implements do.Shutdownable.
func (h *OpenLibraryClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideOpenLibraryClient provides the Open Library cover search client.
func ProvideOpenLibraryClient(i do.Injector) (*OpenLibraryClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := openlibrary.NewClient(openlibrary.Config{
		SearchURL: cfg.Covers.SearchURL,
		ImageHost: cfg.Covers.ImageHost,
		Timeout:   cfg.Covers.Timeout,
	}, log.Logger)

	log.Debug("Open Library client initialized",
		"search_url", cfg.Covers.SearchURL,
		"timeout", cfg.Covers.Timeout,
	)

	return &OpenLibraryClientHandle{Client: client}, nil
}
