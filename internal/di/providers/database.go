package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/booknotes/booknotes/internal/config"
	"github.com/booknotes/booknotes/internal/kv"
	"github.com/booknotes/booknotes/internal/logger"
	"github.com/booknotes/booknotes/internal/store"
)

// KVHandle wraps the key-value backend with shutdown capability.
type KVHandle struct {
	kv.Store
}

// Shutdown implements do.Shutdownable.
func (h *KVHandle) Shutdown() error {
	return h.Close()
}

// ProvideKV opens the configured key-value backend.
func ProvideKV(i do.Injector) (*KVHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	backend, err := kv.Open(cfg.Data.Backend, cfg.Data.BasePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Debug("Key-value store opened",
		"backend", cfg.Data.Backend,
		"path", cfg.Data.BasePath,
	)

	return &KVHandle{Store: backend}, nil
}

// eventLogger records collection changes at debug level.
type eventLogger struct {
	logger *slog.Logger
}

func (e eventLogger) Emit(event any) {
	ev, ok := event.(store.ChangeEvent)
	if !ok {
		return
	}
	attrs := []any{"type", ev.Type}
	if ev.Card != nil {
		attrs = append(attrs, "card_id", ev.Card.ID, "book", ev.Card.Book)
	}
	e.logger.Debug("collection changed", attrs...)
}

// ProvideStore provides the card store, loaded from the backend.
func ProvideStore(i do.Injector) (*store.Store, error) {
	log := do.MustInvoke[*logger.Logger](i)
	kvHandle, err := do.Invoke[*KVHandle](i)
	if err != nil {
		return nil, err
	}

	st := store.New(kvHandle.Store, log.Logger, eventLogger{logger: log.Logger})
	if err := st.Load(context.Background()); err != nil {
		return nil, err
	}

	log.Debug("Collection loaded", "cards", st.Len())

	return st, nil
}
