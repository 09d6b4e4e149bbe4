// Package kv provides the get/set/remove byte store that booknotes persists
// into. Keys are namespaced strings; every Set is durable when it returns.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
)

// ErrNotFound is returned by Get when the key has never been set or was removed.
var ErrNotFound = errors.New("kv: key not found")

// Store is a synchronous key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open opens the named backend rooted at dataDir.
func Open(backend, dataDir string, logger *slog.Logger) (Store, error) {
	switch backend {
	case BackendBadger:
		return OpenBadger(filepath.Join(dataDir, "db"), logger)
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dataDir, "booknotes.sqlite"), logger)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
