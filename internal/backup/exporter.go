package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/booknotes/booknotes/internal/domain"
)

// CardLister supplies the cards to export.
type CardLister interface {
	Cards() []domain.Flashcard
}

// Result contains the outcome of an export.
type Result struct {
	Path     string
	Count    int
	Size     int64
	Checksum string // hex SHA-256 of the file contents
	Duration time.Duration
}

// Exporter writes backup files.
type Exporter struct {
	cards CardLister
	now   func() time.Time
}

// NewExporter creates an Exporter over cards.
func NewExporter(cards CardLister) *Exporter {
	return &Exporter{cards: cards, now: time.Now}
}

// Export writes the collection to dir under today's backup file name,
// replacing a backup already written today.
func (e *Exporter) Export(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	cards := e.cards.Cards()
	data, err := Encode(cards)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, Filename(e.now()))

	// Write to temp file, rename on success (atomic)
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}
	defer os.Remove(tmpPath) // Clean up on failure
	defer f.Close()

	hash := sha256.New()
	n, err := io.MultiWriter(f, hash).Write(data)
	if err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("sync backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close backup: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return nil, fmt.Errorf("rename backup: %w", err)
	}

	return &Result{
		Path:     path,
		Count:    len(cards),
		Size:     int64(n),
		Checksum: hex.EncodeToString(hash.Sum(nil)),
		Duration: time.Since(start),
	}, nil
}
