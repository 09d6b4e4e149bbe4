package service

import (
	"context"
	"log/slog"

	"github.com/booknotes/booknotes/internal/backup"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
	"github.com/booknotes/booknotes/internal/store"
)

// BackupService exports the collection and imports backups over it.
type BackupService struct {
	store     *store.Store
	exporter  *backup.Exporter
	exportDir string
	logger    *slog.Logger
}

// NewBackupService creates a BackupService writing to exportDir by default.
func NewBackupService(st *store.Store, exportDir string, logger *slog.Logger) *BackupService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BackupService{
		store:     st,
		exporter:  backup.NewExporter(st),
		exportDir: exportDir,
		logger:    logger,
	}
}

// Export writes a backup into dir, or the default export dir when dir is empty.
func (s *BackupService) Export(ctx context.Context, dir string) (*backup.Result, error) {
	if dir == "" {
		dir = s.exportDir
	}

	result, err := s.exporter.Export(ctx, dir)
	if err != nil {
		return nil, err
	}

	s.logger.Info("backup exported",
		"path", result.Path,
		"cards", result.Count,
		"size", result.Size,
		"checksum", result.Checksum,
	)
	return result, nil
}

// ImportProposal is a pending import awaiting confirmation.
type ImportProposal struct {
	backup.ImportProposal

	oneShot
}

// ProposeImport decodes raw and describes what importing it would replace.
// Nothing changes until the proposal is confirmed.
func (s *BackupService) ProposeImport(raw []byte) (*ImportProposal, error) {
	cards, err := backup.Decode(raw)
	if err != nil {
		return nil, err
	}
	return &ImportProposal{ImportProposal: *backup.NewImportProposal(cards, s.store.Len())}, nil
}

// ConfirmImport replaces the collection with the proposal's cards. A
// proposal can be confirmed once; a failed replace leaves it confirmable.
func (s *BackupService) ConfirmImport(ctx context.Context, p *ImportProposal) error {
	if !p.claim() {
		return domainerrors.Conflict("import already confirmed")
	}
	if err := s.store.ReplaceAll(ctx, p.Cards); err != nil {
		p.release()
		return err
	}
	s.logger.Info("backup imported", "replaced", p.Current, "cards", p.Incoming)
	return nil
}

// Import decodes raw, asks confirm and replaces the collection. It reports
// whether the import was applied; a declined confirmation is not an error.
func (s *BackupService) Import(ctx context.Context, raw []byte, confirm Confirmer) (*ImportProposal, bool, error) {
	p, err := s.ProposeImport(raw)
	if err != nil {
		return nil, false, err
	}
	if !confirm.Confirm(p.Prompt) {
		s.logger.Debug("import cancelled", "cards", p.Incoming)
		return p, false, nil
	}
	if err := s.ConfirmImport(ctx, p); err != nil {
		return p, false, err
	}
	return p, true, nil
}
