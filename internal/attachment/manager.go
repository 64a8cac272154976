// Package attachment manages the single live attachment bound to an expense
// line. Stored object names are "<line_id>_<original file name>", so every
// operation is addressed by line id prefix.
package attachment

import (
	"context"
	"fmt"

	"github.com/expenseflow/ems-core/internal/models"
	"github.com/expenseflow/ems-core/internal/repository"
	"github.com/expenseflow/ems-core/internal/storage"
	"go.uber.org/zap"
)

// Manager uploads, replaces, deletes and resolves line attachments against
// the object store plus the metadata table.
type Manager struct {
	store  storage.ObjectStore
	repo   *repository.AttachmentRepository
	logger *zap.Logger
}

// NewManager creates a new attachment manager
func NewManager(store storage.ObjectStore, repo *repository.AttachmentRepository, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		repo:   repo,
		logger: logger,
	}
}

// ListFor returns the stored files bound to a line. An empty result is valid.
func (m *Manager) ListFor(ctx context.Context, lineID string) ([]storage.StoredFile, error) {
	files, err := m.store.ListByPrefix(lineID + "_")
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments for line %s: %w", lineID, err)
	}
	return files, nil
}

// Replace deletes every existing attachment for the line, uploads file under
// the line-prefixed name, then writes the metadata record. The three steps
// fail independently; a failure after deletion leaves the line without an
// attachment, which is reported to the caller rather than retried.
func (m *Manager) Replace(ctx context.Context, lineID string, file *models.AttachmentFile) error {
	if file == nil || file.FileName == "" {
		return fmt.Errorf("missing file for line %s", lineID)
	}

	existing, err := m.ListFor(ctx, lineID)
	if err != nil {
		return err
	}
	for _, f := range existing {
		// A failed delete aborts the replace; uploading anyway would leave
		// two live files for the line.
		if err := m.store.DeleteByHandle(f.Path); err != nil {
			return fmt.Errorf("failed to delete existing attachment %s for line %s: %w", f.Name, lineID, err)
		}
	}
	if err := m.repo.DeleteByLineID(ctx, lineID); err != nil {
		return err
	}

	name := fmt.Sprintf("%s_%s", lineID, file.FileName)
	stored, err := m.store.Upload(name, file.Content, file.MimeType)
	if err != nil {
		return fmt.Errorf("failed to upload attachment for line %s: %w", lineID, err)
	}

	meta := &models.Attachment{
		LineID:   lineID,
		FileName: file.FileName,
		FilePath: stored.Path,
		MimeType: file.MimeType,
		FileSize: stored.Size,
	}
	if err := m.repo.Create(ctx, meta); err != nil {
		// The file is uploaded but unlinked; surfaced, not rolled back.
		m.logger.Warn("Attachment uploaded but metadata link failed",
			zap.String("line_id", lineID),
			zap.String("file", name),
			zap.Error(err))
		return err
	}

	m.logger.Info("Attachment replaced",
		zap.String("line_id", lineID),
		zap.String("file", name),
		zap.Int64("size", stored.Size))
	return nil
}

// Remove deletes every attachment and metadata record for the line. Used
// when the line itself is deleted.
func (m *Manager) Remove(ctx context.Context, lineID string) error {
	files, err := m.ListFor(ctx, lineID)
	if err != nil {
		return err
	}
	for _, f := range files {
		// Metadata is only dropped once every file is gone, so a failed
		// delete stays visible through Metadata.
		if err := m.store.DeleteByHandle(f.Path); err != nil {
			return fmt.Errorf("failed to delete attachment %s for line %s: %w", f.Name, lineID, err)
		}
	}
	return m.repo.DeleteByLineID(ctx, lineID)
}

// Metadata returns the metadata records bound to a line
func (m *Manager) Metadata(ctx context.Context, lineID string) ([]*models.Attachment, error) {
	return m.repo.GetByLineID(ctx, lineID)
}
