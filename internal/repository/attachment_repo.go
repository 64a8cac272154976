package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expenseflow/ems-core/internal/models"
	"go.uber.org/zap"
)

// AttachmentRepository handles attachment metadata database operations
type AttachmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sql.DB, logger *zap.Logger) *AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an attachment metadata record
func (r *AttachmentRepository) Create(ctx context.Context, att *models.Attachment) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO attachments (line_id, file_name, file_path, mime_type, file_size)
		VALUES (?, ?, ?, ?, ?)
	`,
		att.LineID,
		att.FileName,
		att.FilePath,
		att.MimeType,
		att.FileSize,
	)
	if err != nil {
		r.logger.Error("Failed to create attachment record",
			zap.String("line_id", att.LineID),
			zap.String("file_name", att.FileName),
			zap.Error(err))
		return fmt.Errorf("failed to create attachment record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	att.ID = id
	return nil
}

// GetByLineID retrieves the metadata records bound to a line
func (r *AttachmentRepository) GetByLineID(ctx context.Context, lineID string) ([]*models.Attachment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, line_id, file_name, file_path, mime_type, file_size, created_at
		FROM attachments
		WHERE line_id = ?
		ORDER BY id
	`, lineID)
	if err != nil {
		r.logger.Error("Failed to get attachments", zap.String("line_id", lineID), zap.Error(err))
		return nil, fmt.Errorf("failed to get attachments for line %s: %w", lineID, err)
	}
	defer rows.Close()

	var attachments []*models.Attachment
	for rows.Next() {
		var att models.Attachment
		if err := rows.Scan(
			&att.ID,
			&att.LineID,
			&att.FileName,
			&att.FilePath,
			&att.MimeType,
			&att.FileSize,
			&att.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, &att)
	}
	return attachments, rows.Err()
}

// DeleteByLineID removes every metadata record bound to a line
func (r *AttachmentRepository) DeleteByLineID(ctx context.Context, lineID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE line_id = ?`, lineID)
	if err != nil {
		r.logger.Error("Failed to delete attachment records", zap.String("line_id", lineID), zap.Error(err))
		return fmt.Errorf("failed to delete attachment records for line %s: %w", lineID, err)
	}
	return nil
}
