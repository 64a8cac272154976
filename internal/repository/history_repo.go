package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expenseflow/ems-core/internal/models"
	"go.uber.org/zap"
)

// HistoryRepository handles the append-only approval history trail
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an approval history entry
func (r *HistoryRepository) Create(ctx context.Context, entry *models.ApprovalHistoryEntry) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO approval_history (request_no, approval_date, approver, remarks)
		VALUES (?, ?, ?, ?)
	`,
		entry.RequestNo,
		entry.ApprovalDate,
		entry.Approver,
		entry.Remarks,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry",
			zap.Int64("request_no", entry.RequestNo),
			zap.Error(err))
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// GetByRequestNo retrieves the history trail of a request in order
func (r *HistoryRepository) GetByRequestNo(ctx context.Context, requestNo int64) ([]*models.ApprovalHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, request_no, approval_date, approver, remarks
		FROM approval_history
		WHERE request_no = ?
		ORDER BY id
	`, requestNo)
	if err != nil {
		r.logger.Error("Failed to get history", zap.Int64("request_no", requestNo), zap.Error(err))
		return nil, fmt.Errorf("failed to get history for request %d: %w", requestNo, err)
	}
	defer rows.Close()

	var entries []*models.ApprovalHistoryEntry
	for rows.Next() {
		var entry models.ApprovalHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestNo,
			&entry.ApprovalDate,
			&entry.Approver,
			&entry.Remarks,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
