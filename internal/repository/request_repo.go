package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expenseflow/ems-core/internal/models"
	"go.uber.org/zap"
)

// RequestRepository handles request header database operations
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

// NextRequestNo computes the next request number as one greater than the
// highest existing number, defaulting to 1 when none exist.
func (r *RequestRepository) NextRequestNo(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(request_no), 0) + 1 FROM requests`,
	).Scan(&next)
	if err != nil {
		r.logger.Error("Failed to compute next request number", zap.Error(err))
		return 0, fmt.Errorf("failed to compute next request number: %w", err)
	}
	return next, nil
}

// Create inserts a new request header
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO requests (request_no, employee_id, employee_name, submission_date, status)
		VALUES (?, ?, ?, ?, ?)
	`,
		req.RequestNo,
		req.EmployeeID,
		req.EmployeeName,
		req.SubmissionDate,
		req.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create request", zap.Int64("request_no", req.RequestNo), zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	return nil
}

// GetByRequestNo retrieves a request header by request number. Returns nil
// when no header exists.
func (r *RequestRepository) GetByRequestNo(ctx context.Context, requestNo int64) (*models.Request, error) {
	var req models.Request
	err := r.db.QueryRowContext(ctx, `
		SELECT id, request_no, employee_id, employee_name, submission_date, status, created_at
		FROM requests
		WHERE request_no = ?
	`, requestNo).Scan(
		&req.ID,
		&req.RequestNo,
		&req.EmployeeID,
		&req.EmployeeName,
		&req.SubmissionDate,
		&req.Status,
		&req.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get request", zap.Int64("request_no", requestNo), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &req, nil
}

// UpdateStatus updates the status of a request header
func (r *RequestRepository) UpdateStatus(ctx context.Context, requestNo int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE requests SET status = ? WHERE request_no = ?`,
		status, requestNo,
	)
	if err != nil {
		r.logger.Error("Failed to update request status",
			zap.Int64("request_no", requestNo),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update request status: %w", err)
	}
	return nil
}

// DeleteByRequestNo removes every header row carrying the request number
func (r *RequestRepository) DeleteByRequestNo(ctx context.Context, requestNo int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM requests WHERE request_no = ?`,
		requestNo,
	)
	if err != nil {
		r.logger.Error("Failed to delete request", zap.Int64("request_no", requestNo), zap.Error(err))
		return fmt.Errorf("failed to delete request: %w", err)
	}
	return nil
}
