package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expenseflow/ems-core/internal/models"
	"go.uber.org/zap"
)

// ExpenseLineRepository handles expense line database operations
type ExpenseLineRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseLineRepository creates a new expense line repository
func NewExpenseLineRepository(db *sql.DB, logger *zap.Logger) *ExpenseLineRepository {
	return &ExpenseLineRepository{
		db:     db,
		logger: logger,
	}
}

const expenseLineColumns = `
	id, line_id, request_no, expense_date, merchant, expense_type, currency,
	expense_amount, multiplier, total_amount, reason, status, company, cms_id,
	purpose, employee_id, employee_name, employee_email, department, country,
	manager, manager_email, submission_date, created_at`

func scanExpenseLine(scanner interface{ Scan(...any) error }) (*models.ExpenseLine, error) {
	var line models.ExpenseLine
	err := scanner.Scan(
		&line.ID,
		&line.LineID,
		&line.RequestNo,
		&line.ExpenseDate,
		&line.Merchant,
		&line.ExpenseType,
		&line.Currency,
		&line.ExpenseAmount,
		&line.Multiplier,
		&line.TotalAmount,
		&line.Reason,
		&line.Status,
		&line.Company,
		&line.CMSID,
		&line.Purpose,
		&line.EmployeeID,
		&line.EmployeeName,
		&line.EmployeeEmail,
		&line.Department,
		&line.Country,
		&line.Manager,
		&line.ManagerEmail,
		&line.SubmissionDate,
		&line.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// Create inserts a new expense line and assigns its storage id
func (r *ExpenseLineRepository) Create(ctx context.Context, line *models.ExpenseLine) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO expense_lines (
			line_id, request_no, expense_date, merchant, expense_type, currency,
			expense_amount, multiplier, total_amount, reason, status, company,
			cms_id, purpose, employee_id, employee_name, employee_email,
			department, country, manager, manager_email, submission_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		line.LineID,
		line.RequestNo,
		line.ExpenseDate,
		line.Merchant,
		line.ExpenseType,
		line.Currency,
		line.ExpenseAmount,
		line.Multiplier,
		line.TotalAmount,
		line.Reason,
		line.Status,
		line.Company,
		line.CMSID,
		line.Purpose,
		line.EmployeeID,
		line.EmployeeName,
		line.EmployeeEmail,
		line.Department,
		line.Country,
		line.Manager,
		line.ManagerEmail,
		line.SubmissionDate,
	)
	if err != nil {
		r.logger.Error("Failed to create expense line",
			zap.String("line_id", line.LineID),
			zap.Int64("request_no", line.RequestNo),
			zap.Error(err))
		return fmt.Errorf("failed to create expense line: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	line.ID = id
	return nil
}

// Update rewrites the editable fields of a persisted expense line in place
func (r *ExpenseLineRepository) Update(ctx context.Context, line *models.ExpenseLine) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE expense_lines SET
			expense_date = ?, merchant = ?, expense_type = ?, currency = ?,
			expense_amount = ?, multiplier = ?, total_amount = ?, reason = ?,
			status = ?, company = ?, cms_id = ?, purpose = ?
		WHERE id = ?
	`,
		line.ExpenseDate,
		line.Merchant,
		line.ExpenseType,
		line.Currency,
		line.ExpenseAmount,
		line.Multiplier,
		line.TotalAmount,
		line.Reason,
		line.Status,
		line.Company,
		line.CMSID,
		line.Purpose,
		line.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update expense line",
			zap.Int64("id", line.ID),
			zap.String("line_id", line.LineID),
			zap.Error(err))
		return fmt.Errorf("failed to update expense line %d: %w", line.ID, err)
	}
	return nil
}

// UpdateStatus applies a status (and optionally a new owner) to every line of
// a request. Passing empty manager values leaves the owner untouched.
func (r *ExpenseLineRepository) UpdateStatus(ctx context.Context, requestNo int64, status, manager, managerEmail string) error {
	var err error
	if manager == "" && managerEmail == "" {
		_, err = r.db.ExecContext(ctx,
			`UPDATE expense_lines SET status = ? WHERE request_no = ?`,
			status, requestNo,
		)
	} else {
		_, err = r.db.ExecContext(ctx,
			`UPDATE expense_lines SET status = ?, manager = ?, manager_email = ? WHERE request_no = ?`,
			status, manager, managerEmail, requestNo,
		)
	}
	if err != nil {
		r.logger.Error("Failed to update line status",
			zap.Int64("request_no", requestNo),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update line status for request %d: %w", requestNo, err)
	}
	return nil
}

// DeleteByID removes a single expense line by storage id
func (r *ExpenseLineRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM expense_lines WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete expense line", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete expense line %d: %w", id, err)
	}
	return nil
}

// GetByRequestNo retrieves every line of a request ordered by insertion
func (r *ExpenseLineRepository) GetByRequestNo(ctx context.Context, requestNo int64) ([]*models.ExpenseLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseLineColumns+` FROM expense_lines WHERE request_no = ? ORDER BY id`,
		requestNo,
	)
	if err != nil {
		r.logger.Error("Failed to get lines by request", zap.Int64("request_no", requestNo), zap.Error(err))
		return nil, fmt.Errorf("failed to get lines for request %d: %w", requestNo, err)
	}
	defer rows.Close()
	return collectLines(rows)
}

// GetByStatus retrieves lines carrying any of the given statuses
func (r *ExpenseLineRepository) GetByStatus(ctx context.Context, statuses ...string) ([]*models.ExpenseLine, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	query := `SELECT ` + expenseLineColumns + ` FROM expense_lines WHERE status IN (?` +
		func() string {
			s := ""
			for i := 1; i < len(statuses); i++ {
				s += ", ?"
			}
			return s
		}() + `) ORDER BY request_no DESC, id`

	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = s
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to get lines by status", zap.Strings("statuses", statuses), zap.Error(err))
		return nil, fmt.Errorf("failed to get lines by status: %w", err)
	}
	defer rows.Close()
	return collectLines(rows)
}

// GetByManagerEmail retrieves lines currently owned by the given approver
func (r *ExpenseLineRepository) GetByManagerEmail(ctx context.Context, managerEmail string) ([]*models.ExpenseLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseLineColumns+` FROM expense_lines WHERE manager_email = ? ORDER BY request_no DESC, id`,
		managerEmail,
	)
	if err != nil {
		r.logger.Error("Failed to get lines by manager", zap.String("manager_email", managerEmail), zap.Error(err))
		return nil, fmt.Errorf("failed to get lines for manager %s: %w", managerEmail, err)
	}
	defer rows.Close()
	return collectLines(rows)
}

// List retrieves every expense line
func (r *ExpenseLineRepository) List(ctx context.Context) ([]*models.ExpenseLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ` + expenseLineColumns + ` FROM expense_lines ORDER BY request_no DESC, id`,
	)
	if err != nil {
		r.logger.Error("Failed to list expense lines", zap.Error(err))
		return nil, fmt.Errorf("failed to list expense lines: %w", err)
	}
	defer rows.Close()
	return collectLines(rows)
}

func collectLines(rows *sql.Rows) ([]*models.ExpenseLine, error) {
	var lines []*models.ExpenseLine
	for rows.Next() {
		line, err := scanExpenseLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
