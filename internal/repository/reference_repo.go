package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expenseflow/ems-core/internal/models"
	"go.uber.org/zap"
)

// ReferenceRepository reads the master-data lists: currencies, expense types,
// CMS identifiers and the employee directory. The core never mutates these.
type ReferenceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReferenceRepository creates a new reference data repository
func NewReferenceRepository(db *sql.DB, logger *zap.Logger) *ReferenceRepository {
	return &ReferenceRepository{
		db:     db,
		logger: logger,
	}
}

// Currencies retrieves the currency master list
func (r *ReferenceRepository) Currencies(ctx context.Context) ([]*models.Currency, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code FROM currencies ORDER BY code`)
	if err != nil {
		r.logger.Error("Failed to fetch currencies", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch currencies: %w", err)
	}
	defer rows.Close()

	var currencies []*models.Currency
	for rows.Next() {
		var c models.Currency
		if err := rows.Scan(&c.ID, &c.Code); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, &c)
	}
	return currencies, rows.Err()
}

// ExpenseTypes retrieves the expense type master list
func (r *ReferenceRepository) ExpenseTypes(ctx context.Context) ([]*models.ExpenseType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, attach_required FROM expense_types ORDER BY title`)
	if err != nil {
		r.logger.Error("Failed to fetch expense types", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch expense types: %w", err)
	}
	defer rows.Close()

	var types []*models.ExpenseType
	for rows.Next() {
		var t models.ExpenseType
		if err := rows.Scan(&t.ID, &t.Title, &t.AttachRequired); err != nil {
			return nil, fmt.Errorf("failed to scan expense type: %w", err)
		}
		types = append(types, &t)
	}
	return types, rows.Err()
}

// CMSRequests retrieves the CMS identifier master list
func (r *ReferenceRepository) CMSRequests(ctx context.Context) ([]*models.CMSRequest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, cms_id FROM cms_requests ORDER BY cms_id`)
	if err != nil {
		r.logger.Error("Failed to fetch CMS requests", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch CMS requests: %w", err)
	}
	defer rows.Close()

	var cms []*models.CMSRequest
	for rows.Next() {
		var c models.CMSRequest
		if err := rows.Scan(&c.ID, &c.CMSID); err != nil {
			return nil, fmt.Errorf("failed to scan CMS request: %w", err)
		}
		cms = append(cms, &c)
	}
	return cms, rows.Err()
}

// Employees retrieves the employee directory
func (r *ReferenceRepository) Employees(ctx context.Context) ([]*models.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, employee_id, employee_name, email, department, country,
			manager, manager_email, higher_authority
		FROM employees
		ORDER BY employee_name
	`)
	if err != nil {
		r.logger.Error("Failed to fetch employees", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(
			&e.ID,
			&e.EmployeeID,
			&e.EmployeeName,
			&e.Email,
			&e.Department,
			&e.Country,
			&e.Manager,
			&e.ManagerEmail,
			&e.HigherAuthority,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, &e)
	}
	return employees, rows.Err()
}
