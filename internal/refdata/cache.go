// Package refdata holds the per-session snapshot of read-only master data:
// currencies, expense types, CMS identifiers and the employee directory.
package refdata

import (
	"context"
	"fmt"
	"sync"

	"github.com/expenseflow/ems-core/internal/models"
	"github.com/expenseflow/ems-core/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Cache loads master data as one fan-out batch and serves read-only lookups.
// A failed load leaves the previous snapshot in place.
type Cache struct {
	repo   *repository.ReferenceRepository
	logger *zap.Logger

	mu       sync.RWMutex
	snapshot *snapshot
}

type snapshot struct {
	currencies   []*models.Currency
	expenseTypes []*models.ExpenseType
	cmsRequests  []*models.CMSRequest
	employees    []*models.Employee

	attachRequired map[string]bool
	byEmail        map[string]*models.Employee
	byName         map[string]*models.Employee
	approverEmails map[string]bool
}

// NewCache creates an empty reference data cache
func NewCache(repo *repository.ReferenceRepository, logger *zap.Logger) *Cache {
	return &Cache{
		repo:   repo,
		logger: logger,
	}
}

// Load fetches all four master lists concurrently and swaps the snapshot in
// only when every fetch succeeded. On failure the previous snapshot stays
// visible and the error is returned to the caller.
func (c *Cache) Load(ctx context.Context) error {
	var (
		currencies   []*models.Currency
		expenseTypes []*models.ExpenseType
		cmsRequests  []*models.CMSRequest
		employees    []*models.Employee
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		currencies, err = c.repo.Currencies(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		expenseTypes, err = c.repo.ExpenseTypes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cmsRequests, err = c.repo.CMSRequests(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		employees, err = c.repo.Employees(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		c.logger.Error("Reference data load failed, keeping previous snapshot", zap.Error(err))
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	snap := &snapshot{
		currencies:     currencies,
		expenseTypes:   expenseTypes,
		cmsRequests:    cmsRequests,
		employees:      employees,
		attachRequired: make(map[string]bool, len(expenseTypes)),
		byEmail:        make(map[string]*models.Employee, len(employees)),
		byName:         make(map[string]*models.Employee, len(employees)),
		approverEmails: make(map[string]bool),
	}
	for _, t := range expenseTypes {
		snap.attachRequired[t.Title] = t.AttachRequired
	}
	for _, e := range employees {
		snap.byEmail[e.Email] = e
		snap.byName[e.EmployeeName] = e
		if e.ManagerEmail != "" {
			snap.approverEmails[e.ManagerEmail] = true
		}
	}

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()

	c.logger.Info("Reference data loaded",
		zap.Int("currencies", len(currencies)),
		zap.Int("expense_types", len(expenseTypes)),
		zap.Int("cms_requests", len(cmsRequests)),
		zap.Int("employees", len(employees)))
	return nil
}

// Loaded reports whether a snapshot is available
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot != nil
}

func (c *Cache) current() (*snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return nil, fmt.Errorf("reference data not loaded")
	}
	return c.snapshot, nil
}

// Currencies returns the cached currency master list
func (c *Cache) Currencies() ([]*models.Currency, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	return snap.currencies, nil
}

// ExpenseTypes returns the cached expense type master list
func (c *Cache) ExpenseTypes() ([]*models.ExpenseType, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	return snap.expenseTypes, nil
}

// CMSRequests returns the cached CMS identifier master list
func (c *Cache) CMSRequests() ([]*models.CMSRequest, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	return snap.cmsRequests, nil
}

// Employees returns the cached employee directory
func (c *Cache) Employees() ([]*models.Employee, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	return snap.employees, nil
}

// AttachmentRequired reports whether the given expense type forces a receipt
func (c *Cache) AttachmentRequired(expenseType string) (bool, error) {
	snap, err := c.current()
	if err != nil {
		return false, err
	}
	return snap.attachRequired[expenseType], nil
}

// EmployeeByEmail looks up a directory record by email. Returns nil when the
// email is unknown.
func (c *Cache) EmployeeByEmail(email string) (*models.Employee, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	return snap.byEmail[email], nil
}

// EmployeeByName looks up a directory record by display name. Returns nil
// when the name is unknown.
func (c *Cache) EmployeeByName(name string) (*models.Employee, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	return snap.byName[name], nil
}

// IsApprover reports whether any employee lists the email as their manager
func (c *Cache) IsApprover(email string) (bool, error) {
	snap, err := c.current()
	if err != nil {
		return false, err
	}
	return snap.approverEmails[email], nil
}
