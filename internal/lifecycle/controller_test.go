package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/expenseflow/ems-core/internal/domain/workflow"
	"github.com/expenseflow/ems-core/internal/editor"
	"github.com/expenseflow/ems-core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRequestStore struct {
	nextRequestNoFn func(ctx context.Context) (int64, error)
	createFn        func(ctx context.Context, req *models.Request) error
	getFn           func(ctx context.Context, requestNo int64) (*models.Request, error)
	updateStatusFn  func(ctx context.Context, requestNo int64, status string) error
	deleteFn        func(ctx context.Context, requestNo int64) error

	created       []*models.Request
	statusUpdates []string
}

func (m *mockRequestStore) NextRequestNo(ctx context.Context) (int64, error) {
	if m.nextRequestNoFn != nil {
		return m.nextRequestNoFn(ctx)
	}
	return 1, nil
}

func (m *mockRequestStore) Create(ctx context.Context, req *models.Request) error {
	m.created = append(m.created, req)
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	req.ID = int64(len(m.created))
	return nil
}

func (m *mockRequestStore) GetByRequestNo(ctx context.Context, requestNo int64) (*models.Request, error) {
	if m.getFn != nil {
		return m.getFn(ctx, requestNo)
	}
	return nil, nil
}

func (m *mockRequestStore) UpdateStatus(ctx context.Context, requestNo int64, status string) error {
	m.statusUpdates = append(m.statusUpdates, status)
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, requestNo, status)
	}
	return nil
}

func (m *mockRequestStore) DeleteByRequestNo(ctx context.Context, requestNo int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, requestNo)
	}
	return nil
}

type mockLineStore struct {
	createFn       func(ctx context.Context, line *models.ExpenseLine) error
	updateFn       func(ctx context.Context, line *models.ExpenseLine) error
	updateStatusFn func(ctx context.Context, requestNo int64, status, manager, managerEmail string) error
	deleteFn       func(ctx context.Context, id int64) error
	getByRequestFn func(ctx context.Context, requestNo int64) ([]*models.ExpenseLine, error)
	getByStatusFn  func(ctx context.Context, statuses ...string) ([]*models.ExpenseLine, error)
	getByManagerFn func(ctx context.Context, managerEmail string) ([]*models.ExpenseLine, error)
	listFn         func(ctx context.Context) ([]*models.ExpenseLine, error)

	inserted []*models.ExpenseLine
	updated  []*models.ExpenseLine
	deleted  []int64

	lastStatus       string
	lastManager      string
	lastManagerEmail string
}

func (m *mockLineStore) Create(ctx context.Context, line *models.ExpenseLine) error {
	m.inserted = append(m.inserted, line)
	if m.createFn != nil {
		return m.createFn(ctx, line)
	}
	line.ID = int64(len(m.inserted))
	return nil
}

func (m *mockLineStore) Update(ctx context.Context, line *models.ExpenseLine) error {
	m.updated = append(m.updated, line)
	if m.updateFn != nil {
		return m.updateFn(ctx, line)
	}
	return nil
}

func (m *mockLineStore) UpdateStatus(ctx context.Context, requestNo int64, status, manager, managerEmail string) error {
	m.lastStatus = status
	m.lastManager = manager
	m.lastManagerEmail = managerEmail
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, requestNo, status, manager, managerEmail)
	}
	return nil
}

func (m *mockLineStore) DeleteByID(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockLineStore) GetByRequestNo(ctx context.Context, requestNo int64) ([]*models.ExpenseLine, error) {
	if m.getByRequestFn != nil {
		return m.getByRequestFn(ctx, requestNo)
	}
	return nil, nil
}

func (m *mockLineStore) GetByStatus(ctx context.Context, statuses ...string) ([]*models.ExpenseLine, error) {
	if m.getByStatusFn != nil {
		return m.getByStatusFn(ctx, statuses...)
	}
	return nil, nil
}

func (m *mockLineStore) GetByManagerEmail(ctx context.Context, managerEmail string) ([]*models.ExpenseLine, error) {
	if m.getByManagerFn != nil {
		return m.getByManagerFn(ctx, managerEmail)
	}
	return nil, nil
}

func (m *mockLineStore) List(ctx context.Context) ([]*models.ExpenseLine, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockHistoryStore struct {
	createFn func(ctx context.Context, entry *models.ApprovalHistoryEntry) error
	getFn    func(ctx context.Context, requestNo int64) ([]*models.ApprovalHistoryEntry, error)

	entries []*models.ApprovalHistoryEntry
}

func (m *mockHistoryStore) Create(ctx context.Context, entry *models.ApprovalHistoryEntry) error {
	m.entries = append(m.entries, entry)
	if m.createFn != nil {
		return m.createFn(ctx, entry)
	}
	return nil
}

func (m *mockHistoryStore) GetByRequestNo(ctx context.Context, requestNo int64) ([]*models.ApprovalHistoryEntry, error) {
	if m.getFn != nil {
		return m.getFn(ctx, requestNo)
	}
	return m.entries, nil
}

type mockAttachmentService struct {
	replaceFn  func(ctx context.Context, lineID string, file *models.AttachmentFile) error
	removeFn   func(ctx context.Context, lineID string) error
	metadataFn func(ctx context.Context, lineID string) ([]*models.Attachment, error)

	replaced []string
	removed  []string
}

func (m *mockAttachmentService) Replace(ctx context.Context, lineID string, file *models.AttachmentFile) error {
	m.replaced = append(m.replaced, lineID)
	if m.replaceFn != nil {
		return m.replaceFn(ctx, lineID, file)
	}
	return nil
}

func (m *mockAttachmentService) Remove(ctx context.Context, lineID string) error {
	m.removed = append(m.removed, lineID)
	if m.removeFn != nil {
		return m.removeFn(ctx, lineID)
	}
	return nil
}

func (m *mockAttachmentService) Metadata(ctx context.Context, lineID string) ([]*models.Attachment, error) {
	if m.metadataFn != nil {
		return m.metadataFn(ctx, lineID)
	}
	return nil, nil
}

type mockDirectory struct {
	byEmail        map[string]*models.Employee
	byName         map[string]*models.Employee
	attachRequired map[string]bool
}

func (m *mockDirectory) EmployeeByEmail(email string) (*models.Employee, error) {
	return m.byEmail[email], nil
}

func (m *mockDirectory) EmployeeByName(name string) (*models.Employee, error) {
	return m.byName[name], nil
}

func (m *mockDirectory) AttachmentRequired(expenseType string) (bool, error) {
	return m.attachRequired[expenseType], nil
}

func testDirectory() *mockDirectory {
	alice := &models.Employee{
		EmployeeID:   "E001",
		EmployeeName: "Alice",
		Email:        "alice@example.com",
		Department:   "Sales",
		Country:      "SG",
		Manager:      "Bob",
		ManagerEmail: "bob@example.com",
	}
	bob := &models.Employee{
		EmployeeID:   "E002",
		EmployeeName: "Bob",
		Email:        "bob@example.com",
		Manager:      "Carol",
		ManagerEmail: "carol@example.com",
	}
	carol := &models.Employee{
		EmployeeID:      "E003",
		EmployeeName:    "Carol",
		Email:           "carol@example.com",
		HigherAuthority: true,
	}
	return &mockDirectory{
		byEmail:        map[string]*models.Employee{alice.Email: alice, bob.Email: bob, carol.Email: carol},
		byName:         map[string]*models.Employee{alice.EmployeeName: alice, bob.EmployeeName: bob, carol.EmployeeName: carol},
		attachRequired: map[string]bool{"Travel": false, "Hotel": true},
	}
}

type fixture struct {
	controller  *Controller
	requests    *mockRequestStore
	lines       *mockLineStore
	history     *mockHistoryStore
	attachments *mockAttachmentService
	directory   *mockDirectory
}

func newFixture() *fixture {
	f := &fixture{
		requests:    &mockRequestStore{},
		lines:       &mockLineStore{},
		history:     &mockHistoryStore{},
		attachments: &mockAttachmentService{},
		directory:   testDirectory(),
	}
	f.controller = NewController(f.requests, f.lines, f.history, f.attachments, f.directory, zap.NewNop())
	return f
}

var alice = models.Identity{Email: "alice@example.com", DisplayName: "Alice"}

func draftSession(c *Controller) *Session {
	s := c.NewSession(alice)
	s.Company = "Acme Pte Ltd"
	s.CMSID = "CMS-7"
	line := s.Editor.AddLine()
	s.Editor.EditField(line.Identity.LineID, editor.FieldExpenseDate, "2025-03-01")
	s.Editor.EditField(line.Identity.LineID, editor.FieldExpenseType, "Travel")
	s.Editor.EditField(line.Identity.LineID, editor.FieldExpenseAmount, "100")
	s.Editor.EditField(line.Identity.LineID, editor.FieldMultiplier, "2")
	s.Editor.EditField(line.Identity.LineID, editor.FieldReason, "client visit")
	return s
}

func TestSubmitCreatesFreshRequest(t *testing.T) {
	f := newFixture()
	f.requests.nextRequestNoFn = func(ctx context.Context) (int64, error) { return 5, nil }

	s := draftSession(f.controller)
	requestNo, err := f.controller.Submit(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int64(5), requestNo)

	require.Len(t, f.requests.created, 1)
	assert.Equal(t, string(workflow.StatePendingAtManager), f.requests.created[0].Status)

	require.Len(t, f.lines.inserted, 1)
	line := f.lines.inserted[0]
	assert.Equal(t, string(workflow.StatePendingAtManager), line.Status)
	assert.Equal(t, "Bob", line.Manager)
	assert.Equal(t, "bob@example.com", line.ManagerEmail)
	assert.Equal(t, float64(200), line.TotalAmount)
	assert.Equal(t, "alice@example.com", line.EmployeeEmail)

	// Submit never writes history.
	assert.Empty(t, f.history.entries)
}

func TestSubmitRejectsUnknownEmployee(t *testing.T) {
	f := newFixture()
	s := draftSession(f.controller)
	s.Actor = models.Identity{Email: "ghost@example.com", DisplayName: "Ghost"}

	_, err := f.controller.Submit(context.Background(), s)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, f.requests.created)
	assert.Empty(t, f.lines.inserted)
}

func TestSubmitRequiresCompanyAndCMS(t *testing.T) {
	f := newFixture()
	s := draftSession(f.controller)
	s.Company = ""

	_, err := f.controller.Submit(context.Background(), s)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "company")
}

func TestSubmitEnforcesAttachmentRequirement(t *testing.T) {
	f := newFixture()
	s := draftSession(f.controller)
	line := s.Editor.Lines()[0]
	s.Editor.EditField(line.Identity.LineID, editor.FieldExpenseType, "Hotel")

	_, err := f.controller.Submit(context.Background(), s)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, line.Identity.LineID, vErr.LineID)

	// A buffered upload satisfies the requirement.
	s.Editor.SetFile(line.Identity.LineID, &models.AttachmentFile{FileName: "receipt.pdf", Content: []byte("x")})
	_, err = f.controller.Submit(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{line.Identity.LineID}, f.attachments.replaced)
}

func TestDraftAllowsMissingTypeAndReason(t *testing.T) {
	f := newFixture()
	s := f.controller.NewSession(alice)
	s.Company = "Acme Pte Ltd"
	s.CMSID = "CMS-7"
	line := s.Editor.AddLine()
	s.Editor.EditField(line.Identity.LineID, editor.FieldExpenseDate, "2025-03-01")
	s.Editor.EditField(line.Identity.LineID, editor.FieldExpenseAmount, "50")

	requestNo, err := f.controller.Draft(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int64(1), requestNo)
	require.Len(t, f.lines.inserted, 1)
	assert.Equal(t, string(workflow.StateDraft), f.lines.inserted[0].Status)
	assert.True(t, line.Identity.Persisted(), "insert should assign a storage id")
}

func TestDraftReusesExistingDraftHeader(t *testing.T) {
	f := newFixture()
	f.requests.getFn = func(ctx context.Context, requestNo int64) (*models.Request, error) {
		return &models.Request{RequestNo: requestNo, Status: string(workflow.StateDraft)}, nil
	}

	s := draftSession(f.controller)
	s.RequestNo = 3
	requestNo, err := f.controller.Draft(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int64(3), requestNo)
	assert.Empty(t, f.requests.created, "existing draft header must be reused")
}

func TestDraftProcessesDeleteQueue(t *testing.T) {
	f := newFixture()
	f.requests.getFn = func(ctx context.Context, requestNo int64) (*models.Request, error) {
		return &models.Request{RequestNo: requestNo, Status: string(workflow.StateDraft)}, nil
	}

	s := f.controller.NewSession(alice)
	s.RequestNo = 3
	s.Company = "Acme Pte Ltd"
	s.CMSID = "CMS-7"
	s.Editor = editor.FromLines([]*models.ExpenseLine{
		{ID: 11, LineID: "keep", ExpenseDate: "2025-03-01", ExpenseAmount: 10, Multiplier: 1, TotalAmount: 10},
		{ID: 12, LineID: "drop", ExpenseDate: "2025-03-02", ExpenseAmount: 20, Multiplier: 1, TotalAmount: 20},
	})
	require.NoError(t, s.Editor.RemoveLine("drop"))

	_, err := f.controller.Draft(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, []string{"drop"}, f.attachments.removed)
	assert.Equal(t, []int64{12}, f.lines.deleted)
	require.Len(t, f.lines.updated, 1)
	assert.Equal(t, "keep", f.lines.updated[0].LineID)
	assert.Empty(t, s.Editor.DeleteQueue())
}

func TestUpdateForcesPendingAtManager(t *testing.T) {
	f := newFixture()
	f.requests.getFn = func(ctx context.Context, requestNo int64) (*models.Request, error) {
		return &models.Request{RequestNo: requestNo, Status: string(workflow.StateRevisionRequested)}, nil
	}

	s := draftSession(f.controller)
	s.RequestNo = 9
	err := f.controller.Update(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, string(workflow.StatePendingAtManager), f.lines.lastStatus)
	assert.Equal(t, "bob@example.com", f.lines.lastManagerEmail)
	assert.Equal(t, []string{string(workflow.StatePendingAtManager)}, f.requests.statusUpdates)
}

func TestUpdateRejectsApprovedRequest(t *testing.T) {
	f := newFixture()
	f.requests.getFn = func(ctx context.Context, requestNo int64) (*models.Request, error) {
		return &models.Request{RequestNo: requestNo, Status: string(workflow.StateApproved)}, nil
	}

	s := draftSession(f.controller)
	s.RequestNo = 9
	err := f.controller.Update(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	f := newFixture()
	err := f.controller.Delete(context.Background(), 4, false)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "confirmation")
}

func TestDeleteFailsLoudlyWithoutLines(t *testing.T) {
	f := newFixture()
	err := f.controller.Delete(context.Background(), 4, true)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "no expense lines")
}

func TestDeleteRemovesAttachmentsLinesThenHeader(t *testing.T) {
	f := newFixture()
	f.lines.getByRequestFn = func(ctx context.Context, requestNo int64) ([]*models.ExpenseLine, error) {
		return []*models.ExpenseLine{
			{ID: 1, LineID: "a", RequestNo: requestNo},
			{ID: 2, LineID: "b", RequestNo: requestNo},
		}, nil
	}
	var headerDeleted bool
	f.requests.deleteFn = func(ctx context.Context, requestNo int64) error {
		headerDeleted = true
		return nil
	}

	err := f.controller.Delete(context.Background(), 4, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.attachments.removed)
	assert.Equal(t, []int64{1, 2}, f.lines.deleted)
	assert.True(t, headerDeleted)
}

func pendingRequest(f *fixture, status workflow.State, manager, managerEmail string) {
	f.requests.getFn = func(ctx context.Context, requestNo int64) (*models.Request, error) {
		return &models.Request{RequestNo: requestNo, Status: string(status)}, nil
	}
	f.lines.getByRequestFn = func(ctx context.Context, requestNo int64) ([]*models.ExpenseLine, error) {
		return []*models.ExpenseLine{{
			ID:            1,
			LineID:        "a",
			RequestNo:     requestNo,
			EmployeeEmail: "alice@example.com",
			Manager:       manager,
			ManagerEmail:  managerEmail,
			Status:        string(status),
		}}, nil
	}
}

func TestApproveByHigherAuthority(t *testing.T) {
	f := newFixture()
	pendingRequest(f, workflow.StatePendingAtManager, "Carol", "carol@example.com")

	carol := models.Identity{Email: "carol@example.com", DisplayName: "Carol"}
	next, err := f.controller.Approve(context.Background(), carol, 7, "looks good")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateApproved, next)

	assert.Equal(t, string(workflow.StateApproved), f.lines.lastStatus)
	assert.Empty(t, f.lines.lastManagerEmail, "owner must not change")
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, "Carol", f.history.entries[0].Approver)
	assert.Equal(t, "looks good", f.history.entries[0].Remarks)
}

func TestApproveByManagerEscalatesToFinance(t *testing.T) {
	f := newFixture()
	pendingRequest(f, workflow.StatePendingAtManager, "Bob", "bob@example.com")

	bob := models.Identity{Email: "bob@example.com", DisplayName: "Bob"}
	next, err := f.controller.Approve(context.Background(), bob, 7, "ok")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatePendingAtFinance, next)

	// The new owner is the current manager's own manager.
	assert.Equal(t, "Carol", f.lines.lastManager)
	assert.Equal(t, "carol@example.com", f.lines.lastManagerEmail)
	assert.Len(t, f.history.entries, 1)
}

func TestApproveAtFinance(t *testing.T) {
	f := newFixture()
	pendingRequest(f, workflow.StatePendingAtFinance, "Carol", "carol@example.com")

	carol := models.Identity{Email: "carol@example.com", DisplayName: "Carol"}
	next, err := f.controller.Approve(context.Background(), carol, 7, "paid")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateApproved, next)
	assert.Len(t, f.history.entries, 1)
}

func TestRejectFromPending(t *testing.T) {
	f := newFixture()
	pendingRequest(f, workflow.StatePendingAtManager, "Bob", "bob@example.com")

	bob := models.Identity{Email: "bob@example.com", DisplayName: "Bob"}
	next, err := f.controller.Reject(context.Background(), bob, 7, "not a business expense")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateRejected, next)
	assert.Len(t, f.history.entries, 1)
}

func TestRequestRevisionReroutesToCurrentManager(t *testing.T) {
	f := newFixture()
	// The line still carries a stale owner; revision must re-read Alice's
	// current manager from the directory.
	pendingRequest(f, workflow.StatePendingAtFinance, "Old Manager", "old@example.com")

	carol := models.Identity{Email: "carol@example.com", DisplayName: "Carol"}
	next, err := f.controller.RequestRevision(context.Background(), carol, 7, "receipt missing")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateRevisionRequested, next)
	assert.Equal(t, "Bob", f.lines.lastManager)
	assert.Equal(t, "bob@example.com", f.lines.lastManagerEmail)
	assert.Len(t, f.history.entries, 1)
}

func TestRouteRequiresRemarks(t *testing.T) {
	f := newFixture()
	pendingRequest(f, workflow.StatePendingAtManager, "Bob", "bob@example.com")

	bob := models.Identity{Email: "bob@example.com", DisplayName: "Bob"}
	_, err := f.controller.Approve(context.Background(), bob, 7, "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, f.history.entries)
	assert.Empty(t, f.requests.statusUpdates, "no state change without remarks")
}

func TestRouteRejectsInvalidTransition(t *testing.T) {
	f := newFixture()
	pendingRequest(f, workflow.StateApproved, "Bob", "bob@example.com")

	bob := models.Identity{Email: "bob@example.com", DisplayName: "Bob"}
	_, err := f.controller.Approve(context.Background(), bob, 7, "again")
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
	assert.Empty(t, f.history.entries)
}

func TestRouteSurfacesWriteFailure(t *testing.T) {
	f := newFixture()
	pendingRequest(f, workflow.StatePendingAtManager, "Carol", "carol@example.com")
	boom := errors.New("disk full")
	f.lines.updateStatusFn = func(ctx context.Context, requestNo int64, status, manager, managerEmail string) error {
		return boom
	}

	carol := models.Identity{Email: "carol@example.com", DisplayName: "Carol"}
	_, err := f.controller.Approve(context.Background(), carol, 7, "ok")
	var wErr *RemoteWriteError
	require.ErrorAs(t, err, &wErr)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.history.entries, "history must not be written after a failed step")
}

func TestListRequestsGroupsByRequestNo(t *testing.T) {
	f := newFixture()
	f.lines.listFn = func(ctx context.Context) ([]*models.ExpenseLine, error) {
		return []*models.ExpenseLine{
			{RequestNo: 2, EmployeeName: "Alice", Status: "Approved", TotalAmount: 150},
			{RequestNo: 2, EmployeeName: "Alice", Status: "Approved", TotalAmount: 50},
			{RequestNo: 1, EmployeeName: "Bob", Status: "Rejected", TotalAmount: 30},
		}, nil
	}

	summaries, err := f.controller.ListRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, int64(2), summaries[0].RequestNo)
	assert.Equal(t, float64(200), summaries[0].GrandTotal)
	assert.Equal(t, 2, summaries[0].LineCount)
	assert.Equal(t, int64(1), summaries[1].RequestNo)
	assert.Equal(t, float64(30), summaries[1].GrandTotal)
}

func TestListRequestsByStatus(t *testing.T) {
	f := newFixture()
	var gotStatuses []string
	f.lines.getByStatusFn = func(ctx context.Context, statuses ...string) ([]*models.ExpenseLine, error) {
		gotStatuses = statuses
		return []*models.ExpenseLine{
			{RequestNo: 4, EmployeeName: "Alice", Status: string(workflow.StatePendingAtManager), TotalAmount: 70},
			{RequestNo: 4, EmployeeName: "Alice", Status: string(workflow.StatePendingAtManager), TotalAmount: 30},
		}, nil
	}

	summaries, err := f.controller.ListRequestsByStatus(context.Background(), string(workflow.StatePendingAtManager))
	require.NoError(t, err)
	assert.Equal(t, []string{string(workflow.StatePendingAtManager)}, gotStatuses)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(4), summaries[0].RequestNo)
	assert.Equal(t, float64(100), summaries[0].GrandTotal)
	assert.Equal(t, 2, summaries[0].LineCount)
}

func TestPendingForApproverFiltersStatuses(t *testing.T) {
	f := newFixture()
	f.lines.getByManagerFn = func(ctx context.Context, managerEmail string) ([]*models.ExpenseLine, error) {
		return []*models.ExpenseLine{
			{RequestNo: 1, Status: string(workflow.StatePendingAtManager), TotalAmount: 10},
			{RequestNo: 2, Status: string(workflow.StateApproved), TotalAmount: 20},
			{RequestNo: 3, Status: string(workflow.StatePendingAtFinance), TotalAmount: 30},
		}, nil
	}

	summaries, err := f.controller.PendingForApprover(context.Background(), "bob@example.com")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, int64(1), summaries[0].RequestNo)
	assert.Equal(t, int64(3), summaries[1].RequestNo)
}

func TestGetRequestCollectsLinesAndAttachments(t *testing.T) {
	f := newFixture()
	pendingRequest(f, workflow.StatePendingAtManager, "Bob", "bob@example.com")
	f.attachments.metadataFn = func(ctx context.Context, lineID string) ([]*models.Attachment, error) {
		return []*models.Attachment{{LineID: lineID, FileName: "receipt.pdf"}}, nil
	}
	f.lines.getByRequestFn = func(ctx context.Context, requestNo int64) ([]*models.ExpenseLine, error) {
		return []*models.ExpenseLine{
			{ID: 1, LineID: "a", RequestNo: requestNo, TotalAmount: 120},
			{ID: 2, LineID: "b", RequestNo: requestNo, TotalAmount: 80},
		}, nil
	}

	detail, err := f.controller.GetRequest(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, detail.Lines, 2)
	assert.Equal(t, float64(200), detail.GrandTotal)
	assert.Len(t, detail.Attachments, 2)
}

func TestOpenSessionRestoresHeaderAndAttachments(t *testing.T) {
	f := newFixture()
	f.requests.getFn = func(ctx context.Context, requestNo int64) (*models.Request, error) {
		return &models.Request{RequestNo: requestNo, Status: string(workflow.StateRevisionRequested)}, nil
	}
	f.lines.getByRequestFn = func(ctx context.Context, requestNo int64) ([]*models.ExpenseLine, error) {
		return []*models.ExpenseLine{
			{ID: 1, LineID: "a", RequestNo: requestNo, Company: "Acme Pte Ltd", CMSID: "CMS-7", Purpose: "Q1 travel", ExpenseAmount: 10, Multiplier: 1, TotalAmount: 10, ExpenseDate: "2025-03-01"},
		}, nil
	}
	f.attachments.metadataFn = func(ctx context.Context, lineID string) ([]*models.Attachment, error) {
		return []*models.Attachment{{LineID: lineID}}, nil
	}

	s, err := f.controller.OpenSession(context.Background(), alice, 7)
	require.NoError(t, err)
	assert.Equal(t, workflow.StateRevisionRequested, s.Status)
	assert.Equal(t, "Acme Pte Ltd", s.Company)
	assert.Equal(t, "CMS-7", s.CMSID)
	assert.Equal(t, "Q1 travel", s.Purpose)
	require.Len(t, s.Editor.Lines(), 1)
	assert.True(t, s.Editor.Lines()[0].HasStoredFile)
}

func TestOpenSessionUnknownRequest(t *testing.T) {
	f := newFixture()
	_, err := f.controller.OpenSession(context.Background(), alice, 99)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}
