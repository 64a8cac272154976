// Package lifecycle implements the request lifecycle controller: the seven
// top-level operations (draft, submit, update, delete, approve, reject,
// request revision) plus the read queries behind listing and detail views.
//
// Every mutating operation is an ordered chain of remote steps. The first
// failing step aborts the remainder and is reported with the affected request
// and line; steps already committed are not rolled back.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/expenseflow/ems-core/internal/domain/workflow"
	"github.com/expenseflow/ems-core/internal/editor"
	"github.com/expenseflow/ems-core/internal/models"
	"go.uber.org/zap"
)

// RequestStore persists request headers
type RequestStore interface {
	NextRequestNo(ctx context.Context) (int64, error)
	Create(ctx context.Context, req *models.Request) error
	GetByRequestNo(ctx context.Context, requestNo int64) (*models.Request, error)
	UpdateStatus(ctx context.Context, requestNo int64, status string) error
	DeleteByRequestNo(ctx context.Context, requestNo int64) error
}

// LineStore persists expense lines
type LineStore interface {
	Create(ctx context.Context, line *models.ExpenseLine) error
	Update(ctx context.Context, line *models.ExpenseLine) error
	UpdateStatus(ctx context.Context, requestNo int64, status, manager, managerEmail string) error
	DeleteByID(ctx context.Context, id int64) error
	GetByRequestNo(ctx context.Context, requestNo int64) ([]*models.ExpenseLine, error)
	GetByStatus(ctx context.Context, statuses ...string) ([]*models.ExpenseLine, error)
	GetByManagerEmail(ctx context.Context, managerEmail string) ([]*models.ExpenseLine, error)
	List(ctx context.Context) ([]*models.ExpenseLine, error)
}

// HistoryStore persists the append-only approval trail
type HistoryStore interface {
	Create(ctx context.Context, entry *models.ApprovalHistoryEntry) error
	GetByRequestNo(ctx context.Context, requestNo int64) ([]*models.ApprovalHistoryEntry, error)
}

// AttachmentService manages the single live attachment of a line
type AttachmentService interface {
	Replace(ctx context.Context, lineID string, file *models.AttachmentFile) error
	Remove(ctx context.Context, lineID string) error
	Metadata(ctx context.Context, lineID string) ([]*models.Attachment, error)
}

// Directory serves read-only reference lookups from the loaded snapshot
type Directory interface {
	EmployeeByEmail(email string) (*models.Employee, error)
	EmployeeByName(name string) (*models.Employee, error)
	AttachmentRequired(expenseType string) (bool, error)
}

// Controller orchestrates repositories, the attachment manager, the reference
// data snapshot and the approval router.
type Controller struct {
	requests    RequestStore
	lines       LineStore
	history     HistoryStore
	attachments AttachmentService
	directory   Directory
	logger      *zap.Logger
}

// NewController creates a new lifecycle controller
func NewController(
	requests RequestStore,
	lines LineStore,
	history HistoryStore,
	attachments AttachmentService,
	directory Directory,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		requests:    requests,
		lines:       lines,
		history:     history,
		attachments: attachments,
		directory:   directory,
		logger:      logger,
	}
}

// Session is the editing state of one request, constructed per operation and
// discarded on completion. It owns the line set and deletion queue.
type Session struct {
	Actor     models.Identity
	RequestNo int64
	Status    workflow.State
	Company   string
	CMSID     string
	Purpose   string
	Editor    *editor.Editor
}

// NewSession opens an empty editing session for a brand-new request
func (c *Controller) NewSession(actor models.Identity) *Session {
	return &Session{
		Actor:  actor,
		Status: workflow.StateDraft,
		Editor: editor.New(),
	}
}

// OpenSession loads an existing request into an editing session. Header
// fields and the attachment presence of each line are restored from storage.
func (c *Controller) OpenSession(ctx context.Context, actor models.Identity, requestNo int64) (*Session, error) {
	header, err := c.requests.GetByRequestNo(ctx, requestNo)
	if err != nil {
		return nil, readErr("load request", requestNo, err)
	}
	if header == nil {
		return nil, validationErr(requestNo, "", "request not found")
	}

	lines, err := c.lines.GetByRequestNo(ctx, requestNo)
	if err != nil {
		return nil, readErr("load expense lines", requestNo, err)
	}

	s := &Session{
		Actor:     actor,
		RequestNo: requestNo,
		Status:    workflow.State(header.Status),
		Editor:    editor.FromLines(lines),
	}
	if len(lines) > 0 {
		s.Company = lines[0].Company
		s.CMSID = lines[0].CMSID
		s.Purpose = lines[0].Purpose
	}

	for _, line := range s.Editor.Lines() {
		meta, err := c.attachments.Metadata(ctx, line.Identity.LineID)
		if err != nil {
			return nil, readErr("load attachment metadata", requestNo, err)
		}
		line.HasStoredFile = len(meta) > 0
	}
	return s, nil
}

// Draft persists the session as a draft. An existing draft header for the
// session's request number is reused; otherwise a new request number is
// allocated. The deletion queue is processed first, then every line is
// upserted, then pending files are uploaded.
func (c *Controller) Draft(ctx context.Context, s *Session) (int64, error) {
	emp, err := c.actorEmployee(s)
	if err != nil {
		return 0, err
	}
	if err := c.validateHeader(s); err != nil {
		return 0, err
	}
	if err := s.Editor.Validate(editor.ModeDraft); err != nil {
		return 0, validationErr(s.RequestNo, "", "%v", err)
	}

	requestNo, created, err := c.draftHeader(ctx, s)
	if err != nil {
		return 0, err
	}
	s.RequestNo = requestNo

	if err := c.processDeleteQueue(ctx, s); err != nil {
		return 0, err
	}
	if err := c.upsertLines(ctx, s, emp, workflow.StateDraft, emp.Manager, emp.ManagerEmail); err != nil {
		return 0, err
	}
	if err := c.uploadPendingFiles(ctx, s); err != nil {
		return 0, err
	}

	s.Status = workflow.StateDraft
	c.logger.Info("Draft saved",
		zap.Int64("request_no", requestNo),
		zap.Bool("new_header", created),
		zap.Int("lines", len(s.Editor.Lines())))
	return requestNo, nil
}

// Submit creates a brand-new request in the pending-at-manager state. A fresh
// request number is always allocated; every line is inserted fresh with the
// employee's current manager as owner. No history entry is written.
func (c *Controller) Submit(ctx context.Context, s *Session) (int64, error) {
	emp, err := c.actorEmployee(s)
	if err != nil {
		return 0, err
	}
	if err := c.validateHeader(s); err != nil {
		return 0, err
	}
	if err := c.validateForSubmission(s); err != nil {
		return 0, err
	}

	decision, err := workflow.Route(workflow.StateDraft, workflow.ActionSubmit, false)
	if err != nil {
		return 0, fmt.Errorf("failed to route submission: %w", err)
	}

	requestNo, err := c.requests.NextRequestNo(ctx)
	if err != nil {
		return 0, readErr("allocate request number", 0, err)
	}

	now := time.Now()
	header := &models.Request{
		RequestNo:      requestNo,
		EmployeeID:     emp.EmployeeID,
		EmployeeName:   emp.EmployeeName,
		SubmissionDate: now,
		Status:         string(decision.Next),
	}
	if err := c.requests.Create(ctx, header); err != nil {
		return 0, writeErr("create request", requestNo, "", err)
	}

	for _, line := range s.Editor.Lines() {
		record := c.buildLine(s, emp, line, requestNo, string(decision.Next), emp.Manager, emp.ManagerEmail, now)
		if err := c.lines.Create(ctx, record); err != nil {
			return 0, writeErr("insert expense line", requestNo, line.Identity.LineID, err)
		}
		line.Identity.StorageID = record.ID
	}

	s.RequestNo = requestNo
	s.Status = decision.Next
	if err := c.uploadPendingFiles(ctx, s); err != nil {
		return 0, err
	}

	c.logger.Info("Request submitted",
		zap.Int64("request_no", requestNo),
		zap.String("employee", emp.EmployeeName),
		zap.String("owner", emp.ManagerEmail),
		zap.Int("lines", len(s.Editor.Lines())))
	return requestNo, nil
}

// Update rewrites an existing non-draft request after editing and routes it
// back to pending-at-manager. The deletion queue is processed, then each line
// is inserted or updated in place, then the status and owner are forced onto
// every line and the header, then pending files are uploaded.
func (c *Controller) Update(ctx context.Context, s *Session) error {
	emp, err := c.actorEmployee(s)
	if err != nil {
		return err
	}
	if s.RequestNo == 0 {
		return validationErr(0, "", "update requires an existing request")
	}
	if err := c.validateHeader(s); err != nil {
		return err
	}
	if err := c.validateForSubmission(s); err != nil {
		return err
	}

	header, err := c.requests.GetByRequestNo(ctx, s.RequestNo)
	if err != nil {
		return readErr("load request", s.RequestNo, err)
	}
	if header == nil {
		return validationErr(s.RequestNo, "", "request not found")
	}

	decision, err := workflow.Route(workflow.State(header.Status), workflow.ActionSubmit, false)
	if err != nil {
		return fmt.Errorf("failed to route update of request %d: %w", s.RequestNo, err)
	}

	if err := c.processDeleteQueue(ctx, s); err != nil {
		return err
	}
	if err := c.upsertLines(ctx, s, emp, decision.Next, emp.Manager, emp.ManagerEmail); err != nil {
		return err
	}
	if err := c.lines.UpdateStatus(ctx, s.RequestNo, string(decision.Next), emp.Manager, emp.ManagerEmail); err != nil {
		return writeErr("update line status", s.RequestNo, "", err)
	}
	if err := c.requests.UpdateStatus(ctx, s.RequestNo, string(decision.Next)); err != nil {
		return writeErr("update request status", s.RequestNo, "", err)
	}
	if err := c.uploadPendingFiles(ctx, s); err != nil {
		return err
	}

	s.Status = decision.Next
	c.logger.Info("Request updated and resubmitted",
		zap.Int64("request_no", s.RequestNo),
		zap.String("owner", emp.ManagerEmail))
	return nil
}

// Delete removes a request with its lines and attachments. The caller must
// confirm; a request with no lines aborts the operation rather than silently
// deleting the header.
func (c *Controller) Delete(ctx context.Context, requestNo int64, confirmed bool) error {
	if !confirmed {
		return validationErr(requestNo, "", "deletion requires confirmation")
	}

	lines, err := c.lines.GetByRequestNo(ctx, requestNo)
	if err != nil {
		return readErr("load expense lines", requestNo, err)
	}
	if len(lines) == 0 {
		return validationErr(requestNo, "", "no expense lines found")
	}

	for _, line := range lines {
		if err := c.attachments.Remove(ctx, line.LineID); err != nil {
			return writeErr("delete attachments", requestNo, line.LineID, err)
		}
		if err := c.lines.DeleteByID(ctx, line.ID); err != nil {
			return writeErr("delete expense line", requestNo, line.LineID, err)
		}
	}
	if err := c.requests.DeleteByRequestNo(ctx, requestNo); err != nil {
		return writeErr("delete request", requestNo, "", err)
	}

	c.logger.Info("Request deleted",
		zap.Int64("request_no", requestNo),
		zap.Int("lines", len(lines)))
	return nil
}

// Approve routes the request forward: to approved when the actor holds higher
// authority or the request already sits at finance, otherwise to
// pending-at-finance with the approver's own manager as the new owner.
func (c *Controller) Approve(ctx context.Context, actor models.Identity, requestNo int64, remarks string) (workflow.State, error) {
	return c.route(ctx, actor, requestNo, workflow.ActionApprove, remarks)
}

// Reject routes the request to the terminal rejected state
func (c *Controller) Reject(ctx context.Context, actor models.Identity, requestNo int64, remarks string) (workflow.State, error) {
	return c.route(ctx, actor, requestNo, workflow.ActionReject, remarks)
}

// RequestRevision sends the request back to the employee for rework, with the
// employee's current manager re-read from the directory as the next owner.
func (c *Controller) RequestRevision(ctx context.Context, actor models.Identity, requestNo int64, remarks string) (workflow.State, error) {
	return c.route(ctx, actor, requestNo, workflow.ActionRequestRevision, remarks)
}

func (c *Controller) route(ctx context.Context, actor models.Identity, requestNo int64, action workflow.Action, remarks string) (workflow.State, error) {
	if remarks == "" {
		return "", validationErr(requestNo, "", "remarks are required")
	}

	header, err := c.requests.GetByRequestNo(ctx, requestNo)
	if err != nil {
		return "", readErr("load request", requestNo, err)
	}
	if header == nil {
		return "", validationErr(requestNo, "", "request not found")
	}

	approver, err := c.directory.EmployeeByEmail(actor.Email)
	if err != nil {
		return "", readErr("look up approver", requestNo, err)
	}
	higherAuthority := approver != nil && approver.HigherAuthority

	decision, err := workflow.Route(workflow.State(header.Status), action, higherAuthority)
	if err != nil {
		return "", fmt.Errorf("cannot %s request %d in state %q: %w", action, requestNo, header.Status, err)
	}

	manager, managerEmail, err := c.resolveOwner(ctx, requestNo, decision.Owner)
	if err != nil {
		return "", err
	}

	if err := c.lines.UpdateStatus(ctx, requestNo, string(decision.Next), manager, managerEmail); err != nil {
		return "", writeErr("update line status", requestNo, "", err)
	}
	if err := c.requests.UpdateStatus(ctx, requestNo, string(decision.Next)); err != nil {
		return "", writeErr("update request status", requestNo, "", err)
	}

	if decision.RecordHistory {
		entry := &models.ApprovalHistoryEntry{
			RequestNo:    requestNo,
			ApprovalDate: time.Now(),
			Approver:     actor.DisplayName,
			Remarks:      remarks,
		}
		if err := c.history.Create(ctx, entry); err != nil {
			return "", writeErr("append approval history", requestNo, "", err)
		}
	}

	c.logger.Info("Request routed",
		zap.Int64("request_no", requestNo),
		zap.String("action", string(action)),
		zap.String("from", header.Status),
		zap.String("to", string(decision.Next)),
		zap.String("approver", actor.DisplayName))
	return decision.Next, nil
}

// resolveOwner maps a router owner change onto concrete manager fields. Empty
// values leave the current owner untouched.
func (c *Controller) resolveOwner(ctx context.Context, requestNo int64, change workflow.OwnerChange) (string, string, error) {
	if change == workflow.OwnerUnchanged {
		return "", "", nil
	}

	lines, err := c.lines.GetByRequestNo(ctx, requestNo)
	if err != nil {
		return "", "", readErr("load expense lines", requestNo, err)
	}
	if len(lines) == 0 {
		return "", "", validationErr(requestNo, "", "no expense lines found")
	}

	switch change {
	case workflow.OwnerEmployeeManager:
		// Re-read the employee's manager at action time, not from submission.
		emp, err := c.directory.EmployeeByEmail(lines[0].EmployeeEmail)
		if err != nil {
			return "", "", readErr("look up employee", requestNo, err)
		}
		if emp == nil {
			return "", "", validationErr(requestNo, "", "employee %s not in directory", lines[0].EmployeeEmail)
		}
		return emp.Manager, emp.ManagerEmail, nil

	case workflow.OwnerApproverManager:
		current, err := c.directory.EmployeeByName(lines[0].Manager)
		if err != nil {
			return "", "", readErr("look up approver", requestNo, err)
		}
		if current == nil {
			return "", "", validationErr(requestNo, "", "approver %s not in directory", lines[0].Manager)
		}
		return current.Manager, current.ManagerEmail, nil
	}
	return "", "", nil
}

// RequestDetail is one request with its lines and their attachment metadata
type RequestDetail struct {
	Header      *models.Request                 `json:"header"`
	Lines       []*models.ExpenseLine           `json:"lines"`
	Attachments map[string][]*models.Attachment `json:"attachments"`
	GrandTotal  float64                         `json:"grand_total"`
}

// ListRequests groups every expense line by request number into summaries
// with grand totals, newest request first.
func (c *Controller) ListRequests(ctx context.Context) ([]*models.RequestSummary, error) {
	lines, err := c.lines.List(ctx)
	if err != nil {
		return nil, readErr("list expense lines", 0, err)
	}
	return groupSummaries(lines), nil
}

// ListRequestsByStatus groups only the lines carrying one of the given
// statuses into summaries, newest request first.
func (c *Controller) ListRequestsByStatus(ctx context.Context, statuses ...string) ([]*models.RequestSummary, error) {
	lines, err := c.lines.GetByStatus(ctx, statuses...)
	if err != nil {
		return nil, readErr("list expense lines", 0, err)
	}
	return groupSummaries(lines), nil
}

// GetRequest returns one request with its lines and attachment metadata
func (c *Controller) GetRequest(ctx context.Context, requestNo int64) (*RequestDetail, error) {
	header, err := c.requests.GetByRequestNo(ctx, requestNo)
	if err != nil {
		return nil, readErr("load request", requestNo, err)
	}
	if header == nil {
		return nil, validationErr(requestNo, "", "request not found")
	}

	lines, err := c.lines.GetByRequestNo(ctx, requestNo)
	if err != nil {
		return nil, readErr("load expense lines", requestNo, err)
	}

	detail := &RequestDetail{
		Header:      header,
		Lines:       lines,
		Attachments: make(map[string][]*models.Attachment),
	}
	for _, line := range lines {
		detail.GrandTotal += line.TotalAmount
		meta, err := c.attachments.Metadata(ctx, line.LineID)
		if err != nil {
			return nil, readErr("load attachment metadata", requestNo, err)
		}
		if len(meta) > 0 {
			detail.Attachments[line.LineID] = meta
		}
	}
	return detail, nil
}

// History returns the approval trail of a request, oldest entry first
func (c *Controller) History(ctx context.Context, requestNo int64) ([]*models.ApprovalHistoryEntry, error) {
	entries, err := c.history.GetByRequestNo(ctx, requestNo)
	if err != nil {
		return nil, readErr("load approval history", requestNo, err)
	}
	return entries, nil
}

// PendingForApprover lists the requests currently awaiting the given approver
func (c *Controller) PendingForApprover(ctx context.Context, approverEmail string) ([]*models.RequestSummary, error) {
	lines, err := c.lines.GetByManagerEmail(ctx, approverEmail)
	if err != nil {
		return nil, readErr("load pending approvals", 0, err)
	}

	var pending []*models.ExpenseLine
	for _, line := range lines {
		state := workflow.State(line.Status)
		if state == workflow.StatePendingAtManager || state == workflow.StatePendingAtFinance {
			pending = append(pending, line)
		}
	}
	return groupSummaries(pending), nil
}

func (c *Controller) actorEmployee(s *Session) (*models.Employee, error) {
	emp, err := c.directory.EmployeeByEmail(s.Actor.Email)
	if err != nil {
		return nil, readErr("look up employee", s.RequestNo, err)
	}
	if emp == nil {
		return nil, validationErr(s.RequestNo, "", "employee %s not in directory", s.Actor.Email)
	}
	return emp, nil
}

func (c *Controller) validateHeader(s *Session) error {
	if s.Company == "" {
		return validationErr(s.RequestNo, "", "company is required")
	}
	if s.CMSID == "" {
		return validationErr(s.RequestNo, "", "CMS id is required")
	}
	if s.Editor.Empty() {
		return validationErr(s.RequestNo, "", "at least one expense line is required")
	}
	return nil
}

// validateForSubmission runs the full line validation plus the
// attachment-required check driven by the expense type flag.
func (c *Controller) validateForSubmission(s *Session) error {
	if err := s.Editor.Validate(editor.ModeSubmit); err != nil {
		return validationErr(s.RequestNo, "", "%v", err)
	}
	for _, line := range s.Editor.Lines() {
		required, err := c.directory.AttachmentRequired(line.ExpenseType)
		if err != nil {
			return readErr("look up expense type", s.RequestNo, err)
		}
		if required && line.PendingFile == nil && !line.HasStoredFile {
			return validationErr(s.RequestNo, line.Identity.LineID,
				"expense type %s requires an attachment", line.ExpenseType)
		}
	}
	return nil
}

// draftHeader reuses an existing draft header for the session's request
// number, or allocates the next number and creates one.
func (c *Controller) draftHeader(ctx context.Context, s *Session) (int64, bool, error) {
	if s.RequestNo != 0 {
		header, err := c.requests.GetByRequestNo(ctx, s.RequestNo)
		if err != nil {
			return 0, false, readErr("load request", s.RequestNo, err)
		}
		if header != nil && workflow.State(header.Status) == workflow.StateDraft {
			return s.RequestNo, false, nil
		}
	}

	requestNo, err := c.requests.NextRequestNo(ctx)
	if err != nil {
		return 0, false, readErr("allocate request number", 0, err)
	}

	emp, err := c.actorEmployee(s)
	if err != nil {
		return 0, false, err
	}
	header := &models.Request{
		RequestNo:      requestNo,
		EmployeeID:     emp.EmployeeID,
		EmployeeName:   emp.EmployeeName,
		SubmissionDate: time.Now(),
		Status:         string(workflow.StateDraft),
	}
	if err := c.requests.Create(ctx, header); err != nil {
		return 0, false, writeErr("create request", requestNo, "", err)
	}
	return requestNo, true, nil
}

// processDeleteQueue removes queued lines and their attachments from storage,
// attachment first. The queue is cleared only when every deletion succeeded.
func (c *Controller) processDeleteQueue(ctx context.Context, s *Session) error {
	for _, ref := range s.Editor.DeleteQueue() {
		if err := c.attachments.Remove(ctx, ref.LineID); err != nil {
			return writeErr("delete attachments", s.RequestNo, ref.LineID, err)
		}
		if err := c.lines.DeleteByID(ctx, ref.StorageID); err != nil {
			return writeErr("delete expense line", s.RequestNo, ref.LineID, err)
		}
	}
	s.Editor.ClearDeleteQueue()
	return nil
}

// upsertLines writes every line of the session in order: update when the line
// has a persisted identity, insert otherwise.
func (c *Controller) upsertLines(ctx context.Context, s *Session, emp *models.Employee, status workflow.State, manager, managerEmail string) error {
	now := time.Now()
	for _, line := range s.Editor.Lines() {
		record := c.buildLine(s, emp, line, s.RequestNo, string(status), manager, managerEmail, now)
		if line.Identity.Persisted() {
			record.ID = line.Identity.StorageID
			if err := c.lines.Update(ctx, record); err != nil {
				return writeErr("update expense line", s.RequestNo, line.Identity.LineID, err)
			}
		} else {
			if err := c.lines.Create(ctx, record); err != nil {
				return writeErr("insert expense line", s.RequestNo, line.Identity.LineID, err)
			}
			line.Identity.StorageID = record.ID
		}
	}
	return nil
}

// uploadPendingFiles replaces the attachment of every line holding a buffered
// upload. Lines must be persisted before their files are linked.
func (c *Controller) uploadPendingFiles(ctx context.Context, s *Session) error {
	for _, line := range s.Editor.Lines() {
		if line.PendingFile == nil {
			continue
		}
		if err := c.attachments.Replace(ctx, line.Identity.LineID, line.PendingFile); err != nil {
			return writeErr("replace attachment", s.RequestNo, line.Identity.LineID, err)
		}
		line.PendingFile = nil
		line.HasStoredFile = true
	}
	return nil
}

func (c *Controller) buildLine(s *Session, emp *models.Employee, line *editor.Line, requestNo int64, status, manager, managerEmail string, submissionDate time.Time) *models.ExpenseLine {
	return &models.ExpenseLine{
		LineID:         line.Identity.LineID,
		RequestNo:      requestNo,
		ExpenseDate:    line.ExpenseDate,
		Merchant:       line.Merchant,
		ExpenseType:    line.ExpenseType,
		Currency:       line.Currency,
		ExpenseAmount:  line.Amount(),
		Multiplier:     line.MultiplierValue(),
		TotalAmount:    line.TotalAmount,
		Reason:         line.Reason,
		Status:         status,
		Company:        s.Company,
		CMSID:          s.CMSID,
		Purpose:        s.Purpose,
		EmployeeID:     emp.EmployeeID,
		EmployeeName:   emp.EmployeeName,
		EmployeeEmail:  emp.Email,
		Department:     emp.Department,
		Country:        emp.Country,
		Manager:        manager,
		ManagerEmail:   managerEmail,
		SubmissionDate: submissionDate,
	}
}

// groupSummaries folds lines into per-request summaries preserving line order
func groupSummaries(lines []*models.ExpenseLine) []*models.RequestSummary {
	var summaries []*models.RequestSummary
	index := make(map[int64]*models.RequestSummary)
	for _, line := range lines {
		summary, ok := index[line.RequestNo]
		if !ok {
			summary = &models.RequestSummary{
				RequestNo:      line.RequestNo,
				EmployeeName:   line.EmployeeName,
				Status:         line.Status,
				SubmissionDate: line.SubmissionDate,
			}
			index[line.RequestNo] = summary
			summaries = append(summaries, summary)
		}
		summary.GrandTotal += line.TotalAmount
		summary.LineCount++
	}
	return summaries
}
