package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/expenseflow/ems-core/internal/attachment"
	"github.com/expenseflow/ems-core/internal/domain/workflow"
	"github.com/expenseflow/ems-core/internal/editor"
	"github.com/expenseflow/ems-core/internal/export"
	"github.com/expenseflow/ems-core/internal/lifecycle"
	"github.com/expenseflow/ems-core/internal/models"
	"github.com/expenseflow/ems-core/internal/refdata"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	controller  *lifecycle.Controller
	reference   *refdata.Cache
	attachments *attachment.Manager
	exporter    *export.Exporter
	maxUpload   int64
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance. maxUpload caps attachment
// uploads in bytes; zero disables the check.
func NewHandlers(
	controller *lifecycle.Controller,
	reference *refdata.Cache,
	attachments *attachment.Manager,
	exporter *export.Exporter,
	maxUpload int64,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		controller:  controller,
		reference:   reference,
		attachments: attachments,
		exporter:    exporter,
		maxUpload:   maxUpload,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LinePayload is one expense line in a draft/submit/update body. Amount and
// multiplier arrive as the raw edit strings; unparsable values fall back to
// the editor defaults.
type LinePayload struct {
	ID            int64  `json:"id,omitempty"`
	LineID        string `json:"line_id,omitempty"`
	ExpenseDate   string `json:"expense_date"`
	Merchant      string `json:"merchant"`
	ExpenseType   string `json:"expense_type"`
	Currency      string `json:"currency"`
	ExpenseAmount string `json:"expense_amount"`
	Multiplier    string `json:"multiplier"`
	Reason        string `json:"reason"`

	// HasAttachment is set on edit responses only; it is ignored on input.
	HasAttachment bool `json:"has_attachment,omitempty"`
}

// DeletedLinePayload identifies a persisted line removed in the editing session
type DeletedLinePayload struct {
	ID     int64  `json:"id"`
	LineID string `json:"line_id"`
}

// RequestPayload is the draft/submit/update body
type RequestPayload struct {
	RequestNo    int64                `json:"request_no,omitempty"`
	Company      string               `json:"company"`
	CMSID        string               `json:"cms_id"`
	Purpose      string               `json:"purpose"`
	Lines        []LinePayload        `json:"lines"`
	DeletedLines []DeletedLinePayload `json:"deleted_lines,omitempty"`
}

// RemarksPayload carries the mandatory remarks of an approval action
type RemarksPayload struct {
	Remarks string `json:"remarks"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// SaveDraft handles POST /api/requests/draft
func (h *Handlers) SaveDraft(c *gin.Context) {
	actor, ok := h.identity(c)
	if !ok {
		return
	}
	session, ok := h.bindSession(c, actor)
	if !ok {
		return
	}

	requestNo, err := h.controller.Draft(c.Request.Context(), session)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"request_no": requestNo, "status": session.Status},
	})
}

// SubmitRequest handles POST /api/requests/submit
func (h *Handlers) SubmitRequest(c *gin.Context) {
	actor, ok := h.identity(c)
	if !ok {
		return
	}
	session, ok := h.bindSession(c, actor)
	if !ok {
		return
	}

	requestNo, err := h.controller.Submit(c.Request.Context(), session)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"request_no": requestNo, "status": session.Status},
	})
}

// UpdateRequest handles PUT /api/requests/:no
func (h *Handlers) UpdateRequest(c *gin.Context) {
	actor, ok := h.identity(c)
	if !ok {
		return
	}
	requestNo, ok := h.requestNo(c)
	if !ok {
		return
	}
	session, ok := h.bindSession(c, actor)
	if !ok {
		return
	}
	session.RequestNo = requestNo

	if err := h.controller.Update(c.Request.Context(), session); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"request_no": requestNo, "status": session.Status},
	})
}

// DeleteRequest handles DELETE /api/requests/:no?confirm=true
func (h *Handlers) DeleteRequest(c *gin.Context) {
	requestNo, ok := h.requestNo(c)
	if !ok {
		return
	}
	confirmed := c.Query("confirm") == "true"

	if err := h.controller.Delete(c.Request.Context(), requestNo, confirmed); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ListRequests handles GET /api/requests. Repeatable "status" query
// parameters narrow the listing to the given states.
func (h *Handlers) ListRequests(c *gin.Context) {
	var summaries []*models.RequestSummary
	var err error
	if statuses := c.QueryArray("status"); len(statuses) > 0 {
		summaries, err = h.controller.ListRequestsByStatus(c.Request.Context(), statuses...)
	} else {
		summaries, err = h.controller.ListRequests(c.Request.Context())
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: summaries})
}

// GetRequest handles GET /api/requests/:no
func (h *Handlers) GetRequest(c *gin.Context) {
	requestNo, ok := h.requestNo(c)
	if !ok {
		return
	}
	detail, err := h.controller.GetRequest(c.Request.Context(), requestNo)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: detail})
}

// EditRequest handles GET /api/requests/:no/edit. It reopens the request as
// an editing session so a client can render the line grid with stable line
// identities before a PUT.
func (h *Handlers) EditRequest(c *gin.Context) {
	actor, ok := h.identity(c)
	if !ok {
		return
	}
	requestNo, ok := h.requestNo(c)
	if !ok {
		return
	}

	session, err := h.controller.OpenSession(c.Request.Context(), actor, requestNo)
	if err != nil {
		h.respondError(c, err)
		return
	}

	lines := make([]LinePayload, 0, len(session.Editor.Lines()))
	for _, line := range session.Editor.Lines() {
		lines = append(lines, LinePayload{
			ID:            line.Identity.StorageID,
			LineID:        line.Identity.LineID,
			ExpenseDate:   line.ExpenseDate,
			Merchant:      line.Merchant,
			ExpenseType:   line.ExpenseType,
			Currency:      line.Currency,
			ExpenseAmount: line.ExpenseAmount,
			Multiplier:    line.Multiplier,
			Reason:        line.Reason,
			HasAttachment: line.HasStoredFile,
		})
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"request_no": session.RequestNo,
			"status":     session.Status,
			"company":    session.Company,
			"cms_id":     session.CMSID,
			"purpose":    session.Purpose,
			"lines":      lines,
		},
	})
}

// GetHistory handles GET /api/requests/:no/history
func (h *Handlers) GetHistory(c *gin.Context) {
	requestNo, ok := h.requestNo(c)
	if !ok {
		return
	}
	entries, err := h.controller.History(c.Request.Context(), requestNo)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ExportRequest handles GET /api/requests/:no/export
func (h *Handlers) ExportRequest(c *gin.Context) {
	requestNo, ok := h.requestNo(c)
	if !ok {
		return
	}

	detail, err := h.controller.GetRequest(c.Request.Context(), requestNo)
	if err != nil {
		h.respondError(c, err)
		return
	}
	history, err := h.controller.History(c.Request.Context(), requestNo)
	if err != nil {
		h.respondError(c, err)
		return
	}

	workbook, err := h.exporter.Workbook(detail, history)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer workbook.Close()

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="request_`+strconv.FormatInt(requestNo, 10)+`.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Approve handles POST /api/requests/:no/approve
func (h *Handlers) Approve(c *gin.Context) {
	h.routeAction(c, h.controller.Approve)
}

// Reject handles POST /api/requests/:no/reject
func (h *Handlers) Reject(c *gin.Context) {
	h.routeAction(c, h.controller.Reject)
}

// RequestRevision handles POST /api/requests/:no/revision
func (h *Handlers) RequestRevision(c *gin.Context) {
	h.routeAction(c, h.controller.RequestRevision)
}

func (h *Handlers) routeAction(c *gin.Context, action func(ctx context.Context, actor models.Identity, requestNo int64, remarks string) (workflow.State, error)) {
	actor, ok := h.identity(c)
	if !ok {
		return
	}
	requestNo, ok := h.requestNo(c)
	if !ok {
		return
	}

	var payload RemarksPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	next, err := action(c.Request.Context(), actor, requestNo, payload.Remarks)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"request_no": requestNo, "status": next},
	})
}

// PendingApprovals handles GET /api/approvals/pending
func (h *Handlers) PendingApprovals(c *gin.Context) {
	actor, ok := h.identity(c)
	if !ok {
		return
	}
	summaries, err := h.controller.PendingForApprover(c.Request.Context(), actor.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: summaries})
}

// UploadAttachment handles POST /api/lines/:lineId/attachment (multipart)
func (h *Handlers) UploadAttachment(c *gin.Context) {
	lineID := c.Param("lineId")
	if lineID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing line id"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing file"})
		return
	}
	if h.maxUpload > 0 && fileHeader.Size > h.maxUpload {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("file exceeds the %d MB upload limit", h.maxUpload/(1<<20)),
		})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		h.respondError(c, err)
		return
	}

	file := &models.AttachmentFile{
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  content,
	}
	if err := h.attachments.Replace(c.Request.Context(), lineID, file); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"line_id": lineID, "file_name": fileHeader.Filename},
	})
}

// GetAttachmentMetadata handles GET /api/lines/:lineId/attachment
func (h *Handlers) GetAttachmentMetadata(c *gin.Context) {
	lineID := c.Param("lineId")
	meta, err := h.attachments.Metadata(c.Request.Context(), lineID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: meta})
}

// GetReferenceData handles GET /api/reference
func (h *Handlers) GetReferenceData(c *gin.Context) {
	currencies, err := h.reference.Currencies()
	if err != nil {
		h.respondError(c, err)
		return
	}
	expenseTypes, err := h.reference.ExpenseTypes()
	if err != nil {
		h.respondError(c, err)
		return
	}
	cmsRequests, err := h.reference.CMSRequests()
	if err != nil {
		h.respondError(c, err)
		return
	}
	employees, err := h.reference.Employees()
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"currencies":    currencies,
			"expense_types": expenseTypes,
			"cms_requests":  cmsRequests,
			"employees":     employees,
		},
	})
}

// RefreshReferenceData handles POST /api/reference/refresh
func (h *Handlers) RefreshReferenceData(c *gin.Context) {
	if err := h.reference.Load(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// identity reads the caller identity headers, rejecting requests without one
func (h *Handlers) identity(c *gin.Context) (models.Identity, bool) {
	email := c.GetHeader("X-User-Email")
	if email == "" {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "missing X-User-Email header"})
		return models.Identity{}, false
	}
	return models.Identity{
		Email:       email,
		DisplayName: c.GetHeader("X-User-Name"),
	}, true
}

func (h *Handlers) requestNo(c *gin.Context) (int64, bool) {
	noStr := c.Param("no")
	no, err := strconv.ParseInt(noStr, 10, 64)
	if err != nil || no <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request number"})
		return 0, false
	}
	return no, true
}

// bindSession turns a request payload into an editing session: persisted
// lines (and deletions) are restored with their storage identity, new lines
// enter the editor as pending, and every field goes through the editor so
// line totals are recomputed.
func (h *Handlers) bindSession(c *gin.Context, actor models.Identity) (*lifecycle.Session, bool) {
	var payload RequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return nil, false
	}

	session := h.controller.NewSession(actor)
	session.RequestNo = payload.RequestNo
	session.Company = payload.Company
	session.CMSID = payload.CMSID
	session.Purpose = payload.Purpose

	var known []*models.ExpenseLine
	for _, d := range payload.DeletedLines {
		known = append(known, &models.ExpenseLine{ID: d.ID, LineID: d.LineID})
	}
	for _, l := range payload.Lines {
		if l.LineID != "" {
			known = append(known, &models.ExpenseLine{ID: l.ID, LineID: l.LineID})
		}
	}
	session.Editor = editor.FromLines(known)

	for _, d := range payload.DeletedLines {
		if err := session.Editor.RemoveLine(d.LineID); err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
			return nil, false
		}
	}

	for _, l := range payload.Lines {
		lineID := l.LineID
		if lineID == "" {
			lineID = session.Editor.AddLine().Identity.LineID
		}
		fields := map[editor.Field]string{
			editor.FieldExpenseDate:   l.ExpenseDate,
			editor.FieldMerchant:      l.Merchant,
			editor.FieldExpenseType:   l.ExpenseType,
			editor.FieldCurrency:      l.Currency,
			editor.FieldExpenseAmount: l.ExpenseAmount,
			editor.FieldMultiplier:    l.Multiplier,
			editor.FieldReason:        l.Reason,
		}
		for field, value := range fields {
			if err := session.Editor.EditField(lineID, field, value); err != nil {
				c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
				return nil, false
			}
		}
	}

	// Persisted lines may already carry an attachment; the submit-time
	// attachment-required check needs to know.
	for _, line := range session.Editor.Lines() {
		if !line.Identity.Persisted() {
			continue
		}
		meta, err := h.attachments.Metadata(c.Request.Context(), line.Identity.LineID)
		if err != nil {
			h.respondError(c, err)
			return nil, false
		}
		line.HasStoredFile = len(meta) > 0
	}
	return session, true
}

// respondError maps the lifecycle error taxonomy onto HTTP statuses
func (h *Handlers) respondError(c *gin.Context, err error) {
	var vErr *lifecycle.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: vErr.Error()})
		return
	}
	if errors.Is(err, workflow.ErrInvalidTransition) {
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	}

	h.logger.Error("Request failed", zap.Error(err))
	var rErr *lifecycle.RemoteReadError
	var wErr *lifecycle.RemoteWriteError
	if errors.As(err, &rErr) || errors.As(err, &wErr) {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
}
