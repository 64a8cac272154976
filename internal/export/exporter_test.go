package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/expenseflow/ems-core/internal/lifecycle"
	"github.com/expenseflow/ems-core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testDetail() *lifecycle.RequestDetail {
	return &lifecycle.RequestDetail{
		Header: &models.Request{
			RequestNo:      12,
			EmployeeName:   "Alice",
			Status:         "Approved",
			SubmissionDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Lines: []*models.ExpenseLine{
			{ExpenseDate: "2025-02-20", Merchant: "Grab", ExpenseType: "Travel", Currency: "SGD", ExpenseAmount: 100, Multiplier: 2, TotalAmount: 200, Reason: "client visit"},
			{ExpenseDate: "2025-02-21", Merchant: "Marriott", ExpenseType: "Hotel", Currency: "SGD", ExpenseAmount: 300, Multiplier: 1, TotalAmount: 300, Reason: "overnight stay"},
		},
		GrandTotal: 500,
	}
}

func testHistory() []*models.ApprovalHistoryEntry {
	return []*models.ApprovalHistoryEntry{
		{ApprovalDate: time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC), Approver: "Bob", Remarks: "ok"},
		{ApprovalDate: time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC), Approver: "Carol", Remarks: "paid"},
	}
}

func TestWorkbookLayout(t *testing.T) {
	e := NewExporter(t.TempDir(), "Acme Pte Ltd", zap.NewNop())

	file, err := e.Workbook(testDetail(), testHistory())
	require.NoError(t, err)
	defer file.Close()

	sheets := file.GetSheetList()
	assert.Contains(t, sheets, requestSheet)
	assert.Contains(t, sheets, historySheet)
	assert.NotContains(t, sheets, "Sheet1")

	company, err := file.GetCellValue(requestSheet, cellCompany)
	require.NoError(t, err)
	assert.Equal(t, "Acme Pte Ltd", company)

	requestNo, err := file.GetCellValue(requestSheet, cellRequestNo)
	require.NoError(t, err)
	assert.Equal(t, "12", requestNo)

	merchant, err := file.GetCellValue(requestSheet, "B8")
	require.NoError(t, err)
	assert.Equal(t, "Grab", merchant)

	total, err := file.GetCellValue(requestSheet, "G9")
	require.NoError(t, err)
	assert.Equal(t, "300", total)

	grandTotal, err := file.GetCellValue(requestSheet, "G10")
	require.NoError(t, err)
	assert.Equal(t, "500", grandTotal)

	approver, err := file.GetCellValue(historySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Carol", approver)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, "Acme Pte Ltd", zap.NewNop())

	path, err := e.WriteFile(testDetail(), testHistory())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "request_12.xlsx"), path)
	assert.FileExists(t, path)
}
