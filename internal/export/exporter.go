// Package export renders a reimbursement request into an Excel workbook: one
// sheet with the request header and lines, one with the approval trail.
package export

import (
	"fmt"
	"path/filepath"

	"github.com/expenseflow/ems-core/internal/lifecycle"
	"github.com/expenseflow/ems-core/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	requestSheet = "Request"
	historySheet = "Approval History"

	// Header section rows
	cellCompany   = "B1"
	cellRequestNo = "B2"
	cellEmployee  = "B3"
	cellStatus    = "B4"
	cellSubmitted = "B5"

	// Line rows start below the column header row
	lineHeaderRow = 7
	lineDataStart = 8
)

var lineColumns = []string{"Date", "Merchant", "Type", "Currency", "Amount", "Multiplier", "Total", "Reason"}

// Exporter writes request workbooks into the configured output directory
type Exporter struct {
	outputDir   string
	companyName string
	logger      *zap.Logger
}

// NewExporter creates a new Exporter
func NewExporter(outputDir, companyName string, logger *zap.Logger) *Exporter {
	return &Exporter{
		outputDir:   outputDir,
		companyName: companyName,
		logger:      logger,
	}
}

// Workbook builds the in-memory workbook for one request
func (e *Exporter) Workbook(detail *lifecycle.RequestDetail, history []*models.ApprovalHistoryEntry) (*excelize.File, error) {
	file := excelize.NewFile()

	index, err := file.NewSheet(requestSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create request sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := e.fillHeader(file, detail); err != nil {
		return nil, err
	}
	if err := e.fillLines(file, detail); err != nil {
		return nil, err
	}
	if err := e.fillHistory(file, history); err != nil {
		return nil, err
	}
	return file, nil
}

// WriteFile builds the workbook and saves it as request_<no>.xlsx in the
// output directory, returning the written path.
func (e *Exporter) WriteFile(detail *lifecycle.RequestDetail, history []*models.ApprovalHistoryEntry) (string, error) {
	file, err := e.Workbook(detail, history)
	if err != nil {
		return "", err
	}
	defer file.Close()

	outputPath := filepath.Join(e.outputDir, fmt.Sprintf("request_%d.xlsx", detail.Header.RequestNo))
	if err := file.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("Request workbook written",
		zap.Int64("request_no", detail.Header.RequestNo),
		zap.String("output_path", outputPath),
		zap.Int("lines", len(detail.Lines)))
	return outputPath, nil
}

func (e *Exporter) fillHeader(file *excelize.File, detail *lifecycle.RequestDetail) error {
	labels := map[string]string{
		"A1": "Company",
		"A2": "Request No",
		"A3": "Employee",
		"A4": "Status",
		"A5": "Submitted",
	}
	for cell, label := range labels {
		if err := file.SetCellValue(requestSheet, cell, label); err != nil {
			return fmt.Errorf("failed to set label %s: %w", cell, err)
		}
	}

	values := map[string]any{
		cellCompany:   e.companyName,
		cellRequestNo: detail.Header.RequestNo,
		cellEmployee:  detail.Header.EmployeeName,
		cellStatus:    detail.Header.Status,
		cellSubmitted: detail.Header.SubmissionDate.Format("2006-01-02"),
	}
	for cell, value := range values {
		if err := file.SetCellValue(requestSheet, cell, value); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
	}
	return nil
}

func (e *Exporter) fillLines(file *excelize.File, detail *lifecycle.RequestDetail) error {
	for i, title := range lineColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, lineHeaderRow)
		if err != nil {
			return fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := file.SetCellValue(requestSheet, cell, title); err != nil {
			return fmt.Errorf("failed to set column header %s: %w", title, err)
		}
	}

	for i, line := range detail.Lines {
		row := lineDataStart + i
		values := []any{
			line.ExpenseDate,
			line.Merchant,
			line.ExpenseType,
			line.Currency,
			line.ExpenseAmount,
			line.Multiplier,
			line.TotalAmount,
			line.Reason,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("failed to resolve cell at row %d: %w", row, err)
			}
			if err := file.SetCellValue(requestSheet, cell, value); err != nil {
				return fmt.Errorf("failed to set line cell at row %d: %w", row, err)
			}
		}
	}

	totalRow := lineDataStart + len(detail.Lines)
	if err := file.SetCellValue(requestSheet, fmt.Sprintf("F%d", totalRow), "Grand Total"); err != nil {
		return fmt.Errorf("failed to set grand total label: %w", err)
	}
	if err := file.SetCellValue(requestSheet, fmt.Sprintf("G%d", totalRow), detail.GrandTotal); err != nil {
		return fmt.Errorf("failed to set grand total: %w", err)
	}
	return nil
}

func (e *Exporter) fillHistory(file *excelize.File, history []*models.ApprovalHistoryEntry) error {
	if _, err := file.NewSheet(historySheet); err != nil {
		return fmt.Errorf("failed to create history sheet: %w", err)
	}

	headers := []string{"Date", "Approver", "Remarks"}
	for i, title := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to resolve history header cell: %w", err)
		}
		if err := file.SetCellValue(historySheet, cell, title); err != nil {
			return fmt.Errorf("failed to set history header %s: %w", title, err)
		}
	}

	for i, entry := range history {
		row := i + 2
		values := []any{
			entry.ApprovalDate.Format("2006-01-02 15:04"),
			entry.Approver,
			entry.Remarks,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("failed to resolve history cell at row %d: %w", row, err)
			}
			if err := file.SetCellValue(historySheet, cell, value); err != nil {
				return fmt.Errorf("failed to set history cell at row %d: %w", row, err)
			}
		}
	}
	return nil
}
