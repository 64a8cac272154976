package models

import "time"

// Request is the header record of a reimbursement request. Exactly one header
// exists per request number; all expense lines of the request mirror its status.
type Request struct {
	ID             int64     `json:"id"`
	RequestNo      int64     `json:"request_no"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	SubmissionDate time.Time `json:"submission_date"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// ExpenseLine is a single expense row belonging to a request. LineID is the
// ephemeral UUID identity of the line; it survives draft/edit cycles and is the
// join key to attachments. ID is the storage-assigned row id (0 until persisted).
type ExpenseLine struct {
	ID             int64     `json:"id"`
	LineID         string    `json:"line_id"`
	RequestNo      int64     `json:"request_no"`
	ExpenseDate    string    `json:"expense_date"`
	Merchant       string    `json:"merchant"`
	ExpenseType    string    `json:"expense_type"`
	Currency       string    `json:"currency"`
	ExpenseAmount  float64   `json:"expense_amount"`
	Multiplier     float64   `json:"multiplier"`
	TotalAmount    float64   `json:"total_amount"`
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
	Company        string    `json:"company"`
	CMSID          string    `json:"cms_id"`
	Purpose        string    `json:"purpose"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	EmployeeEmail  string    `json:"employee_email"`
	Department     string    `json:"department"`
	Country        string    `json:"country"`
	Manager        string    `json:"manager"`
	ManagerEmail   string    `json:"manager_email"`
	SubmissionDate time.Time `json:"submission_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// ApprovalHistoryEntry is one append-only audit record written per routing
// transition (approve, reject, revision request; never submit).
type ApprovalHistoryEntry struct {
	ID           int64     `json:"id"`
	RequestNo    int64     `json:"request_no"`
	ApprovalDate time.Time `json:"approval_date"`
	Approver     string    `json:"approver"`
	Remarks      string    `json:"remarks"`
}

// RequestSummary groups the lines of one request for listing views.
type RequestSummary struct {
	RequestNo      int64     `json:"request_no"`
	EmployeeName   string    `json:"employee_name"`
	Status         string    `json:"status"`
	GrandTotal     float64   `json:"grand_total"`
	LineCount      int       `json:"line_count"`
	SubmissionDate time.Time `json:"submission_date"`
}
