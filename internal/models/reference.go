package models

// Employee is a read-only employee directory record. HigherAuthority marks
// finance-tier approvers whose approval is terminal at the manager stage.
type Employee struct {
	ID              int64  `json:"id"`
	EmployeeID      string `json:"employee_id"`
	EmployeeName    string `json:"employee_name"`
	Email           string `json:"email"`
	Department      string `json:"department"`
	Country         string `json:"country"`
	Manager         string `json:"manager"`
	ManagerEmail    string `json:"manager_email"`
	HigherAuthority bool   `json:"higher_authority"`
}

// Currency is a master-data currency record.
type Currency struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

// ExpenseType is a master-data expense category. AttachRequired forces a
// receipt attachment at submission time for lines of this type.
type ExpenseType struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	AttachRequired bool   `json:"attach_required"`
}

// CMSRequest is a master-data cost management identifier.
type CMSRequest struct {
	ID    int64  `json:"id"`
	CMSID string `json:"cms_id"`
}

// Identity is the caller resolved by the presentation layer.
type Identity struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
