// Package editor maintains the in-memory ordered line set of one request
// while it is open for editing. Amount fields hold the raw edit strings; the
// line total is recomputed on every edit of either factor.
package editor

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/expenseflow/ems-core/internal/models"
	"github.com/google/uuid"
)

// Field names an editable line field
type Field string

const (
	FieldExpenseDate   Field = "expenseDate"
	FieldMerchant      Field = "merchant"
	FieldExpenseType   Field = "expenseType"
	FieldCurrency      Field = "currency"
	FieldExpenseAmount Field = "expenseAmount"
	FieldMultiplier    Field = "multiplier"
	FieldReason        Field = "reason"
)

// Mode selects the validation rules: drafts may omit expense type and reason.
type Mode int

const (
	ModeDraft Mode = iota
	ModeSubmit
)

var (
	// ErrLineNotFound is returned when the line id is not in the edit set
	ErrLineNotFound = errors.New("line not found")

	// ErrUnknownField is returned for a field name outside the editable set
	ErrUnknownField = errors.New("unknown field")
)

// LineIdentity is the dual identity of a line: the ephemeral UUID that is
// stable across draft/edit cycles, and the storage row id once persisted.
// StorageID zero means the line exists only in memory.
type LineIdentity struct {
	LineID    string
	StorageID int64
}

// Persisted reports whether the line has a storage row behind it
func (id LineIdentity) Persisted() bool {
	return id.StorageID != 0
}

// DeleteRef queues a persisted line for deletion from storage
type DeleteRef struct {
	StorageID int64
	LineID    string
}

// Line is one expense row in the edit buffer
type Line struct {
	Identity      LineIdentity
	ExpenseDate   string
	Merchant      string
	ExpenseType   string
	Currency      string
	ExpenseAmount string
	Multiplier    string
	TotalAmount   float64
	Reason        string

	// PendingFile is an upload buffered until the next persist.
	PendingFile *models.AttachmentFile

	// HasStoredFile marks that a persisted attachment already exists.
	HasStoredFile bool
}

// Amount parses the expense amount, defaulting to 0 when unparsable
func (l *Line) Amount() float64 {
	v, err := strconv.ParseFloat(l.ExpenseAmount, 64)
	if err != nil {
		return 0
	}
	return v
}

// MultiplierValue parses the multiplier, defaulting to 1 when absent or unparsable
func (l *Line) MultiplierValue() float64 {
	v, err := strconv.ParseFloat(l.Multiplier, 64)
	if err != nil {
		return 1
	}
	return v
}

func (l *Line) recomputeTotal() {
	l.TotalAmount = l.Amount() * l.MultiplierValue()
}

// Editor owns the line set and deletion queue of one editing session
type Editor struct {
	lines       []*Line
	deleteQueue []DeleteRef
}

// New creates an empty editor for a fresh request
func New() *Editor {
	return &Editor{}
}

// FromLines opens an editor over the persisted lines of an existing request
func FromLines(persisted []*models.ExpenseLine) *Editor {
	e := &Editor{}
	for _, p := range persisted {
		line := &Line{
			Identity:      LineIdentity{LineID: p.LineID, StorageID: p.ID},
			ExpenseDate:   p.ExpenseDate,
			Merchant:      p.Merchant,
			ExpenseType:   p.ExpenseType,
			Currency:      p.Currency,
			ExpenseAmount: strconv.FormatFloat(p.ExpenseAmount, 'f', -1, 64),
			Multiplier:    strconv.FormatFloat(p.Multiplier, 'f', -1, 64),
			TotalAmount:   p.TotalAmount,
			Reason:        p.Reason,
		}
		e.lines = append(e.lines, line)
	}
	return e
}

// AddLine appends a new line with a fresh UUID identity and zeroed fields
func (e *Editor) AddLine() *Line {
	id := uuid.NewString()
	line := &Line{
		Identity: LineIdentity{LineID: id},
	}
	e.lines = append(e.lines, line)
	return line
}

// RemoveLine drops the line from the edit set. Persisted lines are
// additionally queued for storage deletion; in-memory lines just disappear.
func (e *Editor) RemoveLine(lineID string) error {
	for i, line := range e.lines {
		if line.Identity.LineID != lineID {
			continue
		}
		e.lines = append(e.lines[:i], e.lines[i+1:]...)
		if line.Identity.Persisted() {
			e.deleteQueue = append(e.deleteQueue, DeleteRef{
				StorageID: line.Identity.StorageID,
				LineID:    line.Identity.LineID,
			})
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
}

// EditField updates one field. Editing the amount or multiplier recomputes
// the line total from the current values of both factors.
func (e *Editor) EditField(lineID string, field Field, value string) error {
	line := e.find(lineID)
	if line == nil {
		return fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}

	switch field {
	case FieldExpenseDate:
		line.ExpenseDate = value
	case FieldMerchant:
		line.Merchant = value
	case FieldExpenseType:
		line.ExpenseType = value
	case FieldCurrency:
		line.Currency = value
	case FieldExpenseAmount:
		line.ExpenseAmount = value
		line.recomputeTotal()
	case FieldMultiplier:
		line.Multiplier = value
		line.recomputeTotal()
	case FieldReason:
		line.Reason = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// SetFile buffers an upload against the line until the next persist
func (e *Editor) SetFile(lineID string, file *models.AttachmentFile) error {
	line := e.find(lineID)
	if line == nil {
		return fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}
	line.PendingFile = file
	return nil
}

// Lines returns the current ordered line set
func (e *Editor) Lines() []*Line {
	return e.lines
}

// Empty reports whether the edit set has no lines
func (e *Editor) Empty() bool {
	return len(e.lines) == 0
}

// DeleteQueue returns the persisted lines queued for deletion
func (e *Editor) DeleteQueue() []DeleteRef {
	return e.deleteQueue
}

// ClearDeleteQueue empties the deletion queue after it has been processed
func (e *Editor) ClearDeleteQueue() {
	e.deleteQueue = nil
}

// GrandTotal sums the line totals of the edit set
func (e *Editor) GrandTotal() float64 {
	var total float64
	for _, line := range e.lines {
		total += line.TotalAmount
	}
	return total
}

// Validate checks every line against the rules for the given mode. Draft
// requires a date and a parsable non-negative amount with a computed total;
// submit and update additionally require the expense type and reason.
func (e *Editor) Validate(mode Mode) error {
	for i, line := range e.lines {
		if line.ExpenseDate == "" {
			return fmt.Errorf("line %d: expense date is required", i+1)
		}
		if line.ExpenseAmount == "" {
			return fmt.Errorf("line %d: expense amount is required", i+1)
		}
		amount, err := strconv.ParseFloat(line.ExpenseAmount, 64)
		if err != nil {
			return fmt.Errorf("line %d: expense amount %q is not a number", i+1, line.ExpenseAmount)
		}
		if amount < 0 {
			return fmt.Errorf("line %d: expense amount must not be negative", i+1)
		}
		// A zero total is valid when the factors produce it (multiplier 0).
		if line.TotalAmount != amount*line.MultiplierValue() {
			return fmt.Errorf("line %d: total amount does not match its factors", i+1)
		}
		if mode == ModeSubmit {
			if line.ExpenseType == "" {
				return fmt.Errorf("line %d: expense type is required", i+1)
			}
			if line.Reason == "" {
				return fmt.Errorf("line %d: reason is required", i+1)
			}
		}
	}
	return nil
}

func (e *Editor) find(lineID string) *Line {
	for _, line := range e.lines {
		if line.Identity.LineID == lineID {
			return line
		}
	}
	return nil
}
