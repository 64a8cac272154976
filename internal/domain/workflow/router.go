package workflow

import "fmt"

// OwnerChange describes who becomes the new owner (the Manager/ManagerEmail
// fields on every line) after a transition.
type OwnerChange int

const (
	// OwnerUnchanged keeps the current owner.
	OwnerUnchanged OwnerChange = iota

	// OwnerEmployeeManager routes the request to the submitting employee's
	// current manager, re-read from the directory at action time.
	OwnerEmployeeManager

	// OwnerApproverManager routes the request one level up, to the current
	// manager's own manager.
	OwnerApproverManager
)

// Decision is the outcome of routing one action against the current status.
type Decision struct {
	Next          State
	RecordHistory bool
	Owner         OwnerChange
}

// Route is the pure approval-routing function. It maps (current status,
// action, approver higher-authority flag) to the resulting decision and
// rejects any pair not in the transition table.
func Route(current State, action Action, higherAuthority bool) (Decision, error) {
	if !current.IsValid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrInvalidState, current)
	}

	switch action {
	case ActionSubmit:
		if current.IsEditable() {
			return Decision{Next: StatePendingAtManager, RecordHistory: false, Owner: OwnerEmployeeManager}, nil
		}

	case ActionApprove:
		switch current {
		case StatePendingAtManager:
			if higherAuthority {
				return Decision{Next: StateApproved, RecordHistory: true, Owner: OwnerUnchanged}, nil
			}
			return Decision{Next: StatePendingAtFinance, RecordHistory: true, Owner: OwnerApproverManager}, nil
		case StatePendingAtFinance:
			return Decision{Next: StateApproved, RecordHistory: true, Owner: OwnerUnchanged}, nil
		}

	case ActionReject:
		if current == StatePendingAtManager || current == StatePendingAtFinance {
			return Decision{Next: StateRejected, RecordHistory: true, Owner: OwnerUnchanged}, nil
		}

	case ActionRequestRevision:
		if current == StatePendingAtManager || current == StatePendingAtFinance {
			return Decision{Next: StateRevisionRequested, RecordHistory: true, Owner: OwnerEmployeeManager}, nil
		}
	}

	return Decision{}, fmt.Errorf("%w: cannot %s from state %q", ErrInvalidTransition, action, current)
}
