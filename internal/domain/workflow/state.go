package workflow

// State represents a request status in the approval lifecycle. The string
// values are the stored status values and are part of the data contract.
type State string

const (
	StateDraft             State = "Draft"
	StatePendingAtManager  State = "Pending at Manager"
	StatePendingAtFinance  State = "Pending at Finance"
	StateApproved          State = "Approved"
	StateRejected          State = "Rejected"
	StateRevisionRequested State = "Revision Requested"
)

var validStates = map[State]bool{
	StateDraft:             true,
	StatePendingAtManager:  true,
	StatePendingAtFinance:  true,
	StateApproved:          true,
	StateRejected:          true,
	StateRevisionRequested: true,
}

var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
}

var editableStates = map[State]bool{
	StateDraft:             true,
	StateRevisionRequested: true,
}

// IsTerminal returns true if no further transitions are allowed from the state.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsEditable returns true if the request may be re-opened for line editing.
func (s State) IsEditable() bool {
	return editableStates[s]
}

// IsValid returns true if the state is a valid lifecycle state.
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the stored string representation of the state.
func (s State) String() string {
	return string(s)
}
