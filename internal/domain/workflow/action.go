package workflow

// Action represents an approver or submitter action that can cause a
// state transition.
type Action string

const (
	ActionSubmit          Action = "SUBMIT"
	ActionApprove         Action = "APPROVE"
	ActionReject          Action = "REJECT"
	ActionRequestRevision Action = "REQUEST_REVISION"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}
