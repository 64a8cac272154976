package lifecycle

import "fmt"

// ValidationError reports a missing or invalid field. It is raised before any
// remote call, so an operation failing validation has no side effects.
type ValidationError struct {
	RequestNo int64
	LineID    string
	Reason    string
}

func (e *ValidationError) Error() string {
	switch {
	case e.LineID != "":
		return fmt.Sprintf("validation failed for line %s: %s", e.LineID, e.Reason)
	case e.RequestNo != 0:
		return fmt.Sprintf("validation failed for request %d: %s", e.RequestNo, e.Reason)
	default:
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
}

// RemoteReadError reports a failed fetch. The dependent operation aborts and
// any previously cached state remains visible.
type RemoteReadError struct {
	Op        string
	RequestNo int64
	Err       error
}

func (e *RemoteReadError) Error() string {
	if e.RequestNo != 0 {
		return fmt.Sprintf("%s failed for request %d: %v", e.Op, e.RequestNo, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteReadError) Unwrap() error { return e.Err }

// RemoteWriteError reports a failed insert, update or delete. Writes already
// committed earlier in the same operation are not rolled back; the caller sees
// which entity the chain stopped at.
type RemoteWriteError struct {
	Op        string
	RequestNo int64
	LineID    string
	Err       error
}

func (e *RemoteWriteError) Error() string {
	switch {
	case e.LineID != "":
		return fmt.Sprintf("%s failed for request %d line %s: %v", e.Op, e.RequestNo, e.LineID, e.Err)
	case e.RequestNo != 0:
		return fmt.Sprintf("%s failed for request %d: %v", e.Op, e.RequestNo, e.Err)
	default:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

func validationErr(requestNo int64, lineID, format string, args ...any) error {
	return &ValidationError{
		RequestNo: requestNo,
		LineID:    lineID,
		Reason:    fmt.Sprintf(format, args...),
	}
}

func readErr(op string, requestNo int64, err error) error {
	return &RemoteReadError{Op: op, RequestNo: requestNo, Err: err}
}

func writeErr(op string, requestNo int64, lineID string, err error) error {
	return &RemoteWriteError{Op: op, RequestNo: requestNo, LineID: lineID, Err: err}
}
