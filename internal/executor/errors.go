package executor

import "fmt"

// Reason tags a tool execution failure.
type Reason string

const (
	// ReasonCommandFailed means the command ran and exited non-zero. Only
	// raised on the tool-channel contract; the data channel reports the
	// exit code as data.
	ReasonCommandFailed Reason = "command_failed"

	// ReasonAborted means the command exceeded its deadline and its
	// process group was killed.
	ReasonAborted Reason = "aborted"

	// ReasonNotFound means the shell or executable could not be located.
	ReasonNotFound Reason = "not_found"
)

// ToolError is a transient failure signal raised by the executor and
// interpreted by its caller. Never persisted.
type ToolError struct {
	Reason   Reason
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	switch e.Reason {
	case ReasonCommandFailed:
		return fmt.Sprintf("command failed with exit code %d: %s", e.ExitCode, e.Command)
	case ReasonAborted:
		return fmt.Sprintf("command aborted by timeout: %s", e.Command)
	case ReasonNotFound:
		return fmt.Sprintf("executable not found for command: %s", e.Command)
	default:
		return fmt.Sprintf("tool execution failed (%s): %s", e.Reason, e.Command)
	}
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// IsReason reports whether err is a ToolError with the given reason.
func IsReason(err error, reason Reason) bool {
	toolErr, ok := err.(*ToolError)
	if !ok {
		return false
	}
	return toolErr.Reason == reason
}
