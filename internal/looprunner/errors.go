package looprunner

import "fmt"

// RunError is a fatal orchestration error. It halts the state machine in
// Failed and is never retried within one invocation: silently retrying
// infrastructure errors would mask systemic breakage.
type RunError struct {
	Iteration int
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("loop runner failed at iteration %d: %v", e.Iteration, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
