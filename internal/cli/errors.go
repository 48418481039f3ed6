package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/OpenAgentsInc/openagents-sub011/internal/health"
	"github.com/OpenAgentsInc/openagents-sub011/internal/looprunner"
)

// ErrorEnvelope is the JSON error response shape.
type ErrorEnvelope struct {
	Error ErrorPayload `json:"error"`
}

// ErrorPayload carries structured error details.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ExitError carries an exit code and whether output was already printed.
type ExitError struct {
	Code    int
	Err     error
	Printed bool
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func handleCLIError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Printed {
			return exitErr
		}
		if exitErr.Err != nil {
			err = exitErr.Err
		}
	}

	exitCode := exitCodeFromError(err)
	if exitErr != nil && exitErr.Code != 0 {
		exitCode = exitErr.Code
	}

	if IsJSONOutput() {
		envelope := buildErrorEnvelope(err)
		_ = WriteOutput(os.Stdout, envelope)
	} else {
		fmt.Fprintln(os.Stderr, err.Error())
	}

	return &ExitError{
		Code:    exitCode,
		Err:     err,
		Printed: true,
	}
}

func buildErrorEnvelope(err error) ErrorEnvelope {
	code, hint := classifyCLIError(err)
	return ErrorEnvelope{
		Error: ErrorPayload{
			Code:    code,
			Message: err.Error(),
			Hint:    hint,
		},
	}
}

func classifyCLIError(err error) (code, hint string) {
	var runErr *looprunner.RunError

	switch {
	case errors.Is(err, health.ErrConfigNotFound):
		return "config_not_found", "run 'trainloop init' to create .openagents/project.json"
	case errors.As(err, &runErr):
		return "run_failed", ""
	default:
		return "internal", ""
	}
}

func exitCodeFromError(err error) int {
	var runErr *looprunner.RunError
	if errors.As(err, &runErr) {
		return 2
	}
	return 1
}
