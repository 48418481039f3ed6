// Package executor runs external commands with deadlines and process-group
// cleanup. It exposes two contracts over the same primitive: Run treats
// non-zero exits as data, RunTool treats them as errors.
package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/OpenAgentsInc/openagents-sub011/internal/logging"
)

const defaultTimeout = 10 * time.Minute

// Input describes one command execution.
type Input struct {
	// Command is passed to bash -c.
	Command string

	// Dir is the working directory; empty means the process default.
	Dir string

	// Timeout bounds the execution; zero applies the executor default.
	Timeout time.Duration

	// MaxOutputBytes caps each captured stream; zero captures everything.
	// Exceeding the cap truncates with an explicit marker.
	MaxOutputBytes int

	// Env entries are appended to the inherited environment.
	Env []string
}

// Result is the outcome of a completed command, including non-zero exits.
type Result struct {
	ExitCode  int           `json:"exit_code"`
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	Duration  time.Duration `json:"duration_ms"`
	Truncated bool          `json:"truncated,omitempty"`
}

// Executor runs commands through a shell with a supervising deadline.
type Executor struct {
	Shell          string
	DefaultTimeout time.Duration
	Logger         zerolog.Logger
}

// New creates an Executor with default settings.
func New() *Executor {
	return &Executor{
		Shell:          "bash",
		DefaultTimeout: defaultTimeout,
		Logger:         logging.Component("executor"),
	}
}

// Run executes the command and returns its result on any exit, including
// non-zero. This is the data-channel contract: the only errors are
// aborted (deadline exceeded) and not_found (shell missing).
func (e *Executor) Run(ctx context.Context, in Input) (*Result, error) {
	timeout := in.Timeout
	if timeout <= 0 {
		timeout = e.DefaultTimeout
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	shell := e.Shell
	if shell == "" {
		shell = "bash"
	}

	cmd := exec.Command(shell, "-c", in.Command)
	cmd.Dir = in.Dir
	if len(in.Env) > 0 {
		cmd.Env = append(os.Environ(), in.Env...)
	}

	// Run the child in its own process group so a timeout can reap the
	// whole tree, not just the immediate child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout := newCappedBuffer(in.MaxOutputBytes)
	stderr := newCappedBuffer(in.MaxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		reason := ReasonCommandFailed
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			reason = ReasonNotFound
		}
		return nil, &ToolError{Reason: reason, Command: in.Command, ExitCode: -1, Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	aborted := false
	select {
	case waitErr = <-done:
	case <-timer.C:
		aborted = true
	case <-ctx.Done():
		aborted = true
	}

	if aborted {
		killProcessGroup(cmd)
		// Reap the child so no zombie is left behind.
		waitErr = <-done
		duration := time.Since(start)
		e.Logger.Warn().
			Str("command", in.Command).
			Dur("after", duration).
			Msg("command aborted by deadline")
		return nil, &ToolError{
			Reason:   ReasonAborted,
			Command:  in.Command,
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      context.DeadlineExceeded,
		}
	}

	result := &Result{
		ExitCode:  exitCodeFromError(waitErr),
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  time.Since(start),
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}

	e.Logger.Debug().
		Str("command", in.Command).
		Int("exit_code", result.ExitCode).
		Dur("duration", result.Duration).
		Msg("command finished")

	return result, nil
}

// RunTool executes the command under the tool contract: a non-zero exit
// is an error with reason command_failed. Some callers want the error
// channel; the health gate wants the data channel. Same primitive.
func (e *Executor) RunTool(ctx context.Context, in Input) (*Result, error) {
	result, err := e.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return result, &ToolError{
			Reason:   ReasonCommandFailed,
			Command:  in.Command,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
		}
	}
	return result, nil
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		return
	}
	_ = cmd.Process.Kill()
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
