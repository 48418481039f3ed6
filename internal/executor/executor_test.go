package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	exec := New()

	result, err := exec.Run(context.Background(), Input{
		Command: "echo out; echo err >&2; exit 3",
	})
	require.NoError(t, err, "non-zero exit is data, not an error")
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.False(t, result.Truncated)
}

func TestRunZeroExit(t *testing.T) {
	exec := New()

	result, err := exec.Run(context.Background(), Input{Command: "true"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
}

func TestRunRespectsWorkingDirectory(t *testing.T) {
	exec := New()
	dir := t.TempDir()

	result, err := exec.Run(context.Background(), Input{
		Command: "pwd",
		Dir:     dir,
	})
	require.NoError(t, err)
	assert.Equal(t, dir, strings.TrimSpace(result.Stdout))
}

func TestRunTimeoutAborts(t *testing.T) {
	exec := New()

	start := time.Now()
	_, err := exec.Run(context.Background(), Input{
		Command: "sleep 5",
		Timeout: 100 * time.Millisecond,
	})
	elapsed := time.Since(start)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, ReasonAborted, toolErr.Reason)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 2*time.Second, "abort must not wait for the child's own exit")
}

func TestRunContextCancelAborts(t *testing.T) {
	exec := New()
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := exec.Run(ctx, Input{
		Command: "sleep 5",
		Timeout: 10 * time.Second,
	})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, ReasonAborted, toolErr.Reason)
}

func TestRunTimeoutKillsProcessGroup(t *testing.T) {
	exec := New()

	// The inner sleep is a child of the shell; only a process-group kill
	// reaps it before its own exit.
	start := time.Now()
	_, err := exec.Run(context.Background(), Input{
		Command: "bash -c 'sleep 30' & wait",
		Timeout: 100 * time.Millisecond,
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestRunNotFoundShell(t *testing.T) {
	exec := New()
	exec.Shell = "definitely-not-a-shell-48151623"

	_, err := exec.Run(context.Background(), Input{Command: "true"})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, ReasonNotFound, toolErr.Reason)
}

func TestRunTruncatesOutput(t *testing.T) {
	exec := New()

	result, err := exec.Run(context.Background(), Input{
		Command:        "yes x | head -c 4096",
		MaxOutputBytes: 64,
	})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.True(t, strings.HasSuffix(result.Stdout, truncationMarker))
	assert.LessOrEqual(t, len(result.Stdout), 64+len(truncationMarker))
}

func TestRunAppendsEnv(t *testing.T) {
	exec := New()

	result, err := exec.Run(context.Background(), Input{
		Command: "echo -n $TRAINLOOP_TEST_VALUE",
		Env:     []string{"TRAINLOOP_TEST_VALUE=hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Stdout)
}

func TestRunToolNonZeroExitIsError(t *testing.T) {
	exec := New()

	result, err := exec.RunTool(context.Background(), Input{
		Command: "echo boom >&2; exit 7",
	})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, ReasonCommandFailed, toolErr.Reason)
	assert.Equal(t, 7, toolErr.ExitCode)
	assert.Contains(t, toolErr.Stderr, "boom")
	// The result still carries the full capture for callers that want it.
	require.NotNil(t, result)
	assert.Equal(t, 7, result.ExitCode)
}

func TestRunToolZeroExit(t *testing.T) {
	exec := New()

	result, err := exec.RunTool(context.Background(), Input{Command: "echo fine"})
	require.NoError(t, err)
	assert.Equal(t, "fine\n", result.Stdout)
}

func TestIsReason(t *testing.T) {
	err := &ToolError{Reason: ReasonAborted, Command: "sleep 5"}
	assert.True(t, IsReason(err, ReasonAborted))
	assert.False(t, IsReason(err, ReasonCommandFailed))
	assert.False(t, IsReason(errors.New("plain"), ReasonAborted))
}
