package health

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/OpenAgentsInc/openagents-sub011/internal/executor"
	"github.com/OpenAgentsInc/openagents-sub011/internal/logging"
	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

// Gate runs the configured health commands for a project root.
type Gate struct {
	Exec           *executor.Executor
	CommandTimeout time.Duration
	MaxOutputBytes int
	Logger         zerolog.Logger
}

// NewGate creates a Gate with default dependencies.
func NewGate(exec *executor.Executor) *Gate {
	return &Gate{
		Exec:   exec,
		Logger: logging.Component("health"),
	}
}

// Check loads the project config under root and runs every configured
// command: all typecheck commands, then all test commands, then all e2e
// commands. Commands run sequentially and none are skipped on failure,
// so one report carries every failing check. The verdict is ok iff every
// exit code is zero.
func (g *Gate) Check(ctx context.Context, root string) (*models.HealthVerdict, error) {
	cfg, err := LoadProjectConfig(root)
	if err != nil {
		return nil, err
	}
	return g.CheckWithConfig(ctx, root, cfg)
}

// CheckWithConfig runs the battery against an already-loaded config.
func (g *Gate) CheckWithConfig(ctx context.Context, root string, cfg *ProjectConfig) (*models.HealthVerdict, error) {
	if g.Exec == nil {
		g.Exec = executor.New()
	}

	batteries := []struct {
		kind     models.CheckKind
		commands []string
	}{
		{models.CheckKindTypecheck, cfg.TypecheckCommands},
		{models.CheckKindTest, cfg.TestCommands},
		{models.CheckKindE2E, cfg.E2ECommands},
	}

	verdict := &models.HealthVerdict{OK: true, Results: make([]models.HealthCheckResult, 0)}
	for _, battery := range batteries {
		for _, command := range battery.commands {
			result := g.runCheck(ctx, root, battery.kind, command)
			if result.ExitCode != 0 {
				verdict.OK = false
			}
			verdict.Results = append(verdict.Results, result)
		}
	}

	g.Logger.Info().
		Bool("ok", verdict.OK).
		Int("checks", len(verdict.Results)).
		Str("root", root).
		Msg("health gate finished")

	return verdict, nil
}

// runCheck executes one command on the data channel. Executor-level
// failures (aborted, not_found) are converted to failing results rather
// than propagated: the gate reports, it does not throw.
func (g *Gate) runCheck(ctx context.Context, root string, kind models.CheckKind, command string) models.HealthCheckResult {
	start := time.Now()
	result, err := g.Exec.Run(ctx, executor.Input{
		Command:        command,
		Dir:            root,
		Timeout:        g.CommandTimeout,
		MaxOutputBytes: g.MaxOutputBytes,
	})
	if err != nil {
		var toolErr *executor.ToolError
		output := err.Error()
		if errors.As(err, &toolErr) && toolErr.Stderr != "" {
			output = toolErr.Stderr
		}
		return models.HealthCheckResult{
			Kind:     kind,
			Command:  command,
			ExitCode: -1,
			Output:   output,
			Duration: time.Since(start),
		}
	}

	output := result.Stdout
	if result.Stderr != "" {
		if output != "" {
			output += "\n"
		}
		output += result.Stderr
	}

	return models.HealthCheckResult{
		Kind:     kind,
		Command:  command,
		ExitCode: result.ExitCode,
		Output:   output,
		Duration: result.Duration,
	}
}
