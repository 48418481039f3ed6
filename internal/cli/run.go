package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenAgentsInc/openagents-sub011/internal/db"
	"github.com/OpenAgentsInc/openagents-sub011/internal/executor"
	"github.com/OpenAgentsInc/openagents-sub011/internal/harness"
	"github.com/OpenAgentsInc/openagents-sub011/internal/health"
	"github.com/OpenAgentsInc/openagents-sub011/internal/learner"
	"github.com/OpenAgentsInc/openagents-sub011/internal/looprunner"
	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

var runFlags struct {
	suite       string
	suites      []string
	root        string
	iterations  int
	timeout     time.Duration
	haltAfter   int
	passFloor   float64
	requireGate bool
	overnight   bool
	window      int
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the training loop against a benchmark suite",
	Long: `Run dispatches the configured agent against a benchmark suite once per
iteration, recording results and halting on persistent failure or a broken
health gate.

With --suites, suites are run progressively: each must pass the health gate
and the pass-rate floor before the loop advances to the next one.

With --overnight, the loop runs unattended with a larger iteration budget;
interrupt it with Ctrl-C and it stops at the next iteration boundary.`,
	RunE: runLoop,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.suite, "suite", "", "benchmark suite path to run each iteration")
	runCmd.Flags().StringSliceVar(&runFlags.suites, "suites", nil, "ordered suite paths for progressive mode")
	runCmd.Flags().StringVar(&runFlags.root, "root", ".", "workspace root the agent and health gate operate on")
	runCmd.Flags().IntVar(&runFlags.iterations, "iterations", 0, "iteration budget (default from config)")
	runCmd.Flags().DurationVar(&runFlags.timeout, "timeout", 0, "per-iteration timeout (default from config)")
	runCmd.Flags().IntVar(&runFlags.haltAfter, "halt-after", 0, "halt after N consecutive failing iterations (default from config)")
	runCmd.Flags().Float64Var(&runFlags.passFloor, "pass-floor", -1, "pass rate that counts an iteration as succeeding (default from config)")
	runCmd.Flags().BoolVar(&runFlags.requireGate, "require-gate", true, "halt when the health gate fails")
	runCmd.Flags().BoolVar(&runFlags.overnight, "overnight", false, "unattended mode with the overnight iteration budget")
	runCmd.Flags().IntVar(&runFlags.window, "learning-window", 0, "episodes considered when building reflections (default from config)")
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	loopCfg := buildLoopConfig(cmd)
	if err := loopCfg.Validate(); err != nil {
		return err
	}

	root, err := resolveRoot(runFlags.root)
	if err != nil {
		return err
	}

	database, err := db.Open(db.Config{
		Path:          cfg.DatabasePath(),
		MaxOpenConns:  cfg.Database.MaxConnections,
		BusyTimeoutMs: cfg.Database.BusyTimeoutMs,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	runRepo := db.NewRunRecordRepository(database)
	episodeRepo := db.NewEpisodeRepository(database)

	profile, err := profileFromConfig()
	if err != nil {
		return err
	}
	agent := looprunner.NewHarnessRunner(profile, cfg.RunLogDir(), episodeRepo)

	exec := executor.New()
	gate := health.NewGate(exec)
	gate.CommandTimeout = cfg.Executor.CommandTimeout
	gate.MaxOutputBytes = cfg.Executor.MaxOutputBytes

	runner := looprunner.NewRunner(agent, gate, learner.New(episodeRepo), runRepo, root)

	outcome, runErr := runner.Run(ctx, loopCfg)

	if err := WriteOutput(os.Stdout, outcome); err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return &ExitError{Code: 2, Err: runErr}
	}
	return nil
}

func buildLoopConfig(cmd *cobra.Command) models.LoopConfig {
	cfg := GetConfig()

	loopCfg := models.LoopConfig{
		SuitePath:                 runFlags.suite,
		SuiteSequence:             runFlags.suites,
		IterationBudget:           cfg.Loop.IterationBudget,
		PerIterationTimeout:       cfg.Loop.PerIterationTimeout,
		HaltOnConsecutiveFailures: cfg.Loop.HaltOnConsecutiveFailures,
		PassRateFloor:             cfg.Loop.PassRateFloor,
		RequireHealthGate:         cfg.Loop.RequireHealthGate,
		Overnight:                 runFlags.overnight,
		LearningWindow:            cfg.Loop.LearningWindow,
	}

	if runFlags.overnight {
		loopCfg.IterationBudget = cfg.Loop.OvernightIterationBudget
	}
	if runFlags.iterations > 0 {
		loopCfg.IterationBudget = runFlags.iterations
	}
	if runFlags.timeout > 0 {
		loopCfg.PerIterationTimeout = runFlags.timeout
	}
	if runFlags.haltAfter > 0 {
		loopCfg.HaltOnConsecutiveFailures = runFlags.haltAfter
	}
	if runFlags.passFloor >= 0 {
		loopCfg.PassRateFloor = runFlags.passFloor
	}
	if cmd.Flags().Changed("require-gate") {
		loopCfg.RequireHealthGate = runFlags.requireGate
	}
	if cmd.Flags().Changed("learning-window") {
		loopCfg.LearningWindow = runFlags.window
	}

	return loopCfg
}

func profileFromConfig() (models.Profile, error) {
	cfg := GetConfig()

	profile := models.Profile{
		Name:            cfg.Profile.Name,
		Harness:         models.Harness(cfg.Profile.Harness),
		Model:           cfg.Profile.Model,
		CommandTemplate: cfg.Profile.CommandTemplate,
		PromptMode:      models.PromptMode(cfg.Profile.PromptMode),
	}
	if profile.Name == "" {
		profile.Name = "default"
	}
	if profile.CommandTemplate == "" {
		profile.CommandTemplate = harness.DefaultCommandTemplate(profile.Harness, profile.Model)
	}
	if err := profile.Validate(); err != nil {
		return models.Profile{}, fmt.Errorf("invalid profile config: %w", err)
	}
	return profile, nil
}

func resolveRoot(root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("workspace root %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace root %s is not a directory", root)
	}
	return root, nil
}
