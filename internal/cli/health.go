package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenAgentsInc/openagents-sub011/internal/executor"
	"github.com/OpenAgentsInc/openagents-sub011/internal/health"
	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

var healthFlags struct {
	root string
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run the project's health battery and report the verdict",
	Long: `Health runs every configured typecheck, test, and e2e command for the
workspace and reports a single verdict. All commands run even when earlier
ones fail, so one report carries every failing check.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVar(&healthFlags.root, "root", ".", "workspace root containing .openagents/project.json")
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	root, err := resolveRoot(healthFlags.root)
	if err != nil {
		return err
	}

	gate := health.NewGate(executor.New())
	gate.CommandTimeout = cfg.Executor.CommandTimeout
	gate.MaxOutputBytes = cfg.Executor.MaxOutputBytes

	verdict, err := gate.Check(cmd.Context(), root)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		if err := WriteOutput(os.Stdout, verdict); err != nil {
			return err
		}
	} else {
		printVerdict(verdict)
	}

	if !verdict.OK {
		return &ExitError{Code: 2, Err: fmt.Errorf("health gate failed: %d failing checks", len(verdict.FailingResults())), Printed: true}
	}
	return nil
}

func printVerdict(verdict *models.HealthVerdict) {
	status := "ok"
	if !verdict.OK {
		status = "failing"
	}
	fmt.Printf("health: %s (%d checks)\n", status, len(verdict.Results))
	for _, result := range verdict.Results {
		mark := "pass"
		if result.ExitCode != 0 {
			mark = fmt.Sprintf("fail (exit %d)", result.ExitCode)
		}
		fmt.Printf("  [%s] %s: %s (%.1fs)\n", result.Kind, result.Command, mark, result.Duration.Seconds())
		if result.ExitCode != 0 && result.Output != "" {
			for _, line := range strings.Split(strings.TrimSpace(result.Output), "\n") {
				fmt.Printf("      %s\n", line)
			}
		}
	}
}
