package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenAgentsInc/openagents-sub011/internal/health"
)

var initFlags struct {
	root  string
	force bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter .openagents/project.json in the workspace",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initFlags.root, "root", ".", "workspace root")
	initCmd.Flags().BoolVar(&initFlags.force, "force", false, "overwrite an existing project config")
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(initFlags.root)
	if err != nil {
		return err
	}

	configDir := filepath.Join(root, ".openagents")
	configPath := filepath.Join(configDir, "project.json")

	if _, err := os.Stat(configPath); err == nil && !initFlags.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", configDir, err)
	}

	projectCfg := health.ProjectConfig{
		Version:           1,
		DefaultBranch:     "main",
		RootDir:           ".",
		TypecheckCommands: []string{"go vet ./..."},
		TestCommands:      []string{"go test ./..."},
		E2ECommands:       []string{},
		MaxRuntimeMinutes: 240,
		RunLogDir:         filepath.Join(".openagents", "run-logs"),
	}

	data, err := json.MarshalIndent(projectCfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project config: %w", err)
	}
	if err := os.WriteFile(configPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	fmt.Printf("wrote %s\n", configPath)
	fmt.Println("edit the command lists to match your project's toolchain")
	return nil
}
