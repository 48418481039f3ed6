// Package health runs a project's typecheck/test/e2e battery and reduces
// it to a single pass/fail verdict with full per-check detail.
package health

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ErrConfigNotFound means no project config exists under the project root.
// This is fatal for the health gate: without configured commands there is
// nothing meaningful to gate on.
var ErrConfigNotFound = errors.New("project config not found")

// ProjectConfig supplies the ordered command lists the gate executes.
// The on-disk shape follows .openagents/project.json; unknown fields are
// ignored and missing command lists default to empty (a vacuous pass).
type ProjectConfig struct {
	Version           int      `json:"version" toml:"version"`
	ProjectID         string   `json:"projectId" toml:"project_id"`
	DefaultBranch     string   `json:"defaultBranch" toml:"default_branch"`
	RootDir           string   `json:"rootDir" toml:"root_dir"`
	TypecheckCommands []string `json:"typecheckCommands" toml:"typecheck_commands"`
	TestCommands      []string `json:"testCommands" toml:"test_commands"`
	E2ECommands       []string `json:"e2eCommands" toml:"e2e_commands"`
	MaxRuntimeMinutes int      `json:"maxRuntimeMinutes" toml:"max_runtime_minutes"`
	RunLogDir         string   `json:"runLogDir" toml:"run_log_dir"`
}

const (
	configDirName  = ".openagents"
	jsonConfigName = "project.json"
	tomlConfigName = "project.toml"
)

// LoadProjectConfig reads the project config from root. JSON is the
// primary format with a TOML fallback.
func LoadProjectConfig(root string) (*ProjectConfig, error) {
	jsonPath := filepath.Join(root, configDirName, jsonConfigName)
	if data, err := os.ReadFile(jsonPath); err == nil {
		cfg := defaultProjectConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
		return cfg, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}

	tomlPath := filepath.Join(root, configDirName, tomlConfigName)
	if data, err := os.ReadFile(tomlPath); err == nil {
		cfg := defaultProjectConfig()
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
		}
		return cfg, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", tomlPath, err)
	}

	return nil, fmt.Errorf("%w: looked for %s and %s under %s",
		ErrConfigNotFound, jsonConfigName, tomlConfigName, filepath.Join(root, configDirName))
}

func defaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Version:           1,
		DefaultBranch:     "main",
		RootDir:           ".",
		MaxRuntimeMinutes: 240,
		RunLogDir:         filepath.Join(configDirName, "run-logs"),
	}
}
