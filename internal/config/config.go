// Package config handles trainloop configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for trainloop.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Loop contains defaults for loop invocations.
	Loop LoopConfig `yaml:"loop" mapstructure:"loop"`

	// Executor contains command execution defaults.
	Executor ExecutorConfig `yaml:"executor" mapstructure:"executor"`

	// Profile is the default agent harness profile.
	Profile ProfileConfig `yaml:"profile" mapstructure:"profile"`
}

// GlobalConfig contains global trainloop settings.
type GlobalConfig struct {
	// DataDir is where trainloop stores its data (default: ~/.local/share/trainloop).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/trainloop).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// MaxConnections is the maximum number of database connections.
	MaxConnections int `yaml:"max_connections" mapstructure:"max_connections"`

	// BusyTimeoutMs is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// LoopConfig contains defaults for loop invocations. Flags override these.
type LoopConfig struct {
	// IterationBudget is the default number of iterations per invocation.
	IterationBudget int `yaml:"iteration_budget" mapstructure:"iteration_budget"`

	// PerIterationTimeout bounds one benchmark invocation.
	PerIterationTimeout time.Duration `yaml:"per_iteration_timeout" mapstructure:"per_iteration_timeout"`

	// HaltOnConsecutiveFailures halts after this many failing iterations in a row.
	HaltOnConsecutiveFailures int `yaml:"halt_on_consecutive_failures" mapstructure:"halt_on_consecutive_failures"`

	// PassRateFloor resets the consecutive-failure counter when met.
	PassRateFloor float64 `yaml:"pass_rate_floor" mapstructure:"pass_rate_floor"`

	// RequireHealthGate halts the loop when the health gate fails.
	RequireHealthGate bool `yaml:"require_health_gate" mapstructure:"require_health_gate"`

	// LearningWindow is how many recent episodes the learner considers.
	LearningWindow int `yaml:"learning_window" mapstructure:"learning_window"`

	// OvernightIterationBudget replaces IterationBudget in overnight mode.
	OvernightIterationBudget int `yaml:"overnight_iteration_budget" mapstructure:"overnight_iteration_budget"`
}

// ExecutorConfig contains command execution defaults.
type ExecutorConfig struct {
	// CommandTimeout is the default per-command timeout.
	CommandTimeout time.Duration `yaml:"command_timeout" mapstructure:"command_timeout"`

	// MaxOutputBytes caps captured output per stream; 0 means unlimited.
	MaxOutputBytes int `yaml:"max_output_bytes" mapstructure:"max_output_bytes"`
}

// ProfileConfig describes the default agent harness profile.
type ProfileConfig struct {
	// Name is the profile display name.
	Name string `yaml:"name" mapstructure:"name"`

	// Harness selects the agent harness (claude, codex, opencode, pi).
	Harness string `yaml:"harness" mapstructure:"harness"`

	// Model is passed to harnesses that take a model argument.
	Model string `yaml:"model" mapstructure:"model"`

	// CommandTemplate overrides the harness default command.
	CommandTemplate string `yaml:"command_template" mapstructure:"command_template"`

	// PromptMode overrides the harness default prompt delivery mode.
	PromptMode string `yaml:"prompt_mode" mapstructure:"prompt_mode"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "trainloop"),
			ConfigDir: filepath.Join(homeDir, ".config", "trainloop"),
		},
		Database: DatabaseConfig{
			Path:           "", // Will be set to DataDir/trainloop.db
			MaxConnections: 10,
			BusyTimeoutMs:  5000,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		Loop: LoopConfig{
			IterationBudget:           5,
			PerIterationTimeout:       30 * time.Minute,
			HaltOnConsecutiveFailures: 3,
			PassRateFloor:             0.5,
			RequireHealthGate:         true,
			LearningWindow:            20,
			OvernightIterationBudget:  50,
		},
		Executor: ExecutorConfig{
			CommandTimeout: 10 * time.Minute,
			MaxOutputBytes: 0,
		},
		Profile: ProfileConfig{
			Name:    "default",
			Harness: "claude",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Global.DataDir == "" {
		return fmt.Errorf("global.data_dir is required")
	}
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database.max_connections must be >= 1")
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	if c.Loop.IterationBudget < 1 {
		return fmt.Errorf("loop.iteration_budget must be >= 1")
	}
	if c.Loop.HaltOnConsecutiveFailures < 1 {
		return fmt.Errorf("loop.halt_on_consecutive_failures must be >= 1")
	}
	if c.Loop.PassRateFloor < 0 || c.Loop.PassRateFloor > 1 {
		return fmt.Errorf("loop.pass_rate_floor must be between 0 and 1")
	}
	return nil
}

// DatabasePath returns the configured database path, defaulting to
// DataDir/trainloop.db.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "trainloop.db")
}

// RunLogDir is where per-run harness output logs are written.
func (c *Config) RunLogDir() string {
	return filepath.Join(c.Global.DataDir, "runs")
}

// EnsureDirectories creates the data and config directories if missing.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
		c.RunLogDir(),
		filepath.Dir(c.DatabasePath()),
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
