package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading with Viper.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// Load loads configuration with proper precedence:
// defaults < config file < env vars < CLI flags
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	l.setupViper(cfg)

	if err := l.loadConfigFile(); err != nil {
		// Config file is optional, only error if explicitly specified
		if l.configFile != "" {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// expandTilde expands ~ to the user's home directory.
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// expandPaths expands ~ in all path-related config fields.
func expandPaths(cfg *Config) {
	cfg.Global.DataDir = expandTilde(cfg.Global.DataDir)
	cfg.Global.ConfigDir = expandTilde(cfg.Global.ConfigDir)
	cfg.Database.Path = expandTilde(cfg.Database.Path)
	cfg.Logging.File = expandTilde(cfg.Logging.File)
}

// setupViper configures Viper with defaults and environment bindings.
func (l *Loader) setupViper(cfg *Config) {
	v := l.v

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		v.AddConfigPath(filepath.Join(xdgConfig, "trainloop"))
	}

	homeDir, _ := os.UserHomeDir()
	if homeDir != "" {
		v.AddConfigPath(filepath.Join(homeDir, ".config", "trainloop"))
	}

	v.AddConfigPath(".")

	v.SetEnvPrefix("TRAINLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, cfg)
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("global.data_dir", cfg.Global.DataDir)
	v.SetDefault("global.config_dir", cfg.Global.ConfigDir)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.max_connections", cfg.Database.MaxConnections)
	v.SetDefault("database.busy_timeout_ms", cfg.Database.BusyTimeoutMs)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.enable_caller", cfg.Logging.EnableCaller)
	v.SetDefault("loop.iteration_budget", cfg.Loop.IterationBudget)
	v.SetDefault("loop.per_iteration_timeout", cfg.Loop.PerIterationTimeout)
	v.SetDefault("loop.halt_on_consecutive_failures", cfg.Loop.HaltOnConsecutiveFailures)
	v.SetDefault("loop.pass_rate_floor", cfg.Loop.PassRateFloor)
	v.SetDefault("loop.require_health_gate", cfg.Loop.RequireHealthGate)
	v.SetDefault("loop.learning_window", cfg.Loop.LearningWindow)
	v.SetDefault("loop.overnight_iteration_budget", cfg.Loop.OvernightIterationBudget)
	v.SetDefault("executor.command_timeout", cfg.Executor.CommandTimeout)
	v.SetDefault("executor.max_output_bytes", cfg.Executor.MaxOutputBytes)
	v.SetDefault("profile.name", cfg.Profile.Name)
	v.SetDefault("profile.harness", cfg.Profile.Harness)
	v.SetDefault("profile.model", cfg.Profile.Model)
	v.SetDefault("profile.command_template", cfg.Profile.CommandTemplate)
	v.SetDefault("profile.prompt_mode", cfg.Profile.PromptMode)
}

func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}
	return l.v.ReadInConfig()
}
