// Package cli implements the trainloop command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/OpenAgentsInc/openagents-sub011/internal/config"
	"github.com/OpenAgentsInc/openagents-sub011/internal/logging"
)

var (
	// Global flags
	cfgFile    string
	jsonOutput bool
	verbose    bool
	logLevel   string
	logFormat  string

	// Global config loader and config
	configLoader *config.Loader
	appConfig    *config.Config
	logger       zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trainloop",
	Short: "Training loop orchestrator for AI coding agents",
	Long: `Trainloop runs an AI coding agent against benchmark suites in a loop:
each iteration dispatches the agent, records the results, checks workspace
health, and folds failure reflections back into the next attempt's prompt.

Run 'trainloop run' to start a loop against a suite.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute(version, commit, date string) error {
	rootCmd.Version = formatVersion(version, commit, date)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		return handleCLIError(err)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/trainloop/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging format (json, console)")
}

// initConfig loads configuration using Viper with proper precedence:
// defaults < config file < env vars < CLI flags
func initConfig() {
	configLoader = config.NewLoader()

	if cfgFile != "" {
		configLoader.SetConfigFile(cfgFile)
	}

	var err error
	appConfig, err = configLoader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	applyCLIOverrides()
	initLogging()

	if err := appConfig.EnsureDirectories(); err != nil {
		logger.Warn().Err(err).Msg("failed to create directories")
	}
}

func applyCLIOverrides() {
	flags := rootCmd.PersistentFlags()

	if flags.Changed("log-level") {
		appConfig.Logging.Level = logLevel
	} else if verbose {
		appConfig.Logging.Level = "debug"
	}

	if flags.Changed("log-format") {
		appConfig.Logging.Format = logFormat
	}
}

func initLogging() {
	logCfg := logging.Config{
		Level:        appConfig.Logging.Level,
		Format:       appConfig.Logging.Format,
		File:         appConfig.Logging.File,
		EnableCaller: appConfig.Logging.EnableCaller,
	}
	if err := logging.Setup(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %v\n", err)
		os.Exit(1)
	}
	logger = logging.Component("cli")
}

// GetConfig returns the loaded configuration.
// Returns nil if called before initConfig.
func GetConfig() *config.Config {
	return appConfig
}

// IsJSONOutput reports whether --json was requested.
func IsJSONOutput() bool {
	return jsonOutput
}

func formatVersion(version, commit, date string) string {
	out := version
	if commit != "" {
		out += " (" + commit
		if date != "" {
			out += ", " + date
		}
		out += ")"
	}
	return out
}
