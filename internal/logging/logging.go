// Package logging configures zerolog for the trainloop process and hands
// out component-scoped child loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config mirrors config.LoggingConfig without importing it, so logging
// stays a leaf package.
type Config struct {
	Level        string
	Format       string
	File         string
	EnableCaller bool
}

var (
	mu   sync.RWMutex
	base = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
)

// Setup configures the process-wide base logger. Safe to call more than
// once; the last call wins.
func Setup(cfg Config) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var writer io.Writer = os.Stderr
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writer = file
	}

	if strings.EqualFold(cfg.Format, "console") || cfg.Format == "" {
		writer = consoleWriter(writer)
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp()
	if cfg.EnableCaller {
		logger = logger.Caller()
	}

	mu.Lock()
	base = logger.Logger()
	mu.Unlock()
	return nil
}

// Component returns a child logger tagged with a component name.
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", name).Logger()
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

func parseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return parsed, nil
}
