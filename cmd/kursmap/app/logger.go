package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/hvkurs/kursmap/pkg/logging"
)

// NewLogger creates a configured logger based on the application
// configuration. Log level precedence (highest to lowest):
//  1. --log-level flag
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. LOG_LEVEL environment variable
//  5. Default (info)
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)

	var logger zerolog.Logger
	if config.LogFormat == "json" {
		logger = logging.NewJSON(os.Stderr)
	} else {
		logger = logging.NewConsole()
	}

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	logger = logger.Level(parsed)

	logging.SetDefault(logger)
	return logger
}

// determineLogLevel resolves the configured log level using the
// documented precedence rules.
func determineLogLevel(config *Config) string {
	if config.LogLevel != "" && config.LogLevel != "info" {
		return validateLogLevel(config.LogLevel)
	}

	if config.Verbose && config.Quiet {
		fmt.Fprintln(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet")
		return "warn"
	}
	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "warn"
	}
	if config.LogLevel != "" {
		return config.LogLevel
	}
	return "info"
}

// validateLogLevel returns a valid level, falling back to info.
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	}
	fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using \"info\"\n", level)
	return "info"
}
