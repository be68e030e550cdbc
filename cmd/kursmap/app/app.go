// Package app provides the application context and dependency wiring
// for the kursmap CLI: configuration, logging, and catalog access.
package app

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/hvkurs/kursmap/pkg/catalogs"
	"github.com/hvkurs/kursmap/pkg/errors"
)

// App represents the kursmap application with all its dependencies.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date string) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	return app, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Catalog opens the file-backed catalog at the configured data path,
// creating the directory on first use.
func (a *App) Catalog() (catalogs.Catalog, error) {
	if err := os.MkdirAll(a.config.DataPath, 0o755); err != nil {
		return nil, errors.WrapIO("create", a.config.DataPath, err)
	}
	return catalogs.NewFromPath(a.config.DataPath)
}

// ExitOnError prints an error to stderr and exits with status 1. Meant
// for top-level error handling in main.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
