// Package app wires the pipeline-library support layer together: logger,
// handler registry, attached libraries, module resolver, and executor.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/pipelibgo/internal/executor"
	"github.com/vk/pipelibgo/internal/handlers"
	"github.com/vk/pipelibgo/internal/library"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	handlers *handlers.Handlers
	resolver *library.Resolver
	executor *executor.Executor
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and handler
// registry. When no modules are supplied the builtin set is registered.
func NewApp(outW io.Writer, cfg *Config, modules ...handlers.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	hndls := handlers.New()
	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	for _, mod := range modules {
		mod.Register(hndls)
	}
	logger.Debug("All runner handlers registered.", "runners", hndls.Names())

	resolver, err := library.NewResolver(cfg.Libraries, library.NewSearchPaths(cfg.SearchPaths...))
	if err != nil {
		return nil, fmt.Errorf("failed to build module resolver: %w", err)
	}
	logger.Debug("Module resolver ready.", "libraries", len(cfg.Libraries))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		handlers: hndls,
		resolver: resolver,
		executor: executor.New(hndls, resolver),
	}, nil
}

// Executor returns the application's executor. This is primarily for testing.
func (a *App) Executor() *executor.Executor {
	return a.executor
}
