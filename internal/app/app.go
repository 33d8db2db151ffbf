package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/gridbridge/internal/ctxlog"
	"github.com/vk/gridbridge/internal/engine"
	"github.com/vk/gridbridge/internal/manifest"
)

// App encapsulates the loaded modules, the graph fixture and the engine
// answering queries over them.
type App struct {
	logger *slog.Logger
	config *Config
	module *manifest.Module
	comp   *manifest.Composition
	engine *engine.Engine
}

// New builds the logger, then loads the module manifests and the graph named
// by cfg. Log output goes to logW.
func New(ctx context.Context, logW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	loader := manifest.NewLoader()
	mod, err := loader.LoadModules(ctx, cfg.ModulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}
	comp, err := loader.LoadGraph(ctx, mod, cfg.GraphPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	logger.Debug("Engine configured.", "workers", cfg.Workers)
	return &App{
		logger: logger,
		config: cfg,
		module: mod,
		comp:   comp,
		engine: engine.New(comp.Graph, mod.Catalog, engine.WithWorkers(cfg.Workers)),
	}, nil
}

// Context returns ctx carrying the app's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Engine returns the query engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Module returns the loaded module manifests.
func (a *App) Module() *manifest.Module {
	return a.module
}

// Composition returns the loaded graph.
func (a *App) Composition() *manifest.Composition {
	return a.comp
}
