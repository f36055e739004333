package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mz/nerfnavgo/internal/config"
	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/mz/nerfnavgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter
	config    *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Fatal startup errors (unreadable config, registry mismatches) panic; the
// CLI boundary recovers them into a clean exit.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Merge the mission, module, and profile paths into a single collection
	// for the loader.
	var configPaths []string
	for _, p := range []string{cfg.MissionPath, cfg.ModulesPath, cfg.ProfilesPath} {
		if p != "" {
			configPaths = append(configPaths, p)
		}
	}

	model, converter, err := loader.Load(ctx, configPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.",
		"steps", len(model.Mission.Steps), "runners", len(model.Runners), "profiles", len(model.Profiles))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	reg.PopulateDefinitionsFromModel(model)
	logger.Debug("Registry definitions populated from config model.")

	if err := reg.ValidateRegistry(ctx); err != nil {
		// A mismatch between manifests and Go code is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:      outW,
		logger:    logger,
		registry:  reg,
		model:     model,
		converter: converter,
		config:    cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
