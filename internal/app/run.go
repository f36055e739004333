package app

import (
	"context"
	"fmt"

	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/mz/nerfnavgo/internal/dag"
	"github.com/mz/nerfnavgo/internal/executor"
)

// Run executes the main application logic: build the mission graph and, in
// normal mode, drive it through the concurrent executor.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		server := a.startHealthcheckServer(a.config.HealthcheckPort)
		defer a.stopHealthcheckServer(server)
	}

	a.logger.Debug("Building dependency graph from config model...")
	graph, err := dag.Build(ctx, a.model, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))

	if a.config.ValidateOnly {
		a.logger.Info("🔎 Validate-only mode: resolving training configurations without executing.")
		if err := a.validateMission(ctx); err != nil {
			return err
		}
		a.logger.Info("✅ Mission is valid.", "nodes", len(graph.Nodes))
		return nil
	}

	if len(graph.Nodes) == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
		return nil
	}

	a.logger.Info("🚀 Starting concurrent execution...", "workers", a.config.WorkerCount)
	exec := executor.New(graph, a.config.WorkerCount, a.registry, a.converter)
	if err := exec.Execute(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}
