package app

import (
	"context"
	"fmt"

	"github.com/weftworks/weft/internal/builder"
	"github.com/weftworks/weft/internal/ctxlog"
	"github.com/weftworks/weft/internal/dag"
	"github.com/weftworks/weft/internal/executor"
)

// Run executes the main application logic based on the provided
// configuration: the definition pass, graph construction, and, unless
// validate-only was requested, the execution itself.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.logger.Debug("Running definition pass over config model...")
	res, diags := builder.Build(ctx, a.model, a.registry)
	if diags.HasErrors() {
		return fmt.Errorf("pipeline validation failed: %s", diags.Error())
	}

	graph, err := dag.Build(ctx, res)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", graph.Len())

	if appConfig.ValidateOnly {
		a.logger.Info("✅ Pipeline is valid.", "node_count", graph.Len())
		return nil
	}

	if graph.Len() == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
		return nil
	}

	a.logger.Info("🚀 Starting concurrent execution...")
	exec := executor.New(graph, res, a.registry, appConfig.WorkerCount)
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}
