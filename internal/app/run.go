package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/packrig/internal/bundler"
	"github.com/vk/packrig/internal/ctxlog"
	"github.com/vk/packrig/internal/pipeline"
	"github.com/vk/packrig/internal/watch"
)

// Run executes the main application logic: one build pass, a dry-run
// rendering, or the watch loop, depending on configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.bus.Close(ctx)

	if a.config.StatusPort > 0 {
		a.startStatusServer(a.config.StatusPort)
	}

	if a.config.DryRun {
		return a.dryRun()
	}

	if a.config.Watch {
		return a.watchLoop(ctx)
	}

	result := a.buildOnce(ctx)
	if !result.OK() {
		return fmt.Errorf("build failed: %w", result.Err)
	}
	return nil
}

// buildOnce runs the pipeline a single time and records the result for the
// status server.
func (a *App) buildOnce(ctx context.Context) *pipeline.Result {
	steps := pipeline.BuildSteps(a.plan, a.config.SkipLaunch)
	result := a.runner.Run(ctx, steps)
	a.setLastResult(result)
	return result
}

// dryRun prints the bundler invocation that a real run would execute,
// without touching the file system or any process.
func (a *App) dryRun() error {
	args := bundler.Args(a.plan)
	fmt.Fprintf(a.outW, "%s %s\n", a.plan.Bundler.Command, strings.Join(args, " "))
	return nil
}

// watchLoop builds once up front, then rebuilds on every settled source
// change until the context is cancelled.
func (a *App) watchLoop(ctx context.Context) error {
	a.buildOnce(ctx)

	err := watch.Run(ctx, a.watchPaths(), watch.DefaultDebounce, func(ctx context.Context) {
		a.logger.Info("🔁 Sources changed, rebuilding.")
		a.buildOnce(ctx)
	})
	if errors.Is(err, context.Canceled) {
		a.logger.Info("Watch mode stopped.")
		return nil
	}
	return err
}

// watchPaths lists the files whose changes should trigger a rebuild: the
// entry script, every embedded file, and every data file.
func (a *App) watchPaths() []string {
	root := a.plan.Workspace.Root
	paths := []string{a.plan.EntryPath()}
	for _, e := range a.plan.Bundle.Embeds {
		paths = append(paths, filepath.Join(root, e.Source))
	}
	for _, df := range a.plan.Workspace.DataFiles {
		paths = append(paths, filepath.Join(root, df))
	}
	return paths
}
