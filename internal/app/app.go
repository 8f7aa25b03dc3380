package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vk/packrig/internal/config"
	"github.com/vk/packrig/internal/ctxlog"
	"github.com/vk/packrig/internal/events"
	"github.com/vk/packrig/internal/pipeline"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	plan   *config.Plan
	bus    *events.Bus
	runner *pipeline.Runner

	mu         sync.Mutex
	lastResult *pipeline.Result
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and a loaded,
// validated plan.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	plan, err := loader.Load(ctx, appConfig.PlanPath)
	if err != nil {
		// A failure to load the plan is a fatal startup error.
		panic(fmt.Errorf("failed to load plan: %w", err))
	}
	logger.Debug("Plan loaded and translated into unified model.", "bundle", plan.Bundle.Name)

	bus := events.NewBus(buildSinks(ctx, plan)...)

	return &App{
		outW:   outW,
		logger: logger,
		config: appConfig,
		plan:   plan,
		bus:    bus,
		runner: pipeline.NewRunner(plan.Bundle.Name, bus),
	}
}

// Plan returns the loaded plan. This is primarily for testing.
func (a *App) Plan() *config.Plan {
	return a.plan
}

// buildSinks constructs every notification sink the plan asks for. A sink
// that cannot be set up is logged and skipped; notification never blocks a
// build.
func buildSinks(ctx context.Context, plan *config.Plan) []events.Sink {
	logger := ctxlog.FromContext(ctx)

	var sinks []events.Sink
	for _, w := range plan.Notify.Webhooks {
		sinks = append(sinks, events.NewWebhookSink(w))
	}
	for _, s := range plan.Notify.SocketIO {
		sink, err := events.NewSocketIOSink(ctx, s)
		if err != nil {
			logger.Warn("Skipping unreachable socket.io sink.", "sink", s.Name, "error", err)
			continue
		}
		sinks = append(sinks, sink)
	}
	return sinks
}

func (a *App) setLastResult(r *pipeline.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastResult = r
}

func (a *App) lastRun() *pipeline.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastResult
}
