// Package pipeline runs the build sequence: terminate a previous instance,
// clean old output, invoke the bundler, verify the artifact, copy data files
// next to it, and launch it. Execution is strictly sequential; a fatal step
// failure stops the run before anything downstream can touch a possibly
// missing artifact.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vk/packrig/internal/ctxlog"
	"github.com/vk/packrig/internal/events"
)

// ErrSkipped is returned by a step that declines to run (e.g. launch when
// the plan disables it). A skipped step is recorded but never fatal.
var ErrSkipped = errors.New("step skipped")

// Step is one unit of the build sequence. Best-effort steps handle their own
// failures and return nil; ErrSkipped records the step as skipped; any other
// error aborts the run.
type Step interface {
	Name() string
	Run(ctx context.Context) error
}

// StepResult records one executed step.
type StepResult struct {
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Result records one pipeline run.
type Result struct {
	RunID    string       `json:"run_id"`
	Bundle   string       `json:"bundle"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Steps    []StepResult `json:"steps"`
	Err      error        `json:"-"`
}

// OK reports whether the run completed without a fatal step failure.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Runner executes step sequences for one bundle, publishing lifecycle events
// as it goes.
type Runner struct {
	bundle string
	bus    events.Publisher
}

// NewRunner creates a runner for the named bundle.
func NewRunner(bundle string, bus events.Publisher) *Runner {
	return &Runner{bundle: bundle, bus: bus}
}

// Run executes the steps in order. Every run gets a fresh id; the first
// fatal step failure stops the sequence and is recorded on the result.
func (r *Runner) Run(ctx context.Context, steps []Step) *Result {
	result := &Result{
		RunID:   uuid.NewString(),
		Bundle:  r.bundle,
		Started: time.Now().UTC(),
	}

	logger := ctxlog.FromContext(ctx).With("run_id", result.RunID, "bundle", r.bundle)
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Info("🚀 Starting build run.", "steps", len(steps))
	r.bus.Publish(ctx, events.Event{Type: events.RunStarted, RunID: result.RunID, Bundle: r.bundle})

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			result.Err = err
			break
		}

		r.bus.Publish(ctx, events.Event{
			Type: events.StepStarted, RunID: result.RunID, Bundle: r.bundle, Step: step.Name(),
		})
		logger.Debug("Step starting.", "step", step.Name())

		start := time.Now()
		err := step.Run(ctx)
		elapsed := time.Since(start)

		sr := StepResult{Name: step.Name(), Status: events.StatusOK, Duration: elapsed}
		ev := events.Event{
			Type: events.StepFinished, RunID: result.RunID, Bundle: r.bundle,
			Step: step.Name(), Status: events.StatusOK, DurationMS: elapsed.Milliseconds(),
		}
		switch {
		case err == nil:
		case errors.Is(err, ErrSkipped):
			sr.Status = events.StatusSkipped
			ev.Status = events.StatusSkipped
			err = nil
		default:
			sr.Status = events.StatusFailed
			sr.Err = err
			ev.Status = events.StatusFailed
			ev.Error = err.Error()
		}
		result.Steps = append(result.Steps, sr)
		r.bus.Publish(ctx, ev)

		if err != nil {
			logger.Error("Step failed, aborting run.", "step", step.Name(), "error", err)
			result.Err = err
			break
		}
		logger.Debug("Step finished.", "step", step.Name(), "status", sr.Status, "duration", elapsed)
	}

	result.Finished = time.Now().UTC()

	status := events.StatusOK
	if !result.OK() {
		status = events.StatusFailed
	}
	finished := events.Event{
		Type: events.RunFinished, RunID: result.RunID, Bundle: r.bundle,
		Status: status, DurationMS: result.Finished.Sub(result.Started).Milliseconds(),
	}
	if result.Err != nil {
		finished.Error = result.Err.Error()
	}
	r.bus.Publish(ctx, finished)

	if result.OK() {
		logger.Info("🏁 Build run finished.", "duration", result.Finished.Sub(result.Started))
	}
	return result
}
