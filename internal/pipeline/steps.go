package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/packrig/internal/bundler"
	"github.com/vk/packrig/internal/config"
	"github.com/vk/packrig/internal/ctxlog"
	"github.com/vk/packrig/internal/fsutil"
	"github.com/vk/packrig/internal/proc"
)

// BuildSteps assembles the step sequence for one build of the plan. The
// sequence always carries all six steps; terminate and launch skip
// themselves when the plan (or the caller) disables them, so every run
// reports the full contract.
func BuildSteps(plan *config.Plan, skipLaunch bool) []Step {
	return []Step{
		&TerminateStep{Plan: plan},
		&CleanStep{Plan: plan},
		&BundleStep{Plan: plan},
		&VerifyStep{Plan: plan},
		&CopyDataStep{Plan: plan},
		&LaunchStep{Plan: plan, SkipRequested: skipLaunch},
	}
}

// TerminateStep kills a running instance of the output executable so the
// bundler can overwrite it. Best-effort: a failure is logged, never fatal.
type TerminateStep struct {
	Plan *config.Plan
}

func (s *TerminateStep) Name() string { return "terminate" }

func (s *TerminateStep) Run(ctx context.Context) error {
	if !s.Plan.Launch.KillPrevious {
		return ErrSkipped
	}
	if err := proc.TerminateByName(ctx, s.Plan.ArtifactName()); err != nil {
		ctxlog.FromContext(ctx).Warn("Could not terminate previous instance.", "error", err)
	}
	return nil
}

// CleanStep removes the configured scratch paths left over from earlier
// builds. Best-effort: a path that will not go away is logged, never fatal.
type CleanStep struct {
	Plan *config.Plan
}

func (s *CleanStep) Name() string { return "clean" }

func (s *CleanStep) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for _, rel := range s.Plan.Workspace.Clean {
		path := filepath.Join(s.Plan.Workspace.Root, rel)
		if err := fsutil.RemoveAllQuiet(path); err != nil {
			logger.Warn("Could not remove stale build path.", "path", path, "error", err)
			continue
		}
		logger.Debug("Removed stale build path.", "path", path)
	}
	return nil
}

// BundleStep invokes the external bundler. Its failure is the one fatal
// build error.
type BundleStep struct {
	Plan *config.Plan
}

func (s *BundleStep) Name() string { return "bundle" }

func (s *BundleStep) Run(ctx context.Context) error {
	return bundler.Invoke(ctx, s.Plan)
}

// VerifyStep checks that the bundler actually produced the expected
// artifact before anything downstream copies or launches it.
type VerifyStep struct {
	Plan *config.Plan
}

func (s *VerifyStep) Name() string { return "verify" }

func (s *VerifyStep) Run(ctx context.Context) error {
	path := s.Plan.ArtifactPath()
	if !fsutil.Exists(path) {
		return fmt.Errorf("bundler succeeded but artifact %q is missing", path)
	}
	ctxlog.FromContext(ctx).Info("Artifact verified.", "path", path)
	return nil
}

// CopyDataStep copies each configured data file from the workspace root
// into the output directory, but only if it exists beforehand. Absence is
// normal; a copy failure is logged, never fatal.
type CopyDataStep struct {
	Plan *config.Plan
}

func (s *CopyDataStep) Name() string { return "copy-data" }

func (s *CopyDataStep) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	outDir := filepath.Join(s.Plan.Workspace.Root, s.Plan.Workspace.OutputDir)

	for _, rel := range s.Plan.Workspace.DataFiles {
		src := filepath.Join(s.Plan.Workspace.Root, rel)
		if !fsutil.Exists(src) {
			logger.Debug("Data file absent, nothing to copy.", "path", src)
			continue
		}
		dst := filepath.Join(outDir, filepath.Base(rel))
		if err := fsutil.CopyFile(src, dst); err != nil {
			logger.Warn("Could not copy data file.", "path", src, "error", err)
			continue
		}
		logger.Info("Copied data file next to artifact.", "file", filepath.Base(rel))
	}
	return nil
}

// LaunchStep starts the fresh artifact as an unmanaged process.
// SkipRequested carries the -skip-launch flag.
type LaunchStep struct {
	Plan          *config.Plan
	SkipRequested bool
}

func (s *LaunchStep) Name() string { return "launch" }

func (s *LaunchStep) Run(ctx context.Context) error {
	if s.SkipRequested || !s.Plan.Launch.Enabled {
		return ErrSkipped
	}
	dir := filepath.Join(s.Plan.Workspace.Root, s.Plan.Workspace.OutputDir)
	_, err := proc.StartDetached(ctx, s.Plan.ArtifactPath(), dir)
	return err
}
