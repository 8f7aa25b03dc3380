// Package proc provides the two OS process operations a build needs:
// best-effort termination of a previous instance by executable name, and
// fire-and-forget launching of the freshly built artifact.
package proc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/vk/packrig/internal/ctxlog"
)

// TerminateByName force-terminates every process whose executable name
// matches name. A name that matches nothing is not an error; killing by name
// is a coarse heuristic, not a lock.
func TerminateByName(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)

	bin, args, notFoundCode := killCommand(name)
	cmd := exec.CommandContext(ctx, bin, args...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == notFoundCode {
			logger.Debug("No previous instance running.", "name", name)
			return nil
		}
		return fmt.Errorf("failed to terminate %q: %w: %s", name, err, bytes.TrimSpace(out))
	}

	logger.Info("Terminated previous instance.", "name", name)
	return nil
}

// killCommand returns the platform's kill-by-name invocation and the exit
// code that means "no such process".
func killCommand(name string) (bin string, args []string, notFoundCode int) {
	if runtime.GOOS == "windows" {
		return "taskkill", []string{"/F", "/IM", name}, 128
	}
	return "pkill", []string{"-x", strings.TrimSuffix(name, ".exe")}, 1
}

// StartDetached launches the executable at path as an independent process
// with dir as its working directory. The child is placed in its own
// session/process group and is never waited on; it outlives this process.
func StartDetached(ctx context.Context, path, dir string) (int, error) {
	logger := ctxlog.FromContext(ctx)

	// Deliberately not CommandContext: the child must survive our exit.
	cmd := exec.Command(path)
	cmd.Dir = dir
	cmd.SysProcAttr = detachedSysProcAttr()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to launch %q: %w", path, err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release launched process %d: %w", pid, err)
	}

	logger.Info("🚀 Launched artifact", "path", path, "pid", pid)
	return pid, nil
}
