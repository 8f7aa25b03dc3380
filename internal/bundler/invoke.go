package bundler

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vk/packrig/internal/config"
	"github.com/vk/packrig/internal/ctxlog"
)

// ExitError reports a bundler invocation that ran but exited non-zero.
type ExitError struct {
	Command string
	Code    int
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return fmt.Sprintf("bundler %q exited with code %d", e.Command, e.Code)
}

// Invoke runs the bundler described by the plan. The tool's stdout and
// stderr are forwarded line by line to the context logger. Invoke returns an
// *ExitError when the tool exits non-zero and a plain error when it could
// not be started at all.
func Invoke(ctx context.Context, plan *config.Plan) error {
	logger := ctxlog.FromContext(ctx).With("tool", plan.Bundler.Command)

	if plan.Bundler.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, plan.Bundler.Timeout)
		defer cancel()
	}

	command := resolveCommand(plan)
	args := Args(plan)
	logger.Info("🔨 Invoking bundler", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = plan.Workspace.Root

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach to bundler stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to attach to bundler stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start bundler %q: %w", command, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			logger.Info(scanner.Text(), "stream", "stdout")
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			// The bundler writes its progress log to stderr.
			logger.Info(scanner.Text(), "stream", "stderr")
		}
	}()

	wg.Wait()
	err = cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("bundler run aborted: %w", ctxErr)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &ExitError{Command: command, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("bundler %q failed: %w", command, err)
	}

	return nil
}

// resolveCommand turns a relative tool path (e.g. a virtualenv's bin
// directory) into one anchored at the workspace root. Bare command names are
// left for PATH lookup.
func resolveCommand(plan *config.Plan) string {
	command := plan.Bundler.Command
	if strings.ContainsRune(command, '/') || strings.ContainsRune(command, '\\') {
		if !filepath.IsAbs(command) {
			return filepath.Join(plan.Workspace.Root, command)
		}
	}
	return command
}
