package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/packrig/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("packrig", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
packrig - A declarative packaging orchestrator for bundler-built executables.

Usage:
  packrig [options] [PLAN_PATH]

Arguments:
  PLAN_PATH
    Path to a single .hcl plan file or a directory containing one.

Options:
`)
		flagSet.PrintDefaults()
	}

	planFlag := flagSet.String("plan", "", "Path to the plan file or directory.")
	pFlag := flagSet.String("p", "", "Path to the plan file or directory (shorthand).")
	statusPortFlag := flagSet.Int("status-port", 0, "Port for the HTTP status server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Print the bundler invocation without building anything.")
	skipLaunchFlag := flagSet.Bool("skip-launch", false, "Build without launching the produced executable.")
	watchFlag := flagSet.Bool("watch", false, "Rebuild whenever bundle sources change.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *planFlag != "" {
		path = *planFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Plan path determined.", "path", path)

	if path == "" {
		slog.Debug("No plan path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		PlanPath:   path,
		StatusPort: *statusPortFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		DryRun:     *dryRunFlag,
		SkipLaunch: *skipLaunchFlag,
		Watch:      *watchFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
