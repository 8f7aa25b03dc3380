package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/packrig/internal/config"
	"github.com/vk/packrig/internal/ctxlog"
	"github.com/vk/packrig/internal/fsutil"
	"github.com/vk/packrig/internal/schema"
)

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL plan loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the plan at path, which may be a single .hcl file or a
// directory containing exactly one.
func (l *Loader) Load(ctx context.Context, path string) (*config.Plan, error) {
	logger := ctxlog.FromContext(ctx)

	planFile, err := resolvePlanFile(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Plan file resolved.", "path", planFile)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(planFile)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", planFile, diags)
	}

	planDir, err := filepath.Abs(filepath.Dir(planFile))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plan directory: %w", err)
	}

	var sf schema.Plan
	diags = gohcl.DecodeBody(file.Body, evalContext(planDir), &sf)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", planFile, diags)
	}
	if sf.Bundle == nil {
		return nil, fmt.Errorf("%s: a bundle block is required", planFile)
	}

	plan, err := translate(&sf, planDir)
	if err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", planFile, err)
	}

	config.ApplyDefaults(plan)
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", planFile, err)
	}

	logger.Debug("Plan loaded and validated.", "bundle", plan.Bundle.Name)
	return plan, nil
}

// resolvePlanFile turns a user-supplied path into the single plan file to
// load. A directory must contain exactly one .hcl file.
func resolvePlanFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("plan path %q: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return "", fmt.Errorf("failed to scan %q for plan files: %w", path, err)
	}
	switch len(files) {
	case 0:
		return "", fmt.Errorf("no .hcl plan file found under %q", path)
	case 1:
		return files[0], nil
	default:
		return "", fmt.Errorf("multiple plan files found under %q: %s", path, strings.Join(files, ", "))
	}
}

// evalContext builds the expression evaluation context available to plan
// files: the process environment as `env` and the plan's directory as
// `workdir`.
func evalContext(planDir string) *hcl.EvalContext {
	envVars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			envVars[k] = cty.StringVal(v)
		}
	}

	env := cty.MapValEmpty(cty.String)
	if len(envVars) > 0 {
		env = cty.MapVal(envVars)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":     env,
			"workdir": cty.StringVal(planDir),
		},
	}
}
