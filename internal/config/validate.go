package config

import (
	"errors"
	"fmt"
	"strings"
)

// Default values applied to fields the plan leaves unset. They mirror the
// common layout of bundler-driven projects: output under dist/, scratch
// under build/, and a generated descriptor named after the executable.
const (
	DefaultOutputDir = "dist"
	DefaultCommand   = "pyinstaller"
)

// ApplyDefaults fills in every optional section and field of the plan so the
// rest of the application never has to nil-check sections.
func ApplyDefaults(p *Plan) {
	if p.Bundle == nil {
		p.Bundle = &Bundle{}
	}
	if p.Workspace == nil {
		p.Workspace = &Workspace{}
	}
	if p.Bundler == nil {
		p.Bundler = &Tool{}
	}
	if p.Launch == nil {
		p.Launch = &Launch{Enabled: true, KillPrevious: true}
	}
	if p.Notify == nil {
		p.Notify = &Notify{}
	}

	if p.Workspace.Root == "" {
		p.Workspace.Root = "."
	}
	if p.Workspace.OutputDir == "" {
		p.Workspace.OutputDir = DefaultOutputDir
	}
	if p.Workspace.Clean == nil {
		p.Workspace.Clean = []string{"build", DefaultOutputDir, p.Bundle.OutputName + ".spec"}
	}
	if p.Bundler.Command == "" {
		p.Bundler.Command = DefaultCommand
	}
	for _, e := range p.Bundle.Embeds {
		if e.Target == "" {
			e.Target = "."
		}
	}
}

// Validate checks the plan for structural errors. It expects ApplyDefaults
// to have run first.
func (p *Plan) Validate() error {
	var errs []error

	if p.Bundle.Entry == "" {
		errs = append(errs, errors.New("bundle: entry script is required"))
	}
	if p.Bundle.OutputName == "" {
		errs = append(errs, errors.New("bundle: output_name is required"))
	} else if strings.ContainsAny(p.Bundle.OutputName, `/\`) {
		errs = append(errs, fmt.Errorf("bundle: output_name %q must not contain path separators", p.Bundle.OutputName))
	}

	seen := make(map[string]bool, len(p.Bundle.Collects))
	for _, c := range p.Bundle.Collects {
		if c.Package == "" {
			errs = append(errs, errors.New("bundle: collect block requires a package label"))
			continue
		}
		if seen[c.Package] {
			errs = append(errs, fmt.Errorf("bundle: duplicate collect block for package %q", c.Package))
		}
		seen[c.Package] = true
	}

	for i, e := range p.Bundle.Embeds {
		if e.Source == "" {
			errs = append(errs, fmt.Errorf("bundle: embed #%d has no source", i+1))
		}
	}

	for _, w := range p.Notify.Webhooks {
		if w.URL == "" {
			errs = append(errs, fmt.Errorf("notify: webhook %q has no url", w.Name))
		}
	}
	for _, s := range p.Notify.SocketIO {
		if s.URL == "" {
			errs = append(errs, fmt.Errorf("notify: socketio %q has no url", s.Name))
		}
		if s.Event == "" {
			errs = append(errs, fmt.Errorf("notify: socketio %q has no event name", s.Name))
		}
	}

	return errors.Join(errs...)
}
