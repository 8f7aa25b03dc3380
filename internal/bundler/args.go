package bundler

import (
	"fmt"
	"runtime"

	"github.com/vk/packrig/internal/config"
)

// Args renders the plan into the bundler's argument vector. The rendering is
// deterministic: flags follow the plan's declaration order, and the entry
// script is always last.
func Args(plan *config.Plan) []string {
	return argsWithSep(plan, dataSep())
}

// argsWithSep is the testable core of Args; the embed source/target
// separator is platform-dependent.
func argsWithSep(plan *config.Plan, sep string) []string {
	b := plan.Bundle

	args := []string{"--noconfirm"}
	if b.OneFile {
		args = append(args, "--onefile")
	}
	args = append(args, "--name", b.OutputName)
	if b.Console {
		args = append(args, "--console")
	} else {
		args = append(args, "--noconsole")
	}
	if !b.Compress {
		args = append(args, "--noupx")
	}
	if b.Icon != "" {
		args = append(args, "--icon", b.Icon)
	}

	for _, c := range b.Collects {
		if c.Metadata {
			args = append(args, "--copy-metadata", c.Package)
		}
		if c.Resources {
			args = append(args, "--collect-all", c.Package)
		}
	}
	for _, e := range b.Embeds {
		args = append(args, "--add-data", fmt.Sprintf("%s%s%s", e.Source, sep, e.Target))
	}
	for _, x := range b.Excludes {
		args = append(args, "--exclude-module", x)
	}

	args = append(args, "--distpath", plan.Workspace.OutputDir)
	args = append(args, plan.Bundler.ExtraArgs...)
	args = append(args, b.Entry)

	return args
}

// dataSep returns the separator the bundler expects inside --add-data
// values. Windows uses ";" because ":" collides with drive letters.
func dataSep() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}
