package config

import (
	"path/filepath"
	"runtime"
	"time"
)

// Plan is the unified, format-agnostic representation of a packaging plan:
// what to bundle, how to drive the bundler, and what housekeeping surrounds
// a build.
type Plan struct {
	Bundle    *Bundle
	Workspace *Workspace
	Bundler   *Tool
	Launch    *Launch
	Notify    *Notify
}

// Bundle describes the executable to produce.
type Bundle struct {
	// Name is the plan author's label for this bundle, used in logs and events.
	Name string
	// Entry is the script handed to the bundler as the program entry point,
	// relative to the workspace root.
	Entry string
	// OutputName is the base name of the produced executable. The platform
	// suffix (".exe" on Windows) is appended by ArtifactName.
	OutputName string
	// Console controls whether the produced executable keeps a console window.
	Console bool
	// OneFile selects single-file output.
	OneFile bool
	// Compress enables the bundler's payload compression.
	Compress bool
	// Icon is an optional icon file for the executable.
	Icon string
	// Embeds are extra files packed into the bundle.
	Embeds []*Embed
	// Collects are dependencies whose metadata and resource files must be
	// gathered wholesale into the bundle.
	Collects []*Collect
	// Excludes are module paths the bundler must leave out.
	Excludes []string
}

// Embed is a single file packed into the bundle at a target path relative to
// the bundle root.
type Embed struct {
	Source string
	Target string
}

// Collect names one dependency whose package data the bundler must gather in
// full, optionally including its distribution metadata.
type Collect struct {
	Package   string
	Metadata  bool
	Resources bool
}

// Workspace describes the project directory a build runs in.
type Workspace struct {
	// Root is the project directory. Relative plan paths resolve against it.
	Root string
	// OutputDir is where the bundler writes the final executable.
	OutputDir string
	// Clean lists paths (relative to Root) removed before every build.
	Clean []string
	// DataFiles lists files copied from Root into OutputDir after a
	// successful build, each only if it exists beforehand.
	DataFiles []string
}

// Tool describes the external bundler command.
type Tool struct {
	// Command is the bundler executable, resolved via PATH or as a path
	// relative to the workspace root (e.g. a virtualenv interpreter dir).
	Command string
	// ExtraArgs are appended verbatim after the rendered arguments,
	// before the entry script.
	ExtraArgs []string
	// Timeout bounds a single bundler invocation. Zero means no limit.
	Timeout time.Duration
}

// Launch describes what happens to the produced executable around a build.
type Launch struct {
	// Enabled starts the artifact after a successful build.
	Enabled bool
	// KillPrevious terminates a running instance of the output executable
	// before the build begins.
	KillPrevious bool
}

// Notify lists the sinks that receive build lifecycle events.
type Notify struct {
	Webhooks []*Webhook
	SocketIO []*SocketIO
}

// Webhook is an HTTP endpoint that receives each build event as a JSON POST.
type Webhook struct {
	Name    string
	URL     string
	Timeout time.Duration
}

// SocketIO is a socket.io endpoint that receives each build event as an
// emitted message.
type SocketIO struct {
	Name               string
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
}

// ArtifactName returns the platform-specific file name of the produced
// executable.
func (p *Plan) ArtifactName() string {
	name := p.Bundle.OutputName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

// ArtifactPath returns the expected location of the produced executable.
func (p *Plan) ArtifactPath() string {
	return filepath.Join(p.Workspace.Root, p.Workspace.OutputDir, p.ArtifactName())
}

// EntryPath returns the entry script's location on disk.
func (p *Plan) EntryPath() string {
	return filepath.Join(p.Workspace.Root, p.Bundle.Entry)
}
