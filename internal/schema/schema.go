// Package schema defines the HCL-facing structure of a packaging plan file.
// It is decoded directly by gohcl and then translated into the
// format-agnostic config model.
package schema

// Plan represents the top-level structure of a plan file.
type Plan struct {
	Bundle    *Bundle    `hcl:"bundle,block"`
	Workspace *Workspace `hcl:"workspace,block"`
	Bundler   *Tool      `hcl:"bundler,block"`
	Launch    *Launch    `hcl:"launch,block"`
	Notify    *Notify    `hcl:"notify,block"`
}

// Bundle represents a `bundle` block: the executable to produce.
type Bundle struct {
	Name       string     `hcl:"name,label"`
	Entry      string     `hcl:"entry"`
	OutputName string     `hcl:"output_name"`
	Console    *bool      `hcl:"console,optional"`
	OneFile    *bool      `hcl:"onefile,optional"`
	Compress   *bool      `hcl:"compress,optional"`
	Icon       string     `hcl:"icon,optional"`
	Excludes   []string   `hcl:"exclude,optional"`
	Embeds     []*Embed   `hcl:"embed,block"`
	Collects   []*Collect `hcl:"collect,block"`
}

// Embed represents an `embed` block: one extra file packed into the bundle.
type Embed struct {
	Source string `hcl:"source"`
	Target string `hcl:"target,optional"`
}

// Collect represents a `collect` block: one dependency gathered wholesale.
type Collect struct {
	Package   string `hcl:"package,label"`
	Metadata  *bool  `hcl:"metadata,optional"`
	Resources *bool  `hcl:"resources,optional"`
}

// Workspace represents the `workspace` block: build-time housekeeping paths.
type Workspace struct {
	Root      string   `hcl:"root,optional"`
	OutputDir string   `hcl:"output_dir,optional"`
	Clean     []string `hcl:"clean,optional"`
	DataFiles []string `hcl:"data_files,optional"`
}

// Tool represents the `bundler` block: the external command to drive.
type Tool struct {
	Command   string   `hcl:"command,optional"`
	ExtraArgs []string `hcl:"extra_args,optional"`
	Timeout   string   `hcl:"timeout,optional"`
}

// Launch represents the `launch` block.
type Launch struct {
	Enabled      *bool `hcl:"enabled,optional"`
	KillPrevious *bool `hcl:"kill_previous,optional"`
}

// Notify represents the `notify` block and its sink blocks.
type Notify struct {
	Webhooks []*Webhook  `hcl:"webhook,block"`
	SocketIO []*SocketIO `hcl:"socketio,block"`
}

// Webhook represents a `webhook` sink block.
type Webhook struct {
	Name    string `hcl:"name,label"`
	URL     string `hcl:"url"`
	Timeout string `hcl:"timeout,optional"`
}

// SocketIO represents a `socketio` sink block.
type SocketIO struct {
	Name               string `hcl:"name,label"`
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}
