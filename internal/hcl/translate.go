package hcl

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/vk/packrig/internal/config"
	"github.com/vk/packrig/internal/schema"
)

// translate converts the decoded HCL schema into the agnostic model. The
// workspace root defaults to the plan file's own directory, so builds behave
// the same no matter where the tool is invoked from.
func translate(sf *schema.Plan, planDir string) (*config.Plan, error) {
	plan := &config.Plan{
		Bundle: &config.Bundle{
			Name:       sf.Bundle.Name,
			Entry:      sf.Bundle.Entry,
			OutputName: sf.Bundle.OutputName,
			Console:    boolOr(sf.Bundle.Console, false),
			OneFile:    boolOr(sf.Bundle.OneFile, true),
			Compress:   boolOr(sf.Bundle.Compress, true),
			Icon:       sf.Bundle.Icon,
			Excludes:   sf.Bundle.Excludes,
		},
	}

	for _, e := range sf.Bundle.Embeds {
		plan.Bundle.Embeds = append(plan.Bundle.Embeds, &config.Embed{
			Source: e.Source,
			Target: e.Target,
		})
	}
	for _, c := range sf.Bundle.Collects {
		plan.Bundle.Collects = append(plan.Bundle.Collects, &config.Collect{
			Package:   c.Package,
			Metadata:  boolOr(c.Metadata, true),
			Resources: boolOr(c.Resources, true),
		})
	}

	ws := &config.Workspace{Root: planDir}
	if sf.Workspace != nil {
		if sf.Workspace.Root != "" {
			ws.Root = sf.Workspace.Root
			if !filepath.IsAbs(ws.Root) {
				ws.Root = filepath.Join(planDir, ws.Root)
			}
		}
		ws.OutputDir = sf.Workspace.OutputDir
		ws.Clean = sf.Workspace.Clean
		ws.DataFiles = sf.Workspace.DataFiles
	}
	plan.Workspace = ws

	if sf.Bundler != nil {
		timeout, err := parseTimeout(sf.Bundler.Timeout, "bundler")
		if err != nil {
			return nil, err
		}
		plan.Bundler = &config.Tool{
			Command:   sf.Bundler.Command,
			ExtraArgs: sf.Bundler.ExtraArgs,
			Timeout:   timeout,
		}
	}

	if sf.Launch != nil {
		plan.Launch = &config.Launch{
			Enabled:      boolOr(sf.Launch.Enabled, true),
			KillPrevious: boolOr(sf.Launch.KillPrevious, true),
		}
	}

	if sf.Notify != nil {
		notify := &config.Notify{}
		for _, w := range sf.Notify.Webhooks {
			timeout, err := parseTimeout(w.Timeout, fmt.Sprintf("webhook %q", w.Name))
			if err != nil {
				return nil, err
			}
			notify.Webhooks = append(notify.Webhooks, &config.Webhook{
				Name:    w.Name,
				URL:     w.URL,
				Timeout: timeout,
			})
		}
		for _, s := range sf.Notify.SocketIO {
			notify.SocketIO = append(notify.SocketIO, &config.SocketIO{
				Name:               s.Name,
				URL:                s.URL,
				Namespace:          s.Namespace,
				Event:              s.Event,
				InsecureSkipVerify: s.InsecureSkipVerify,
			})
		}
		plan.Notify = notify
	}

	return plan, nil
}

func parseTimeout(raw, where string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to parse timeout: %w", where, err)
	}
	return d, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
