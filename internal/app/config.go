package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PlanPath string // hcl plan file or a directory containing one

	LogFormat  string
	LogLevel   string
	StatusPort int

	DryRun     bool
	SkipLaunch bool
	Watch      bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.PlanPath == "" {
		return nil, errors.New("PlanPath is a required configuration field and cannot be empty")
	}
	if cfg.DryRun && cfg.Watch {
		return nil, errors.New("dry-run and watch modes are mutually exclusive")
	}

	return &cfg, nil
}
