package config

import "context"

// Loader is the interface for a format-specific plan loader. Load reads a
// plan from the given path (a file or a directory containing one),
// translates it into the format-agnostic model, applies defaults and
// validates it.
type Loader interface {
	Load(ctx context.Context, path string) (*Plan, error)
}
