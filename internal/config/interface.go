package config

import "context"

// Loader is the interface for a format-specific configuration loader. The
// HCL implementation lives in the hcl package; tests provide fakes.
type Loader interface {
	// Load reads pipeline and manifest files from the given paths and
	// translates them into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
