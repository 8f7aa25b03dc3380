// Package config defines the format-agnostic model of a packaging plan,
// along with the Loader interface for reading one from disk.
//
// The `config.Plan` is the single source of truth for the `pipeline`,
// `bundler` and `events` packages. Concrete loader implementations, such as
// for HCL, are provided in separate packages.
package config
