// Package hcl implements the config.Loader interface for HCL plan files.
// It resolves a file-or-directory path to a single plan file, decodes it
// against the schema with an evaluation context exposing `env` and
// `workdir`, and translates the result into the format-agnostic model.
package hcl
