// Package bundler renders a packaging plan into the external bundler's
// argument vector and runs the tool, streaming its output into the run
// logger. A non-zero exit from the tool is the only hard build failure.
package bundler
