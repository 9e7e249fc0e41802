// Package cli provides shared helpers for the prism command line:
// output formatting, signal-aware contexts, and command error types.
package cli
