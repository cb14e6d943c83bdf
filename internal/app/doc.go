// Package app wires the application together: it loads configuration,
// registers component modules, validates the registry, and drives the
// definition pass and the executor.
package app
