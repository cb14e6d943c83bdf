// Package dag holds the dependency graph built from a definition pass.
// The graph records which components feed which, detects cycles, and
// produces the topological levels the executor schedules from.
package dag
