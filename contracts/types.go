// Package contracts defines the core types and interfaces shared by the
// scheduler packages: task identifiers, run/task states, the runnable-unit
// contract consumed by the execution engine, and the execution record model.
package contracts

// TaskID uniquely identifies a task within a graph.
type TaskID string

// RunID uniquely identifies a single engine run.
type RunID string
