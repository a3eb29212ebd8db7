package contracts

import "errors"

// Sentinel errors for the scheduler core.
var (
	// Graph errors
	ErrUnknownNode = errors.New("edge references unknown node")
	ErrCycle       = errors.New("cycle detected in dependency graph")

	// Scope errors
	ErrUnknownTask = errors.New("scope filter references unknown task")

	// Execution errors
	ErrTaskFailed = errors.New("task execution failed")

	// Parameter errors
	ErrCyclicParameter = errors.New("cyclic parameter reference")

	// Backfill errors
	ErrInvalidDateRange = errors.New("invalid backfill date range")

	// Input validation errors
	ErrInvalidInput = errors.New("invalid input: nil or malformed")
)
