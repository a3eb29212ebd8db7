package contracts

import "time"

// ExecutionRecord captures one engine run for the append-only history.
// It is created at run start and immutable once the run ends.
type ExecutionRecord struct {
	RunID     RunID
	Workflow  string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Status    RunStatus

	// Params is the parameter snapshot the run executed with.
	Params map[string]any

	// Requested scope filters.
	StartFrom TaskID
	EndAt     TaskID
	OnlyTasks []TaskID

	// Completed holds task ids in completion order.
	Completed []TaskID

	// FailedTask is the first failed task id, empty on success.
	FailedTask   TaskID
	ErrorMessage string

	// Uncompleted is plannedScope − Completed − {FailedTask}.
	Uncompleted []TaskID

	// DatePoint is set when the run is part of a backfill.
	DatePoint string
}
