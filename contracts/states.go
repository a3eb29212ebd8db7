package contracts

// RunStatus represents the terminal status of an engine run.
type RunStatus int

const (
	RunPending RunStatus = iota
	RunRunning
	RunSuccess
	RunFailed
)

func (s RunStatus) String() string {
	switch s {
	case RunPending:
		return "PENDING"
	case RunRunning:
		return "RUNNING"
	case RunSuccess:
		return "SUCCESS"
	case RunFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// TaskStatus represents the state of a single task within a run.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskSuccess
	TaskFailed
	TaskSkipped
)

func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "PENDING"
	case TaskRunning:
		return "RUNNING"
	case TaskSuccess:
		return "SUCCESS"
	case TaskFailed:
		return "FAILED"
	case TaskSkipped:
		return "SKIPPED"
	default:
		return "UNKNOWN"
	}
}
