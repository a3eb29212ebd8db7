package config

import "errors"

// Sentinel errors for workflow configuration validation.
var (
	// ErrConfigEmpty is returned when the config data is empty (zero bytes).
	ErrConfigEmpty = errors.New("workflow configuration is empty")

	// ErrNameEmpty is returned when name is empty.
	ErrNameEmpty = errors.New("workflow name is required")

	// ErrNoTasks is returned when tasks is empty.
	ErrNoTasks = errors.New("workflow tasks must not be empty")

	// ErrTaskIDEmpty is returned when a task has an empty task_id.
	ErrTaskIDEmpty = errors.New("task_id is required")

	// ErrTaskIDDuplicate is returned when two tasks share a task_id.
	ErrTaskIDDuplicate = errors.New("duplicate task_id")

	// ErrTaskTypeUnknown is returned for an unsupported task type.
	ErrTaskTypeUnknown = errors.New("unknown task type")

	// ErrCommandEmpty is returned when a shell task has no command.
	ErrCommandEmpty = errors.New("shell task requires a command")

	// ErrSQLEmpty is returned when a SQL task has neither sql nor sql_file.
	ErrSQLEmpty = errors.New("sql task requires sql or sql_file")

	// ErrDependencyNotFound is returned when a dependency references an
	// unknown task id.
	ErrDependencyNotFound = errors.New("dependency references unknown task id")

	// ErrDependencyEmpty is returned when a dependency has an empty side.
	ErrDependencyEmpty = errors.New("dependency requires both from and to")
)
