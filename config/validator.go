package config

import (
	"fmt"
	"strings"
)

// Validator checks a WorkflowConfig for structural errors before a graph is
// ever built, so misconfiguration surfaces at load time rather than mid-run.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the configuration and returns the first violation found.
func (v *Validator) Validate(config *WorkflowConfig) error {
	if config.Name == "" {
		return ErrNameEmpty
	}
	if len(config.Tasks) == 0 {
		return ErrNoTasks
	}

	seen := make(map[string]bool, len(config.Tasks))
	for _, task := range config.Tasks {
		if task.TaskID == "" {
			return ErrTaskIDEmpty
		}
		if seen[task.TaskID] {
			return fmt.Errorf("task %s: %w", task.TaskID, ErrTaskIDDuplicate)
		}
		seen[task.TaskID] = true

		if err := v.validateTask(task); err != nil {
			return err
		}
	}

	for _, dep := range config.Dependencies {
		if strings.TrimSpace(dep.From) == "" || strings.TrimSpace(dep.To) == "" {
			return ErrDependencyEmpty
		}
		for _, id := range splitIDList(dep.From) {
			if !seen[id] {
				return fmt.Errorf("from %s: %w", id, ErrDependencyNotFound)
			}
		}
		for _, id := range splitIDList(dep.To) {
			if !seen[id] {
				return fmt.Errorf("to %s: %w", id, ErrDependencyNotFound)
			}
		}
	}

	return nil
}

func (v *Validator) validateTask(task TaskConfig) error {
	switch task.Type {
	case TaskTypeShell:
		if task.Command == "" {
			return fmt.Errorf("task %s: %w", task.TaskID, ErrCommandEmpty)
		}
	case TaskTypeSparkSQL, TaskTypeHiveSQL:
		if task.SQL == "" && task.SQLFile == "" {
			return fmt.Errorf("task %s: %w", task.TaskID, ErrSQLEmpty)
		}
	default:
		return fmt.Errorf("task %s type %q: %w", task.TaskID, task.Type, ErrTaskTypeUnknown)
	}
	return nil
}

// splitIDList splits a comma-separated task id list, trimming whitespace.
func splitIDList(list string) []string {
	parts := strings.Split(list, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := strings.TrimSpace(p); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
