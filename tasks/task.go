// Package tasks provides the runnable-unit implementations scheduled by the
// engine: shell commands, SQL-engine invocations, and in-process callables.
package tasks

import (
	"fmt"
	"strings"

	"github.com/dagflow-sched/dagflow/contracts"
)

// Result is the outcome of a process-backed task execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// BaseTask carries the identifier and parameter map shared by all task
// kinds. Embed it and implement Execute.
type BaseTask struct {
	id       contracts.TaskID
	taskType string
	params   map[string]any
}

// NewBaseTask creates the shared task core.
func NewBaseTask(id contracts.TaskID, taskType string, params map[string]any) BaseTask {
	if params == nil {
		params = make(map[string]any)
	}
	return BaseTask{id: id, taskType: taskType, params: params}
}

// ID returns the task identifier.
func (t *BaseTask) ID() contracts.TaskID { return t.id }

// Type returns the task kind, e.g. "shell".
func (t *BaseTask) Type() string { return t.taskType }

// SetParam sets a single task parameter.
func (t *BaseTask) SetParam(key string, value any) {
	t.params[key] = value
}

// Param returns the task parameter under key, or def if absent.
func (t *BaseTask) Param(key string, def any) any {
	if v, ok := t.params[key]; ok {
		return v
	}
	return def
}

// ResolveParams replaces every string-valued parameter with its resolved
// form. Calling it again with an unchanged store is a no-op: resolved
// values contain no further references.
func (t *BaseTask) ResolveParams(resolver contracts.ParamResolver) error {
	for key, value := range t.params {
		str, ok := value.(string)
		if !ok {
			continue
		}
		resolved, err := resolver.Resolve(str)
		if err != nil {
			return fmt.Errorf("param %q: %w", key, err)
		}
		t.params[key] = resolved
	}
	return nil
}

// expandPlaceholders substitutes {params.<key>} placeholders in text with
// the task's parameter values.
func (t *BaseTask) expandPlaceholders(text string) string {
	for key, value := range t.params {
		text = strings.ReplaceAll(text, "{params."+key+"}", fmt.Sprint(value))
	}
	return text
}
