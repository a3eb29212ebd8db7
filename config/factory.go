package config

import (
	"fmt"

	"github.com/dagflow-sched/dagflow/contracts"
	"github.com/dagflow-sched/dagflow/dag"
	"github.com/dagflow-sched/dagflow/tasks"
)

// BuildGraph constructs a fresh dependency graph from the configuration and
// returns it together with a copy of the workflow template parameters.
//
// Each call builds brand-new task objects from the immutable configuration,
// so callers (the backfill planner in particular) get fully independent
// graphs: mutations during one run can never leak into another. The method
// signature matches backfill.GraphFactory.
func (c *WorkflowConfig) BuildGraph() (*dag.Graph, map[string]any, error) {
	graph := dag.New()

	for _, tc := range c.Tasks {
		task, err := buildTask(tc)
		if err != nil {
			return nil, nil, err
		}
		graph.AddNode(task)
	}

	for _, dep := range c.Dependencies {
		// Comma-separated sides wire many-to-many.
		for _, from := range splitIDList(dep.From) {
			for _, to := range splitIDList(dep.To) {
				if err := graph.AddEdge(contracts.TaskID(from), contracts.TaskID(to)); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	templates := make(map[string]any, len(c.Params))
	for k, v := range c.Params {
		templates[k] = v
	}
	return graph, templates, nil
}

func buildTask(tc TaskConfig) (contracts.Runnable, error) {
	id := contracts.TaskID(tc.TaskID)

	switch tc.Type {
	case TaskTypeShell:
		return tasks.NewShellTask(id, tc.Command,
			tasks.WithWorkingDir(tc.WorkingDir),
			tasks.WithParams(tc.Params),
		), nil

	case TaskTypeSparkSQL, TaskTypeHiveSQL:
		engineBin := "spark-sql"
		if tc.Type == TaskTypeHiveSQL {
			engineBin = "hive"
		}
		return tasks.NewSQLTask(id, engineBin, tc.SQL,
			tasks.WithSQLFile(tc.SQLFile),
			tasks.WithInitScript(tc.InitScript),
			tasks.WithSQLWorkingDir(tc.WorkingDir),
			tasks.WithSQLParams(tc.Params),
		), nil

	default:
		return nil, fmt.Errorf("task %s type %q: %w", tc.TaskID, tc.Type, ErrTaskTypeUnknown)
	}
}
