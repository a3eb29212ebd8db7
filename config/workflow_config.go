// Package config provides static workflow configuration loading, validation,
// and the graph factory that turns a configuration into a dependency graph.
package config

// WorkflowConfig is the root configuration of one workflow.
type WorkflowConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Params are workflow-level template parameters. Values may reference
	// other parameters (${other}) or date expressions (${yyyy-MM-dd-1}).
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`

	Tasks        []TaskConfig       `json:"tasks" yaml:"tasks"`
	Dependencies []DependencyConfig `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Alert        AlertConfig        `json:"alert,omitempty" yaml:"alert,omitempty"`
}

// Task types understood by the factory.
const (
	TaskTypeShell    = "shell"
	TaskTypeSparkSQL = "spark-sql"
	TaskTypeHiveSQL  = "hive-sql"
)

// TaskConfig declares one task of the workflow.
type TaskConfig struct {
	TaskID string `json:"task_id" yaml:"task_id"`
	Type   string `json:"type" yaml:"type"`

	// Shell tasks.
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// SQL tasks: inline statement or file, plus an optional init script.
	SQL        string `json:"sql,omitempty" yaml:"sql,omitempty"`
	SQLFile    string `json:"sql_file,omitempty" yaml:"sql_file,omitempty"`
	InitScript string `json:"init_script,omitempty" yaml:"init_script,omitempty"`

	WorkingDir string         `json:"working_dir,omitempty" yaml:"working_dir,omitempty"`
	Params     map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// DependencyConfig wires upstream tasks to downstream tasks. From and To
// each accept a comma-separated id list; every from-id becomes an upstream
// of every to-id.
type DependencyConfig struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// AlertConfig configures failure alerting and the failure policy.
type AlertConfig struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`

	// FailFast defaults to true when unset.
	FailFast *bool `json:"fail_fast,omitempty" yaml:"fail_fast,omitempty"`
}

// FailFast reports the effective failure policy.
func (c *WorkflowConfig) FailFast() bool {
	if c.Alert.FailFast == nil {
		return true
	}
	return *c.Alert.FailFast
}

// TaskIDs returns the declared task ids in declaration order.
func (c *WorkflowConfig) TaskIDs() []string {
	ids := make([]string, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		ids = append(ids, t.TaskID)
	}
	return ids
}
