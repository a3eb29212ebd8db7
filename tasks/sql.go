package tasks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/dagflow-sched/dagflow/contracts"
)

// SQLTask submits SQL to an external engine binary (spark-sql, hive, ...)
// via its -e flag. SQL comes either inline or from a file; an optional init
// script is prepended to the statement.
type SQLTask struct {
	BaseTask
	engineBin  string
	sql        string
	sqlFile    string
	initScript string
	workingDir string
}

// SQLOption configures a SQLTask.
type SQLOption func(*SQLTask)

// WithSQLFile reads the statement from a file instead of inline SQL.
func WithSQLFile(path string) SQLOption {
	return func(t *SQLTask) { t.sqlFile = path }
}

// WithInitScript prepends an initialization script to the statement.
func WithInitScript(script string) SQLOption {
	return func(t *SQLTask) { t.initScript = script }
}

// WithSQLWorkingDir sets the engine process working directory.
func WithSQLWorkingDir(dir string) SQLOption {
	return func(t *SQLTask) { t.workingDir = dir }
}

// WithSQLParams seeds the task parameter map.
func WithSQLParams(params map[string]any) SQLOption {
	return func(t *SQLTask) {
		for k, v := range params {
			t.SetParam(k, v)
		}
	}
}

// NewSQLTask creates a SQL task running on the given engine binary.
func NewSQLTask(id contracts.TaskID, engineBin, sql string, opts ...SQLOption) *SQLTask {
	t := &SQLTask{
		BaseTask:  NewBaseTask(id, engineBin, nil),
		engineBin: engineBin,
		sql:       sql,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ResolveParams resolves the parameter map and the inline SQL.
func (t *SQLTask) ResolveParams(resolver contracts.ParamResolver) error {
	if err := t.BaseTask.ResolveParams(resolver); err != nil {
		return err
	}
	resolved, err := resolver.Resolve(t.sql)
	if err != nil {
		return fmt.Errorf("sql: %w", err)
	}
	t.sql = resolved
	return nil
}

// Execute assembles the statement and runs `<engine> -e <statement>`.
func (t *SQLTask) Execute(ctx context.Context, _ map[contracts.TaskID]any) (any, error) {
	statement := t.sql
	if t.sqlFile != "" {
		data, err := os.ReadFile(t.sqlFile)
		if err != nil {
			return nil, fmt.Errorf("reading sql file: %w", err)
		}
		statement = string(data)
	}
	statement = t.expandPlaceholders(statement)
	if t.initScript != "" {
		statement = t.expandPlaceholders(t.initScript) + "\n" + statement
	}
	if statement == "" {
		return nil, fmt.Errorf("task %s has no sql to run", t.ID())
	}

	cmd := exec.CommandContext(ctx, t.engineBin, "-e", statement)
	cmd.Dir = t.workingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return result, fmt.Errorf("%s exited with %d: %s", t.engineBin, result.ExitCode, errTail(result.Stderr))
	}
	return result, nil
}

var _ contracts.Runnable = (*SQLTask)(nil)
