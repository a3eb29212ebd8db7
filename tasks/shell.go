package tasks

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dagflow-sched/dagflow/contracts"
)

// ShellTask executes a shell command via `bash -c`. The command may reference
// store parameters as ${name} and task parameters as {params.name}.
type ShellTask struct {
	BaseTask
	command    string
	workingDir string
}

// ShellOption configures a ShellTask.
type ShellOption func(*ShellTask)

// WithWorkingDir sets the command's working directory.
func WithWorkingDir(dir string) ShellOption {
	return func(t *ShellTask) { t.workingDir = dir }
}

// WithParams seeds the task parameter map.
func WithParams(params map[string]any) ShellOption {
	return func(t *ShellTask) {
		for k, v := range params {
			t.SetParam(k, v)
		}
	}
}

// NewShellTask creates a shell task.
func NewShellTask(id contracts.TaskID, command string, opts ...ShellOption) *ShellTask {
	t := &ShellTask{
		BaseTask: NewBaseTask(id, "shell", nil),
		command:  command,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Command returns the current (possibly resolved) command string.
func (t *ShellTask) Command() string { return t.command }

// ResolveParams resolves the parameter map and the command itself.
func (t *ShellTask) ResolveParams(resolver contracts.ParamResolver) error {
	if err := t.BaseTask.ResolveParams(resolver); err != nil {
		return err
	}
	resolved, err := resolver.Resolve(t.command)
	if err != nil {
		return fmt.Errorf("command: %w", err)
	}
	t.command = resolved
	return nil
}

// Execute runs the command and captures its output. A non-zero exit status
// is a failure carrying the tail of stderr.
func (t *ShellTask) Execute(ctx context.Context, _ map[contracts.TaskID]any) (any, error) {
	command := t.expandPlaceholders(t.command)

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
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
		return result, fmt.Errorf("command exited with %d: %s", result.ExitCode, errTail(result.Stderr))
	}
	return result, nil
}

// errTail returns the last few lines of stderr for error messages.
func errTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}

var _ contracts.Runnable = (*ShellTask)(nil)
