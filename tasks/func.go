package tasks

import (
	"context"

	"github.com/dagflow-sched/dagflow/contracts"
)

// Func is the signature of an in-process callable task body.
type Func func(ctx context.Context, upstream map[contracts.TaskID]any) (any, error)

// FuncTask wraps an in-process callable as a runnable unit. It is the
// lightest task kind and the one tests reach for.
type FuncTask struct {
	BaseTask
	fn Func
}

// NewFuncTask creates an in-process task.
func NewFuncTask(id contracts.TaskID, fn Func) *FuncTask {
	return &FuncTask{
		BaseTask: NewBaseTask(id, "func", nil),
		fn:       fn,
	}
}

// Execute invokes the callable.
func (t *FuncTask) Execute(ctx context.Context, upstream map[contracts.TaskID]any) (any, error) {
	return t.fn(ctx, upstream)
}

var _ contracts.Runnable = (*FuncTask)(nil)
