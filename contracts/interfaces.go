package contracts

import (
	"context"
	"time"
)

// ParamResolver is the read-only view of a parameter store that runnable
// units see while resolving their parameters.
type ParamResolver interface {
	// Get returns the raw value stored under name, or def if absent.
	Get(name string, def any) any

	// Resolve substitutes ${...} references in text and returns the result.
	// Unresolved references are left in place; a cyclic reference chain
	// returns ErrCyclicParameter.
	Resolve(text string) (string, error)
}

// Runnable is the unit-of-work contract consumed by the execution engine.
// The engine only ever calls these two methods; new task kinds are additive
// and never require engine changes.
type Runnable interface {
	// ID returns the task identifier, unique within one graph.
	ID() TaskID

	// ResolveParams replaces every string-valued parameter on the task with
	// its resolved form. Must be idempotent for an unchanged store.
	ResolveParams(resolver ParamResolver) error

	// Execute performs the unit of work. upstream holds the results of the
	// task's direct upstream tasks, keyed by task id.
	Execute(ctx context.Context, upstream map[TaskID]any) (any, error)
}

// FailureAlert carries everything a notifier needs to report a failed run.
type FailureAlert struct {
	Workflow    string
	StartTime   time.Time
	FailedTask  TaskID
	Reason      string
	Completed   []TaskID
	Uncompleted []TaskID
	DatePoint   string
}

// Notifier receives failure alerts from the engine. Implementations deliver
// them (webhook, chat, ...); the engine never formats or transmits itself.
type Notifier interface {
	Notify(ctx context.Context, alert FailureAlert) error
}

// NopNotifier discards alerts. It is the engine default so that callers who
// do not care about alerting never depend on delivery machinery.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, FailureAlert) error { return nil }
