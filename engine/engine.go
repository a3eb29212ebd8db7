// Package engine implements the execution engine: scoped, leveled dispatch
// of a dependency graph with upstream-result propagation, fail-fast control,
// and execution-history recording.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dagflow-sched/dagflow/contracts"
	"github.com/dagflow-sched/dagflow/dag"
	"github.com/dagflow-sched/dagflow/params"
)

// Engine executes dependency graphs. One Engine serves one named workflow
// and accumulates its run history; individual runs are independent.
type Engine struct {
	workflow       string
	logger         *slog.Logger
	notifier       contracts.Notifier
	metrics        *Metrics
	maxParallelism int
	history        *History
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger injects a structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithNotifier injects the failure-alert sink. Defaults to a no-op.
func WithNotifier(n contracts.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithMaxParallelism bounds concurrent task execution within one level.
// Values below 1 fall back to sequential execution.
func WithMaxParallelism(n int) Option {
	return func(e *Engine) { e.maxParallelism = n }
}

// WithMetrics attaches Prometheus instrumentation. Defaults to none.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine for the named workflow.
func New(workflow string, opts ...Option) *Engine {
	e := &Engine{
		workflow:       workflow,
		logger:         slog.Default(),
		notifier:       contracts.NopNotifier{},
		maxParallelism: 1,
		history:        NewHistory(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxParallelism < 1 {
		e.maxParallelism = 1
	}
	return e
}

// History returns the append-only run history of this engine.
func (e *Engine) History() *History {
	return e.history
}

// ExecuteOptions narrow one run to a subset of the graph.
type ExecuteOptions struct {
	// StartFrom restricts the scope to the task and its downstream closure.
	StartFrom contracts.TaskID

	// EndAt restricts the scope to the task and its upstream closure.
	EndAt contracts.TaskID

	// OnlyTasks restricts the scope to exactly these tasks. When set,
	// StartFrom and EndAt are ignored: an explicit subset wins.
	OnlyTasks []contracts.TaskID

	// ContinueOnError keeps scheduling remaining in-scope tasks after a
	// failure instead of aborting the run. Downstream tasks of the failed
	// one are still attempted; they are not auto-skipped.
	ContinueOnError bool

	// DatePoint marks the logical date when the run is part of a backfill.
	DatePoint string
}

// batchResult is the outcome of one task dispatched within a level.
type batchResult struct {
	id        contracts.TaskID
	result    any
	err       error
	attempted bool
}

// Execute runs the graph with the given parameter store and scope filters.
//
// Levels execute in order with a full barrier between them; tasks within a
// level may run concurrently up to the configured parallelism. The returned
// map holds the results of all successfully completed tasks. An
// ExecutionRecord is appended to the history whether the run succeeds or
// fails, and the first failure is returned after recording.
func (e *Engine) Execute(ctx context.Context, g *dag.Graph, store *params.Store, opts ExecuteOptions) (map[contracts.TaskID]any, error) {
	if g == nil || store == nil {
		return nil, contracts.ErrInvalidInput
	}

	start := time.Now()
	record := contracts.ExecutionRecord{
		RunID:     contracts.RunID(uuid.NewString()),
		Workflow:  e.workflow,
		StartTime: start,
		Status:    contracts.RunRunning,
		Params:    store.Snapshot(),
		StartFrom: opts.StartFrom,
		EndAt:     opts.EndAt,
		OnlyTasks: opts.OnlyTasks,
		DatePoint: opts.DatePoint,
	}

	e.logger.Info("workflow run started",
		"workflow", e.workflow,
		"run_id", record.RunID,
		"date_point", opts.DatePoint,
	)

	results, runErr := e.run(ctx, g, store, opts, &record)

	record.EndTime = time.Now()
	record.Duration = record.EndTime.Sub(record.StartTime)
	if runErr != nil {
		record.Status = contracts.RunFailed
	} else {
		record.Status = contracts.RunSuccess
	}
	e.history.append(record)
	e.observeRun(record)

	if runErr != nil {
		e.logger.Error("workflow run failed",
			"workflow", e.workflow,
			"run_id", record.RunID,
			"failed_task", record.FailedTask,
			"error", record.ErrorMessage,
			"duration", record.Duration,
		)
		if record.FailedTask != "" {
			e.notify(ctx, record)
		}
		return results, runErr
	}

	e.logger.Info("workflow run succeeded",
		"workflow", e.workflow,
		"run_id", record.RunID,
		"completed", len(record.Completed),
		"duration", record.Duration,
	)
	return results, nil
}

// run drives the leveled execution loop, filling in the record as it goes.
func (e *Engine) run(ctx context.Context, g *dag.Graph, store *params.Store, opts ExecuteOptions, record *contracts.ExecutionRecord) (map[contracts.TaskID]any, error) {
	levels, err := g.Levels()
	if err != nil {
		record.ErrorMessage = err.Error()
		return nil, err
	}

	scope, err := e.computeScope(g, opts)
	if err != nil {
		record.ErrorMessage = err.Error()
		return nil, err
	}

	results := make(map[contracts.TaskID]any)
	var firstFailure error

	for i, level := range levels {
		members := make([]contracts.TaskID, 0, len(level))
		for _, id := range level {
			if _, ok := scope[id]; ok {
				members = append(members, id)
			}
		}
		if len(members) == 0 {
			continue
		}

		e.logger.Info("executing level", "workflow", e.workflow, "level", i, "tasks", members)

		batch := e.executeBatch(ctx, g, store, members, results, opts.ContinueOnError)

		for _, br := range batch {
			if !br.attempted {
				continue
			}
			if br.err != nil {
				if firstFailure == nil {
					record.FailedTask = br.id
					record.ErrorMessage = br.err.Error()
					firstFailure = fmt.Errorf("task %s: %v: %w", br.id, br.err, contracts.ErrTaskFailed)
				}
				if !opts.ContinueOnError {
					// Fail-fast: later results in this batch are discarded.
					break
				}
				continue
			}
			if firstFailure != nil && !opts.ContinueOnError {
				break
			}
			results[br.id] = br.result
			record.Completed = append(record.Completed, br.id)
		}

		if firstFailure != nil && !opts.ContinueOnError {
			break
		}
	}

	record.Uncompleted = uncompleted(scope, record.Completed, record.FailedTask)
	return results, firstFailure
}

// executeBatch dispatches one level's in-scope tasks with bounded
// parallelism. Results come back in the order of members; merging them into
// run state is the caller's job, keeping side-effects deterministic.
func (e *Engine) executeBatch(ctx context.Context, g *dag.Graph, store *params.Store, members []contracts.TaskID, prior map[contracts.TaskID]any, continueOnError bool) []batchResult {
	batch := make([]batchResult, len(members))

	var aborted atomic.Bool
	var grp errgroup.Group
	grp.SetLimit(e.maxParallelism)

	for i, id := range members {
		i, id := i, id
		upstream := e.upstreamResults(g, id, prior)
		grp.Go(func() error {
			// Abort stops dispatching queued tasks; running ones finish.
			if ctx.Err() != nil || (!continueOnError && aborted.Load()) {
				batch[i] = batchResult{id: id}
				return nil
			}

			batch[i] = e.executeTask(ctx, g.Task(id), store, upstream)
			if batch[i].err != nil && !continueOnError {
				aborted.Store(true)
			}
			return nil
		})
	}
	_ = grp.Wait()
	return batch
}

// executeTask resolves a task's parameters and runs it, timing the call.
func (e *Engine) executeTask(ctx context.Context, task contracts.Runnable, store *params.Store, upstream map[contracts.TaskID]any) batchResult {
	id := task.ID()
	start := time.Now()
	e.logger.Info("task started", "workflow", e.workflow, "task", id)

	br := batchResult{id: id, attempted: true}
	if err := task.ResolveParams(store); err != nil {
		br.err = fmt.Errorf("resolving params: %w", err)
	} else {
		br.result, br.err = task.Execute(ctx, upstream)
	}

	elapsed := time.Since(start)
	if br.err != nil {
		e.logger.Error("task failed", "workflow", e.workflow, "task", id, "error", br.err, "duration", elapsed)
		e.observeTask(contracts.TaskFailed, elapsed)
	} else {
		e.logger.Info("task succeeded", "workflow", e.workflow, "task", id, "duration", elapsed)
		e.observeTask(contracts.TaskSuccess, elapsed)
	}
	return br
}

// upstreamResults assembles the subset of prior results keyed by the task's
// direct upstream ids.
func (e *Engine) upstreamResults(g *dag.Graph, id contracts.TaskID, prior map[contracts.TaskID]any) map[contracts.TaskID]any {
	upstream := make(map[contracts.TaskID]any)
	for _, dep := range g.DirectUpstream(id) {
		if result, ok := prior[dep]; ok {
			upstream[dep] = result
		}
	}
	return upstream
}

// computeScope applies the scope filters. OnlyTasks wins over StartFrom and
// EndAt; otherwise the full node set is intersected with the start task's
// downstream closure and the end task's upstream closure.
func (e *Engine) computeScope(g *dag.Graph, opts ExecuteOptions) (map[contracts.TaskID]struct{}, error) {
	scope := make(map[contracts.TaskID]struct{})

	if len(opts.OnlyTasks) > 0 {
		for _, id := range opts.OnlyTasks {
			if !g.Contains(id) {
				return nil, fmt.Errorf("task %s: %w", id, contracts.ErrUnknownTask)
			}
			scope[id] = struct{}{}
		}
		return scope, nil
	}

	for _, id := range g.TaskIDs() {
		scope[id] = struct{}{}
	}

	if opts.StartFrom != "" {
		downstream, err := g.DownstreamClosure(opts.StartFrom)
		if err != nil {
			return nil, fmt.Errorf("start task %s: %w", opts.StartFrom, contracts.ErrUnknownTask)
		}
		downstream[opts.StartFrom] = struct{}{}
		scope = intersect(scope, downstream)
	}

	if opts.EndAt != "" {
		upstream, err := g.UpstreamClosure(opts.EndAt)
		if err != nil {
			return nil, fmt.Errorf("end task %s: %w", opts.EndAt, contracts.ErrUnknownTask)
		}
		upstream[opts.EndAt] = struct{}{}
		scope = intersect(scope, upstream)
	}

	return scope, nil
}

// notify forwards the terminal failure to the configured alert sink.
func (e *Engine) notify(ctx context.Context, record contracts.ExecutionRecord) {
	alert := contracts.FailureAlert{
		Workflow:    e.workflow,
		StartTime:   record.StartTime,
		FailedTask:  record.FailedTask,
		Reason:      record.ErrorMessage,
		Completed:   record.Completed,
		Uncompleted: record.Uncompleted,
		DatePoint:   record.DatePoint,
	}
	if err := e.notifier.Notify(ctx, alert); err != nil {
		e.logger.Warn("failure alert delivery failed", "workflow", e.workflow, "error", err)
	}
}

func (e *Engine) observeRun(record contracts.ExecutionRecord) {
	if e.metrics == nil {
		return
	}
	e.metrics.RunsTotal.WithLabelValues(record.Status.String()).Inc()
	e.metrics.RunDurationSeconds.WithLabelValues(record.Status.String()).Observe(record.Duration.Seconds())
}

func (e *Engine) observeTask(status contracts.TaskStatus, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.TasksTotal.WithLabelValues(status.String()).Inc()
	e.metrics.TaskDurationSeconds.WithLabelValues(status.String()).Observe(elapsed.Seconds())
}

func intersect(a, b map[contracts.TaskID]struct{}) map[contracts.TaskID]struct{} {
	out := make(map[contracts.TaskID]struct{})
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// uncompleted computes plannedScope − completed − {failedTask}, sorted.
func uncompleted(scope map[contracts.TaskID]struct{}, completed []contracts.TaskID, failed contracts.TaskID) []contracts.TaskID {
	done := make(map[contracts.TaskID]struct{}, len(completed)+1)
	for _, id := range completed {
		done[id] = struct{}{}
	}
	if failed != "" {
		done[failed] = struct{}{}
	}
	var out []contracts.TaskID
	for id := range scope {
		if _, ok := done[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
