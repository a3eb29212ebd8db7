package backfill

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dagflow-sched/dagflow/contracts"
	"github.com/dagflow-sched/dagflow/dag"
	"github.com/dagflow-sched/dagflow/engine"
	"github.com/dagflow-sched/dagflow/params"
)

// defaultDateParamName names the date parameter when the request declares none.
const defaultDateParamName = "day_id"

// GraphFactory produces a brand-new, independent graph plus its declared
// template parameters. It is invoked once per date point so that no mutable
// state leaks between runs.
type GraphFactory func() (*dag.Graph, map[string]any, error)

// ConfirmFunc is the yes/no gate shown before a backfill loop starts.
type ConfirmFunc func(plan PlanInfo) bool

// PlanInfo summarizes a backfill for the confirmation gate.
type PlanInfo struct {
	Dates          []string
	DateParamNames []string
	OnlyTasks      []contracts.TaskID
	StartFrom      contracts.TaskID
}

// Request describes one backfill: the dates, the parameter wiring, and the
// scope each per-date run executes with.
type Request struct {
	Spec             DateSpec
	DateParamNames   []string
	DateParamFormats map[string]string
	CustomParams     map[string]any
	Factory          GraphFactory

	OnlyTasks []contracts.TaskID
	StartFrom contracts.TaskID

	DryRun      bool
	AutoConfirm bool
}

// Summary aggregates per-date outcomes. The backfill as a whole succeeded
// iff FailedDates is empty.
type Summary struct {
	Total       int
	Succeeded   int
	Failed      int
	FailedDates []string
	DryRun      bool
	Cancelled   bool
}

// OK reports overall success.
func (s *Summary) OK() bool {
	return !s.Cancelled && len(s.FailedDates) == 0
}

// Planner drives repeated, independently-tracked engine runs over a date
// range. Date points execute sequentially; a failing point never blocks
// later ones.
type Planner struct {
	engine  *engine.Engine
	logger  *slog.Logger
	confirm ConfirmFunc
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithLogger injects a structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) PlannerOption {
	return func(p *Planner) { p.logger = logger }
}

// WithConfirm installs the confirmation gate. The default accepts every
// plan, which suits non-interactive library callers; the CLI installs a
// stdin prompt here.
func WithConfirm(confirm ConfirmFunc) PlannerOption {
	return func(p *Planner) { p.confirm = confirm }
}

// NewPlanner creates a Planner that executes runs on eng.
func NewPlanner(eng *engine.Engine, opts ...PlannerOption) *Planner {
	p := &Planner{
		engine:  eng,
		logger:  slog.Default(),
		confirm: func(PlanInfo) bool { return true },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one engine run per planned date point.
//
// For each point it builds the per-date parameter bundle, rewrites template
// parameters whose value is a ${...} date expression against the point
// (rather than against today), merges in custom parameters, and runs a
// fresh graph from the factory. Failures are recorded per date and never
// abort the loop.
func (p *Planner) Run(ctx context.Context, req Request) (*Summary, error) {
	dates, err := Plan(req.Spec)
	if err != nil {
		return nil, err
	}

	names := req.DateParamNames
	if len(names) == 0 {
		names = []string{defaultDateParamName}
	}

	summary := &Summary{Total: len(dates), DryRun: req.DryRun}

	if !req.DryRun && !req.AutoConfirm {
		plan := PlanInfo{
			Dates:          dates,
			DateParamNames: names,
			OnlyTasks:      req.OnlyTasks,
			StartFrom:      req.StartFrom,
		}
		if !p.confirm(plan) {
			p.logger.Info("backfill cancelled at confirmation gate")
			summary.Cancelled = true
			return summary, nil
		}
	}

	for _, date := range dates {
		point, err := time.Parse(DateLayout, date)
		if err != nil {
			// Plan validated the dates; reaching this means a custom list
			// was mutated after planning.
			p.logger.Error("skipping unparsable date point", "date", date, "error", err)
			summary.Failed++
			summary.FailedDates = append(summary.FailedDates, date)
			continue
		}

		graph, templates, err := req.Factory()
		if err != nil {
			p.logger.Error("graph factory failed", "date", date, "error", err)
			summary.Failed++
			summary.FailedDates = append(summary.FailedDates, date)
			continue
		}

		bundle := dateParamBundle(point, names, req.DateParamFormats)
		mergeRewrittenTemplates(bundle, templates, point)
		for k, v := range req.CustomParams {
			bundle[k] = v
		}

		if req.DryRun {
			p.logger.Info("dry run, skipping execution", "date", date, "params", bundle)
			continue
		}

		store := params.New()
		store.Set(bundle)

		_, err = p.engine.Execute(ctx, graph, store, engine.ExecuteOptions{
			OnlyTasks: req.OnlyTasks,
			StartFrom: req.StartFrom,
			DatePoint: date,
		})
		if err != nil {
			p.logger.Error("date point failed", "date", date, "error", err)
			summary.Failed++
			summary.FailedDates = append(summary.FailedDates, date)
			continue
		}
		p.logger.Info("date point succeeded", "date", date)
		summary.Succeeded++
	}

	p.logger.Info("backfill finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"failed_dates", summary.FailedDates,
		"dry_run", summary.DryRun,
	)
	return summary, nil
}

// dateParamBundle formats the date point once per configured parameter name,
// using its declared format token or the default layout, and synthesizes a
// dash-stripped <name>_no_dash variant for each.
func dateParamBundle(point time.Time, names []string, formats map[string]string) map[string]any {
	bundle := make(map[string]any, 2*len(names))
	for _, name := range names {
		value := point.Format(DateLayout)
		if format, ok := formats[name]; ok {
			value = point.Format(params.ConvertLayout(format))
		}
		bundle[name] = value
	}
	for _, name := range names {
		noDash := name + "_no_dash"
		if _, exists := bundle[noDash]; exists {
			continue
		}
		if value, ok := bundle[name].(string); ok {
			bundle[noDash] = strings.ReplaceAll(value, "-", "")
		}
	}
	return bundle
}

// mergeRewrittenTemplates copies template parameters into the bundle,
// re-evaluating any whose raw value is a single ${...} date expression
// against the date point instead of the wall clock. Rewritten date values
// containing dashes also gain a <name>_no_dash variant.
func mergeRewrittenTemplates(bundle map[string]any, templates map[string]any, point time.Time) {
	for key, value := range templates {
		str, ok := value.(string)
		if !ok || !strings.HasPrefix(str, "${") || !strings.HasSuffix(str, "}") {
			bundle[key] = value
			continue
		}
		expr, ok := params.ParseDateExpr(str[2 : len(str)-1])
		if !ok {
			bundle[key] = value
			continue
		}
		rewritten := point.AddDate(0, 0, expr.Days).Format(expr.Layout)
		bundle[key] = rewritten
		if strings.Contains(rewritten, "-") {
			bundle[key+"_no_dash"] = strings.ReplaceAll(rewritten, "-", "")
		}
	}
}
