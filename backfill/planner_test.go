package backfill

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagflow-sched/dagflow/contracts"
	"github.com/dagflow-sched/dagflow/dag"
	"github.com/dagflow-sched/dagflow/engine"
)

// probeTask records what a set of parameter expressions resolve to on each
// run, which is the only way to observe the per-date store from outside.
type probeTask struct {
	id    contracts.TaskID
	exprs []string
	seen  *[][]string
	fail  func() error
}

func (p *probeTask) ID() contracts.TaskID { return p.id }

func (p *probeTask) ResolveParams(resolver contracts.ParamResolver) error {
	resolved := make([]string, len(p.exprs))
	for i, expr := range p.exprs {
		out, err := resolver.Resolve(expr)
		if err != nil {
			return err
		}
		resolved[i] = out
	}
	*p.seen = append(*p.seen, resolved)
	return nil
}

func (p *probeTask) Execute(context.Context, map[contracts.TaskID]any) (any, error) {
	if p.fail != nil {
		return nil, p.fail()
	}
	return nil, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func quietPlanner(t *testing.T, opts ...PlannerOption) *Planner {
	t.Helper()
	eng := engine.New("backfill-test", engine.WithLogger(quietLogger()))
	return NewPlanner(eng, append([]PlannerOption{WithLogger(quietLogger())}, opts...)...)
}

// probeFactory returns a factory producing a one-task graph whose probe
// resolves exprs, plus a counter of factory invocations.
func probeFactory(templates map[string]any, seen *[][]string, exprs ...string) (GraphFactory, *int) {
	calls := new(int)
	factory := func() (*dag.Graph, map[string]any, error) {
		*calls++
		g := dag.New()
		g.AddNode(&probeTask{id: "probe", exprs: exprs, seen: seen})
		return g, templates, nil
	}
	return factory, calls
}

func TestRunExecutesEachDateIndependently(t *testing.T) {
	var seen [][]string
	factory, calls := probeFactory(nil, &seen, "${day_id}")

	summary, err := quietPlanner(t).Run(context.Background(), Request{
		Spec:        DateSpec{StartDate: "2024-01-09", EndDate: "2024-01-11"},
		Factory:     factory,
		AutoConfirm: true,
	})
	require.NoError(t, err)

	assert.True(t, summary.OK())
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 3, *calls)
	assert.Equal(t, [][]string{{"2024-01-09"}, {"2024-01-10"}, {"2024-01-11"}}, seen)
}

func TestRunFailingDateDoesNotBlockLaterDates(t *testing.T) {
	boom := errors.New("boom")
	var runs []string
	factory := func() (*dag.Graph, map[string]any, error) {
		g := dag.New()
		var seen [][]string
		g.AddNode(&probeTask{
			id:    "probe",
			exprs: []string{"${day_id}"},
			seen:  &seen,
			fail: func() error {
				runs = append(runs, seen[0][0])
				if seen[0][0] == "2024-01-10" {
					return boom
				}
				return nil
			},
		})
		return g, nil, nil
	}

	summary, err := quietPlanner(t).Run(context.Background(), Request{
		Spec:        DateSpec{StartDate: "2024-01-09", EndDate: "2024-01-11"},
		Factory:     factory,
		AutoConfirm: true,
	})
	require.NoError(t, err)

	assert.False(t, summary.OK())
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"2024-01-10"}, summary.FailedDates)
	assert.Equal(t, []string{"2024-01-09", "2024-01-10", "2024-01-11"}, runs)
}

func TestRunDefaultDateParamWithNoDashVariant(t *testing.T) {
	var seen [][]string
	factory, _ := probeFactory(nil, &seen, "${day_id}", "${day_id_no_dash}")

	summary, err := quietPlanner(t).Run(context.Background(), Request{
		Spec:        DateSpec{CustomDates: []string{"2024-01-09"}},
		Factory:     factory,
		AutoConfirm: true,
	})
	require.NoError(t, err)
	require.True(t, summary.OK())

	require.Len(t, seen, 1)
	assert.Equal(t, []string{"2024-01-09", "20240109"}, seen[0])
}

func TestRunCustomNamesAndFormats(t *testing.T) {
	var seen [][]string
	factory, _ := probeFactory(nil, &seen, "${ds}", "${dt}", "${ds_no_dash}")

	summary, err := quietPlanner(t).Run(context.Background(), Request{
		Spec:             DateSpec{CustomDates: []string{"2024-01-09"}},
		DateParamNames:   []string{"ds", "dt"},
		DateParamFormats: map[string]string{"dt": "yyyyMMdd"},
		Factory:          factory,
		AutoConfirm:      true,
	})
	require.NoError(t, err)
	require.True(t, summary.OK())

	require.Len(t, seen, 1)
	assert.Equal(t, []string{"2024-01-09", "20240109", "20240109"}, seen[0])
}

func TestRunRewritesTemplateDateExpressions(t *testing.T) {
	var seen [][]string
	templates := map[string]any{
		"partition": "${yyyy-MM-dd-1}",
		"literal":   "unchanged",
	}
	factory, _ := probeFactory(templates, &seen, "${partition}", "${partition_no_dash}", "${literal}")

	summary, err := quietPlanner(t).Run(context.Background(), Request{
		Spec:        DateSpec{CustomDates: []string{"2024-01-10"}},
		Factory:     factory,
		AutoConfirm: true,
	})
	require.NoError(t, err)
	require.True(t, summary.OK())

	// The expression is evaluated against the date point, not today.
	require.Len(t, seen, 1)
	assert.Equal(t, []string{"2024-01-09", "20240109", "unchanged"}, seen[0])
}

func TestRunCustomParamsWinOverDateBundle(t *testing.T) {
	var seen [][]string
	factory, _ := probeFactory(map[string]any{"env": "dev"}, &seen, "${day_id}", "${env}")

	summary, err := quietPlanner(t).Run(context.Background(), Request{
		Spec:         DateSpec{CustomDates: []string{"2024-01-09"}},
		CustomParams: map[string]any{"day_id": "pinned", "env": "prod"},
		Factory:      factory,
		AutoConfirm:  true,
	})
	require.NoError(t, err)
	require.True(t, summary.OK())

	require.Len(t, seen, 1)
	assert.Equal(t, []string{"pinned", "prod"}, seen[0])
}

func TestRunDryRunExecutesNothing(t *testing.T) {
	var seen [][]string
	factory, calls := probeFactory(nil, &seen, "${day_id}")

	summary, err := quietPlanner(t).Run(context.Background(), Request{
		Spec:    DateSpec{StartDate: "2024-01-09", EndDate: "2024-01-11"},
		Factory: factory,
		DryRun:  true,
	})
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 3, *calls)
	assert.Empty(t, seen)
}

func TestRunConfirmationGate(t *testing.T) {
	var seen [][]string
	factory, calls := probeFactory(nil, &seen, "${day_id}")

	var gotPlan PlanInfo
	decline := func(plan PlanInfo) bool {
		gotPlan = plan
		return false
	}

	summary, err := quietPlanner(t, WithConfirm(decline)).Run(context.Background(), Request{
		Spec:      DateSpec{StartDate: "2024-01-09", EndDate: "2024-01-10"},
		Factory:   factory,
		StartFrom: "probe",
	})
	require.NoError(t, err)

	assert.True(t, summary.Cancelled)
	assert.False(t, summary.OK())
	assert.Equal(t, 0, *calls)
	assert.Equal(t, []string{"2024-01-09", "2024-01-10"}, gotPlan.Dates)
	assert.Equal(t, []string{"day_id"}, gotPlan.DateParamNames)
	assert.Equal(t, contracts.TaskID("probe"), gotPlan.StartFrom)
}

func TestRunAutoConfirmSkipsGate(t *testing.T) {
	var seen [][]string
	factory, _ := probeFactory(nil, &seen, "${day_id}")

	decline := func(PlanInfo) bool { return false }
	summary, err := quietPlanner(t, WithConfirm(decline)).Run(context.Background(), Request{
		Spec:        DateSpec{CustomDates: []string{"2024-01-09"}},
		Factory:     factory,
		AutoConfirm: true,
	})
	require.NoError(t, err)
	assert.True(t, summary.OK())
	assert.Equal(t, 1, summary.Succeeded)
}

func TestRunInvalidSpec(t *testing.T) {
	factory, _ := probeFactory(nil, &[][]string{}, "${day_id}")

	_, err := quietPlanner(t).Run(context.Background(), Request{
		Spec:        DateSpec{StartDate: "2024-01-10", EndDate: "2024-01-09"},
		Factory:     factory,
		AutoConfirm: true,
	})
	require.ErrorIs(t, err, contracts.ErrInvalidDateRange)
}

func TestRunFactoryErrorCountsAsFailedDate(t *testing.T) {
	factory := func() (*dag.Graph, map[string]any, error) {
		return nil, nil, errors.New("factory broken")
	}

	summary, err := quietPlanner(t).Run(context.Background(), Request{
		Spec:        DateSpec{CustomDates: []string{"2024-01-09", "2024-01-10"}},
		Factory:     factory,
		AutoConfirm: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, []string{"2024-01-09", "2024-01-10"}, summary.FailedDates)
}
