package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagflow-sched/dagflow/contracts"
	"github.com/dagflow-sched/dagflow/params"
)

func fixedStore(t *testing.T, values map[string]any) *params.Store {
	t.Helper()
	s := params.New(params.WithClock(func() time.Time {
		return time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	}))
	s.Set(values)
	return s
}

func TestBaseTaskParams(t *testing.T) {
	base := NewBaseTask("t1", "shell", map[string]any{"k": "v"})

	assert.Equal(t, contracts.TaskID("t1"), base.ID())
	assert.Equal(t, "shell", base.Type())
	assert.Equal(t, "v", base.Param("k", "def"))
	assert.Equal(t, "def", base.Param("missing", "def"))

	base.SetParam("k", "updated")
	assert.Equal(t, "updated", base.Param("k", nil))
}

func TestResolveParamsReplacesStrings(t *testing.T) {
	base := NewBaseTask("t1", "shell", map[string]any{
		"table":   "${db}.events",
		"dt":      "${yyyy-MM-dd-1}",
		"retries": 3,
	})
	store := fixedStore(t, map[string]any{"db": "warehouse"})

	require.NoError(t, base.ResolveParams(store))

	assert.Equal(t, "warehouse.events", base.Param("table", nil))
	assert.Equal(t, "2024-01-09", base.Param("dt", nil))
	assert.Equal(t, 3, base.Param("retries", nil))
}

func TestResolveParamsIdempotent(t *testing.T) {
	base := NewBaseTask("t1", "shell", map[string]any{"table": "${db}.events"})
	store := fixedStore(t, map[string]any{"db": "warehouse"})

	require.NoError(t, base.ResolveParams(store))
	first := base.Param("table", nil)
	require.NoError(t, base.ResolveParams(store))

	assert.Equal(t, first, base.Param("table", nil))
}

func TestResolveParamsCyclicError(t *testing.T) {
	base := NewBaseTask("t1", "shell", map[string]any{"bad": "${a}"})
	store := fixedStore(t, map[string]any{"a": "${a}"})

	err := base.ResolveParams(store)
	require.ErrorIs(t, err, contracts.ErrCyclicParameter)
}

func TestFuncTask(t *testing.T) {
	task := NewFuncTask("sum", func(_ context.Context, upstream map[contracts.TaskID]any) (any, error) {
		total := 0
		for _, v := range upstream {
			total += v.(int)
		}
		return total, nil
	})

	assert.Equal(t, contracts.TaskID("sum"), task.ID())
	assert.Equal(t, "func", task.Type())

	result, err := task.Execute(context.Background(), map[contracts.TaskID]any{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, 3, result)
}

func TestFuncTaskError(t *testing.T) {
	boom := errors.New("boom")
	task := NewFuncTask("bad", func(context.Context, map[contracts.TaskID]any) (any, error) {
		return nil, boom
	})

	_, err := task.Execute(context.Background(), nil)
	require.ErrorIs(t, err, boom)
}
