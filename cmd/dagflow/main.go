// Command dagflow runs dependency-graph workflows from configuration files:
// single runs, historical backfills over a date range, and graph inspection.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dagflow-sched/dagflow/alert"
	"github.com/dagflow-sched/dagflow/config"
	"github.com/dagflow-sched/dagflow/contracts"
	"github.com/dagflow-sched/dagflow/engine"
)

func main() {
	root := &cobra.Command{
		Use:           "dagflow",
		Short:         "Dependency-graph job scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newBackfillCmd(), newInfoCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// newEngine builds the engine for a loaded workflow config, wiring the
// webhook notifier when alerting is configured.
func newEngine(cfg *config.WorkflowConfig, logger *slog.Logger, parallelism int) *engine.Engine {
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMaxParallelism(parallelism),
	}
	if cfg.Alert.WebhookURL != "" {
		opts = append(opts, engine.WithNotifier(alert.NewWebhookNotifier(cfg.Alert.WebhookURL)))
	}
	return engine.New(cfg.Name, opts...)
}

// loadParamsOverride reads a JSON file of parameter overrides.
func loadParamsOverride(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading params %s: %w", path, err)
	}
	var override map[string]any
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parsing params %s: %w", path, err)
	}
	return override, nil
}

func toTaskIDs(ids []string) []contracts.TaskID {
	out := make([]contracts.TaskID, len(ids))
	for i, id := range ids {
		out[i] = contracts.TaskID(id)
	}
	return out
}
