package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagflow-sched/dagflow/config"
	"github.com/dagflow-sched/dagflow/contracts"
	"github.com/dagflow-sched/dagflow/engine"
	"github.com/dagflow-sched/dagflow/params"
)

func newRunCmd() *cobra.Command {
	var (
		configPath  string
		paramsPath  string
		only        []string
		startFrom   string
		endAt       string
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a workflow once",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.NewLoader().LoadFromFile(configPath)
			if err != nil {
				return err
			}

			graph, templates, err := cfg.BuildGraph()
			if err != nil {
				return err
			}

			store := params.New()
			store.Set(templates)
			override, err := loadParamsOverride(paramsPath)
			if err != nil {
				return err
			}
			store.Set(override)

			eng := newEngine(cfg, logger, parallelism)
			_, err = eng.Execute(cmd.Context(), graph, store, engine.ExecuteOptions{
				OnlyTasks:       toTaskIDs(only),
				StartFrom:       contracts.TaskID(startFrom),
				EndAt:           contracts.TaskID(endAt),
				ContinueOnError: !cfg.FailFast(),
			})

			if record, ok := eng.History().Last(); ok {
				fmt.Printf("workflow %s: %s (%d completed, %d uncompleted, took %s)\n",
					cfg.Name, record.Status, len(record.Completed), len(record.Uncompleted), record.Duration)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "workflow configuration file (required)")
	cmd.Flags().StringVar(&paramsPath, "params", "", "JSON file of parameter overrides")
	cmd.Flags().StringSliceVar(&only, "only", nil, "execute only these task ids")
	cmd.Flags().StringVar(&startFrom, "start-from", "", "execute this task and its downstream tasks")
	cmd.Flags().StringVar(&endAt, "end-at", "", "execute up to this task and its upstream tasks")
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "max concurrent tasks within a level")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
