package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dagflow-sched/dagflow/backfill"
	"github.com/dagflow-sched/dagflow/config"
	"github.com/dagflow-sched/dagflow/contracts"
)

func newBackfillCmd() *cobra.Command {
	var (
		configPath   string
		backfillPath string
		only         []string
		startFrom    string
		autoConfirm  bool
		dryRun       bool
		parallelism  int
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Re-run a workflow over a range of historical dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.NewLoader().LoadFromFile(configPath)
			if err != nil {
				return err
			}
			file, err := backfill.LoadParamsFile(backfillPath)
			if err != nil {
				return err
			}

			if len(only) > 0 && startFrom != "" {
				logger.Warn("--only overrides --start-from; start-from is ignored")
			}

			planner := backfill.NewPlanner(
				newEngine(cfg, logger, parallelism),
				backfill.WithLogger(logger),
				backfill.WithConfirm(promptConfirm(cmd.OutOrStdout())),
			)

			summary, err := planner.Run(cmd.Context(), backfill.Request{
				Spec:             file.Spec(),
				DateParamNames:   file.Names(),
				DateParamFormats: file.DateParamFormats,
				CustomParams:     file.Params,
				Factory:          cfg.BuildGraph,
				OnlyTasks:        toTaskIDs(only),
				StartFrom:        contracts.TaskID(startFrom),
				DryRun:           dryRun || file.DryRun,
				AutoConfirm:      autoConfirm,
			})
			if err != nil {
				return err
			}

			switch {
			case summary.Cancelled:
				fmt.Fprintln(cmd.OutOrStdout(), "backfill cancelled")
			case summary.DryRun:
				fmt.Fprintf(cmd.OutOrStdout(), "dry run: %d date points planned\n", summary.Total)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "backfill finished: %d/%d succeeded\n", summary.Succeeded, summary.Total)
			}
			if !summary.OK() && !summary.Cancelled {
				return fmt.Errorf("backfill failed for dates %v", summary.FailedDates)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "workflow configuration file (required)")
	cmd.Flags().StringVar(&backfillPath, "backfill-params", "", "backfill parameter file, JSON or YAML (required)")
	cmd.Flags().StringSliceVar(&only, "only", nil, "execute only these task ids for each date")
	cmd.Flags().StringVar(&startFrom, "start-from", "", "execute this task and its downstream tasks for each date")
	cmd.Flags().BoolVar(&autoConfirm, "auto-confirm", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan the dates and parameters without executing")
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "max concurrent tasks within a level")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("backfill-params")
	return cmd
}

// promptConfirm shows the planned dates and reads a y/n answer from stdin.
func promptConfirm(out io.Writer) backfill.ConfirmFunc {
	return func(plan backfill.PlanInfo) bool {
		fmt.Fprintf(out, "about to backfill %d date points: %s\n", len(plan.Dates), strings.Join(plan.Dates, ", "))
		if len(plan.OnlyTasks) > 0 {
			fmt.Fprintf(out, "scope: only %v\n", plan.OnlyTasks)
		} else if plan.StartFrom != "" {
			fmt.Fprintf(out, "scope: from %s downstream\n", plan.StartFrom)
		}
		fmt.Fprint(out, "continue? [y/N] ")

		answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}
