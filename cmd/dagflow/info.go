package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dagflow-sched/dagflow/config"
)

func newInfoCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show a workflow's tasks and execution levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadFromFile(configPath)
			if err != nil {
				return err
			}
			graph, _, err := cfg.BuildGraph()
			if err != nil {
				return err
			}
			levels, err := graph.Levels()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "workflow: %s\n", cfg.Name)
			if cfg.Description != "" {
				fmt.Fprintf(out, "description: %s\n", cfg.Description)
			}
			fmt.Fprintf(out, "tasks: %d\n", graph.Len())
			for i, level := range levels {
				ids := make([]string, len(level))
				for j, id := range level {
					ids[j] = string(id)
				}
				fmt.Fprintf(out, "level %d: %s\n", i, strings.Join(ids, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "workflow configuration file (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
