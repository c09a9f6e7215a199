package main

import (
	"github.com/spf13/cobra"

	"github.com/partbench/partbench/internal/runner"
)

// plotSubcommand returns the plot subcommand.
func plotSubcommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plot [chart...]",
		Short: "Render the named charts, or every configured chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runner.New(cfg).Plot(args...)
		},
	}
}
