package main

import (
	"github.com/spf13/cobra"

	"github.com/partbench/partbench/internal/runner"
)

// summarizeSubcommand returns the summarize subcommand.
func summarizeSubcommand(g *globalFlags) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Print per-label speedup statistics of a derived speedup table as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			if input == stdio {
				return runner.SummarizeStream(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			if input != "" {
				cfg.Speedup.Output = input
			}
			return runner.New(cfg).Summarize(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&input, "input", "", `speedup table to read, "-" for stdin (default speedup.output)`)
	return cmd
}
