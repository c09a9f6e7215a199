package main

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/partbench/partbench/internal/runner"
)

// benchSubcommand returns the bench subcommand.
func benchSubcommand(g *globalFlags) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time the quicksort schemes and write the partition and threshold tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			var opts []runner.Option
			if !quiet {
				opts = append(opts, runner.WithProgress(progressBar))
			}
			return runner.New(cfg, opts...).Bench(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&quiet, "quiet", false, "do not draw a progress bar")
	return cmd
}

// progressBar draws a bar on stderr with total steps.
func progressBar(total int) func() {
	bar := progressbar.NewOptions(
		total,
		progressbar.OptionSetDescription("timing"),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetWriter(os.Stderr),
	)
	return func() { _ = bar.Add(1) }
}
