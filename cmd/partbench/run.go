package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/partbench/partbench/internal/runner"
)

// runSubcommand returns the run subcommand.
func runSubcommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Bench (when enabled), derive, then plot every chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := runner.New(cfg).Run(cmd.Context()); err != nil {
				return err
			}
			slog.Info("run complete")
			return nil
		},
	}
}

// watchSubcommand returns the watch subcommand.
func watchSubcommand(g *globalFlags) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run, then run again whenever the config or an input changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cfgPath, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			var opts []runner.Option
			if !quiet {
				opts = append(opts, runner.WithProgress(progressBar))
			}
			return runner.Watch(cmd.Context(), cfgPath, cfg, func(err error) {
				if err != nil {
					slog.Error("run failed", "err", err)
					return
				}
				slog.Info("run complete")
			}, opts...)
		},
	}
	cmd.Flags().BoolVar(&quiet, "quiet", false, "do not draw a progress bar when benchmarking")
	return cmd
}
