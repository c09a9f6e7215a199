// Command partbench derives parallel speedups from quicksort timing tables,
// produces those tables, and charts the results.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/partbench/partbench/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("partbench failed", "err", err)
		cancel()
		os.Exit(1)
	}
}

// globalFlags holds the flags every subcommand shares.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "partbench",
		Short:         "Quicksort partition benchmarks: timings, speedups and charts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return g.setupLogging()
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", config.DefaultPath, "path to config file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(
		deriveSubcommand(g),
		plotSubcommand(g),
		benchSubcommand(g),
		runSubcommand(g),
		watchSubcommand(g),
		summarizeSubcommand(g),
	)
	return root
}

// setupLogging installs the JSON slog handler. Logs go to stderr so stdout
// stays free for `derive --output -`.
func (g *globalFlags) setupLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", g.logLevel, err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads --config. When the flag was left at its default and the
// file does not exist, the built-in defaults are used and the returned path
// is empty.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, err := config.Load(g.configPath)
	switch {
	case err == nil:
		slog.Debug("config loaded", "path", g.configPath)
		return cfg, g.configPath, nil
	case errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config"):
		slog.Debug("no config file, using defaults", "path", g.configPath)
		return config.Default(), "", nil
	default:
		return nil, "", err
	}
}
