package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/partbench/partbench/internal/runner"
)

// stdio selects stdin or stdout in place of a file path.
const stdio = "-"

// deriveSubcommand returns the derive subcommand.
func deriveSubcommand(g *globalFlags) *cobra.Command {
	d := &deriver{g: g}
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Write label,size,speedup for every row of a timing table",
		Long: `derive reads a CSV timing table (label, size, sequential time, parallel
time) and writes label, size and speedup = sequential / parallel for every row,
in input order. A zero parallel time stops the run with an error.`,
		Args: cobra.NoArgs,
		RunE: d.main,
	}
	cmd.Flags().StringVar(&d.input, "input", "", `timing table to read, "-" for stdin (default speedup.input)`)
	cmd.Flags().StringVar(&d.output, "output", "", `speedup table to write, "-" for stdout (default speedup.output)`)
	return cmd
}

type deriver struct {
	g             *globalFlags
	input, output string
}

func (d *deriver) main(cmd *cobra.Command, _ []string) (err error) {
	cfg, _, err := d.g.loadConfig(cmd)
	if err != nil {
		return err
	}
	if d.input != "" {
		cfg.Speedup.Input = d.input
	}
	if d.output != "" {
		cfg.Speedup.Output = d.output
	}
	r := runner.New(cfg)

	if cfg.Speedup.Input != stdio && cfg.Speedup.Output != stdio {
		_, err = r.Derive()
		return err
	}

	in := cmd.InOrStdin()
	if cfg.Speedup.Input != stdio {
		f, err := os.Open(cfg.Speedup.Input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = cmd.OutOrStdout()
	if cfg.Speedup.Output != stdio {
		f, err := os.Create(cfg.Speedup.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		out = f
	}

	_, err = r.DeriveStream(in, out)
	return err
}
