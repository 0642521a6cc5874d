package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mindiv/internal/render"
	"github.com/Sumatoshi-tech/mindiv/pkg/export"
	"github.com/Sumatoshi-tech/mindiv/pkg/observability"
	"github.com/Sumatoshi-tech/mindiv/pkg/resultlog"
)

// Output formats understood by solve and search besides the export formats.
const (
	formatText    = "text"
	formatConsole = "console"
	formatTable   = "table"
)

// ErrInvalidN is returned for an argument that is not a positive integer.
var ErrInvalidN = errors.New("n must be a positive integer")

// NewSolveCommand creates the solve command.
func NewSolveCommand() *cobra.Command {
	var (
		sf     solverFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "solve <n>...",
		Short: "Compute Un for each n",
		Long: `Compute Un, the smallest integer with exactly n divisors, for each argument.

Examples:
  mindiv solve 12
  mindiv solve 1 2 3 4 --format table
  mindiv solve 97 --method bruteforce --limit 1000000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, args, &sf, format)
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, table, csv, json, yaml")

	return cmd
}

func runSolve(cmd *cobra.Command, args []string, sf *solverFlags, format string) error {
	ns, err := parseNs(args)
	if err != nil {
		return err
	}

	if format != formatText && format != formatTable && !export.IsFormat(format) {
		return fmt.Errorf("%w: %q", export.ErrUnknownFormat, format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sf.apply(cmd, cfg)

	err = cfg.Validate()
	if err != nil {
		return err
	}

	providers, err := initObservability(cfg, observability.ModeCLI, nil, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer shutdown(cmd, providers)

	solver, err := newSolver(cfg, providers.Logger)
	if err != nil {
		return err
	}

	records := make([]resultlog.Record, 0, len(ns))

	for _, n := range ns {
		res, solveErr := solver.Solve(cmd.Context(), n)
		if solveErr != nil {
			return solveErr
		}

		records = append(records, resultlog.FromResult(res, time.Time{}))
	}

	return writeRecords(cmd.OutOrStdout(), format, records)
}

func writeRecords(w io.Writer, format string, records []resultlog.Record) error {
	switch format {
	case formatText:
		lw := resultlog.NewWriter(w)
		for _, rec := range records {
			err := lw.Write(rec)
			if err != nil {
				return err
			}
		}

		return lw.Flush()
	case formatTable:
		render.Results(w, records)

		return nil
	default:
		return export.Write(w, format, records)
	}
}

func parseNs(args []string) ([]int, error) {
	ns := make([]int, len(args))

	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidN, arg)
		}

		ns[i] = n
	}

	return ns, nil
}
