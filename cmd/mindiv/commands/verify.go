package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mindiv/internal/render"
	"github.com/Sumatoshi-tech/mindiv/pkg/bruteforce"
	"github.com/Sumatoshi-tech/mindiv/pkg/config"
	"github.com/Sumatoshi-tech/mindiv/pkg/observability"
	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
)

const (
	defaultVerifyEnd   = 32
	defaultVerifyLimit = 100_000_000
)

// ErrVerificationFailed is returned when any n disagrees across methods.
var ErrVerificationFailed = errors.New("verification failed")

// NewVerifyCommand creates the verify command.
func NewVerifyCommand() *cobra.Command {
	var (
		start, end int
		sf         solverFlags
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check rules and enumeration against brute force",
		Long: `For each n in the range, compute Un with the closed-form rules, with the
partition enumeration and with a brute-force scan, and report whether they
agree. Brute-force scans stop at candidates above --limit (100,000,000
unless configured); values that hit the limit are reported as skipped.

Examples:
  mindiv verify --end 64
  mindiv verify --start 100 --end 200 --limit 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, start, end, &sf)
		},
	}

	sf.register(cmd)
	cmd.Flags().IntVar(&start, "start", 1, "first n")
	cmd.Flags().IntVar(&end, "end", defaultVerifyEnd, "last n")

	return cmd
}

func runVerify(cmd *cobra.Command, start, end int, sf *solverFlags) error {
	if start < 1 || end < start {
		return fmt.Errorf("%w: [%d, %d]", config.ErrInvalidRange, start, end)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.BruteForce.Limit == 0 {
		cfg.BruteForce.Limit = defaultVerifyLimit
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

	results := make([]sequence.Verification, 0, end-start+1)
	skipped := 0

	for n := start; n <= end; n++ {
		v, verifyErr := solver.Verify(cmd.Context(), n)

		switch {
		case errors.Is(verifyErr, bruteforce.ErrLimitExceeded):
			skipped++

			providers.Logger.Info("brute force skipped", "n", n, "limit", cfg.BruteForce.Limit)

			continue
		case errors.Is(verifyErr, sequence.ErrMismatch):
			providers.Logger.Warn("mismatch", "n", n, "error", verifyErr)
		case verifyErr != nil:
			return verifyErr
		}

		results = append(results, v)
	}

	out := cmd.OutOrStdout()
	render.Verifications(out, results)

	if skipped > 0 {
		color.New(color.FgYellow).Fprintf(out, "%d value(s) skipped: brute force passed %d\n",
			skipped, cfg.BruteForce.Limit)
	}

	for _, v := range results {
		if !v.Agree {
			color.New(color.FgRed).Fprintf(out, "n=%d: methods disagree\n", v.N)

			return fmt.Errorf("%w: n=%d", ErrVerificationFailed, v.N)
		}
	}

	color.New(color.FgGreen).Fprintf(out, "all %d verified values agree\n", len(results))

	return nil
}
