package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mindiv/pkg/mcp"
	"github.com/Sumatoshi-tech/mindiv/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server on stdio",
		Long: `Start a Model Context Protocol server on stdio transport exposing:
  - smallest_with_divisors: Un for a given n
  - divisor_count: d(m), optionally with the divisor list
  - multiplicative_partitions: the factorizations of n and the one yielding Un`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			cfg.Telemetry.LogJSON = true
			if debug {
				cfg.Telemetry.LogLevel = "debug"
			}

			providers, err := initObservability(cfg, observability.ModeMCP, nil, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer shutdown(cmd, providers)

			metrics, err := observability.NewToolMetrics(providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:  providers.Logger,
				Metrics: metrics,
				Tracer:  providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging to stderr")

	return cmd
}
