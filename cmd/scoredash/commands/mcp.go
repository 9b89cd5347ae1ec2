package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/scoredash/pkg/config"
	"github.com/Sumatoshi-tech/scoredash/pkg/mcp"
	"github.com/Sumatoshi-tech/scoredash/pkg/observability"
	"github.com/Sumatoshi-tech/scoredash/pkg/report"
	"github.com/Sumatoshi-tech/scoredash/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes one tool:
  - scoredash_summary: statistics, top students and subjects to improve,
    with optional subject and top inputs`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			cfg.Logging.Format = config.LogFormatJSON

			providers, shutdown, err := initObservability(cfg, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer shutdown()

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return fmt.Errorf("create RED metrics: %w", err)
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				DataPath: cfg.Data.Path,
				Report: report.Options{
					TopSubject: cfg.Report.TopSubject,
					TopN:       cfg.Report.TopN,
				},
				Version: version.Version,
				Logger:  providers.Logger,
				Metrics: red,
				Tracer:  providers.Tracer,
			})

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().String(dataFlag, "", dataUsage)

	return cmd
}
