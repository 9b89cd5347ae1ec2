// Package commands implements the scoredash CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/scoredash/pkg/config"
	"github.com/Sumatoshi-tech/scoredash/pkg/observability"
	"github.com/Sumatoshi-tech/scoredash/pkg/version"
)

const (
	configFlag  = "config"
	configUsage = "config file (default: ./scoredash.yaml or ./config/scoredash.yaml)"
	dataFlag    = "data"
	dataUsage   = "score table to read (CSV or XLSX), overrides data.path"
)

// NewRootCommand builds the scoredash command tree. Running it without a
// subcommand serves the dashboard.
func NewRootCommand() *cobra.Command {
	serve := NewServeCommand()

	rootCmd := &cobra.Command{
		Use:   "scoredash",
		Short: "Student performance dashboard",
		Long: `scoredash loads a table of student scores, computes per-subject
statistics, ranks the top students and serves the result as a web page with
two charts.

Commands:
  serve     Serve the dashboard (default)
  report    Print the statistics in the terminal
  mcp       Expose the report as an MCP tool on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	rootCmd.PersistentFlags().String(configFlag, "", configUsage)
	rootCmd.Flags().AddFlagSet(serve.Flags())

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(NewReportCommand())
	rootCmd.AddCommand(NewMCPCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewVersionCommand creates the version subcommand.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// loadConfig reads the --config and --data flags on cmd and loads the
// configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return nil, fmt.Errorf("read --%s: %w", configFlag, err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if flag := cmd.Flags().Lookup(dataFlag); flag != nil && flag.Changed {
		cfg.Data.Path = flag.Value.String()
	}

	return cfg, nil
}

// initObservability starts the providers for mode. The returned func flushes
// them and logs a failure instead of returning it.
func initObservability(cfg *config.Config, mode observability.AppMode) (observability.Providers, func(), error) {
	providers, err := observability.Init(cfg.Observability(mode, version.Version))
	if err != nil {
		return observability.Providers{}, nil, fmt.Errorf("init observability: %w", err)
	}

	shutdown := func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", slog.Any("error", shutdownErr))
		}
	}

	return providers, shutdown, nil
}
