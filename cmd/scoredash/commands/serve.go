package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/scoredash/pkg/chart"
	"github.com/Sumatoshi-tech/scoredash/pkg/config"
	"github.com/Sumatoshi-tech/scoredash/pkg/observability"
	"github.com/Sumatoshi-tech/scoredash/pkg/report"
	"github.com/Sumatoshi-tech/scoredash/pkg/web"
)

// NewServeCommand creates the serve subcommand.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long: `Serve the dashboard on server.host:server.port (default 127.0.0.1:5000).

Every request to / reloads the score table, recomputes the statistics and
redraws both charts into chart.dir, which is served under /static/.
SIGINT or SIGTERM shuts the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			return runServe(cobraCmd, cfg)
		},
	}

	cmd.Flags().String(dataFlag, "", dataUsage)

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	providers, shutdown, err := initObservability(cfg, observability.ModeServe)
	if err != nil {
		return err
	}
	defer shutdown()

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create RED metrics: %w", err)
	}

	pipeline, err := observability.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create pipeline metrics: %w", err)
	}

	renderer, err := chart.NewRenderer(cfg.Chart.Format, cfg.Chart.Theme, cfg.Chart.Dir)
	if err != nil {
		return err
	}

	srv, err := web.New(web.Options{
		Addr:        cfg.Addr(),
		DataPath:    cfg.Data.Path,
		StaticDir:   cfg.Chart.Dir,
		Renderer:    renderer,
		ChartFormat: cfg.Chart.Format,
		Subject:     cfg.Chart.Subject,
		Report: report.Options{
			TopSubject: cfg.Report.TopSubject,
			TopN:       cfg.Report.TopN,
		},
		Logger:       providers.Logger,
		Tracer:       providers.Tracer,
		RED:          red,
		Pipeline:     pipeline,
		Metrics:      providers.MetricsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
