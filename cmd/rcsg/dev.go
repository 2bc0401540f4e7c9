package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aldinh777/rc-template-sg/internal/build"
	"github.com/aldinh777/rc-template-sg/internal/config"
	"github.com/aldinh777/rc-template-sg/internal/dev"
	"github.com/aldinh777/rc-template-sg/internal/errors"
	"github.com/aldinh777/rc-template-sg/internal/metrics"
)

func devCmd() *cobra.Command {
	var (
		port    int
		host    string
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Build the site and serve the output directory.

The dev server watches the source directory, rebuilds the whole site
on every change and refreshes connected browsers.

Features:
  • Rebuild on file change
  • Live reload and error overlay in browser
  • Build metrics at /metrics

Examples:
  rcsg dev
  rcsg dev --port=8080
  rcsg dev --host=0.0.0.0 --no-watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(cfg *config.Config) {
				if port > 0 {
					cfg.Dev.Port = port
				}
				if host != "" {
					cfg.Dev.Host = host
				}
			})
			if err != nil {
				return err
			}

			m := metrics.New(metrics.Config{Namespace: cfg.Metrics.Namespace})
			builder := build.New(cfg, build.Options{
				Logger:  slog.Default().With("component", "build"),
				Metrics: m,
			})

			server := dev.NewServer(dev.ServerOptions{
				Config:   cfg,
				Build:    builder.Build,
				Gatherer: m.Registry(),
				NoWatch:  noWatch,
				Logger:   slog.Default().With("component", "dev"),
				OnBuildComplete: func(result *build.Result, err error) {
					writeMetrics(cfg, m)
					if err != nil {
						errors.PrintError(err)
						return
					}
					success("Built %d pages in %s", len(result.Pages), result.Duration.Round(time.Millisecond))
				},
			})

			fmt.Println()
			info("rcsg dev")
			info("Serving %s at %s", displayPath(cfg, cfg.OutputPath()), cfg.DevURL())
			fmt.Println()

			return server.Start(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from rcsg.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from rcsg.json)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Serve without rebuilding on changes")

	return cmd
}
