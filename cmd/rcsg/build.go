package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aldinh777/rc-template-sg/internal/build"
	"github.com/aldinh777/rc-template-sg/internal/config"
	"github.com/aldinh777/rc-template-sg/internal/metrics"
)

type buildFlags struct {
	source            string
	output            string
	keepIntermediates bool
	escapeAttrs       bool
	metricsFile       string
}

func (f *buildFlags) apply(cfg *config.Config) {
	if f.source != "" {
		cfg.Source = f.source
	}
	if f.output != "" {
		cfg.Output = f.output
	}
	if f.keepIntermediates {
		cfg.KeepIntermediates = true
	}
	if f.escapeAttrs {
		cfg.Render.EscapeAttributes = true
	}
	if f.metricsFile != "" {
		cfg.Metrics.Textfile = f.metricsFile
	}
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Source directory (default from rcsg.json)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output directory (default from rcsg.json)")
	cmd.Flags().BoolVar(&f.keepIntermediates, "keep-intermediates", false, "Keep compiled modules next to their templates")
	cmd.Flags().BoolVar(&f.escapeAttrs, "escape-attrs", false, "HTML-escape attribute values")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write build metrics to this file")
}

func buildCmd() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the site",
		Long: `Build the site into the output directory.

This command:
  • Empties the output directory
  • Compiles every template to a JavaScript module
  • Renders every page module to HTML
  • Copies every other file unchanged
  • Removes the compiled modules

Examples:
  rcsg build
  rcsg build --source=site --output=public
  rcsg build --escape-attrs --metrics-file=build.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.apply)
			if err != nil {
				return err
			}
			_, err = runBuild(cmd, cfg)
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

func runBuild(cmd *cobra.Command, cfg *config.Config) (*build.Result, error) {
	m := metrics.New(metrics.Config{Namespace: cfg.Metrics.Namespace})

	builder := build.New(cfg, build.Options{
		Logger:  slog.Default().With("component", "build"),
		Metrics: m,
		OnProgress: func(step string) {
			info(step)
		},
	})

	fmt.Println("  Building site...")
	fmt.Println()

	result, err := builder.Build(cmd.Context())
	writeMetrics(cfg, m)
	if err != nil {
		return nil, err
	}

	printSummary(cfg, result)
	return result, nil
}

func writeMetrics(cfg *config.Config, m *metrics.Metrics) {
	path := cfg.MetricsTextfilePath()
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		warn("Could not write metrics to %s: %v", path, err)
	}
}

func printSummary(cfg *config.Config, result *build.Result) {
	fmt.Println()
	success("Build complete in %s", result.Duration.Round(time.Millisecond))
	fmt.Println()
	fmt.Println("  Output:")
	fmt.Printf("    %s/\n", displayPath(cfg, result.Output))
	for _, page := range result.Pages {
		fmt.Printf("    ├── %s\n", page)
	}
	fmt.Printf("    └── %d assets\n", len(result.Assets))
	fmt.Println()
	fmt.Printf("  %d pages, %d assets, %s\n", len(result.Pages), len(result.Assets), formatBytes(result.Bytes))
	fmt.Println()
}

func displayPath(cfg *config.Config, path string) string {
	if rel, err := filepath.Rel(cfg.Dir(), path); err == nil && filepath.IsLocal(rel) {
		return filepath.ToSlash(rel)
	}
	return path
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
