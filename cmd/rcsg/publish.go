package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aldinh777/rc-template-sg/internal/config"
	"github.com/aldinh777/rc-template-sg/internal/publish"
)

func publishCmd() *cobra.Command {
	var (
		bucket   string
		prefix   string
		region   string
		endpoint string
		rebuild  bool
		flags    buildFlags
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the output directory to S3",
		Long: `Upload every file of the output directory to an S3 bucket.

Credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
AWS_SESSION_TOKEN. --endpoint targets S3-compatible stores such as MinIO.

Examples:
  rcsg publish --bucket=my-site
  rcsg publish --build --prefix=preview/
  rcsg publish --endpoint=http://localhost:9000 --bucket=site`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(cfg *config.Config) {
				flags.apply(cfg)
				if bucket != "" {
					cfg.Publish.Bucket = bucket
				}
				if prefix != "" {
					cfg.Publish.Prefix = prefix
				}
				if region != "" {
					cfg.Publish.Region = region
				}
				if endpoint != "" {
					cfg.Publish.Endpoint = endpoint
				}
			})
			if err != nil {
				return err
			}

			if rebuild {
				if _, err := runBuild(cmd, cfg); err != nil {
					return err
				}
			}

			client, err := publish.NewS3Client(cmd.Context(), cfg.Publish)
			if err != nil {
				return err
			}

			publisher := publish.New(client, publish.Options{
				Bucket: cfg.Publish.Bucket,
				Prefix: cfg.Publish.Prefix,
				Logger: slog.Default().With("component", "publish"),
			})

			info("Uploading %s to s3://%s/%s", displayPath(cfg, cfg.OutputPath()), cfg.Publish.Bucket, cfg.Publish.Prefix)
			report, err := publisher.Publish(cmd.Context(), cfg.OutputPath())
			if err != nil {
				return err
			}

			fmt.Println()
			success("Published %d objects (%s) in %s", len(report.Keys), formatBytes(report.Bytes), report.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination bucket (default from rcsg.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Object key prefix")
	cmd.Flags().StringVar(&region, "region", "", "Bucket region")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Custom S3 endpoint")
	cmd.Flags().BoolVar(&rebuild, "build", false, "Build the site before publishing")
	flags.register(cmd)

	return cmd
}
