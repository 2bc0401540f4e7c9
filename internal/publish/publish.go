// Package publish uploads a built site to S3-compatible object storage.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aldinh777/rc-template-sg/internal/config"
	"github.com/aldinh777/rc-template-sg/internal/errors"
	"github.com/aldinh777/rc-template-sg/internal/walk"
)

// DefaultRegion is used when neither the config nor the flags name one.
const DefaultRegion = "us-east-1"

// ObjectPutter is the subset of *s3.Client the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures a Publisher.
type Options struct {
	// Bucket is the destination bucket. Required.
	Bucket string

	// Prefix is prepended to every object key.
	Prefix string

	// CacheControl, when set, is sent with every object.
	CacheControl string

	Logger *slog.Logger
}

// Report summarizes a publish run.
type Report struct {
	// Keys lists the uploaded object keys in upload order.
	Keys     []string
	Bytes    int64
	Duration time.Duration
}

// Publisher uploads every file of a directory as one object.
type Publisher struct {
	client ObjectPutter
	opts   Options
	logger *slog.Logger
}

// New creates a publisher writing through client.
func New(client ObjectPutter, opts Options) *Publisher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "publish")
	}
	return &Publisher{client: client, opts: opts, logger: logger}
}

// Publish uploads every regular file under dir. Object keys are the
// slash-separated paths relative to dir behind the configured prefix.
// The first failed upload aborts the run.
func (p *Publisher) Publish(ctx context.Context, dir string) (*Report, error) {
	if p.opts.Bucket == "" {
		return nil, errors.New("E240").WithDetail("No bucket configured.").
			WithSuggestion("Pass --bucket or set publish.bucket in rcsg.json.")
	}

	start := time.Now()
	report := &Report{}

	err := walk.Files(dir, func(file string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := p.key(dir, file)
		n, err := p.put(ctx, file, key)
		if err != nil {
			return errors.New("E240").WithFile(file).Wrap(err)
		}
		p.logger.Debug("uploaded", "key", key, "bytes", n)
		report.Keys = append(report.Keys, key)
		report.Bytes += n
		return nil
	})
	report.Duration = time.Since(start)
	if err != nil {
		return report, errors.FromError(err, "E240")
	}

	p.logger.Info("published", "bucket", p.opts.Bucket, "objects", len(report.Keys), "duration", report.Duration)
	return report, nil
}

func (p *Publisher) key(dir, file string) string {
	rel := walk.Rel(dir, file)
	if rel == "." {
		rel = filepath.Base(file)
	}
	return p.opts.Prefix + rel
}

func (p *Publisher) put(ctx context.Context, file, key string) (int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.opts.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(ContentType(key)),
	}
	if p.opts.CacheControl != "" {
		input.CacheControl = aws.String(p.opts.CacheControl)
	}

	if _, err := p.client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("put %s: %w", key, err)
	}
	return info.Size(), nil
}

// ContentType returns the MIME type for a file name, falling back to
// application/octet-stream.
func ContentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".js", ".mjs":
		return "text/javascript; charset=utf-8"
	case "":
		return "application/octet-stream"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// NewS3Client builds an S3 client from the publish config. Credentials
// come from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and the optional
// AWS_SESSION_TOKEN.
func NewS3Client(ctx context.Context, cfg config.PublishConfig) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = DefaultRegion
	}

	creds := aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials))
	if _, err := creds.Retrieve(ctx); err != nil {
		return nil, errors.New("E240").WithDetail(err.Error()).
			WithSuggestion("Export AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.")
	}

	awsCfg := aws.Config{
		Region:      region,
		Credentials: creds,
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func envCredentials(ctx context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}, nil
}
