// Package publish uploads export directories to S3-compatible storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dd0wney/cluso-relations/pkg/logging"
)

// Options configures the target bucket.
type Options struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
	// PathStyle addresses the bucket in the path, as MinIO expects.
	PathStyle bool
	// Static credentials. When empty the default AWS chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads run artifacts below <prefix>/<run-id>/.
type S3Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger logging.Logger
}

// New builds an S3 client from opts.
func New(ctx context.Context, opts Options, logger logging.Logger) (*S3Publisher, error) {
	if opts.Bucket == "" {
		return nil, errors.New("publish: bucket required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("publish: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewWithClient(client, opts.Bucket, opts.Prefix, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client PutObjectAPI, bucket, prefix string, logger logging.Logger) *S3Publisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &S3Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.With(logging.Component("publish")),
	}
}

// RunID names a run after its start time.
func RunID(start time.Time) string {
	return start.UTC().Format("20060102T150405Z")
}

// Key returns the object key of file name in directory kind of a run.
func (p *S3Publisher) Key(runID, kind, name string) string {
	return path.Join(p.prefix, runID, kind, name)
}

// Publish uploads every regular file of each directory. dirs maps the
// directory kind ("nodes", "relations") to its local path. Keys are
// returned in upload order.
func (p *S3Publisher) Publish(ctx context.Context, runID string, dirs map[string]string) ([]string, error) {
	kinds := make([]string, 0, len(dirs))
	for kind := range dirs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	timer := logging.StartTimer(p.logger, "run published",
		logging.String("bucket", p.bucket), logging.String("run_id", runID))

	var keys []string
	for _, kind := range kinds {
		entries, err := os.ReadDir(dirs[kind])
		if err != nil {
			timer.EndError(err)
			return keys, fmt.Errorf("publish: list %s: %w", kind, err)
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			key := p.Key(runID, kind, entry.Name())
			if err := p.upload(ctx, filepath.Join(dirs[kind], entry.Name()), key); err != nil {
				timer.EndError(err)
				return keys, err
			}
			keys = append(keys, key)
		}
	}
	timer.End(logging.Count(len(keys)))
	return keys, nil
}

func (p *S3Publisher) upload(ctx context.Context, file, key string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer f.Close()

	if _, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(file)),
	}); err != nil {
		return fmt.Errorf("publish: put s3://%s/%s: %w", p.bucket, key, err)
	}
	p.logger.Debug("object uploaded", logging.Path(key))
	return nil
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".csv":
		return "text/csv"
	case ".yaml":
		return "application/yaml"
	default:
		return "text/plain"
	}
}
