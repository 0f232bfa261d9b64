package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/joseph-ayodele/invoice-auditor/internal/common"
)

const defaultRegion = "us-east-1"

// ObjectPutter is the part of the S3 client the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads finished reports to s3://bucket/prefix.
type Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// ParseS3URI splits s3://bucket/prefix into its parts. The prefix may be empty.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return "", "", common.NewAppError("CONFIG_ERROR", "invalid REPORT_S3_URI", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", common.NewAppError("CONFIG_ERROR", "REPORT_S3_URI must look like s3://bucket/prefix", common.ErrInvalidInput)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

// NewPublisher wraps an existing client.
func NewPublisher(client ObjectPutter, uri string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bucket, prefix, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: client, bucket: bucket, prefix: prefix, logger: logger}, nil
}

// NewS3Publisher builds a client from the default AWS credential chain.
func NewS3Publisher(ctx context.Context, uri string, logger *slog.Logger) (*Publisher, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithDefaultRegion(defaultRegion))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return NewPublisher(s3.NewFromConfig(awsCfg), uri, logger)
}

// Key is the object key a local report is published under.
func (p *Publisher) Key(localPath string) string {
	return path.Join(p.prefix, filepath.Base(localPath))
}

// Publish uploads the report file and returns its s3:// location.
func (p *Publisher) Publish(ctx context.Context, localPath string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	key := p.Key(localPath)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", p.bucket, key, err)
	}
	location := "s3://" + p.bucket + "/" + key
	p.logger.Info("report.publish.ok", "location", location, "bytes", len(data))
	return location, nil
}

func contentType(p string) string {
	if strings.EqualFold(filepath.Ext(p), ".csv") {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
