// Package minio fetches source dataset files (CSV, GeoJSON) from the
// S3-compatible object store the data team publishes to.
package minio

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// Client wraps the MinIO SDK for the source-data bucket.
type Client struct {
	api     *minio.Client
	bucket  string
	log     logging.Logger
	metrics *prometheus.AppMetrics
}

// NewClient builds the client and verifies the bucket exists.
func NewClient(ctx context.Context, cfg config.MinIOConfig, log logging.Logger, metrics *prometheus.AppMetrics) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewAppMetrics(prometheus.NewNopCollector())
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "creating object storage client failed")
	}

	exists, err := api.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "checking source bucket failed")
	}
	if !exists {
		return nil, errors.Newf(errors.ErrCodeExternalService, "source bucket %q does not exist", cfg.Bucket)
	}

	log.Info("object storage connected", logging.String("endpoint", cfg.Endpoint), logging.String("bucket", cfg.Bucket))
	return &Client{api: api, bucket: cfg.Bucket, log: log.Named("minio"), metrics: metrics}, nil
}

// Fetch reads one object fully into memory. Source files are small (tens of
// thousands of rows at most), so streaming is unnecessary.
func (c *Client) Fetch(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := c.api.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		c.metrics.SourceFetchTotal.WithLabelValues(c.bucket, "error").Inc()
		return nil, errors.Wrap(err, errors.ErrCodeSourceFetchFailed, "fetching source object failed").WithDetail(objectName)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		c.metrics.SourceFetchTotal.WithLabelValues(c.bucket, "error").Inc()
		return nil, errors.Wrap(err, errors.ErrCodeSourceFetchFailed, "reading source object failed").WithDetail(objectName)
	}

	c.metrics.SourceFetchTotal.WithLabelValues(c.bucket, "ok").Inc()
	c.log.Debug("source object fetched", logging.String("object", objectName), logging.Int("bytes", len(data)))
	return data, nil
}

// ListByPrefix returns the object names under prefix, e.g. every CSV the
// importer should process.
func (c *Client) ListByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for info := range c.api.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, errors.Wrap(info.Err, errors.ErrCodeSourceFetchFailed, "listing source objects failed")
		}
		names = append(names, info.Key)
	}
	return names, nil
}
