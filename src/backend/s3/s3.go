// Package s3 implements the backend for S3 and S3-Disk backup targets:
// every unit is a key prefix the engine writes objects under directly, so
// nothing is ever archived.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/Hedius/clickhouse-backup/src/backend"
	"github.com/Hedius/clickhouse-backup/src/chain"
)

// Options configures access to the bucket holding the backups.
type Options struct {
	// Endpoint is the S3 endpoint URL, e.g. https://s3.example.com.
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// Backend lists and deletes backup units stored as object prefixes.
type Backend struct {
	client lister
	bucket string
	kind   backend.Kind
	logger zerolog.Logger
}

// lister is the slice of the minio client we use; swapped out in tests.
type lister interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

// New builds a backend talking to the configured bucket. kind must be S3 or
// S3-Disk; the difference only shows in the destination clause sent to
// ClickHouse, the inventory lives in the same bucket either way.
func New(opts Options, kind backend.Kind, logger zerolog.Logger) (*Backend, error) {
	if kind != backend.KindS3 && kind != backend.KindS3Disk {
		return nil, fmt.Errorf("s3 backend does not support target %s", kind)
	}
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, errors.New("s3 endpoint and bucket must not be empty")
	}
	u, err := url.Parse(opts.Endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid s3 endpoint %q", opts.Endpoint)
	}
	client, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: u.Scheme != "http",
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	return &Backend{client: client, bucket: opts.Bucket, kind: kind, logger: logger}, nil
}

func (b *Backend) Kind() backend.Kind      { return b.kind }
func (b *Backend) RequiresArchiving() bool { return false }

// List enumerates the top-level key prefixes of the bucket and parses each
// as a backup unit name. Foreign prefixes and loose objects are skipped.
func (b *Backend) List(ctx context.Context) ([]chain.Unit, error) {
	var units []chain.Unit
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", b.bucket, obj.Err)
		}
		name, isPrefix := strings.CutSuffix(obj.Key, "/")
		if !isPrefix {
			continue
		}
		u, err := chain.ParseName(name)
		if err != nil {
			b.logger.Warn().Str("prefix", obj.Key).Msg("foreign prefix in backup bucket, skipping")
			continue
		}
		u.Archived = false
		u.Location = name
		units = append(units, u)
	}
	return units, nil
}

// Delete removes every object under the unit's prefix. A prefix with no
// objects left is success, which makes deletion idempotent.
func (b *Backend) Delete(ctx context.Context, u chain.Unit) error {
	prefix := u.Location
	if prefix == "" {
		prefix = u.ID
	}
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return fmt.Errorf("list prefix %s: %w", prefix, obj.Err)
		}
		if err := b.client.RemoveObject(ctx, b.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("delete object %s: %w", obj.Key, err)
		}
	}
	return nil
}
