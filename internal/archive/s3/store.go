// Package s3 implements a snapshot archive on an S3-compatible backend
// (AWS S3 or MinIO). Snapshots live under the snapshots/ key prefix of a
// single bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/daniacca/remcsim/internal/archive/core"
	"github.com/daniacca/remcsim/internal/remc"
)

const keyPrefix = "snapshots/"

// Store implements core.Store over a single S3 bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// Config holds explicit construction parameters (mostly for tests). For
// prod we rely primarily on environment variables.
type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional; if set enables custom endpoint (e.g. MinIO)
	PathStyle bool
}

// Environment variables:
//   REMCSIM_ARCHIVE_DRIVER=s3
//   REMCSIM_ARCHIVE_S3_BUCKET=<bucket> (required)
//   REMCSIM_ARCHIVE_S3_REGION=<region> (default us-east-1)
//   REMCSIM_ARCHIVE_S3_ENDPOINT=<url> (optional, for MinIO)
//   REMCSIM_ARCHIVE_S3_PATH_STYLE=true|false (default false)
//   AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)

// New creates an S3 snapshot archive from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// OpenFromEnv constructs an S3 archive from process environment.
func OpenFromEnv(ctx context.Context) (*Store, error) {
	bucket := os.Getenv("REMCSIM_ARCHIVE_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("REMCSIM_ARCHIVE_S3_BUCKET required for s3 driver")
	}
	cfg := Config{
		Bucket:    bucket,
		Region:    os.Getenv("REMCSIM_ARCHIVE_S3_REGION"),
		Endpoint:  os.Getenv("REMCSIM_ARCHIVE_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("REMCSIM_ARCHIVE_S3_PATH_STYLE"), "true"),
	}
	return New(ctx, cfg)
}

// Driver returns the archive driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverS3 }

func objectKey(id string) string { return keyPrefix + id + ".json" }

// Put archives a new snapshot; errors if its ID is already archived.
// Create-only is emulated via a Head check before the write.
func (s *Store) Put(ctx context.Context, snapshot remc.Snapshot) (core.Info, error) {
	if snapshot.ID == "" {
		return core.Info{}, core.ErrEmptyID
	}
	key := objectKey(snapshot.ID)
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key}); err == nil {
		return core.Info{}, fmt.Errorf("snapshot %s already archived", snapshot.ID)
	}
	data, err := remc.EncodeSnapshotJSON(snapshot)
	if err != nil {
		return core.Info{}, err
	}
	contentType := "application/json"
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	}); err != nil {
		return core.Info{}, fmt.Errorf("put snapshot %s: %w", snapshot.ID, err)
	}
	return s.head(ctx, snapshot.ID)
}

func (s *Store) head(ctx context.Context, id string) (core.Info, error) {
	key := objectKey(id)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return core.Info{}, fmt.Errorf("head snapshot %s: %w", id, err)
	}
	info := core.Info{ID: id, LastModified: aws.ToTime(out.LastModified)}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	return info, nil
}

// Get returns the archived snapshot with the given ID.
func (s *Store) Get(ctx context.Context, id string) (remc.Snapshot, error) {
	key := objectKey(id)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return remc.Snapshot{}, fmt.Errorf("snapshot %s not found: %w", id, err)
	}
	defer func() { _ = out.Body.Close() }()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return remc.Snapshot{}, fmt.Errorf("read snapshot %s: %w", id, err)
	}
	return remc.DecodeSnapshotJSON(data)
}

// List returns all archived snapshots ordered by ID.
func (s *Store) List(ctx context.Context) ([]core.Info, error) {
	var infos []core.Info
	prefix := keyPrefix
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &prefix, ContinuationToken: token})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			id := strings.TrimSuffix(strings.TrimPrefix(key, keyPrefix), ".json")
			var size int64
			if obj.Size != nil {
				size = *obj.Size
			}
			infos = append(infos, core.Info{ID: id, Size: size, LastModified: aws.ToTime(obj.LastModified)})
		}
		if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Delete removes the snapshot. Existence is checked first so the caller
// learns whether anything was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	key := objectKey(id)
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return false, nil
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return false, err
	}
	return true, nil
}
