package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cdplates/cdplates/internal/archive/drivers"
	"github.com/cdplates/cdplates/internal/config"
)

// NewSnapshotService builds the snapshot archive on the driver selected by cfg.Type.
func NewSnapshotService(ctx context.Context, cfg config.StorageConfig) (*Service, error) {
	driver, err := newDriver(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewService(driver), nil
}

func newDriver(ctx context.Context, cfg config.StorageConfig) (StorageDriver, error) {
	switch cfg.Type {
	case "local":
		// Local snapshots are only reachable through the API download route
		// unless a separate public prefix is configured.
		publicURL := strings.TrimSuffix(cfg.LocalPublicURL, "/")
		if publicURL == "" {
			publicURL = DownloadPath
		}
		slog.Info("initializing local snapshot storage", "dir", cfg.LocalBaseDir, "url", publicURL)
		return drivers.NewLocalFSDriver(cfg.LocalBaseDir, publicURL)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, errors.New("STORAGE_S3_BUCKET is required for s3 snapshot storage")
		}
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		slog.Info("initializing S3 snapshot storage", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket,
			"presigned", cfg.S3PublicURL == "")
		return drivers.NewS3Driver(client, cfg.S3Bucket, strings.TrimSuffix(cfg.S3PublicURL, "/")), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// newS3Client targets AWS or, with an endpoint set, a self-hosted S3 such as MinIO.
func newS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
