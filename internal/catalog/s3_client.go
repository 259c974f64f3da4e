package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 timeout constants
const (
	S3UploadTimeout   = 60 * time.Second
	S3DownloadTimeout = 30 * time.Second
)

// S3Client wraps the MinIO SDK for catalog object operations
type S3Client struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

// NewS3Client creates a new S3 client for the given endpoint and credentials
func NewS3Client(endpoint, bucket, key, accessKey, secretKey string, useSSL bool, region string, logger *slog.Logger) (*S3Client, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	}
	if region != "" {
		opts.Region = region
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		logger.Error("Failed to create S3 client",
			"endpoint", endpoint,
			"bucket", bucket,
			"error", err)
		return nil, CategorizeS3Error(OpConnect, fmt.Errorf("failed to create S3 client: %w", err))
	}

	logger.Info("S3 client created",
		"endpoint", endpoint,
		"bucket", bucket,
		"key", key,
		"ssl", useSSL,
		"region", region)

	return &S3Client{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger,
	}, nil
}

// ValidateBucket checks if the bucket exists and is accessible
func (c *S3Client) ValidateBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		c.logger.Error("S3 bucket validation failed", "bucket", c.bucket, "error", err)
		return CategorizeS3Error(OpConnect, err)
	}
	if !exists {
		c.logger.Error("S3 bucket does not exist", "bucket", c.bucket)
		return CategorizeS3Error(OpConnect, fmt.Errorf("bucket %q does not exist", c.bucket))
	}
	return nil
}

// Exists checks if the catalog object exists in the bucket
func (c *S3Client) Exists(ctx context.Context) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, c.key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return false, nil
		}
		c.logger.Error("S3 existence check failed",
			"bucket", c.bucket,
			"key", c.key,
			"error", err)
		return false, CategorizeS3Error(OpConnect, err)
	}
	return true, nil
}

// Upload uploads the catalog document to the bucket
func (c *S3Client) Upload(ctx context.Context, data []byte) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, S3UploadTimeout)
	defer cancel()

	reader := bytes.NewReader(data)
	_, err := c.client.PutObject(ctx, c.bucket, c.key, reader, int64(len(data)),
		minio.PutObjectOptions{
			ContentType: "application/json",
		},
	)
	if err != nil {
		c.logger.Error("S3 upload failed",
			"bucket", c.bucket,
			"key", c.key,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return CategorizeS3Error(OpUpload, err)
	}

	c.logger.Info("S3 upload completed",
		"bucket", c.bucket,
		"key", c.key,
		"size_bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Download downloads the catalog document from the bucket
func (c *S3Client) Download(ctx context.Context) ([]byte, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, S3DownloadTimeout)
	defer cancel()

	obj, err := c.client.GetObject(ctx, c.bucket, c.key, minio.GetObjectOptions{})
	if err != nil {
		c.logger.Error("S3 download failed",
			"bucket", c.bucket,
			"key", c.key,
			"error", err)
		return nil, CategorizeS3Error(OpDownload, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		c.logger.Error("S3 download read failed",
			"bucket", c.bucket,
			"key", c.key,
			"error", err)
		return nil, CategorizeS3Error(OpDownload, err)
	}

	c.logger.Info("S3 download completed",
		"bucket", c.bucket,
		"key", c.key,
		"size_bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds())
	return data, nil
}

// ParseS3Token parses the catalog token into access key and secret key.
// Token format: ACCESS_KEY:SECRET_KEY
// Falls back to AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY env vars if token is empty.
func ParseS3Token(token string) (accessKey, secretKey string, err error) {
	if token == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
		if accessKey != "" && secretKey != "" {
			return accessKey, secretKey, nil
		}
		// Empty credentials are allowed for IAM role authentication
		if accessKey == "" && secretKey == "" {
			return "", "", nil
		}
		return "", "", fmt.Errorf("S3 credentials incomplete: set both AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY, or use a token in ACCESS_KEY:SECRET_KEY format")
	}

	// Split on first colon only (secret key may contain colons)
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid token format: expected ACCESS_KEY:SECRET_KEY")
	}
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid token format: access key cannot be empty")
	}
	if parts[1] == "" {
		return "", "", fmt.Errorf("invalid token format: secret key cannot be empty")
	}
	return parts[0], parts[1], nil
}

// ExtractRegionFromEndpoint extracts the AWS region from an endpoint URL.
// Supports patterns: s3.REGION.amazonaws.com and s3-REGION.amazonaws.com
func ExtractRegionFromEndpoint(endpoint string) string {
	re1 := regexp.MustCompile(`s3\.([a-z]{2}-[a-z]+-\d+)\.amazonaws\.com`)
	if matches := re1.FindStringSubmatch(endpoint); len(matches) > 1 {
		return matches[1]
	}
	re2 := regexp.MustCompile(`s3-([a-z]{2}-[a-z]+-\d+)\.amazonaws\.com`)
	if matches := re2.FindStringSubmatch(endpoint); len(matches) > 1 {
		return matches[1]
	}
	return ""
}
