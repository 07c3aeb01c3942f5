package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hello-bedrock/promptimage/pkg/errors"
)

// API is the subset of the S3 client used by Client
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Metadata contains object metadata returned by Head
type Metadata struct {
	Size        int64
	ContentType string
	ETag        string
}

// Client provides S3 storage operations across buckets
type Client struct {
	s3Client API
}

// NewClient creates a storage client from a loaded AWS config
func NewClient(cfg aws.Config) *Client {
	slog.Info("s3_client_init", "region", cfg.Region)
	return NewClientFromAPI(s3.NewFromConfig(cfg))
}

// NewClientFromAPI wraps an existing S3 API implementation
func NewClientFromAPI(api API) *Client {
	return &Client{s3Client: api}
}

// Head returns metadata for an object, or errors.ErrNotFound if it does not exist
func (c *Client) Head(ctx context.Context, bucket, key string) (*Metadata, error) {
	out, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			slog.Info("s3_object_not_found", "bucket", bucket, "s3_key", key)
			return nil, errors.Wrap(errors.ErrNotFound, key)
		}
		slog.Error("s3_head_object_failed", "bucket", bucket, "s3_key", key, "error", err)
		return nil, errors.Wrap(err, "failed to check object existence")
	}

	meta := &Metadata{
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
		ETag:        aws.ToString(out.ETag),
	}
	slog.Info("s3_object_exists", "bucket", bucket, "s3_key", key, "size", meta.Size)
	return meta, nil
}

// Get opens the object body for reading. The caller must close it.
func (c *Client) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	slog.Info("s3_get_object_start", "bucket", bucket, "s3_key", key)

	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			slog.Error("s3_get_object_missing", "bucket", bucket, "s3_key", key)
			return nil, errors.Wrap(errors.ErrNotFound, key)
		}
		slog.Error("s3_get_object_failed", "bucket", bucket, "s3_key", key, "error", err)
		return nil, errors.Wrap(err, "failed to get object from S3")
	}

	return out.Body, nil
}

// Put uploads body under key with the given content type
func (c *Client) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	slog.Info("s3_put_object_start", "bucket", bucket, "s3_key", key, "size", len(body))

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		slog.Error("s3_put_object_failed", "bucket", bucket, "s3_key", key, "error", err)
		return errors.Wrap(err, "failed to put object to S3")
	}

	slog.Info("s3_put_object_complete", "bucket", bucket, "s3_key", key)
	return nil
}

// isNotFound reports whether err is S3's "object does not exist" signal.
// HeadObject has no body, so its 404 surfaces as the bare "NotFound" code.
func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
