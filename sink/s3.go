package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// ErrBadURL is returned for malformed s3:// URLs.
var ErrBadURL = errors.New("invalid s3 url")

// ErrNoS3 is returned when an s3:// path is written without an S3 sink.
var ErrNoS3 = errors.New("s3 output is not configured")

// PutObjectAPI is the subset of the S3 client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads buffers to S3. The client is created on first use.
type S3Sink struct {
	client    PutObjectAPI
	newClient func(ctx context.Context) (PutObjectAPI, error)
}

// NewS3Sink returns a sink that loads the default AWS configuration the
// first time it writes.
func NewS3Sink() *S3Sink {
	return &S3Sink{newClient: defaultClient}
}

// NewS3SinkWithClient returns a sink using client.
func NewS3SinkWithClient(client PutObjectAPI) *S3Sink {
	return &S3Sink{client: client}
}

func defaultClient(ctx context.Context) (PutObjectAPI, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// WriteFile uploads data to the object named by an s3://bucket/key path.
// The client is created on first use.
func (s *S3Sink) WriteFile(ctx context.Context, path string, data []byte) error {
	bucket, key, err := ParseS3URL(path)
	if err != nil {
		return err
	}
	if s.client == nil {
		client, err := s.newClient(ctx)
		if err != nil {
			return err
		}
		s.client = client
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// ParseS3URL splits s3://bucket/key into its bucket and key.
func ParseS3URL(path string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(path, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrBadURL, path)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrBadURL, path)
	}
	return bucket, key, nil
}
