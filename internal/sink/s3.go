package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"sens-scan/internal/domain"
)

const defaultS3Region = "us-east-1"

// S3Sink uploads the document to an S3 (or S3-compatible) bucket.
type S3Sink struct {
	client   *s3.Client
	bucket   string
	key      string
	location string
}

// NewS3Sink creates an S3Sink for an "s3://bucket/key" location using static
// credentials. A custom endpoint switches to path-style addressing.
func NewS3Sink(location string, creds Credentials) (*S3Sink, error) {
	bucket, key, err := ParseS3Path(location)
	if err != nil {
		return nil, domain.ErrValidation("%v", err)
	}
	if !creds.HasS3() {
		return nil, domain.ErrValidation("S3 output requires S3_KEY_ID and S3_SECRET")
	}

	region := creds.S3Region
	if region == "" {
		region = defaultS3Region
	}
	opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			creds.S3KeyID, creds.S3Secret, "",
		),
	}
	if creds.S3Endpoint != "" {
		endpoint := creds.S3Endpoint
		if !strings.Contains(endpoint, "://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}

	return &S3Sink{
		client:   s3.New(opts),
		bucket:   bucket,
		key:      key,
		location: location,
	}, nil
}

// Write uploads data as the object body.
func (s *S3Sink) Write(ctx context.Context, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", s.location, err)
	}
	return nil
}

// Location returns the s3:// URI.
func (s *S3Sink) Location() string { return s.location }

// ParseS3Path extracts bucket and key from an "s3://bucket/path/to/file" URI.
func ParseS3Path(s3Path string) (bucket, key string, err error) {
	u, err := url.Parse(s3Path)
	if err != nil {
		return "", "", fmt.Errorf("parse S3 path %q: %w", s3Path, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("expected s3:// scheme, got %q in %q", u.Scheme, s3Path)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("empty bucket in S3 path %q", s3Path)
	}
	if key == "" {
		return "", "", fmt.Errorf("empty key in S3 path %q", s3Path)
	}
	return bucket, key, nil
}
