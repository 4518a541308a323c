package sink

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"sens-scan/internal/domain"
)

// GCSSink uploads the document to a Google Cloud Storage object. Each Write
// opens and closes its own client, so one sink serves every scheduled run.
type GCSSink struct {
	keyFile  string
	bucket   string
	object   string
	location string
}

// NewGCSSink creates a GCSSink for a "gs://bucket/object" location using a
// service account key file.
func NewGCSSink(ctx context.Context, location string, creds Credentials) (*GCSSink, error) {
	bucket, object, err := ParseGCSPath(location)
	if err != nil {
		return nil, domain.ErrValidation("%v", err)
	}
	if creds.GCSKeyFile == "" {
		return nil, domain.ErrValidation("GCS output requires GCS_KEY_FILE")
	}
	if _, err := os.Stat(creds.GCSKeyFile); err != nil {
		return nil, domain.ErrValidation("GCS_KEY_FILE: %v", err)
	}
	return &GCSSink{keyFile: creds.GCSKeyFile, bucket: bucket, object: object, location: location}, nil
}

// Write streams data into the object.
func (s *GCSSink) Write(ctx context.Context, data []byte) error {
	client, err := storage.NewClient(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, s.keyFile))
	if err != nil {
		return fmt.Errorf("create GCS client: %w", err)
	}
	defer client.Close()

	w := client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %q: %w", s.location, err)
	}
	// the upload is committed on Close
	if err := w.Close(); err != nil {
		return fmt.Errorf("commit object %q: %w", s.location, err)
	}
	return nil
}

// Location returns the gs:// URI.
func (s *GCSSink) Location() string { return s.location }

// ParseGCSPath extracts bucket and object from a "gs://bucket/path/to/file" URI.
func ParseGCSPath(path string) (bucket, object string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse GCS path %q: %w", path, err)
	}
	if u.Scheme != "gs" {
		return "", "", fmt.Errorf("expected gs:// scheme, got %q in %q", u.Scheme, path)
	}
	bucket = u.Host
	object = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("GCS path %q needs both bucket and object", path)
	}
	return bucket, object, nil
}
