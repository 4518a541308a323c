// Package sink persists the encoded rule dictionary to a local file or an
// object store.
package sink

import (
	"context"
	"net/url"
	"strings"

	"sens-scan/internal/domain"
)

// Credentials carries the object store settings a sink may need. Only the
// fields of the selected backend are read.
type Credentials struct {
	S3KeyID    string
	S3Secret   string
	S3Endpoint string
	S3Region   string

	GCSKeyFile string

	AzureAccountName string
	AzureAccountKey  string
}

// HasS3 reports whether static S3 credentials are configured.
func (c Credentials) HasS3() bool {
	return c.S3KeyID != "" && c.S3Secret != ""
}

// HasAzure reports whether an Azure shared key is configured.
func (c Credentials) HasAzure() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// Compile-time checks.
var (
	_ domain.Sink = (*FileSink)(nil)
	_ domain.Sink = (*S3Sink)(nil)
	_ domain.Sink = (*GCSSink)(nil)
	_ domain.Sink = (*AzureSink)(nil)
)

// Open returns the sink for location, dispatching on its scheme:
// s3://, gs://, az:// (or abfss:// and Azure https URLs), otherwise a local path.
func Open(ctx context.Context, location string, creds Credentials) (domain.Sink, error) {
	if location == "" {
		return nil, domain.ErrValidation("output location is required")
	}
	switch scheme(location) {
	case "s3":
		return NewS3Sink(location, creds)
	case "gs":
		return NewGCSSink(ctx, location, creds)
	case "az", "abfss":
		return NewAzureSink(location, creds)
	case "https":
		if strings.Contains(location, ".blob.core.windows.net") {
			return NewAzureSink(location, creds)
		}
		return nil, domain.ErrValidation("unsupported output location %q", location)
	case "file":
		u, err := url.Parse(location)
		if err != nil {
			return nil, domain.ErrValidation("parse output location %q: %v", location, err)
		}
		// file://out/x.json would silently drop "out" into the host
		if u.Host != "" && u.Host != "localhost" {
			return nil, domain.ErrValidation("output location %q: file URLs must be absolute (file:///path)", location)
		}
		if u.Path == "" {
			return nil, domain.ErrValidation("output location %q has no path", location)
		}
		return NewFileSink(u.Path), nil
	default:
		return NewFileSink(location), nil
	}
}

// scheme returns the lower-cased URL scheme of location, or "" for a plain path.
func scheme(location string) string {
	i := strings.Index(location, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(location[:i])
}
