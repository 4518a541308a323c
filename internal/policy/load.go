package policy

import (
	"context"
	"fmt"

	"github.com/viant/afs"

	"sens-scan/internal/domain"
)

// Load reads the policy document at location (a local path or any URL
// afs can download) and parses it.
func Load(ctx context.Context, location string) (*Policy, error) {
	if location == "" {
		return nil, domain.ErrValidation("policy location is required")
	}
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, domain.ErrValidation("read policy %s: %v", location, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", location, err)
	}
	return p, nil
}
