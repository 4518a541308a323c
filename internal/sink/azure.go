package sink

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"sens-scan/internal/domain"
)

// AzureSink uploads the document to an Azure Blob Storage blob.
type AzureSink struct {
	client    *azblob.Client
	container string
	blob      string
	location  string
}

// NewAzureSink creates an AzureSink using shared-key authentication.
func NewAzureSink(location string, creds Credentials) (*AzureSink, error) {
	container, blob, err := ParseAzurePath(location)
	if err != nil {
		return nil, domain.ErrValidation("%v", err)
	}
	if !creds.HasAzure() {
		return nil, domain.ErrValidation("Azure output requires AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY")
	}

	cred, err := azblob.NewSharedKeyCredential(creds.AzureAccountName, creds.AzureAccountKey)
	if err != nil {
		return nil, domain.ErrValidation("azure shared key: %v", err)
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", creds.AzureAccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}

	return &AzureSink{client: client, container: container, blob: blob, location: location}, nil
}

// Write uploads data as a block blob, replacing any existing blob.
func (s *AzureSink) Write(ctx context.Context, data []byte) error {
	if _, err := s.client.UploadBuffer(ctx, s.container, s.blob, data, nil); err != nil {
		return fmt.Errorf("upload blob %q: %w", s.location, err)
	}
	return nil
}

// Location returns the blob URI.
func (s *AzureSink) Location() string { return s.location }

// ParseAzurePath extracts container and blob name from an Azure storage URI.
//
// Supported formats:
//
//	az://container/path/to/file
//	abfss://container@account.dfs.core.windows.net/path/to/file
//	https://account.blob.core.windows.net/container/path/to/file
func ParseAzurePath(path string) (container, blob string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse Azure path %q: %w", path, err)
	}

	switch u.Scheme {
	case "az":
		container = u.Host
		blob = strings.TrimPrefix(u.Path, "/")
	case "abfss":
		// url.Parse puts the container in userinfo
		if u.User == nil {
			return "", "", fmt.Errorf("abfss path %q missing container@account component", path)
		}
		container = u.User.Username()
		blob = strings.TrimPrefix(u.Path, "/")
	case "https":
		if !strings.Contains(u.Host, ".blob.core.windows.net") {
			return "", "", fmt.Errorf("unrecognized Azure HTTPS host %q in path %q", u.Host, path)
		}
		parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
		container = parts[0]
		if len(parts) > 1 {
			blob = parts[1]
		}
	default:
		return "", "", fmt.Errorf("unrecognized Azure path scheme %q in %q", u.Scheme, path)
	}

	if container == "" {
		return "", "", fmt.Errorf("empty container in Azure path %q", path)
	}
	if blob == "" {
		return "", "", fmt.Errorf("empty blob name in Azure path %q", path)
	}
	return container, blob, nil
}
