package catalog

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrTokenRequired is returned when a catalog scheme requires a token but none was provided
	ErrTokenRequired = errors.New("catalog token required")
)

// NewStore creates a catalog backend based on the URI scheme:
//   - file:// -> FileCatalog
//   - oci:// -> OCICatalog (requires token)
//   - s3:// or s3+http:// -> S3Catalog
func NewStore(uri *URI, token string, logger *slog.Logger) (Store, error) {
	switch uri.Scheme {
	case "file":
		return NewFileCatalog(uri.Path, token, logger)

	case "oci":
		if token == "" {
			return nil, fmt.Errorf("%w: OCI catalogs require an authentication token (--catalog-token or INSTALLDECK_CATALOG_TOKEN)", ErrTokenRequired)
		}
		return NewOCICatalog(uri, token, logger)

	case "s3", "s3+http":
		// Credentials optional: empty token falls back to AWS env vars or IAM role
		return NewS3Catalog(uri, token, logger)

	default:
		return nil, fmt.Errorf("unsupported catalog scheme: %s", uri.Scheme)
	}
}
