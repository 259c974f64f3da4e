package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

// SupportedSchemes lists all currently supported catalog URI schemes
var SupportedSchemes = []string{"file", "s3", "s3+http", "oci"}

// URI represents a parsed catalog backend URI
type URI struct {
	Scheme string // Backend type (e.g. "file", "s3", "oci")
	Host   string // Host for network backends (optional for file://)
	Path   string // Path to the catalog resource
	Query  url.Values
	Raw    string // Original URI string for logging/debugging
}

// NormalizeURI ensures the URI has a scheme, prepending "file://" if missing
func NormalizeURI(uri string) string {
	if uri == "" {
		return uri
	}
	if !strings.Contains(uri, "://") {
		return "file://" + uri
	}
	return uri
}

// ParseURI parses a catalog URI string into its components
func ParseURI(uri string) (*URI, error) {
	if uri == "" {
		return nil, fmt.Errorf("catalog URI cannot be empty")
	}

	normalized := NormalizeURI(uri)

	parsed, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid URI format: %w", err)
	}

	if parsed.Scheme == "" {
		return nil, fmt.Errorf("URI must have a scheme (e.g., file://)")
	}
	if err := validateScheme(parsed.Scheme); err != nil {
		return nil, err
	}

	switch parsed.Scheme {
	case "oci":
		// OCI references carry no query params or fragments
		if parsed.RawQuery != "" {
			return nil, fmt.Errorf("OCI URI does not support query parameters")
		}
		if parsed.Fragment != "" {
			return nil, fmt.Errorf("OCI URI does not support fragments")
		}
		if parsed.Host == "" {
			return nil, fmt.Errorf("OCI URI must include registry host: oci://<registry>/<repository>")
		}
		ociPath := strings.TrimPrefix(parsed.Path, "/")
		if ociPath == "" {
			return nil, fmt.Errorf("OCI URI must include repository path: oci://<registry>/<repository>")
		}
		// Strip any tag from path (we always use :latest)
		if idx := strings.LastIndex(ociPath, ":"); idx > 0 {
			ociPath = ociPath[:idx]
		}
		return &URI{
			Scheme: parsed.Scheme,
			Host:   parsed.Host,
			Path:   ociPath,
			Raw:    uri,
		}, nil

	case "s3", "s3+http":
		if parsed.Host == "" {
			return nil, fmt.Errorf("S3 URI must include endpoint host: %s://<endpoint>/<bucket>/<key>", parsed.Scheme)
		}
		s3Path := strings.TrimPrefix(parsed.Path, "/")
		if !strings.Contains(s3Path, "/") {
			return nil, fmt.Errorf("S3 URI must include bucket and object key: %s://<endpoint>/<bucket>/<key>", parsed.Scheme)
		}
		return &URI{
			Scheme: parsed.Scheme,
			Host:   parsed.Host,
			Path:   s3Path,
			Query:  parsed.Query(),
			Raw:    uri,
		}, nil
	}

	// file:// - the path may land in different URL components
	path := parsed.Path
	if path == "" && parsed.Opaque != "" {
		path = parsed.Opaque
	}
	if parsed.Host == "." && strings.HasPrefix(path, "/") {
		// file://./path format
		path = "./" + strings.TrimPrefix(path, "/")
	} else if len(parsed.Host) == 1 && strings.ToUpper(parsed.Host) >= "A" && strings.ToUpper(parsed.Host) <= "Z" {
		// Windows drive letter: file://C:/path
		path = parsed.Host + ":" + path
	}

	if path == "" {
		return nil, fmt.Errorf("catalog URI must have a path")
	}

	return &URI{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   path,
		Raw:    uri,
	}, nil
}

// validateScheme checks if the scheme is supported
func validateScheme(scheme string) error {
	for _, s := range SupportedSchemes {
		if scheme == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported catalog scheme %q; supported schemes: %s",
		scheme, strings.Join(SupportedSchemes, ", "))
}

// IsFileScheme returns true if this is a file:// URI
func (u *URI) IsFileScheme() bool {
	return u.Scheme == "file"
}

// IsOCIScheme returns true if this is an oci:// URI
func (u *URI) IsOCIScheme() bool {
	return u.Scheme == "oci"
}

// IsS3Scheme returns true if this is an s3:// or s3+http:// URI
func (u *URI) IsS3Scheme() bool {
	return u.Scheme == "s3" || u.Scheme == "s3+http"
}

// OCIReference returns the OCI reference string "registry/repository:latest".
// This should only be called for OCI scheme URIs.
func (u *URI) OCIReference() string {
	return fmt.Sprintf("%s/%s:latest", u.Host, u.Path)
}

// S3Endpoint returns the S3 endpoint host
func (u *URI) S3Endpoint() string {
	return u.Host
}

// S3Bucket returns the bucket component of an S3 URI path
func (u *URI) S3Bucket() string {
	bucket, _, _ := strings.Cut(u.Path, "/")
	return bucket
}

// S3Key returns the object key component of an S3 URI path
func (u *URI) S3Key() string {
	_, key, _ := strings.Cut(u.Path, "/")
	return key
}

// S3UseSSL returns whether S3 connections use TLS (s3+http disables it)
func (u *URI) S3UseSSL() bool {
	return u.Scheme != "s3+http"
}

// S3Region returns the region query parameter, if any
func (u *URI) S3Region() string {
	if u.Query == nil {
		return ""
	}
	return u.Query.Get("region")
}

// String returns the original URI string
func (u *URI) String() string {
	return u.Raw
}
