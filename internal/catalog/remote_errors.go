package catalog

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Remote backend error categories
const (
	CategoryAuth    = "authentication"
	CategoryNetwork = "network"
	CategoryStorage = "storage"
)

// Remote backend operations for error context
const (
	OpUpload   = "upload"
	OpDownload = "download"
	OpConnect  = "connect"
)

// RemoteError wraps a remote-backend failure (S3 or OCI) with a category
// and the operation that failed, so operators can tell credential problems
// from outages at a glance.
type RemoteError struct {
	Backend  string // "s3" or "oci"
	Category string // "authentication", "network", or "storage"
	Op       string // "upload", "download", or "connect"
	Err      error  // Underlying error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s error during %s: %v", e.Backend, e.Category, e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is maps every remote failure onto ErrStorageUnavailable so handlers can
// match with errors.Is without knowing the backend
func (e *RemoteError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

func newRemoteError(backend, category, op string, err error) *RemoteError {
	return &RemoteError{Backend: backend, Category: category, Op: op, Err: err}
}

// categorizeNetworkError matches the error chain against common network
// failure types. Returns category "" when the error is not network-related.
func categorizeNetworkError(err error) (string, error) {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CategoryNetwork, fmt.Errorf("network error: cannot resolve endpoint hostname")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CategoryNetwork, fmt.Errorf("network timeout: unable to reach endpoint")
		}
		return CategoryNetwork, fmt.Errorf("network error: unable to reach endpoint")
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return CategoryNetwork, fmt.Errorf("network timeout: unable to reach endpoint")
		}
		return CategoryNetwork, fmt.Errorf("network error: unable to reach endpoint")
	}

	return "", nil
}

// CategorizeS3Error examines an error from the S3 client and returns an
// appropriately categorized RemoteError
func CategorizeS3Error(op string, err error) *RemoteError {
	if err == nil {
		return nil
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		switch minioErr.Code {
		case "AccessDenied":
			return newRemoteError("s3", CategoryAuth, op, fmt.Errorf("access denied: token lacks required permissions"))
		case "InvalidAccessKeyId":
			return newRemoteError("s3", CategoryAuth, op, fmt.Errorf("invalid access key: verify credentials are correct"))
		case "SignatureDoesNotMatch":
			return newRemoteError("s3", CategoryAuth, op, fmt.Errorf("signature mismatch: verify secret key is correct"))
		case "ExpiredToken":
			return newRemoteError("s3", CategoryAuth, op, fmt.Errorf("token expired: refresh credentials"))
		case "NoSuchBucket":
			return newRemoteError("s3", CategoryStorage, op, fmt.Errorf("bucket not found: verify bucket exists and name is correct"))
		case "NoSuchKey":
			return newRemoteError("s3", CategoryStorage, op, fmt.Errorf("object not found"))
		default:
			return newRemoteError("s3", CategoryStorage, op, fmt.Errorf("%s: %s", minioErr.Code, minioErr.Message))
		}
	}

	if category, catErr := categorizeNetworkError(err); category != "" {
		return newRemoteError("s3", category, op, catErr)
	}

	errStr := err.Error()
	if strings.Contains(errStr, "AccessDenied") ||
		strings.Contains(errStr, "InvalidAccessKeyId") ||
		strings.Contains(errStr, "SignatureDoesNotMatch") {
		return newRemoteError("s3", CategoryAuth, op, fmt.Errorf("authentication failed: %v", err))
	}

	return newRemoteError("s3", CategoryStorage, op, err)
}

// CategorizeOCIError examines an error from the OCI client and returns an
// appropriately categorized RemoteError
func CategorizeOCIError(op string, err error) *RemoteError {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if containsHTTPStatus(errStr, 401) || strings.Contains(errStr, "UNAUTHORIZED") {
		return newRemoteError("oci", CategoryAuth, op, fmt.Errorf("authentication failed: verify catalog token is valid%s", registryAuthHint(errStr)))
	}
	if containsHTTPStatus(errStr, 403) || strings.Contains(errStr, "FORBIDDEN") {
		return newRemoteError("oci", CategoryAuth, op, fmt.Errorf("access denied: token lacks required permissions%s", registryAuthHint(errStr)))
	}

	if category, catErr := categorizeNetworkError(err); category != "" {
		return newRemoteError("oci", category, op, catErr)
	}

	if containsHTTPStatus(errStr, 404) || strings.Contains(errStr, "NOT_FOUND") {
		return newRemoteError("oci", CategoryStorage, op, fmt.Errorf("repository not found or not initialized"))
	}
	if containsHTTPStatus(errStr, 500) || containsHTTPStatus(errStr, 503) {
		return newRemoteError("oci", CategoryStorage, op, fmt.Errorf("OCI registry unavailable: %v", err))
	}

	return newRemoteError("oci", CategoryStorage, op, err)
}

// containsHTTPStatus checks if the error string mentions an HTTP status code
func containsHTTPStatus(errStr string, status int) bool {
	patterns := []string{
		fmt.Sprintf("status %d", status),
		fmt.Sprintf("status: %d", status),
		fmt.Sprintf("HTTP %d", status),
		fmt.Sprintf("%d", status),
	}
	for _, pattern := range patterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// registryAuthHint returns a registry-specific hint for auth failures
func registryAuthHint(errStr string) string {
	errLower := strings.ToLower(errStr)
	switch {
	case strings.Contains(errLower, "ghcr.io"):
		return " (ghcr.io: use a GitHub PAT with 'write:packages' scope)"
	case strings.Contains(errLower, "docker.io"):
		return " (docker.io: use a Docker Hub access token)"
	case strings.Contains(errLower, "azurecr.io"):
		return " (Azure ACR: use 'az acr login --expose-token' to get a token)"
	case strings.Contains(errLower, "amazonaws.com"):
		return " (AWS ECR: use 'aws ecr get-login-password' to get a token)"
	case strings.Contains(errLower, "gcr.io"), strings.Contains(errLower, "pkg.dev"):
		return " (GCP: use 'gcloud auth print-access-token' to get a token)"
	}
	return ""
}
