package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeS3Error(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCategory string
	}{
		{"access denied", minio.ErrorResponse{Code: "AccessDenied"}, CategoryAuth},
		{"invalid access key", minio.ErrorResponse{Code: "InvalidAccessKeyId"}, CategoryAuth},
		{"signature mismatch", minio.ErrorResponse{Code: "SignatureDoesNotMatch"}, CategoryAuth},
		{"expired token", minio.ErrorResponse{Code: "ExpiredToken"}, CategoryAuth},
		{"missing bucket", minio.ErrorResponse{Code: "NoSuchBucket"}, CategoryStorage},
		{"missing object", minio.ErrorResponse{Code: "NoSuchKey"}, CategoryStorage},
		{"other minio code", minio.ErrorResponse{Code: "SlowDown", Message: "reduce request rate"}, CategoryStorage},
		{"auth substring fallback", errors.New("request failed: AccessDenied"), CategoryAuth},
		{"unknown error", errors.New("disk on fire"), CategoryStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remoteErr := CategorizeS3Error(OpUpload, tt.err)
			require.NotNil(t, remoteErr)
			assert.Equal(t, "s3", remoteErr.Backend)
			assert.Equal(t, tt.wantCategory, remoteErr.Category)
			assert.Equal(t, OpUpload, remoteErr.Op)
		})
	}

	assert.Nil(t, CategorizeS3Error(OpUpload, nil))
}

func TestCategorizeOCIError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCategory string
	}{
		{"401 status", errors.New("GET https://ghcr.io/v2/: unexpected status 401"), CategoryAuth},
		{"unauthorized code", errors.New("response: UNAUTHORIZED: authentication required"), CategoryAuth},
		{"403 status", errors.New("unexpected status 403 Forbidden"), CategoryAuth},
		{"404 status", errors.New("unexpected status 404"), CategoryStorage},
		{"registry down", errors.New("unexpected status 503"), CategoryStorage},
		{"unknown error", errors.New("manifest digest mismatch"), CategoryStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remoteErr := CategorizeOCIError(OpDownload, tt.err)
			require.NotNil(t, remoteErr)
			assert.Equal(t, "oci", remoteErr.Backend)
			assert.Equal(t, tt.wantCategory, remoteErr.Category)
		})
	}

	assert.Nil(t, CategorizeOCIError(OpDownload, nil))
}

func TestRemoteError_MatchesStorageUnavailable(t *testing.T) {
	remoteErr := CategorizeS3Error(OpConnect, errors.New("connection refused"))
	assert.ErrorIs(t, remoteErr, ErrStorageUnavailable)

	wrapped := fmt.Errorf("saving catalog: %w", remoteErr)
	assert.ErrorIs(t, wrapped, ErrStorageUnavailable)
}

func TestRegistryAuthHint(t *testing.T) {
	remoteErr := CategorizeOCIError(OpUpload, errors.New("PUT https://ghcr.io/v2/acme/repo: unexpected status 401"))
	assert.Contains(t, remoteErr.Error(), "write:packages")

	remoteErr = CategorizeOCIError(OpUpload, errors.New("unexpected status 401 from registry.example.com"))
	assert.NotContains(t, remoteErr.Error(), "write:packages")
}
