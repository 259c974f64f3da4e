package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/installdeck/installdeck/internal/catalog"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Generation errors
	ErrCodePlatformNotFound     ErrorCode = "PLATFORM_NOT_FOUND"
	ErrCodePlatformNoSources    ErrorCode = "PLATFORM_NO_SOURCES"
	ErrCodeApplicationsNotFound ErrorCode = "APPLICATIONS_NOT_FOUND"

	// Catalog CRUD errors
	ErrCodeSourceNotFound           ErrorCode = "SOURCE_NOT_FOUND"
	ErrCodeSourceAlreadyExists      ErrorCode = "SOURCE_ALREADY_EXISTS"
	ErrCodeSourceInUse              ErrorCode = "SOURCE_IN_USE"
	ErrCodeApplicationNotFound      ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeApplicationAlreadyExists ErrorCode = "APPLICATION_ALREADY_EXISTS"
	ErrCodePackageNotFound          ErrorCode = "PACKAGE_NOT_FOUND"
	ErrCodePackageAlreadyExists     ErrorCode = "PACKAGE_ALREADY_EXISTS"
	ErrCodePlatformAlreadyExists    ErrorCode = "PLATFORM_ALREADY_EXISTS"
	ErrCodeUnknownSource            ErrorCode = "UNKNOWN_SOURCE"

	// Shared errors
	ErrCodeValidationError    ErrorCode = "VALIDATION_ERROR"
	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, code ErrorCode, message string, statusCode int, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// MapCatalogError maps catalog store errors to HTTP responses.
// resourceType is one of "source", "platform", "application" or "package".
func MapCatalogError(err error, resourceType string) (ErrorCode, string, int) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		switch resourceType {
		case "source":
			return ErrCodeSourceNotFound, "Source not found", http.StatusNotFound
		case "platform":
			return ErrCodePlatformNotFound, "Platform not found", http.StatusNotFound
		case "application":
			return ErrCodeApplicationNotFound, "Application not found", http.StatusNotFound
		case "package":
			return ErrCodePackageNotFound, "Package not found", http.StatusNotFound
		default:
			return ErrCodeSourceNotFound, "Resource not found", http.StatusNotFound
		}

	case errors.Is(err, catalog.ErrAlreadyExists):
		switch resourceType {
		case "source":
			return ErrCodeSourceAlreadyExists, "Source already exists", http.StatusConflict
		case "platform":
			return ErrCodePlatformAlreadyExists, "Platform already exists", http.StatusConflict
		case "application":
			return ErrCodeApplicationAlreadyExists, "Application already exists", http.StatusConflict
		case "package":
			return ErrCodePackageAlreadyExists, "Application already has a package for this source", http.StatusConflict
		default:
			return ErrCodeSourceAlreadyExists, "Resource already exists", http.StatusConflict
		}

	case errors.Is(err, catalog.ErrUnknownSource):
		return ErrCodeUnknownSource, "Referenced source does not exist", http.StatusBadRequest

	case errors.Is(err, catalog.ErrSourceInUse):
		return ErrCodeSourceInUse, "Source is referenced by a platform or package", http.StatusConflict

	case errors.Is(err, catalog.ErrStorageUnavailable):
		return ErrCodeCatalogUnavailable, "Catalog storage unavailable", http.StatusServiceUnavailable

	default:
		return ErrCodeCatalogUnavailable, "Internal server error", http.StatusInternalServerError
	}
}
