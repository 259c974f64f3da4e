package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/installdeck/installdeck/internal/apierrors"
	"github.com/installdeck/installdeck/internal/catalog"
	"github.com/installdeck/installdeck/internal/models"
)

// PlatformHandler handles platform CRUD operations
type PlatformHandler struct {
	store   catalog.Store
	metrics *MetricsHandler
	logger  *slog.Logger
}

// NewPlatformHandler creates a new platform handler
func NewPlatformHandler(store catalog.Store, metrics *MetricsHandler, logger *slog.Logger) *PlatformHandler {
	return &PlatformHandler{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// CreatePlatform handles POST /api/v1/platforms
func (h *PlatformHandler) CreatePlatform(w http.ResponseWriter, r *http.Request) {
	var platform models.Platform
	if err := json.NewDecoder(r.Body).Decode(&platform); err != nil {
		h.logger.Warn("Failed to decode platform creation request",
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Invalid JSON in request body", http.StatusBadRequest, nil)
		return
	}

	if err := models.ValidatePlatform(&platform); err != nil {
		h.logger.Warn("Platform validation failed",
			"platform", platform.Slug,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := h.store.CreatePlatform(r.Context(), &platform); err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "platform")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	h.metrics.IncrementPlatformWrites()
	h.logger.Info("Platform created",
		"platform", platform.Slug,
		"source_count", len(platform.Sources),
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(platform)
}

// GetPlatform handles GET /api/v1/platforms/{slug}
func (h *PlatformHandler) GetPlatform(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	platform, err := h.store.GetPlatform(r.Context(), slug)
	if err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "platform")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(platform)
}

// UpdatePlatform handles PUT /api/v1/platforms/{slug}
func (h *PlatformHandler) UpdatePlatform(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var platform models.Platform
	if err := json.NewDecoder(r.Body).Decode(&platform); err != nil {
		h.logger.Warn("Failed to decode platform update request",
			"platform", slug,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Invalid JSON in request body", http.StatusBadRequest, nil)
		return
	}

	if platform.Slug != slug {
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Platform slug in URL must match slug in body", http.StatusBadRequest, nil)
		return
	}

	if err := models.ValidatePlatform(&platform); err != nil {
		h.logger.Warn("Platform validation failed",
			"platform", platform.Slug,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := h.store.UpdatePlatform(r.Context(), &platform); err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "platform")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	h.metrics.IncrementPlatformWrites()
	h.logger.Info("Platform updated",
		"platform", platform.Slug,
		"source_count", len(platform.Sources),
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(platform)
}

// DeletePlatform handles DELETE /api/v1/platforms/{slug}
func (h *PlatformHandler) DeletePlatform(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if err := h.store.DeletePlatform(r.Context(), slug); err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "platform")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	h.metrics.IncrementPlatformWrites()
	h.logger.Info("Platform deleted",
		"platform", slug,
		"remote_addr", r.RemoteAddr)

	w.WriteHeader(http.StatusNoContent)
}

// ListPlatforms handles GET /api/v1/platforms
func (h *PlatformHandler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.store.ListPlatforms(r.Context())
	if err != nil {
		h.logger.Error("Failed to list platforms", "error", err)
		apierrors.WriteError(w, apierrors.ErrCodeCatalogUnavailable, "Failed to list platforms", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(platforms)
}
