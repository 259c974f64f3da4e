package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/installdeck/installdeck/internal/apierrors"
	"github.com/installdeck/installdeck/internal/catalog"
	"github.com/installdeck/installdeck/internal/models"
)

// SourceHandler handles package source CRUD operations
type SourceHandler struct {
	store   catalog.Store
	metrics *MetricsHandler
	logger  *slog.Logger
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(store catalog.Store, metrics *MetricsHandler, logger *slog.Logger) *SourceHandler {
	return &SourceHandler{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// CreateSource handles POST /api/v1/sources
func (h *SourceHandler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var source models.Source
	if err := json.NewDecoder(r.Body).Decode(&source); err != nil {
		h.logger.Warn("Failed to decode source creation request",
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Invalid JSON in request body", http.StatusBadRequest, nil)
		return
	}

	if err := models.ValidateSource(&source); err != nil {
		h.logger.Warn("Source validation failed",
			"source", source.Slug,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := h.store.CreateSource(r.Context(), &source); err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "source")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	h.metrics.IncrementSourceWrites()
	h.logger.Info("Source created",
		"source", source.Slug,
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(source)
}

// GetSource handles GET /api/v1/sources/{slug}
func (h *SourceHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	source, err := h.store.GetSource(r.Context(), slug)
	if err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "source")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(source)
}

// UpdateSource handles PUT /api/v1/sources/{slug}
func (h *SourceHandler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var source models.Source
	if err := json.NewDecoder(r.Body).Decode(&source); err != nil {
		h.logger.Warn("Failed to decode source update request",
			"source", slug,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Invalid JSON in request body", http.StatusBadRequest, nil)
		return
	}

	if source.Slug != slug {
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Source slug in URL must match slug in body", http.StatusBadRequest, nil)
		return
	}

	if err := models.ValidateSource(&source); err != nil {
		h.logger.Warn("Source validation failed",
			"source", source.Slug,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := h.store.UpdateSource(r.Context(), &source); err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "source")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	h.metrics.IncrementSourceWrites()
	h.logger.Info("Source updated",
		"source", source.Slug,
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(source)
}

// DeleteSource handles DELETE /api/v1/sources/{slug}
func (h *SourceHandler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if err := h.store.DeleteSource(r.Context(), slug); err != nil {
		if errors.Is(err, catalog.ErrSourceInUse) {
			apierrors.WriteError(w, apierrors.ErrCodeSourceInUse, "Source is referenced by a platform or package", http.StatusConflict, map[string]string{
				"source": slug,
			})
			return
		}
		code, msg, status := apierrors.MapCatalogError(err, "source")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	h.metrics.IncrementSourceWrites()
	h.logger.Info("Source deleted",
		"source", slug,
		"remote_addr", r.RemoteAddr)

	w.WriteHeader(http.StatusNoContent)
}

// ListSources handles GET /api/v1/sources
func (h *SourceHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.store.ListSources(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sources", "error", err)
		apierrors.WriteError(w, apierrors.ErrCodeCatalogUnavailable, "Failed to list sources", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(sources)
}
