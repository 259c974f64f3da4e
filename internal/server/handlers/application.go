package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/installdeck/installdeck/internal/apierrors"
	"github.com/installdeck/installdeck/internal/catalog"
	"github.com/installdeck/installdeck/internal/models"
)

// ApplicationHandler handles application and package CRUD operations
type ApplicationHandler struct {
	store   catalog.Store
	metrics *MetricsHandler
	logger  *slog.Logger
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(store catalog.Store, metrics *MetricsHandler, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// CreateApplication handles POST /api/v1/applications.
// The application id is generated server-side when absent.
func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var app models.Application
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		h.logger.Warn("Failed to decode application creation request",
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Invalid JSON in request body", http.StatusBadRequest, nil)
		return
	}

	if app.ID == "" {
		app.ID = uuid.New().String()
	}

	if err := models.ValidateApplication(&app); err != nil {
		h.logger.Warn("Application validation failed",
			"application", app.ID,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := h.store.CreateApplication(r.Context(), &app); err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "application")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	h.metrics.IncrementApplicationWrites()
	h.logger.Info("Application created",
		"application", app.ID,
		"name", app.Name,
		"package_count", len(app.Packages),
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(app)
}

// GetApplication handles GET /api/v1/applications/{id}
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	app, err := h.store.GetApplication(r.Context(), id)
	if err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "application")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(app)
}

// UpdateApplication handles PUT /api/v1/applications/{id}
func (h *ApplicationHandler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var app models.Application
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		h.logger.Warn("Failed to decode application update request",
			"application", id,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Invalid JSON in request body", http.StatusBadRequest, nil)
		return
	}

	if app.ID != id {
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Application id in URL must match id in body", http.StatusBadRequest, nil)
		return
	}

	if err := models.ValidateApplication(&app); err != nil {
		h.logger.Warn("Application validation failed",
			"application", app.ID,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := h.store.UpdateApplication(r.Context(), &app); err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "application")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	h.metrics.IncrementApplicationWrites()
	h.logger.Info("Application updated",
		"application", app.ID,
		"package_count", len(app.Packages),
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(app)
}

// DeleteApplication handles DELETE /api/v1/applications/{id}
func (h *ApplicationHandler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteApplication(r.Context(), id); err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "application")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	h.metrics.IncrementApplicationWrites()
	h.logger.Info("Application deleted",
		"application", id,
		"remote_addr", r.RemoteAddr)

	w.WriteHeader(http.StatusNoContent)
}

// ListApplications handles GET /api/v1/applications
func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.store.ListApplications(r.Context())
	if err != nil {
		h.logger.Error("Failed to list applications", "error", err)
		apierrors.WriteError(w, apierrors.ErrCodeCatalogUnavailable, "Failed to list applications", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(apps)
}

// CreatePackage handles POST /api/v1/applications/{id}/packages
func (h *ApplicationHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var pkg models.Package
	if err := json.NewDecoder(r.Body).Decode(&pkg); err != nil {
		h.logger.Warn("Failed to decode package creation request",
			"application", id,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Invalid JSON in request body", http.StatusBadRequest, nil)
		return
	}

	if err := models.ValidatePackage(&pkg); err != nil {
		h.logger.Warn("Package validation failed",
			"application", id,
			"source", pkg.SourceSlug,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := h.store.CreatePackage(r.Context(), id, &pkg); err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "package")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	h.metrics.IncrementPackageWrites()
	h.logger.Info("Package created",
		"application", id,
		"source", pkg.SourceSlug,
		"identifier", pkg.Identifier,
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(pkg)
}

// DeletePackage handles DELETE /api/v1/applications/{id}/packages/{source}
func (h *ApplicationHandler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	source := chi.URLParam(r, "source")

	if err := h.store.DeletePackage(r.Context(), id, source); err != nil {
		code, msg, status := apierrors.MapCatalogError(err, "package")
		apierrors.WriteError(w, code, msg, status, nil)
		return
	}

	h.metrics.IncrementPackageWrites()
	h.logger.Info("Package deleted",
		"application", id,
		"source", source,
		"remote_addr", r.RemoteAddr)

	w.WriteHeader(http.StatusNoContent)
}
