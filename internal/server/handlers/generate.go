package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/installdeck/installdeck/internal/apierrors"
	"github.com/installdeck/installdeck/internal/catalog"
	"github.com/installdeck/installdeck/internal/engine"
)

var validate = validator.New()

// GenerateRequest is the request body for POST /api/v1/generate
type GenerateRequest struct {
	PlatformSlug        string   `json:"platformSlug" validate:"required"`
	ApplicationIDs      []string `json:"applicationIds" validate:"required,min=1,dive,required"`
	PreferredSourceSlug string   `json:"preferredSourceSlug" validate:"omitempty"`
	NixInstallerVariant string   `json:"nixInstallerVariant" validate:"omitempty,oneof=nix-shell nix-env nix-flakes"`
}

// GenerateHandler handles install command generation requests
type GenerateHandler struct {
	store   catalog.Store
	engine  *engine.Engine
	metrics *MetricsHandler
	logger  *slog.Logger
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(store catalog.Store, eng *engine.Engine, metrics *MetricsHandler, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		store:   store,
		engine:  eng,
		metrics: metrics,
		logger:  logger,
	}
}

// Generate handles POST /api/v1/generate
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	h.metrics.IncrementGenerateRequests()

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode generate request",
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Invalid JSON in request body", http.StatusBadRequest, nil)
		return
	}

	if err := validate.Struct(&req); err != nil {
		h.logger.Warn("Generate request validation failed",
			"platform", req.PlatformSlug,
			"error", err,
			"remote_addr", r.RemoteAddr)
		h.metrics.IncrementValidationErrors()
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return
	}

	platform, err := h.store.ResolvePlatform(r.Context(), req.PlatformSlug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			apierrors.WriteError(w, apierrors.ErrCodePlatformNotFound, "Platform not found", http.StatusNotFound, map[string]string{
				"platform": req.PlatformSlug,
			})
			return
		}
		h.logger.Error("Failed to resolve platform",
			"platform", req.PlatformSlug,
			"error", err)
		apierrors.WriteError(w, apierrors.ErrCodeCatalogUnavailable, "Failed to resolve platform", http.StatusInternalServerError, nil)
		return
	}

	apps, err := h.store.GetApplications(r.Context(), req.ApplicationIDs)
	if err != nil {
		h.logger.Error("Failed to load applications",
			"platform", req.PlatformSlug,
			"error", err)
		apierrors.WriteError(w, apierrors.ErrCodeCatalogUnavailable, "Failed to load applications", http.StatusInternalServerError, nil)
		return
	}

	result, err := h.engine.Generate(engine.Request{
		Platform:        platform,
		Applications:    apps,
		PreferredSource: req.PreferredSourceSlug,
		NixVariant:      req.NixInstallerVariant,
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNoSources):
			apierrors.WriteError(w, apierrors.ErrCodePlatformNoSources, "Platform has no supported sources", http.StatusBadRequest, map[string]string{
				"platform": req.PlatformSlug,
			})
		case errors.Is(err, engine.ErrNoApplications):
			apierrors.WriteError(w, apierrors.ErrCodeApplicationsNotFound, "None of the requested applications exist", http.StatusNotFound, nil)
		default:
			h.logger.Error("Generation failed",
				"platform", req.PlatformSlug,
				"error", err)
			apierrors.WriteError(w, apierrors.ErrCodeCatalogUnavailable, "Generation failed", http.StatusInternalServerError, nil)
		}
		return
	}

	h.metrics.AddCommandsGenerated(uint64(len(result.Commands)))
	h.logger.Info("Commands generated",
		"platform", req.PlatformSlug,
		"applications", len(req.ApplicationIDs),
		"commands", len(result.Commands),
		"warnings", len(result.Warnings),
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}
