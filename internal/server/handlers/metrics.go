package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// MetricsHandler tracks and serves simple request counters
type MetricsHandler struct {
	logger *slog.Logger

	totalRequests     atomic.Uint64
	generateRequests  atomic.Uint64
	commandsGenerated atomic.Uint64
	sourceWrites      atomic.Uint64
	platformWrites    atomic.Uint64
	applicationWrites atomic.Uint64
	packageWrites     atomic.Uint64
	authFailures      atomic.Uint64
	validationErrors  atomic.Uint64
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(logger *slog.Logger) *MetricsHandler {
	return &MetricsHandler{
		logger: logger,
	}
}

// MetricsResponse represents the metrics response
type MetricsResponse struct {
	Total    uint64            `json:"total_requests"`
	ByType   map[string]uint64 `json:"by_type"`
	ByStatus map[string]uint64 `json:"by_status"`
}

// GetMetrics handles GET /api/v1/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	response := MetricsResponse{
		Total: h.totalRequests.Load(),
		ByType: map[string]uint64{
			"generate_requests":  h.generateRequests.Load(),
			"commands_generated": h.commandsGenerated.Load(),
			"source_writes":      h.sourceWrites.Load(),
			"platform_writes":    h.platformWrites.Load(),
			"application_writes": h.applicationWrites.Load(),
			"package_writes":     h.packageWrites.Load(),
		},
		ByStatus: map[string]uint64{
			"auth_failures":     h.authFailures.Load(),
			"validation_errors": h.validationErrors.Load(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *MetricsHandler) IncrementTotalRequests() {
	h.totalRequests.Add(1)
}

func (h *MetricsHandler) IncrementGenerateRequests() {
	h.totalRequests.Add(1)
	h.generateRequests.Add(1)
}

func (h *MetricsHandler) AddCommandsGenerated(n uint64) {
	h.commandsGenerated.Add(n)
}

func (h *MetricsHandler) IncrementSourceWrites() {
	h.sourceWrites.Add(1)
}

func (h *MetricsHandler) IncrementPlatformWrites() {
	h.platformWrites.Add(1)
}

func (h *MetricsHandler) IncrementApplicationWrites() {
	h.applicationWrites.Add(1)
}

func (h *MetricsHandler) IncrementPackageWrites() {
	h.packageWrites.Add(1)
}

func (h *MetricsHandler) IncrementAuthFailures() {
	h.authFailures.Add(1)
}

func (h *MetricsHandler) IncrementValidationErrors() {
	h.validationErrors.Add(1)
}
