package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/installdeck/installdeck/internal/apierrors"
	"github.com/installdeck/installdeck/internal/auth"
)

// WhoamiHandler handles whoami requests
type WhoamiHandler struct {
	authenticator auth.Authenticator
	logger        *slog.Logger
}

// NewWhoamiHandler creates a new whoami handler
func NewWhoamiHandler(authenticator auth.Authenticator, logger *slog.Logger) *WhoamiHandler {
	return &WhoamiHandler{
		authenticator: authenticator,
		logger:        logger,
	}
}

// WhoamiResponse represents the whoami response
type WhoamiResponse struct {
	Username string `json:"username"`
}

// GetWhoami handles GET /api/v1/whoami. It requires authentication and
// returns the authenticated username.
func (h *WhoamiHandler) GetWhoami(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		// GET requests pass through RequireAuth unauthenticated
		authenticated, err := h.authenticator.Authenticate(r)
		if err != nil {
			h.logger.Debug("Authentication failed for whoami", "error", err)
			w.Header().Set("WWW-Authenticate", `Basic realm="installdeck"`)
			apierrors.WriteError(w, apierrors.ErrCodeUnauthorized, "Unauthorized", http.StatusUnauthorized, nil)
			return
		}
		user = authenticated
	}

	response := WhoamiResponse{
		Username: user.Username,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode whoami response", "error", err)
	}
}
