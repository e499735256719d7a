package handler

import (
	"net/http"

	"github.com/demesup/awale/internal/api/response"
	"github.com/demesup/awale/internal/services/registry"
)

// HealthHandler reports liveness together with lobby counts
type HealthHandler struct {
	registry *registry.Registry
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(registry *registry.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	players, online, games := h.registry.Counts()
	response.JSON(w, http.StatusOK, response.Health{
		Status:  "ok",
		Players: players,
		Online:  online,
		Games:   games,
	})
}
