package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/demesup/awale/internal/api/apierr"
	"github.com/demesup/awale/internal/api/response"
	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/services/registry"
)

// PlayerHandler handles player endpoints
type PlayerHandler struct {
	registry *registry.Registry
}

// NewPlayerHandler creates a new PlayerHandler
func NewPlayerHandler(registry *registry.Registry) *PlayerHandler {
	return &PlayerHandler{registry: registry}
}

// Online handles GET /api/v1/players/online
func (h *PlayerHandler) Online(w http.ResponseWriter, r *http.Request) {
	handles := h.registry.ListOnline("")
	if handles == nil {
		handles = []string{}
	}
	response.JSON(w, http.StatusOK, response.OnlinePlayers{
		Players: handles,
		Count:   len(handles),
	})
}

// Get handles GET /api/v1/players/{handle}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	if handle == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("handle is required"))
		return
	}

	p, ok := h.registry.Lookup(handle)
	if !ok {
		apierr.WriteError(w, model.ErrPlayerNotFound)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(p))
}
