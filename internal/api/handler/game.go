package handler

import (
	"net/http"

	"github.com/demesup/awale/internal/api/response"
	"github.com/demesup/awale/internal/services/game"
)

// GameHandler handles game endpoints
type GameHandler struct {
	games *game.Controller
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(games *game.Controller) *GameHandler {
	return &GameHandler{games: games}
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	active := h.games.Games()
	games := make([]response.Game, 0, len(active))
	for _, ag := range active {
		games = append(games, response.GameFromActive(ag))
	}
	response.JSON(w, http.StatusOK, response.Games{
		Games: games,
		Count: len(games),
	})
}
