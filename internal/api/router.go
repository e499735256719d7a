package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/demesup/awale/internal/api/handler"
	"github.com/demesup/awale/internal/api/middleware"
	"github.com/demesup/awale/internal/services/game"
	"github.com/demesup/awale/internal/services/registry"
	sharedmw "github.com/demesup/awale/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Registry       *registry.Registry
	GameController *game.Controller
	// Gateway serves /ws; the route is omitted when nil
	Gateway http.Handler
}

// NewRouter creates the status API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.Registry)
	playerHandler := handler.NewPlayerHandler(cfg.Registry)
	gameHandler := handler.NewGameHandler(cfg.GameController)

	// Create middleware
	loggingMiddleware := sharedmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Read-only status API
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/online", playerHandler.Online).Methods(http.MethodGet)
	api.HandleFunc("/players/{handle}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)

	// Line protocol over WebSocket
	if cfg.Gateway != nil {
		r.Handle("/ws", cfg.Gateway).Methods(http.MethodGet)
	}

	return r
}
