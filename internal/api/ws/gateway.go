// Package ws serves the line protocol over WebSocket so browser clients
// can join the same lobby as TCP clients.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/demesup/awale/internal/dependencies/random"
	"github.com/demesup/awale/internal/session"
)

// Config holds WebSocket gateway settings
type Config struct {
	MaxLineLength int64
	WriteTimeout  time.Duration
	// AllowedOrigins restricts browser origins; empty allows any
	AllowedOrigins []string
}

// DefaultConfig returns default gateway configuration
func DefaultConfig() Config {
	return Config{
		MaxLineLength: 4096,
		WriteTimeout:  10 * time.Second,
	}
}

// Gateway upgrades HTTP requests and runs a session per WebSocket
type Gateway struct {
	config     Config
	upgrader   websocket.Upgrader
	hub        *session.Hub
	handler    session.Handler
	sessionCfg session.Config
	ids        random.Random
	logger     *slog.Logger

	sessions sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewGateway creates a WebSocket gateway
func NewGateway(
	config Config,
	hub *session.Hub,
	handler session.Handler,
	sessionCfg session.Config,
	ids random.Random,
	logger *slog.Logger,
) *Gateway {
	ctx, cancel := context.WithCancel(context.Background())
	g := &Gateway{
		config:     config,
		hub:        hub,
		handler:    handler,
		sessionCfg: sessionCfg,
		ids:        ids,
		logger:     logger.With("component", "ws"),
		ctx:        ctx,
		cancel:     cancel,
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range g.config.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// ServeHTTP handles GET /ws
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if g.ctx.Err() != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	wsConn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		g.logger.Debug("upgrade failed", slog.String("error", err.Error()))
		return
	}

	g.sessions.Add(1)
	defer g.sessions.Done()

	id := g.ids.NewID()
	c := newConn(wsConn, g.config.MaxLineLength, g.config.WriteTimeout)
	sess := session.New(id, c, g.hub, g.handler, g.sessionCfg, g.logger)
	sess.Serve(g.ctx)
}

// Shutdown ends every WebSocket session and waits for their teardown
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.cancel()

	done := make(chan struct{})
	go func() {
		g.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ws shutdown: %w", ctx.Err())
	}
}
