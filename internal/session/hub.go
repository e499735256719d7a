package session

import (
	"log/slog"
	"sync"
	"time"
)

// Hub maps connection IDs to clients and delivers asynchronous messages.
// It implements the registry's Notifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger.With(slog.String("component", "hub")),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client registered",
		slog.String("conn_id", client.id),
		slog.String("remote_addr", client.remoteAddr),
		slog.Int("total_clients", count))
}

// Unregister removes a client from the hub and closes it
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client.id]
	delete(h.clients, client.id)
	count := len(h.clients)
	h.mu.Unlock()

	client.Close()
	if ok {
		h.logger.Info("client unregistered",
			slog.String("conn_id", client.id),
			slog.Duration("connection_duration", time.Since(client.connectedAt)),
			slog.Int("total_clients", count))
	}
}

// Deliver queues msg for the client with connID. It never blocks: if the
// client's buffer is full the message is dropped.
func (h *Hub) Deliver(connID string, msg string) {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if !client.TrySend(msg) {
		h.logger.Warn("message dropped - client buffer full",
			slog.String("conn_id", connID))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
