// Package server accepts game clients over TCP and runs one session per
// connection.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/demesup/awale/internal/dependencies/random"
	"github.com/demesup/awale/internal/session"
)

// Config holds configuration for the TCP game server
type Config struct {
	Addr            string
	MaxLineLength   int
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sensible defaults for server configuration
func DefaultConfig() Config {
	return Config{
		Addr:            ":4000",
		MaxLineLength:   4096,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server accepts connections and serves sessions until shut down
type Server struct {
	config     Config
	hub        *session.Hub
	handler    session.Handler
	sessionCfg session.Config
	ids        random.Random
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	closing  bool

	sessions   sync.WaitGroup
	sessionCtx context.Context
	cancel     context.CancelFunc
}

// New creates a server. Connection IDs are drawn from ids.
func New(
	config Config,
	hub *session.Hub,
	handler session.Handler,
	sessionCfg session.Config,
	ids random.Random,
	logger *slog.Logger,
) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config:     config,
		hub:        hub,
		handler:    handler,
		sessionCfg: sessionCfg,
		ids:        ids,
		logger:     logger.With("component", "server"),
		sessionCtx: ctx,
		cancel:     cancel,
	}
}

// Listen binds the configured address
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or the configured one before Listen
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// Serve accepts connections until Shutdown is called. Listen must have
// succeeded first.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server is not listening")
	}

	s.logger.Info("accepting connections", slog.String("addr", ln.Addr().String()))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosing() {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("accept timeout", slog.String("error", err.Error()))
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.sessions.Add(1)
		go s.serveConn(conn)
	}
}

// ListenAndServe binds and serves
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.sessions.Done()

	id := s.ids.NewID()
	lc := newLineConn(conn, s.config.MaxLineLength, s.config.WriteTimeout)
	sess := session.New(id, lc, s.hub, s.handler, s.sessionCfg, s.logger)
	sess.Serve(s.sessionCtx)
}

// Shutdown stops accepting, ends every session and waits for their
// teardown to complete or ctx/the shutdown timeout to expire
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down game server")

	s.mu.Lock()
	s.closing = true
	ln := s.listener
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	select {
	case <-done:
		s.logger.Info("game server stopped")
		return nil
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown error: %w", shutdownCtx.Err())
	}
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}
