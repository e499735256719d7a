package session

import (
	"context"
	"log/slog"
)

// LineWriter writes one protocol line, adding the terminator if needed
type LineWriter interface {
	WriteLine(msg string) error
}

// Conn is a line-oriented client connection
type Conn interface {
	LineWriter
	// ReadLine blocks until a full line is available and returns it
	// without its terminator
	ReadLine() (string, error)
	Close() error
	RemoteAddr() string
}

// Handler interprets command lines for a session
type Handler interface {
	// Welcome returns the banner sent when the connection opens
	Welcome() string
	// Handle executes one line and returns the reply and whether the
	// session should end
	Handle(ctx context.Context, s *Session, line string) (reply string, quit bool)
	// Disconnect releases everything the session holds
	Disconnect(ctx context.Context, s *Session)
}

// Config holds per-session settings
type Config struct {
	SendBufferSize int
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		SendBufferSize: 256,
	}
}

// Session is one connected client from accept to disconnect
type Session struct {
	conn    Conn
	client  *Client
	hub     *Hub
	handler Handler
	logger  *slog.Logger

	handle string
}

// New creates a session for conn
func New(id string, conn Conn, hub *Hub, handler Handler, cfg Config, logger *slog.Logger) *Session {
	return &Session{
		conn:    conn,
		client:  NewClient(id, conn.RemoteAddr(), cfg.SendBufferSize),
		hub:     hub,
		handler: handler,
		logger:  logger.With(slog.String("conn_id", id)),
	}
}

// ID returns the connection ID
func (s *Session) ID() string {
	return s.client.id
}

// Handle returns the authenticated handle, or "" before login
func (s *Session) Handle() string {
	return s.handle
}

// SetHandle records the authenticated handle
func (s *Session) SetHandle(handle string) {
	s.handle = handle
	s.logger = s.logger.With(slog.String("handle", handle))
}

// Authenticated reports whether the session has logged in
func (s *Session) Authenticated() bool {
	return s.handle != ""
}

// Logger returns the session logger
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Reply queues a line for this session
func (s *Session) Reply(ctx context.Context, msg string) {
	if err := s.client.Send(ctx, msg); err != nil {
		s.logger.Debug("reply not queued", slog.String("error", err.Error()))
	}
}

// Serve runs the session until the peer disconnects, the handler ends it or
// ctx is cancelled. Disconnect always runs before Serve returns.
func (s *Session) Serve(ctx context.Context) {
	s.hub.Register(s.client)

	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stop()

	written := make(chan struct{})
	go func() {
		defer close(written)
		if err := s.client.WritePump(s.conn); err != nil {
			s.logger.Debug("write failed", slog.String("error", err.Error()))
			s.client.Close()
			_ = s.conn.Close()
		}
	}()

	s.Reply(ctx, s.handler.Welcome())

	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			s.logger.Debug("read ended", slog.String("error", err.Error()))
			break
		}
		reply, quit := s.handler.Handle(ctx, s, line)
		if reply != "" {
			s.Reply(ctx, reply)
		}
		if quit {
			break
		}
	}

	// Teardown must not be cut short by server shutdown
	s.handler.Disconnect(context.WithoutCancel(ctx), s)

	s.hub.Unregister(s.client)
	<-written
	_ = s.conn.Close()
}
