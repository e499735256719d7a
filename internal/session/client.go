package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClientClosed is returned when sending to a closed client
var ErrClientClosed = errors.New("client closed")

// Client is the outbound queue of one connection. Replies and asynchronous
// notifications share the queue, so each connection sees them in the order
// they were enqueued.
type Client struct {
	id          string
	remoteAddr  string
	connectedAt time.Time

	send      chan string
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client with the given outbound buffer size
func NewClient(id, remoteAddr string, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = DefaultConfig().SendBufferSize
	}
	return &Client{
		id:          id,
		remoteAddr:  remoteAddr,
		connectedAt: time.Now(),
		send:        make(chan string, bufferSize),
		done:        make(chan struct{}),
	}
}

// ID returns the connection ID the registry knows this client by
func (c *Client) ID() string {
	return c.id
}

// TrySend enqueues msg without blocking and reports whether it was queued
func (c *Client) TrySend(msg string) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Send enqueues msg, waiting for buffer space
func (c *Client) Send(ctx context.Context, msg string) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return ErrClientClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the client. Messages already queued are still written by
// WritePump.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// WritePump writes queued messages to w until the client is closed or a
// write fails
func (c *Client) WritePump(w LineWriter) error {
	for {
		select {
		case msg := <-c.send:
			if err := w.WriteLine(msg); err != nil {
				return err
			}
		case <-c.done:
			for {
				select {
				case msg := <-c.send:
					if err := w.WriteLine(msg); err != nil {
						return err
					}
				default:
					return nil
				}
			}
		}
	}
}
