package testutil

import "io"

// StubConn is a session.Conn that never yields input and discards output.
// It lets tests build sessions and drive a handler directly.
type StubConn struct {
	Addr string
}

func (c *StubConn) ReadLine() (string, error) { return "", io.EOF }
func (c *StubConn) WriteLine(string) error    { return nil }
func (c *StubConn) Close() error              { return nil }

func (c *StubConn) RemoteAddr() string {
	if c.Addr == "" {
		return "127.0.0.1:0"
	}
	return c.Addr
}
