package server

import (
	"bufio"
	"net"
	"strings"
	"time"
)

// lineConn adapts a net.Conn to the session's line-oriented Conn
type lineConn struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writeTimeout time.Duration
}

func newLineConn(conn net.Conn, maxLine int, writeTimeout time.Duration) *lineConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 1024), maxLine)
	return &lineConn{
		conn:         conn,
		scanner:      scanner,
		writeTimeout: writeTimeout,
	}
}

// ReadLine returns the next line without its terminator. Lines longer than
// the configured maximum end the connection.
func (c *lineConn) ReadLine() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", net.ErrClosed
	}
	return strings.TrimRight(c.scanner.Text(), "\r"), nil
}

// WriteLine writes msg followed by a newline unless it already ends in one
func (c *lineConn) WriteLine(msg string) error {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.conn.Write([]byte(msg))
	return err
}

func (c *lineConn) Close() error {
	return c.conn.Close()
}

func (c *lineConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
