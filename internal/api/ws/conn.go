package ws

import (
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// conn carries protocol lines over WebSocket text frames, one line per
// frame in each direction
type conn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
}

func newConn(ws *websocket.Conn, maxLine int64, writeTimeout time.Duration) *conn {
	ws.SetReadLimit(maxLine)
	// Clear any deadline left by the HTTP server on the hijacked connection
	_ = ws.SetReadDeadline(time.Time{})
	return &conn{ws: ws, writeTimeout: writeTimeout}
}

// ReadLine returns the next text frame. Binary frames are ignored.
func (c *conn) ReadLine() (string, error) {
	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			return "", err
		}
		if kind == websocket.TextMessage {
			return strings.TrimRight(string(data), "\r\n"), nil
		}
	}
}

// WriteLine sends msg as one text frame
func (c *conn) WriteLine(msg string) error {
	if c.writeTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.ws.WriteMessage(websocket.TextMessage, []byte(strings.TrimRight(msg, "\n")))
}

// Close sends a normal closure frame, then closes the socket
func (c *conn) Close() error {
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.ws.Close()
}

func (c *conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}
