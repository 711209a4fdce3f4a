package dispatch

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Sender is what the registry needs from a connection. Production code uses
// *Conn; tests substitute recorders.
type Sender interface {
	Send(frame any) error
}

// Conn wraps a websocket connection with a write lock so frames from
// concurrent publishes never interleave on the wire.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) Send(frame any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(frame)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
