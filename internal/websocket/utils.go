package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// readWait must exceed the client's ping interval; a silent client is
	// treated as gone and its session discarded.
	readWait = 2 * time.Minute
)

// Conn serializes writes to a gorilla connection, which allows only one
// concurrent writer. The session runner and the read loop both write.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// NewConn wraps ws.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// WriteTyped sends a strongly-typed payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// WriteEvent sends an event frame with optional data.
func (c *Conn) WriteEvent(ev Event, data interface{}) error {
	return c.WriteTyped(EventMessage{Event: ev, Data: data})
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(code, errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Code:  code,
		Error: errMsg,
	})
}

// Close sends a close frame with reason and closes the connection.
func (c *Conn) Close(code int, reason string) error {
	c.mu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	c.mu.Unlock()
	return c.ws.Close()
}

// ReadEnvelope reads one client frame and peeks its action.
// It sets a read deadline.
func (c *Conn) ReadEnvelope() (*RequestEnvelope, error) {
	c.ws.SetReadDeadline(time.Now().Add(readWait))
	_, raw, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	env := &RequestEnvelope{Raw: raw}
	if err := json.Unmarshal(raw, env); err != nil {
		return nil, err
	}
	return env, nil
}

// Decode unmarshals the full frame into v.
func (e *RequestEnvelope) Decode(v interface{}) error {
	return json.Unmarshal(e.Raw, v)
}
