package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// sendBufferSize is the per-connection outbound queue length.
const sendBufferSize = 64

// writeTimeout bounds a single websocket write.
const writeTimeout = 10 * time.Second

// ErrClientClosed is returned by Send after the connection is closed.
var ErrClientClosed = errors.New("client connection closed")

// ErrSendBufferFull is returned when a client cannot keep up with its
// outbound event stream.
var ErrSendBufferFull = errors.New("client send buffer full")

// ErrMalformedFrame is returned by ReadEnvelope for frames that are not
// valid event envelopes. The caller may keep reading; the connection is
// still usable.
var ErrMalformedFrame = errors.New("malformed event frame")

// WebSocketClient wraps a WebSocket connection with a buffered write
// pump so the event loop never blocks on a slow consumer.
type WebSocketClient struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocketClient creates a WebSocketClient from an upgraded connection.
func NewWebSocketClient(conn *websocket.Conn, maxMessageSize int64) *WebSocketClient {
	if maxMessageSize > 0 {
		conn.SetReadLimit(maxMessageSize)
	}
	return &WebSocketClient{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send marshals the event into an envelope and enqueues it. Events are
// dropped with an error rather than blocking when the buffer is full.
func (c *WebSocketClient) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrSendBufferFull
	}
}

// WritePump delivers queued frames until the connection closes.
// Run it on its own goroutine, one per connection.
func (c *WebSocketClient) WritePump() {
	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// ReadEnvelope blocks until the next inbound event frame. A frame that
// isn't a valid envelope yields ErrMalformedFrame; any other error means
// the connection is gone.
func (c *WebSocketClient) ReadEnvelope() (*Envelope, error) {
	_, message, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil || env.Event == "" {
		return nil, ErrMalformedFrame
	}
	return &env, nil
}

// Close closes the WebSocket connection and wakes the write pump.
func (c *WebSocketClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// RemoteAddr returns the remote address as a string.
func (c *WebSocketClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
