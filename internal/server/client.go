package server

// Client is the transport side of one connection. The world event loop
// only ever enqueues outbound events through this interface; delivery
// happens on the client's own write pump so a slow or dead connection
// never blocks the loop.
type Client interface {
	// Send enqueues one event for delivery.
	Send(event string, data any) error

	// Close tears the connection down. Safe to call more than once.
	Close() error

	// RemoteAddr returns the remote address as a string.
	RemoteAddr() string
}
