package transport

import (
	"errors"

	"github.com/kvgrid/kvgrid/rpc/common"
)

// --------------------------------------------------------------------------
// Transport error taxonomy
// --------------------------------------------------------------------------

var (
	// ErrTimeout is returned when a request's deadline elapses before the
	// server responds
	ErrTimeout = errors.New("transport: request timed out")

	// ErrConnection is returned when no healthy connection to the target
	// server is available or an established connection fails
	ErrConnection = errors.New("transport: connection error")

	// ErrClosed is returned when a request is issued on a closed transport
	ErrClosed = errors.New("transport: closed")
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests.
// This function is called by a server transport layer when a request is
// received. It takes the raw request payload and returns the raw response.
type ServerHandleFunc func(req []byte) (resp []byte)

// IServerTransport is the interface for the server-side transport layer
type IServerTransport interface {
	// RegisterHandler registers a handler for the transport layer.
	// This handler is called when a request is received.
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and listens for incoming requests
	Listen(config common.ServerConfig) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IClientTransport is the interface the table client consumes to execute
// remote calls. A server is addressed by its endpoint as handed out by the
// region locator; connections are opened lazily and reused.
type IClientTransport interface {
	// Connect initializes the transport with the given configuration.
	// No connections are dialed until the first Send to a server.
	Connect(config common.ClientConfig) error
	// Send sends a request to the given server and returns the response.
	// Errors wrap ErrTimeout, ErrConnection or ErrClosed.
	Send(server string, req []byte) (resp []byte, err error)
	// Close closes all connections held by the transport
	Close() error
}
