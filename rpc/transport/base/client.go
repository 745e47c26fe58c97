package base

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kvgrid/kvgrid/rpc/common"
	"github.com/kvgrid/kvgrid/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the given server endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	data []byte
	err  error
}

// clientConnection represents a single net connection to one region server
type clientConnection struct {
	conn         net.Conn
	endpoint     string
	stopCh       chan struct{} // Close signal for the reader goroutine
	requestChans *xsync.MapOf[uint64, chan responseResult]
	connMu       sync.Mutex // Protects the connection itself
	parent       *clientTransport
}

// serverGroup holds the connections opened to one region server
type serverGroup struct {
	conns    []*clientConnection
	nextConn uint64 // Atomic counter for Round Robin
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.).
// Region servers are dialed lazily: the first Send to a server opens its
// connection group, later Sends reuse it.
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	groups        *xsync.MapOf[string, *serverGroup]
	groupDialMu   sync.Mutex // Serializes group creation per transport
	nextRequestID uint64     // Atomic counter for unique request IDs
	stopping      atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IClientTransport {
	return &clientTransport{
		connector:     connector,
		groups:        xsync.NewMapOf[string, *serverGroup](),
		nextRequestID: 1, // Start from 1
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	// Connections are dialed lazily per server; only remember the config here
	t.config = config
	t.stopping.Store(false)
	return nil
}

func (t *clientTransport) Send(server string, req []byte) (resp []byte, err error) {
	if t.stopping.Load() {
		return nil, transport.ErrClosed
	}

	// Generate a unique request ID
	requestID := atomic.AddUint64(&t.nextRequestID, 1)

	// Define the send function to be used in retries
	send := func(connection *clientConnection) ([]byte, error) {
		// Test if connection is still valid
		if connection.conn == nil {
			return nil, fmt.Errorf("%w: connection to %s is closed", transport.ErrConnection, server)
		}

		// Create a channel for the response
		respCh := make(chan responseResult, 1)

		// Register the request
		connection.requestChans.Store(requestID, respCh)

		// Ensure we clean up when done
		defer connection.requestChans.Delete(requestID)

		// Set write timeout
		if t.config.TimeoutSecond > 0 {
			timeout := time.Duration(t.config.TimeoutSecond) * time.Second
			connection.conn.SetWriteDeadline(time.Now().Add(timeout))
		}

		// Lock the connection only for writing
		connection.connMu.Lock()
		err := writeFrame(connection.conn, requestID, req)
		connection.connMu.Unlock()

		if err != nil {
			return nil, fmt.Errorf("%w: write to %s: %v", transport.ErrConnection, server, err)
		}

		// Wait for response or timeout
		var timeoutCh <-chan time.Time
		if t.config.TimeoutSecond > 0 {
			timeout := time.Duration(t.config.TimeoutSecond) * time.Second
			timeoutCh = time.After(timeout)
		} else {
			timeoutCh = make(chan time.Time) // Never triggers
		}

		select {
		case result := <-respCh:
			return result.data, result.err
		case <-timeoutCh:
			return nil, fmt.Errorf("%w: %s", transport.ErrTimeout, server)
		}
	}

	// Retry logic with exponential backoff
	var lastErr error

	// We always try at least once, and up to maxRetries times
	maxRetries := t.config.Transport.RetryCount
	if maxRetries < 1 {
		maxRetries = 1
	}

	// Initial backoff duration in milliseconds
	backoffMs := 50

	for i := 0; i < maxRetries; i++ {
		conn, err := t.getConnection(server)
		if err != nil {
			lastErr = err
		} else {
			// Try with this connection
			data, err := send(conn)
			if err == nil {
				return data, nil
			}
			lastErr = err
		}

		Logger.Debugf("Request attempt %d/%d to %s failed: %v", i+1, maxRetries, server, lastErr)

		if i < maxRetries-1 {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			time.Sleep(time.Duration(jitter) * time.Millisecond)
			backoffMs *= 2
		}
	}

	// All attempts failed
	return nil, fmt.Errorf("failed to send request to %s after %d attempts: %w", server, maxRetries, lastErr)
}

func (t *clientTransport) Close() error {
	t.stopping.Store(true)

	t.groups.Range(func(server string, group *serverGroup) bool {
		for _, conn := range group.conns {
			// Signal reader goroutine to stop
			close(conn.stopCh)

			// Close the connection
			if conn.conn != nil {
				conn.conn.Close()
			}
		}
		t.groups.Delete(server)
		return true
	})

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getConnection returns the next connection to the given server via Round
// Robin, dialing the server's connection group on first use
func (t *clientTransport) getConnection(server string) (*clientConnection, error) {
	group, ok := t.groups.Load(server)
	if !ok {
		var err error
		group, err = t.dialGroup(server)
		if err != nil {
			return nil, err
		}
	}

	if len(group.conns) == 0 {
		return nil, fmt.Errorf("%w: no active connections to %s", transport.ErrConnection, server)
	}

	// Simple Round Robin algorithm
	var index uint64
	if len(group.conns) == 1 {
		// optimize for single connection
		index = 0
	} else {
		index = atomic.AddUint64(&group.nextConn, 1) % uint64(len(group.conns))
	}
	return group.conns[index], nil
}

// dialGroup opens the configured number of connections to a server
func (t *clientTransport) dialGroup(server string) (*serverGroup, error) {
	t.groupDialMu.Lock()
	defer t.groupDialMu.Unlock()

	// Another goroutine may have created the group while we waited
	if group, ok := t.groups.Load(server); ok {
		return group, nil
	}

	// Set default value for ConnectionsPerServer
	connectionsPerServer := 1
	if t.config.Transport.ConnectionsPerServer > 0 {
		connectionsPerServer = t.config.Transport.ConnectionsPerServer
	}

	group := &serverGroup{conns: make([]*clientConnection, 0, connectionsPerServer)}

	for i := 0; i < connectionsPerServer; i++ {
		clientConn := &clientConnection{
			conn:         nil, // Will be set by reconnect
			endpoint:     server,
			stopCh:       make(chan struct{}),
			requestChans: xsync.NewMapOf[uint64, chan responseResult](),
			parent:       t,
		}

		// Establish the initial connection using reconnect
		if err := clientConn.reconnect(); err != nil {
			Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", server, i+1, connectionsPerServer, err)
			continue
		}

		group.conns = append(group.conns, clientConn)

		// Start the response reader
		go clientConn.readResponses()
	}

	if len(group.conns) == 0 {
		return nil, fmt.Errorf("%w: failed to connect to %s", transport.ErrConnection, server)
	}

	Logger.Infof("Connected to %s with %d out of %d connections using %s transport",
		server, len(group.conns), connectionsPerServer, t.connector.GetName())

	t.groups.Store(server, group)
	return group, nil
}

// readResponses reads responses in a loop and distributes them to waiting requests
func (c *clientConnection) readResponses() {
	for {
		// Check if we should stop
		select {
		case <-c.stopCh:
			return
		default:
			// Continue
		}

		// Read the response frame
		requestID, data, err := readFrame(c.conn, nil)

		if err != nil {
			// Fail all outstanding requests on this connection; they would
			// otherwise wait for their full timeout
			c.requestChans.Range(func(id uint64, respCh chan responseResult) bool {
				select {
				case respCh <- responseResult{nil, fmt.Errorf("%w: read from %s: %v", transport.ErrConnection, c.endpoint, err)}:
				default:
				}
				c.requestChans.Delete(id)
				return true
			})

			select {
			case <-c.stopCh:
				return
			default:
			}

			// Try to restore the connection
			if err := c.reconnect(); err != nil {
				Logger.Errorf("Failed to reconnect to %s: %v", c.endpoint, err)
				return
			}
			continue
		}

		// Find the corresponding request channel
		if respCh, found := c.requestChans.Load(requestID); found {
			respCh <- responseResult{data, nil}
		} else {
			// Warning for unknown request ID (the request may have timed out)
			Logger.Warningf("Received response for unknown request ID %d from %s", requestID, c.endpoint)
		}
	}
}

// reconnect establishes or restores a connection to the endpoint
func (c *clientConnection) reconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	// Close the old connection if it exists
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	// Connect to the endpoint
	conn, err := c.parent.connector.Connect(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", c.endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config); err != nil {
		conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %v", c.endpoint, err)
	}

	c.conn = conn
	return nil
}
