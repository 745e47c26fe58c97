package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Shared socket / transport tuning
// --------------------------------------------------------------------------

// SocketConf holds buffer settings shared by all stream transports
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific settings (ignored by other transports)
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the connection level settings of the client
// transport.
type ClientTransportConfig struct {
	// RetryCount is how often a request is attempted before giving up
	RetryCount int
	// ConnectionsPerServer is how many parallel connections are opened to
	// each region server
	ConnectionsPerServer int

	SocketConf SocketConf
	TCPConf    TCPConf
}

// ClientConfig holds all configuration parameters for a table client.
// It is immutable once handed to a client instance.
type ClientConfig struct {
	// LocatorEndpoint is the address used to discover the cluster topology
	LocatorEndpoint string

	// ThreadPoolSize is the number of workers dispatching remote calls
	ThreadPoolSize int

	// TimeoutSecond is the per-call deadline delegated to the transport
	TimeoutSecond int

	// Transport level settings
	Transport ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-24s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Locator Endpoint", c.LocatorEndpoint)
	addField("Thread Pool Size", strconv.Itoa(c.ThreadPoolSize))
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	addSection("Transport")
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Server", strconv.Itoa(c.Transport.ConnectionsPerServer))

	return sb.String()
}

// --------------------------------------------------------------------------
// Region server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters for a region server.
type ServerConfig struct {
	// Endpoint the server listens on
	Endpoint string

	// AdvertiseEndpoint is the address handed out in Locate responses.
	// Defaults to Endpoint when empty.
	AdvertiseEndpoint string

	// TimeoutSecond is the per-connection read/write deadline
	TimeoutSecond int

	// MaxWorkersPerConn limits concurrent request workers per connection
	MaxWorkersPerConn int

	// MetricsEndpoint optionally exposes Prometheus metrics over HTTP
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// Advertise returns the endpoint handed out in Locate responses
func (c *ServerConfig) Advertise() string {
	if c.AdvertiseEndpoint != "" {
		return c.AdvertiseEndpoint
	}
	return c.Endpoint
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-24s: %s\n", name, value))
	}

	addSection("Region Server")
	addField("Endpoint", c.Endpoint)
	addField("Advertise Endpoint", c.Advertise())
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers Per Connection", strconv.Itoa(c.MaxWorkersPerConn))

	if c.MetricsEndpoint != "" {
		addSection("Metrics")
		addField("Metrics Endpoint", c.MetricsEndpoint)
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
