package client

import (
	"strconv"

	"github.com/kvgrid/kvgrid/rpc/common"
)

// ---- configuration keys ----------------------------------------------------

// Well-known configuration keys understood by New. Unknown keys are kept in
// the map and ignored, so callers can round-trip site configuration through
// a Configuration without filtering it first.
const (
	// ConfLocatorEndpoint names the endpoint of the region locator service
	ConfLocatorEndpoint = "cluster.locator.endpoint"

	// ConfThreadPoolSize sets the number of workers executing parallel
	// client calls (multi-get fan-out)
	ConfThreadPoolSize = "client.threadpool.size"

	// ConfTimeoutSeconds sets the per-call timeout in seconds
	ConfTimeoutSeconds = "client.rpc.timeout.seconds"

	// ConfRetryCount sets how often a failed remote call is retried by the
	// transport before giving up
	ConfRetryCount = "client.rpc.retry.count"

	// ConfConnectionsPerServer sets how many connections the transport
	// keeps per region server
	ConfConnectionsPerServer = "client.rpc.connections.per.server"
)

const (
	defaultThreadPoolSize = 4
	defaultTimeoutSeconds = 10
	defaultRetryCount     = 3
)

// ---- configuration ---------------------------------------------------------

// Configuration is a flat string-keyed option map, the site-file style
// configuration surface of the client. Zero value is not usable, create
// instances via NewConfiguration.
//
// Example:
//
//	conf := client.NewConfiguration()
//	conf.Set(client.ConfLocatorEndpoint, "localhost:7000")
//	conf.SetInt(client.ConfThreadPoolSize, 8)
type Configuration struct {
	values map[string]string
}

// NewConfiguration returns an empty Configuration
func NewConfiguration() *Configuration {
	return &Configuration{values: map[string]string{}}
}

// Set stores a string option
func (c *Configuration) Set(key, value string) *Configuration {
	c.values[key] = value
	return c
}

// SetInt stores an integer option
func (c *Configuration) SetInt(key string, value int) *Configuration {
	return c.Set(key, strconv.Itoa(value))
}

// Get returns the option stored under key, or fallback if unset
func (c *Configuration) Get(key, fallback string) string {
	if v, ok := c.values[key]; ok {
		return v
	}
	return fallback
}

// GetInt returns the option stored under key parsed as an integer, or
// fallback if unset or unparsable
func (c *Configuration) GetInt(key string, fallback int) int {
	v, ok := c.values[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// toClientConfig lowers the option map into the transport facing config
// struct, applying defaults for everything unset
func (c *Configuration) toClientConfig() common.ClientConfig {
	return common.ClientConfig{
		LocatorEndpoint: c.Get(ConfLocatorEndpoint, ""),
		ThreadPoolSize:  c.GetInt(ConfThreadPoolSize, defaultThreadPoolSize),
		TimeoutSecond:   c.GetInt(ConfTimeoutSeconds, defaultTimeoutSeconds),
		Transport: common.ClientTransportConfig{
			RetryCount:           c.GetInt(ConfRetryCount, defaultRetryCount),
			ConnectionsPerServer: c.GetInt(ConfConnectionsPerServer, 1),
			TCPConf: common.TCPConf{
				TCPNoDelay: true,
			},
		},
	}
}
