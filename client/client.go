package client

import (
	"fmt"
	"sync"

	"github.com/lni/dragonboat/v4/logger"

	"github.com/kvgrid/kvgrid/region"
	"github.com/kvgrid/kvgrid/rpc/common"
	"github.com/kvgrid/kvgrid/rpc/serializer"
	"github.com/kvgrid/kvgrid/rpc/transport"
	"github.com/kvgrid/kvgrid/rpc/transport/tcp"
)

var Logger = logger.GetLogger("client")

// Client is the entry point into a cluster. It owns the transport, the
// region locator and the worker pool shared by all tables handed out via
// Table. A Client is safe for concurrent use.
type Client struct {
	config     common.ClientConfig
	transport  transport.IClientTransport
	serializer serializer.ISerializer
	locator    region.Locator
	exec       *executor

	mu     sync.Mutex
	closed bool
}

// New creates a Client from a Configuration, wiring the default stack: TCP
// transport, binary wire serializer and the RPC region locator pointed at
// the configured locator endpoint.
func New(conf *Configuration) (*Client, error) {
	cfg := conf.toClientConfig()
	if cfg.LocatorEndpoint == "" {
		return nil, fmt.Errorf("kvgrid: configuration misses %s", ConfLocatorEndpoint)
	}

	t := tcp.NewTCPClientTransport()
	s := serializer.NewBinarySerializer()
	loc := region.NewRPCLocator(cfg.LocatorEndpoint, t, s)

	return NewWithCollaborators(cfg, t, s, loc)
}

// NewWithCollaborators creates a Client from explicit collaborators. Used
// for custom transports and in tests, New is the common path.
func NewWithCollaborators(
	cfg common.ClientConfig,
	t transport.IClientTransport,
	s serializer.ISerializer,
	loc region.Locator,
) (*Client, error) {
	if err := t.Connect(cfg); err != nil {
		return nil, fmt.Errorf("kvgrid: transport setup failed: %w", err)
	}

	c := &Client{
		config:     cfg,
		transport:  t,
		serializer: s,
		locator:    loc,
		exec:       newExecutor(cfg.ThreadPoolSize),
	}

	Logger.Infof("client created (locator: %s, workers: %d)",
		cfg.LocatorEndpoint, cfg.ThreadPoolSize)

	return c, nil
}

// Table returns a handle on the named table. The handle shares the client's
// transport and worker pool, closing it does not affect the client.
func (c *Client) Table(name string) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	return &Table{name: name, client: c}, nil
}

// Close shuts the client down. It drains the worker pool and closes the
// transport. Idempotent, operations issued afterwards fail with
// ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.exec.close()
	err := c.transport.Close()

	Logger.Infof("client closed")
	return err
}

// isClosed reports whether Close has been called
func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// call performs one remote call against the given region server: serialize,
// send, deserialize, surface remote errors and reject unexpected response
// types. All table operations funnel through here.
func (c *Client) call(server string, req *common.Message, want common.MessageType) (common.Message, error) {
	data, err := c.serializer.Serialize(*req)
	if err != nil {
		return common.Message{}, fmt.Errorf("kvgrid: serialize %v request: %w", req.MsgType, err)
	}

	respData, err := c.transport.Send(server, data)
	if err != nil {
		return common.Message{}, fmt.Errorf("kvgrid: %v call to %s: %w", req.MsgType, server, err)
	}

	var resp common.Message
	if err := c.serializer.Deserialize(respData, &resp); err != nil {
		return common.Message{}, fmt.Errorf("kvgrid: deserialize %v response: %w", req.MsgType, err)
	}

	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return common.Message{}, &RemoteError{Msg: resp.Err}
	}
	if resp.MsgType != want {
		return common.Message{}, fmt.Errorf("kvgrid: unexpected response type %v (want %v)", resp.MsgType, want)
	}

	return resp, nil
}
