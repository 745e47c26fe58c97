// Package inmem implements an in-process transport that routes requests
// directly to registered handlers without any network I/O. It is used by
// end-to-end tests and single-process development setups to run a real
// client against real region servers through the full serialization path.
package inmem

import (
	"fmt"
	"sync/atomic"

	"github.com/kvgrid/kvgrid/rpc/common"
	"github.com/kvgrid/kvgrid/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Network
// --------------------------------------------------------------------------

// Network holds the handlers of all in-process servers, keyed by the
// endpoint name a locator would hand out for them.
type Network struct {
	handlers *xsync.MapOf[string, transport.ServerHandleFunc]
}

// NewNetwork creates a new empty in-process network
func NewNetwork() *Network {
	return &Network{
		handlers: xsync.NewMapOf[string, transport.ServerHandleFunc](),
	}
}

// AddServer registers a server handler under an endpoint name
func (n *Network) AddServer(endpoint string, handler transport.ServerHandleFunc) {
	n.handlers.Store(endpoint, handler)
}

// RemoveServer unregisters a server. Requests to it fail with a connection
// error afterwards, which tests use to simulate a server going down.
func (n *Network) RemoveServer(endpoint string) {
	n.handlers.Delete(endpoint)
}

// ClientTransport returns a client transport sending into this network
func (n *Network) ClientTransport() transport.IClientTransport {
	return &clientTransport{network: n}
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// clientTransport implements transport.IClientTransport over the network
type clientTransport struct {
	network *Network
	closed  atomic.Bool
}

// Interface methods (docu see transport.IClientTransport)

func (t *clientTransport) Connect(config common.ClientConfig) error {
	t.closed.Store(false)
	return nil
}

func (t *clientTransport) Send(server string, req []byte) ([]byte, error) {
	if t.closed.Load() {
		return nil, transport.ErrClosed
	}

	handler, ok := t.network.handlers.Load(server)
	if !ok {
		return nil, fmt.Errorf("%w: no server at %s", transport.ErrConnection, server)
	}

	return handler(req), nil
}

func (t *clientTransport) Close() error {
	t.closed.Store(true)
	return nil
}
