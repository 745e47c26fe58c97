// Package transport defines the interfaces and abstractions for RPC
// communication between the table client and the region servers. It provides
// a common contract that all transport implementations must fulfill, enabling
// protocol-agnostic communication.
//
// The package focuses on:
//   - Defining clear interfaces for client and server transport layers
//   - Addressing servers by the endpoints handed out by the region locator
//   - Enabling multiple transport implementations (TCP, Unix sockets, in-process)
//
// Key Components:
//
//   - IClientTransport: Interface for client-side transport implementations.
//     Connections to region servers are opened lazily on first use and
//     multiplexed: many outstanding requests share one connection, matched
//     to their responses by request ID.
//
//   - IServerTransport: Interface for server-side transport implementations
//     that receive requests and route them to the registered handler.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
//   - ErrTimeout / ErrConnection / ErrClosed: The error taxonomy surfaced to
//     the table client; all transport failures wrap one of these.
package transport
