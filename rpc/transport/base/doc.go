// Package base provides a foundation for transport layers of the table
// access client and the region servers, implementing core functionality of
// RPC communication independent of the specific network protocol (TCP, Unix
// sockets, etc.). It serves as a base layer that can be extended with
// protocol-specific connectors.
//
// The package focuses on:
//   - Protocol-agnostic client and server transport implementations
//   - Lazy per-server connection groups with round-robin load balancing
//   - Frame-based message protocol with requestID correlation
//   - Robust error handling with retries and reconnection logic
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific
//     operations that allow extending the base transport with different
//     network protocols.
//
//   - clientTransport: Core client implementation. The first request to a
//     region server dials its connection group (ConnectionsPerServer
//     connections); later requests reuse the group round robin. Responses
//     are correlated to outstanding requests by unique request IDs, so many
//     requests can share one connection.
//
//   - serverTransport: Core server implementation that accepts connections
//     and routes requests to the registered handler, with a bounded worker
//     pool per connection.
//
// Performance Optimizations:
//
//   - Connection Pooling: Multiple connections per server improve throughput
//     for high-load scenarios, particularly for large messages. For small
//     messages a single connection per server may perform better due to
//     reduced overhead.
//
//   - Buffer Pooling: The server uses a sync.Pool to reuse buffers, reducing
//     GC pressure and memory allocations.
//
//   - Frame Batching: The transport uses net.Buffers to reduce syscalls when
//     writing frames, combining header and payload into a single write
//     operation.
//
// Thread Safety:
//
//	All public methods are thread-safe. The client transport uses atomic
//	operations and mutexes to ensure concurrent access safety, while the
//	server creates a dedicated goroutine for each connection.
package base
