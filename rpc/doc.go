// Package rpc provides the remote procedure call framework between the table
// access client and the region servers of the cluster.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable
//     implementations (TCP, Unix sockets, and an in-process transport for
//     tests).
//
//   - serializer: Message serialization with multiple format options
//     (Binary, JSON, GOB) for converting between Message objects and byte
//     arrays.
//
//   - server: A self-contained region server that answers the table
//     operations against an in-memory sorted row store, used for local
//     development and end-to-end tests.
package rpc
