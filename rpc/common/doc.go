// Package common provides core data structures and utilities shared across
// the table access client and the region server. It defines fundamental
// types, configuration structures, and protocol elements used by the other
// rpc packages.
//
// The package focuses on:
//   - Message protocol definition for client / region server communication
//   - Configuration structures for client and server components
//   - Custom logging implementation with named leveled loggers
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication, with a flexible
//     structure that adapts to the different operation types (row mutation,
//     single and batched lookups, scan batches, scan lease release, topology
//     lookup). Includes factory methods for creating the request and response
//     messages of every operation.
//
//   - MessageType: Enumeration defining all supported operation types,
//     categorized into table operations and cluster topology operations.
//
//   - Cell / Column / RowResult / RegionDesc: The row data model carried on
//     the wire. Row keys are opaque byte sequences ordered byte-lexicographically;
//     a cell addresses a (family, qualifier) pair of a row.
//
//   - ClientConfig: Configuration for the table client, controlling the
//     locator endpoint, dispatch thread pool sizing, timeouts and transport
//     level connection parameters.
//
//   - ServerConfig: Configuration for a region server: endpoints, per
//     connection worker limits, timeouts and the optional metrics endpoint.
//
//   - Logger: Custom logging implementation that plugs into dragonboat's
//     logger factory while providing consistent formatting across the
//     application.
package common
