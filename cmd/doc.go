// Package cmd implements the command-line interface of kvgrid. It provides
// a hierarchical command structure with operations for running a region
// server and interacting with a cluster as a client.
//
// The package is organized into several subpackages:
//
//   - table: Commands for table operations (put, get, mget, scan) and the
//     workload driver
//   - serve: Commands for starting and configuring a region server
//   - util: Shared utilities for command-line processing and configuration
//     (internal use)
//
// See kvgrid -help for a list of all commands.
package cmd
