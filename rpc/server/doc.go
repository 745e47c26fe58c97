// Package server implements a self-contained region server for local
// development and end-to-end tests. It answers the table operations of the
// kvgrid wire protocol (mutate, get, multi-get, scan batches, scan lease
// release, locate) against an in-memory sorted row store.
//
// The package focuses on:
//   - Serving every table operation of the wire protocol
//   - Keeping rows ordered by key so range scans are cheap
//   - Tracking scan leases between batch fetches and releasing them on
//     close or exhaustion
//
// Key Components:
//
//   - RegionServer: Ties a server transport, a serializer and the store
//     together. A standalone region server also answers Locate requests with
//     itself as the owner of the whole keyspace, so it doubles as the
//     cluster locator for single-server setups.
//
//   - Store: In-memory row store backed by per-table btrees ordered by row
//     key. Mutations merge cells into existing rows; scans walk a key range
//     in ascending order with a batch limit.
//
//   - leaseRegistry: Hands out scan lease IDs and keeps the cursor position
//     of every open scanner between batch fetches.
//
// Thread Safety:
//
//	All components are safe for concurrent use; the store serializes access
//	with a read-write mutex and the lease registry uses a concurrent map.
package server
