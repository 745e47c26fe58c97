// Package region resolves which server owns a row-key range of a table.
//
// A table is partitioned into regions: contiguous row-key ranges
// [start, stop) each owned by one region server at a time. The table client
// asks a Locator before every remote call to decide which server a request
// must be sent to, and asks for the overlapping region list when planning a
// range scan.
//
// Key Components:
//
//   - Locator: The interface consumed by the table client, with point
//     (Locate) and range (LocateRange) resolution plus cache invalidation.
//
//   - StaticLocator: A fixed, immutable region list. Used for single-server
//     setups and for tests that pin rows to specific servers.
//
//   - RPCLocator: Resolves topology by asking the cluster locator endpoint
//     over the RPC transport and caches the per-table region lists in a
//     concurrent map.
//
// Thread Safety:
//
//	All locator implementations are safe for concurrent use.
package region
