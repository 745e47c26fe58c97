// Package client implements the table access layer of kvgrid: the API an
// application uses to read from and write to a distributed, sorted,
// range-partitioned table store.
//
// Key Components:
//
//   - Configuration: A flat string-keyed option map (site-file style) from
//     which New assembles a Client.
//
//   - Client: The cluster handle. Owns the transport, the region locator and
//     a fixed worker pool, and hands out Table handles.
//
//   - Table: The per-table operation surface with Put, Get, MultiGet and
//     Scan. MultiGet groups reads per owning server and dispatches the
//     groups in parallel on the client's worker pool, results come back in
//     input order with per-slot errors.
//
//   - Scanner: A forward-only, batched cursor over a row-key range. It walks
//     the overlapping regions in ascending key order, holds one server-side
//     scan lease at a time and reports the end of the range as io.EOF.
//
//   - Put / Get / Scan: Builder-style operation descriptors addressing cells
//     as family:qualifier pairs.
//
// Example:
//
//	conf := client.NewConfiguration()
//	conf.Set(client.ConfLocatorEndpoint, "localhost:7000")
//
//	c, err := client.New(conf)
//	if err != nil { ... }
//	defer c.Close()
//
//	tbl, err := c.Table("t")
//	if err != nil { ... }
//
//	err = tbl.Put(ctx, client.NewPut([]byte("row1")).
//		AddColumn("d", "name", []byte("value")))
//
//	res, err := tbl.Get(ctx, client.NewGet([]byte("row1")))
//	if err == nil && !res.Empty() {
//		_ = res.Value("d", "name")
//	}
//
//	sc := tbl.Scan(client.NewScan().WithBatchSize(100))
//	defer sc.Close()
//	for {
//		res, err := sc.Next()
//		if err == io.EOF {
//			break
//		}
//		if err != nil { ... }
//		_ = res
//	}
//
// Thread Safety:
//
//	Client, Table and Scanner are safe for concurrent use. Operation
//	descriptors (Put, Get, Scan) are not, build them on one goroutine and
//	hand them off.
package client
