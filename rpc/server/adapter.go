package server

import (
	"fmt"

	"github.com/kvgrid/kvgrid/rpc/common"
)

// defaultScanBatchSize is used when a scan request carries no batch size hint
const defaultScanBatchSize = 64

// adapter translates wire messages into store operations. It implements the
// request handling of one region server.
type adapter struct {
	store     *Store
	leases    *leaseRegistry
	advertise string // endpoint handed out in Locate responses
}

func newAdapter(store *Store, advertise string) *adapter {
	return &adapter{
		store:     store,
		leases:    newLeaseRegistry(),
		advertise: advertise,
	}
}

// Handle processes one request message and returns the response message
func (a *adapter) Handle(req *common.Message) *common.Message {
	switch req.MsgType {

	case common.MsgTMutate:
		if len(req.Cells) == 0 {
			return common.NewMutateResponse(fmt.Errorf("mutation for row %q names no cells", req.Row))
		}
		a.store.Put(req.Table, req.Row, req.Cells)
		return common.NewMutateResponse(nil)

	case common.MsgTGet:
		// Missing rows keep their key with no cells, same as MultiGet
		result, _ := a.store.Get(req.Table, req.Row, req.Columns)
		return common.NewGetResponse(result, nil)

	case common.MsgTMultiGet:
		rows := make([]common.RowResult, len(req.RowKeys))
		for i, key := range req.RowKeys {
			// Missing rows keep their key with no cells, so the response
			// stays aligned with the request
			rows[i], _ = a.store.Get(req.Table, key, req.Columns)
		}
		return common.NewMultiGetResponse(rows, nil)

	case common.MsgTScan:
		return a.handleScan(req)

	case common.MsgTScanClose:
		a.leases.release(req.ScannerID)
		return common.NewScanCloseResponse(nil)

	case common.MsgTLocate:
		// A standalone region server owns the whole keyspace of every table
		return common.NewLocateResponse([]common.RegionDesc{{Server: a.advertise}}, nil)

	default:
		return common.NewErrorResponse(
			fmt.Sprintf("region server: unsupported message type: %s", req.MsgType),
		)
	}
}

// handleScan serves one batch of a range scan. A zero ScannerID opens a new
// lease for [StartRow, StopRow); a non-zero ScannerID continues an existing
// one. The lease is released as soon as the range is exhausted.
func (a *adapter) handleScan(req *common.Message) *common.Message {
	var (
		id    = req.ScannerID
		lease *scanLease
	)

	if id == 0 {
		lease = &scanLease{
			table:   req.Table,
			next:    req.StartRow,
			stop:    req.StopRow,
			columns: req.Columns,
			batch:   req.BatchSize,
		}
		if lease.batch == 0 {
			lease.batch = defaultScanBatchSize
		}
		id = a.leases.open(lease)
	} else {
		var ok bool
		lease, ok = a.leases.get(id)
		if !ok {
			return common.NewScanResponse(0, nil, false,
				fmt.Errorf("unknown scanner lease %d (expired or already closed)", id))
		}
	}

	rows, more := a.store.Scan(lease.table, lease.next, lease.stop, lease.columns, int(lease.batch))

	if !more {
		a.leases.release(id)
		return common.NewScanResponse(id, rows, false, nil)
	}

	// Advance the cursor strictly past the last served row
	lease.next = nextRowAfter(rows[len(rows)-1].Row)
	return common.NewScanResponse(id, rows, true, nil)
}

// nextRowAfter returns the smallest row key strictly greater than the given
// one in byte-lexicographic order
func nextRowAfter(rowKey []byte) []byte {
	next := make([]byte, len(rowKey)+1)
	copy(next, rowKey)
	return next
}
