package client

import (
	"bytes"
	"io"
	"sync"

	"github.com/kvgrid/kvgrid/rpc/common"
)

// --------------------------------------------------------------------------
// Scanner states
// --------------------------------------------------------------------------

type scannerState uint8

const (
	// scannerOpen: created, no batch buffered (initially no I/O happened yet)
	scannerOpen scannerState = iota
	// scannerFetching: a remote batch fetch is in flight
	scannerFetching
	// scannerBuffered: rows are buffered, Next pops without I/O
	scannerBuffered
	// scannerExhausted: the range is fully consumed, Next returns io.EOF
	scannerExhausted
	// scannerClosed: Close was called, Next returns ErrScannerClosed
	scannerClosed
)

// --------------------------------------------------------------------------
// Scanner
// --------------------------------------------------------------------------

// Scanner is a forward-only cursor over a row range. It fetches rows in
// batches, walking the owning regions in ascending key order and holding at
// most one server-side scan lease at a time. A Scanner is safe for
// concurrent use, though iteration is inherently sequential.
//
// Next returns io.EOF once the range is consumed. Close releases an
// outstanding lease and is valid from any state, including while a Next is
// blocked on a remote fetch; the in-flight Next then returns
// ErrScannerClosed.
type Scanner struct {
	table *Table
	scan  *Scan

	// iterMu serializes iterations so only one fetch is in flight
	iterMu sync.Mutex

	// mu guards the fields below. It is never held across a remote call, so
	// Close stays responsive while a batch fetch is in flight.
	mu    sync.Mutex
	state scannerState

	// region walk; resolved lazily on the first Next
	located   bool
	regions   []common.RegionDesc
	regionIdx int

	// open server-side lease, 0 when none
	leaseID     uint64
	leaseServer string

	// buffered batch
	buf    []common.RowResult
	bufIdx int

	// last yielded row key; a new lease starts strictly after it
	lastKey []byte
}

func newScanner(t *Table, s *Scan) *Scanner {
	return &Scanner{table: t, scan: s}
}

// Next returns the next row of the range. It pops from the buffered batch
// when one is available and blocks on a remote fetch otherwise. The end of
// the range is reported as io.EOF, repeatedly. After Close it returns
// ErrScannerClosed.
func (s *Scanner) Next() (*Result, error) {
	s.iterMu.Lock()
	defer s.iterMu.Unlock()

	s.mu.Lock()
	switch s.state {
	case scannerClosed:
		s.mu.Unlock()
		return nil, ErrScannerClosed
	case scannerExhausted:
		s.mu.Unlock()
		return nil, io.EOF
	}
	s.mu.Unlock()

	if s.table.isClosed() {
		return nil, ErrTableClosed
	}
	if s.table.client.isClosed() {
		return nil, ErrClientClosed
	}

	for {
		s.mu.Lock()
		if s.bufIdx < len(s.buf) {
			rr := s.buf[s.bufIdx]
			s.bufIdx++
			s.lastKey = rr.Row
			s.state = scannerBuffered
			s.mu.Unlock()
			return newResult(rr), nil
		}
		s.mu.Unlock()

		if err := s.fetch(); err != nil {
			s.mu.Lock()
			// a concurrent Close wins over any other transition
			if s.state != scannerClosed {
				if err == io.EOF {
					s.state = scannerExhausted
				} else {
					s.state = scannerOpen
				}
			} else if err != ErrScannerClosed {
				err = ErrScannerClosed
			}
			s.mu.Unlock()
			return nil, err
		}
	}
}

// fetch loads the next non-empty batch into the buffer. Returns io.EOF when
// every region of the range is consumed. Called with iterMu held; mu is
// taken only around state reads and writes, never across a remote call.
func (s *Scanner) fetch() error {
	s.mu.Lock()
	s.state = scannerFetching
	s.mu.Unlock()

	// located/regions are only touched under iterMu, no mu needed
	if !s.located {
		regions, err := s.table.client.locator.LocateRange(
			s.table.name, s.scan.startRow, s.scan.stopRow)
		if err != nil {
			return err
		}
		s.located = true
		s.regions = regions
	}

	for {
		// snapshot the lease and build the request under the lock
		s.mu.Lock()
		if s.state == scannerClosed {
			s.mu.Unlock()
			return ErrScannerClosed
		}
		var (
			server string
			req    *common.Message
		)
		if s.leaseID == 0 {
			// no open lease, start on the next region of the walk
			if s.regionIdx >= len(s.regions) {
				s.mu.Unlock()
				return io.EOF
			}
			reg := s.regions[s.regionIdx]
			server = reg.Server
			req = common.NewScanRequest(
				s.table.name,
				s.leaseStart(reg),
				s.leaseStop(reg),
				s.scan.columns,
				s.scan.batchSize,
				0,
			)
		} else {
			// continue the open lease, the server tracks the cursor
			server = s.leaseServer
			req = common.NewScanRequest(
				s.table.name, nil, nil, s.scan.columns, s.scan.batchSize, s.leaseID)
		}
		s.mu.Unlock()

		resp, err := s.table.client.call(server, req, common.MsgTScan)

		s.mu.Lock()
		if s.state == scannerClosed {
			// Close ran while the batch was in flight. Close only released
			// the lease it knew about, so drop the one this response opened.
			s.mu.Unlock()
			if err == nil && resp.More && resp.ScannerID != 0 {
				s.releaseLease(server, resp.ScannerID)
			}
			return ErrScannerClosed
		}

		if err != nil {
			s.leaseID = 0
			s.mu.Unlock()
			countOpError("scan")
			s.table.client.locator.Invalidate(s.table.name)
			return err
		}

		s.leaseServer = server
		if resp.More {
			s.leaseID = resp.ScannerID
		} else {
			// lease drained, the server released it
			s.leaseID = 0
			s.regionIdx++
		}

		if len(resp.Rows) > 0 {
			s.buf = resp.Rows
			s.bufIdx = 0
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()
	}
}

// leaseStart computes where a fresh lease on reg begins: after the last
// yielded key (strictly, via key+0x00), clipped to the scan range and the
// region boundary
func (s *Scanner) leaseStart(reg common.RegionDesc) []byte {
	start := s.scan.startRow
	if s.lastKey != nil {
		start = nextRowAfter(s.lastKey)
	}
	if reg.Start != nil && bytes.Compare(reg.Start, start) > 0 {
		start = reg.Start
	}
	return start
}

// leaseStop computes where a lease on reg ends: the scan's stop row clipped
// to the region boundary. Nil means open-ended.
func (s *Scanner) leaseStop(reg common.RegionDesc) []byte {
	stop := s.scan.stopRow
	if reg.Stop != nil && (stop == nil || bytes.Compare(reg.Stop, stop) < 0) {
		stop = reg.Stop
	}
	return stop
}

// nextRowAfter returns the smallest row key strictly greater than key
func nextRowAfter(key []byte) []byte {
	next := make([]byte, len(key)+1)
	copy(next, key)
	return next
}

// releaseLease sends a best-effort ScanClose for an open lease. A failed
// release is logged and not returned.
func (s *Scanner) releaseLease(server string, id uint64) {
	req := common.NewScanCloseRequest(s.table.name, id)
	if _, err := s.table.client.call(server, req, common.MsgTScanClose); err != nil {
		Logger.Warningf("releasing scan lease %d on %s failed: %v", id, server, err)
	}
}

// Close ends the iteration. An outstanding server-side lease is released
// best effort, a failed release is logged and not returned. Idempotent,
// valid from any state; it does not wait for an in-flight Next.
func (s *Scanner) Close() error {
	s.mu.Lock()
	if s.state == scannerClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = scannerClosed
	s.buf = nil
	s.bufIdx = 0
	id, server := s.leaseID, s.leaseServer
	s.leaseID = 0
	s.mu.Unlock()

	if id != 0 {
		s.releaseLease(server, id)
	}
	return nil
}
