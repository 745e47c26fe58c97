package server

import (
	"sync/atomic"

	"github.com/kvgrid/kvgrid/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// scanLease is the server-side state of one open scanner: the position of
// the cursor between batch fetches. The lease is released when the range is
// exhausted or the client closes the scanner.
type scanLease struct {
	table   string
	next    []byte // next row key to serve (inclusive)
	stop    []byte // exclusive range end, nil = end of table
	columns []common.Column
	batch   uint32
}

// leaseRegistry hands out scan lease IDs and tracks the open leases
type leaseRegistry struct {
	leases *xsync.MapOf[uint64, *scanLease]
	nextID uint64
}

func newLeaseRegistry() *leaseRegistry {
	return &leaseRegistry{
		leases: xsync.NewMapOf[uint64, *scanLease](),
	}
}

// open registers a new lease and returns its ID. IDs start at 1, so 0 can
// mean "no lease" on the wire.
func (r *leaseRegistry) open(lease *scanLease) uint64 {
	id := atomic.AddUint64(&r.nextID, 1)
	r.leases.Store(id, lease)
	return id
}

// get returns the lease for an ID
func (r *leaseRegistry) get(id uint64) (*scanLease, bool) {
	return r.leases.Load(id)
}

// release drops a lease. Releasing an unknown ID is a no-op, so close is
// idempotent from the client's point of view.
func (r *leaseRegistry) release(id uint64) {
	r.leases.Delete(id)
}

// count returns the number of open leases
func (r *leaseRegistry) count() int {
	return r.leases.Size()
}
