package region

import (
	"github.com/kvgrid/kvgrid/rpc/common"
)

// NewStaticLocator creates a locator serving a fixed region list for every
// table. The regions must be ordered by start key and contiguous. Used for
// single-server setups and for tests that pin rows to specific servers.
func NewStaticLocator(regions []common.RegionDesc) Locator {
	return &staticLocator{regions: regions}
}

// staticLocator implements Locator over an immutable region list
type staticLocator struct {
	regions []common.RegionDesc
}

// --------------------------------------------------------------------------
// Interface Methods (docu see region.Locator)
// --------------------------------------------------------------------------

func (l *staticLocator) Locate(table string, row []byte) (common.RegionDesc, error) {
	return locateIn(l.regions, table, row)
}

func (l *staticLocator) LocateRange(table string, startRow, stopRow []byte) ([]common.RegionDesc, error) {
	return locateRangeIn(l.regions, table, startRow, stopRow)
}

// Invalidate is a no-op for the static locator
func (l *staticLocator) Invalidate(table string) {}
