package region

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/kvgrid/kvgrid/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("region")

// ErrNoRegion is returned when no region owns the requested row
var ErrNoRegion = errors.New("region: no region found for row")

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Locator resolves which region server owns a row or a row-key range of a
// table. Implementations must be safe for concurrent use.
type Locator interface {
	// Locate returns the region owning the given row of a table
	Locate(table string, row []byte) (common.RegionDesc, error)

	// LocateRange returns the ordered list of regions overlapping the range
	// [startRow, stopRow). A nil startRow means the beginning of the table,
	// a nil stopRow means the end of the table.
	LocateRange(table string, startRow, stopRow []byte) ([]common.RegionDesc, error)

	// Invalidate drops any cached topology for a table, forcing the next
	// lookup to resolve it again
	Invalidate(table string)
}

// --------------------------------------------------------------------------
// Shared region list helpers
// --------------------------------------------------------------------------

// contains reports whether the region [Start, Stop) owns the given row
func contains(r common.RegionDesc, row []byte) bool {
	if r.Start != nil && bytes.Compare(row, r.Start) < 0 {
		return false
	}
	if r.Stop != nil && bytes.Compare(row, r.Stop) >= 0 {
		return false
	}
	return true
}

// overlaps reports whether the region intersects the range [startRow, stopRow)
func overlaps(r common.RegionDesc, startRow, stopRow []byte) bool {
	if r.Stop != nil && startRow != nil && bytes.Compare(r.Stop, startRow) <= 0 {
		return false
	}
	if r.Start != nil && stopRow != nil && bytes.Compare(r.Start, stopRow) >= 0 {
		return false
	}
	return true
}

// locateIn finds the region owning row in an ordered region list
func locateIn(regions []common.RegionDesc, table string, row []byte) (common.RegionDesc, error) {
	for _, r := range regions {
		if contains(r, row) {
			return r, nil
		}
	}
	return common.RegionDesc{}, fmt.Errorf("%w: table %s, row %q", ErrNoRegion, table, row)
}

// locateRangeIn collects the regions overlapping [startRow, stopRow) from an
// ordered region list
func locateRangeIn(regions []common.RegionDesc, table string, startRow, stopRow []byte) ([]common.RegionDesc, error) {
	var out []common.RegionDesc
	for _, r := range regions {
		if overlaps(r, startRow, stopRow) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: table %s, range [%q, %q)", ErrNoRegion, table, startRow, stopRow)
	}
	return out, nil
}
