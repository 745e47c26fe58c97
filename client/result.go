package client

import (
	"github.com/kvgrid/kvgrid/rpc/common"
)

// Result is the outcome of a single-row read. A Result is always non-nil for
// a successful Get, check Empty to distinguish "row absent" from "row found".
type Result struct {
	row   []byte
	cells []common.Cell
}

func newResult(rr common.RowResult) *Result {
	return &Result{row: rr.Row, cells: rr.Cells}
}

// Row returns the row key this Result describes
func (r *Result) Row() []byte {
	return r.row
}

// Empty reports whether the row carried no cells (the row does not exist or
// the projection matched nothing)
func (r *Result) Empty() bool {
	return len(r.cells) == 0
}

// Cells returns all cells of the row, ordered by family then qualifier
func (r *Result) Cells() []common.Cell {
	return r.cells
}

// Value returns the value stored under family:qualifier, or nil if the cell
// is absent
func (r *Result) Value(family, qualifier string) []byte {
	for i := range r.cells {
		if r.cells[i].Family == family && r.cells[i].Qualifier == qualifier {
			return r.cells[i].Value
		}
	}
	return nil
}

// BatchResult is one slot of a MultiGet answer. Exactly one of Result and
// Err is set.
type BatchResult struct {
	Result *Result
	Err    error
}
