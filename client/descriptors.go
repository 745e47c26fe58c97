package client

import (
	"github.com/kvgrid/kvgrid/rpc/common"
)

// --------------------------------------------------------------------------
// Put
// --------------------------------------------------------------------------

// Put describes a single-row mutation. Cells accumulate via AddColumn and
// are applied atomically per row by Table.Put.
type Put struct {
	row   []byte
	cells []common.Cell
}

// NewPut starts a mutation for the given row key
func NewPut(row []byte) *Put {
	return &Put{row: row}
}

// AddColumn adds one cell edit to the mutation. The server assigns the
// write timestamp.
func (p *Put) AddColumn(family, qualifier string, value []byte) *Put {
	p.cells = append(p.cells, common.Cell{
		Family:    family,
		Qualifier: qualifier,
		Value:     value,
	})
	return p
}

// AddColumnTs adds one cell edit carrying an explicit timestamp in
// milliseconds
func (p *Put) AddColumnTs(family, qualifier string, value []byte, ts int64) *Put {
	p.cells = append(p.cells, common.Cell{
		Family:    family,
		Qualifier: qualifier,
		Value:     value,
		Timestamp: ts,
	})
	return p
}

// Row returns the row key this mutation targets
func (p *Put) Row() []byte {
	return p.row
}

// --------------------------------------------------------------------------
// Get
// --------------------------------------------------------------------------

// Get describes a single-row read, optionally projected to a set of columns.
// Without AddColumn calls the whole row is returned.
type Get struct {
	row     []byte
	columns []common.Column
}

// NewGet starts a read for the given row key
func NewGet(row []byte) *Get {
	return &Get{row: row}
}

// AddColumn restricts the read to the named column. May be called multiple
// times, the projections accumulate.
func (g *Get) AddColumn(family, qualifier string) *Get {
	g.columns = append(g.columns, common.Column{Family: family, Qualifier: qualifier})
	return g
}

// Row returns the row key this read targets
func (g *Get) Row() []byte {
	return g.row
}

// --------------------------------------------------------------------------
// Scan
// --------------------------------------------------------------------------

// Scan describes a range read over [start, stop). A nil start scans from the
// beginning of the table, a nil stop scans to its end. Results stream
// through a Scanner in ascending row key order.
type Scan struct {
	startRow  []byte
	stopRow   []byte
	batchSize uint32
	columns   []common.Column
}

// NewScan starts a whole-table scan descriptor
func NewScan() *Scan {
	return &Scan{}
}

// WithRange restricts the scan to [start, stop)
func (s *Scan) WithRange(start, stop []byte) *Scan {
	s.startRow = start
	s.stopRow = stop
	return s
}

// WithBatchSize sets how many rows each remote fetch asks for. Zero leaves
// the batch size to the server default.
func (s *Scan) WithBatchSize(n uint32) *Scan {
	s.batchSize = n
	return s
}

// AddColumn restricts the scan to the named column. May be called multiple
// times, the projections accumulate.
func (s *Scan) AddColumn(family, qualifier string) *Scan {
	s.columns = append(s.columns, common.Column{Family: family, Qualifier: qualifier})
	return s
}
