package client

import (
	"context"
	"sync"

	"github.com/kvgrid/kvgrid/rpc/common"
)

// Table is a handle on one named table. It is a thin view over the client's
// shared collaborators and is safe for concurrent use. Closing a Table does
// not close the Client that created it.
type Table struct {
	name   string
	client *Client

	mu     sync.Mutex
	closed bool
}

// Name returns the table name this handle is bound to
func (t *Table) Name() string {
	return t.name
}

// checkOpen validates the handle and the caller's context before any
// remote work happens
func (t *Table) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTableClosed
	}
	if t.client.isClosed() {
		return ErrClientClosed
	}
	return nil
}

// isClosed reports whether Close has been called on the handle
func (t *Table) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Close releases the handle. Idempotent, operations issued afterwards fail
// with ErrTableClosed.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// --------------------------------------------------------------------------
// Put
// --------------------------------------------------------------------------

// Put applies a single-row mutation. All cells of the mutation are written
// atomically by the owning region server. A failed or rejected write is
// reported as *RemoteWriteError and is not retried here, retry policy lives
// in the transport.
func (t *Table) Put(ctx context.Context, p *Put) error {
	if err := t.checkOpen(ctx); err != nil {
		return err
	}
	if len(p.cells) == 0 {
		return ErrEmptyMutation
	}
	countOp("put")

	reg, err := t.client.locator.Locate(t.name, p.row)
	if err != nil {
		countOpError("put")
		return &RemoteWriteError{Table: t.name, Row: p.row, Err: err}
	}

	req := common.NewMutateRequest(t.name, p.row, p.cells)
	if _, err := t.client.call(reg.Server, req, common.MsgTMutate); err != nil {
		countOpError("put")
		t.client.locator.Invalidate(t.name)
		return &RemoteWriteError{Table: t.name, Row: p.row, Err: err}
	}
	return nil
}

// --------------------------------------------------------------------------
// Get
// --------------------------------------------------------------------------

// Get reads a single row. A missing row is not an error: the returned Result
// is non-nil and Empty reports true.
func (t *Table) Get(ctx context.Context, g *Get) (*Result, error) {
	if err := t.checkOpen(ctx); err != nil {
		return nil, err
	}
	countOp("get")

	reg, err := t.client.locator.Locate(t.name, g.row)
	if err != nil {
		countOpError("get")
		return nil, err
	}

	req := common.NewGetRequest(t.name, g.row, g.columns)
	resp, err := t.client.call(reg.Server, req, common.MsgTGet)
	if err != nil {
		countOpError("get")
		t.client.locator.Invalidate(t.name)
		return nil, err
	}

	if len(resp.Rows) == 0 {
		return &Result{row: g.row}, nil
	}
	return newResult(resp.Rows[0]), nil
}

// --------------------------------------------------------------------------
// MultiGet
// --------------------------------------------------------------------------

// multiGetGroup collects the reads of one destination server so they travel
// in a single MultiGet message
type multiGetGroup struct {
	server  string
	rowKeys [][]byte
	slots   []int
	gets    []*Get
	columns []common.Column
	// wholeRow is set once any read in the group carries no projection;
	// the shared column list must not restrict it
	wholeRow bool
}

// MultiGet reads several rows in one round per destination server. The
// returned slice mirrors the input order, one BatchResult per Get. A failing
// server fails only the slots it owns, reads served by healthy servers still
// succeed.
func (t *Table) MultiGet(ctx context.Context, gets []*Get) []BatchResult {
	results := make([]BatchResult, len(gets))
	if err := t.checkOpen(ctx); err != nil {
		for i := range results {
			results[i].Err = err
		}
		return results
	}
	if len(gets) == 0 {
		return results
	}
	countOp("multiGet")

	// Group the reads per owning server, keeping each read's slot so the
	// aligned response rows land back in input order.
	groups := map[string]*multiGetGroup{}
	order := make([]string, 0, 4)
	for i, g := range gets {
		reg, err := t.client.locator.Locate(t.name, g.row)
		if err != nil {
			results[i].Err = err
			continue
		}
		grp, ok := groups[reg.Server]
		if !ok {
			grp = &multiGetGroup{server: reg.Server}
			groups[reg.Server] = grp
			order = append(order, reg.Server)
		}
		grp.rowKeys = append(grp.rowKeys, g.row)
		grp.slots = append(grp.slots, i)
		grp.gets = append(grp.gets, g)
		if len(g.columns) == 0 {
			grp.wholeRow = true
		} else {
			grp.columns = mergeColumns(grp.columns, g.columns)
		}
	}

	// Dispatch the groups on the worker pool and fan the aligned rows back
	// into their slots
	var wg sync.WaitGroup
	for _, server := range order {
		grp := groups[server]
		wg.Add(1)
		run := func() {
			defer wg.Done()
			t.multiGetGroup(grp, results)
		}
		if !t.client.exec.submit(run) {
			// pool closed underneath us, run inline so no slot stays unset
			run()
		}
	}
	wg.Wait()

	return results
}

// multiGetGroup performs one MultiGet call and distributes the rows (or the
// group's error) over the result slots
func (t *Table) multiGetGroup(grp *multiGetGroup, results []BatchResult) {
	columns := grp.columns
	if grp.wholeRow {
		columns = nil
	}
	req := common.NewMultiGetRequest(t.name, grp.rowKeys, columns)
	resp, err := t.client.call(grp.server, req, common.MsgTMultiGet)
	if err != nil {
		countOpError("multiGet")
		t.client.locator.Invalidate(t.name)
		for _, slot := range grp.slots {
			results[slot].Err = err
		}
		return
	}

	for i, slot := range grp.slots {
		if i < len(resp.Rows) {
			rr := resp.Rows[i]
			// the batch carried the group's shared projection; trim each
			// slot back to what its own read asked for
			rr.Cells = filterCells(rr.Cells, grp.gets[i].columns)
			results[slot].Result = newResult(rr)
		} else {
			results[slot].Result = &Result{row: grp.rowKeys[i]}
		}
	}
}

// filterCells narrows a row's cells to one read's own projection. An empty
// projection keeps the whole row.
func filterCells(cells []common.Cell, columns []common.Column) []common.Cell {
	if len(columns) == 0 {
		return cells
	}
	var out []common.Cell
	for _, c := range cells {
		for _, col := range columns {
			if c.Family == col.Family && c.Qualifier == col.Qualifier {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// mergeColumns unions two projections. The wire format carries one column
// list per batch, so reads grouped onto the same server share it.
func mergeColumns(into, add []common.Column) []common.Column {
	for _, c := range add {
		seen := false
		for _, have := range into {
			if have == c {
				seen = true
				break
			}
		}
		if !seen {
			into = append(into, c)
		}
	}
	return into
}

// --------------------------------------------------------------------------
// Scan
// --------------------------------------------------------------------------

// Scan opens a cursor over the given range. No I/O happens until the first
// Next call; errors from region lookup or fetching surface there.
func (t *Table) Scan(s *Scan) *Scanner {
	countOp("scan")
	return newScanner(t, s)
}
