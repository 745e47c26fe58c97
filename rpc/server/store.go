package server

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/kvgrid/kvgrid/rpc/common"
)

const btreeDegree = 16

// row is a single table row: its key plus the cells keyed by
// "family:qualifier"
type row struct {
	key   []byte
	cells map[string]common.Cell
}

// rowLess orders rows byte-lexicographically by key
func rowLess(a, b *row) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// cellKey builds the map key of a cell
func cellKey(family, qualifier string) string {
	return family + ":" + qualifier
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

// Store is the in-memory sorted row store of a region server. Rows are kept
// in per-table btrees ordered by row key, so range scans walk keys in
// ascending byte-lexicographic order.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*btree.BTreeG[*row]
}

// NewStore creates a new empty store
func NewStore() *Store {
	return &Store{
		tables: make(map[string]*btree.BTreeG[*row]),
	}
}

// Put inserts or updates the given cells of one row. Existing cells of the
// row that are not named by the mutation are kept. Cells without a timestamp
// get the server's current time.
func (s *Store) Put(table string, key []byte, cells []common.Cell) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, ok := s.tables[table]
	if !ok {
		tree = btree.NewG[*row](btreeDegree, rowLess)
		s.tables[table] = tree
	}

	r, ok := tree.Get(&row{key: key})
	if !ok {
		r = &row{key: append([]byte(nil), key...), cells: make(map[string]common.Cell)}
		tree.ReplaceOrInsert(r)
	}

	now := time.Now().UnixMilli()
	for _, c := range cells {
		if c.Timestamp == 0 {
			c.Timestamp = now
		}
		r.cells[cellKey(c.Family, c.Qualifier)] = c
	}
}

// Get returns one row, projected to the given columns (all cells when
// columns is empty). The boolean reports whether the row exists; for a
// missing row the result still carries the key so batched responses stay
// aligned with their request.
func (s *Store) Get(table string, key []byte, columns []common.Column) (common.RowResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := common.RowResult{Row: append([]byte(nil), key...)}

	tree, ok := s.tables[table]
	if !ok {
		return result, false
	}

	r, ok := tree.Get(&row{key: key})
	if !ok {
		return result, false
	}

	result.Cells = projectCells(r.cells, columns)
	return result, true
}

// Scan returns up to limit rows of [start, stop) in ascending key order.
// A nil start begins at the first row, a nil stop runs to the end of the
// table. more reports whether rows beyond the returned batch remain.
func (s *Store) Scan(table string, start, stop []byte, columns []common.Column, limit int) (rows []common.RowResult, more bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.tables[table]
	if !ok {
		return nil, false
	}

	iter := func(r *row) bool {
		if stop != nil && bytes.Compare(r.key, stop) >= 0 {
			return false
		}
		if len(rows) == limit {
			// One row beyond the batch exists, so the lease stays open
			more = true
			return false
		}
		rows = append(rows, common.RowResult{
			Row:   append([]byte(nil), r.key...),
			Cells: projectCells(r.cells, columns),
		})
		return true
	}

	if start == nil {
		tree.Ascend(iter)
	} else {
		tree.AscendGreaterOrEqual(&row{key: start}, iter)
	}

	return rows, more
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// projectCells filters a row's cells to the requested columns (all cells for
// an empty projection) in deterministic family:qualifier order
func projectCells(cells map[string]common.Cell, columns []common.Column) []common.Cell {
	var out []common.Cell

	if len(columns) == 0 {
		out = make([]common.Cell, 0, len(cells))
		for _, c := range cells {
			out = append(out, c)
		}
	} else {
		for _, col := range columns {
			if c, ok := cells[cellKey(col.Family, col.Qualifier)]; ok {
				out = append(out, c)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		return out[i].Qualifier < out[j].Qualifier
	})

	return out
}
