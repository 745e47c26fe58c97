package server

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/kvgrid/kvgrid/rpc/common"
)

func cell(family, qualifier, value string) common.Cell {
	return common.Cell{Family: family, Qualifier: qualifier, Value: []byte(value)}
}

// --------------------------------------------------------------------------
// Store Tests
// --------------------------------------------------------------------------

func TestStorePutAssignsTimestamps(t *testing.T) {
	s := NewStore()
	s.Put("t", []byte("r1"), []common.Cell{cell("d", "q", "v")})

	result, found := s.Get("t", []byte("r1"), nil)
	if !found {
		t.Fatal("row not found after put")
	}
	if result.Cells[0].Timestamp == 0 {
		t.Error("put did not assign a timestamp")
	}

	// an explicit timestamp is kept
	s.Put("t", []byte("r2"), []common.Cell{{Family: "d", Qualifier: "q", Value: []byte("v"), Timestamp: 42}})
	result, _ = s.Get("t", []byte("r2"), nil)
	if result.Cells[0].Timestamp != 42 {
		t.Errorf("explicit timestamp: got %d, want 42", result.Cells[0].Timestamp)
	}
}

func TestStorePutMergesCells(t *testing.T) {
	s := NewStore()
	s.Put("t", []byte("r1"), []common.Cell{cell("d", "a", "1"), cell("d", "b", "2")})
	// second mutation overwrites d:a and leaves d:b alone
	s.Put("t", []byte("r1"), []common.Cell{cell("d", "a", "updated")})

	result, found := s.Get("t", []byte("r1"), nil)
	if !found {
		t.Fatal("row not found")
	}
	if len(result.Cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(result.Cells))
	}

	values := map[string]string{}
	for _, c := range result.Cells {
		values[c.Family+":"+c.Qualifier] = string(c.Value)
	}
	if values["d:a"] != "updated" {
		t.Errorf("d:a = %q, want updated", values["d:a"])
	}
	if values["d:b"] != "2" {
		t.Errorf("d:b = %q, want 2", values["d:b"])
	}
}

func TestStoreGetMissing(t *testing.T) {
	s := NewStore()

	result, found := s.Get("t", []byte("nope"), nil)
	if found {
		t.Error("found a row that was never put")
	}
	if !bytes.Equal(result.Row, []byte("nope")) {
		t.Errorf("missing row result lost its key: %q", result.Row)
	}
	if len(result.Cells) != 0 {
		t.Errorf("missing row carries %d cells", len(result.Cells))
	}

	// unknown table behaves the same
	if _, found := s.Get("other", []byte("r"), nil); found {
		t.Error("found a row in a table that was never written")
	}
}

func TestStoreGetProjection(t *testing.T) {
	s := NewStore()
	s.Put("t", []byte("r1"), []common.Cell{
		cell("d", "a", "1"),
		cell("d", "b", "2"),
		cell("m", "a", "3"),
	})

	result, _ := s.Get("t", []byte("r1"), []common.Column{
		{Family: "m", Qualifier: "a"},
		{Family: "d", Qualifier: "a"},
		{Family: "d", Qualifier: "nope"},
	})
	if len(result.Cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(result.Cells))
	}
	// projected cells come back ordered by family then qualifier
	if result.Cells[0].Family != "d" || result.Cells[1].Family != "m" {
		t.Errorf("cells out of order: %v", result.Cells)
	}
}

func TestStoreScanOrderAndBounds(t *testing.T) {
	s := NewStore()
	// insert out of order
	for _, k := range []string{"d", "a", "e", "b", "c"} {
		s.Put("t", []byte(k), []common.Cell{cell("d", "q", k)})
	}

	rows, more := s.Scan("t", []byte("b"), []byte("e"), nil, 100)
	if more {
		t.Error("scan within limit reported more")
	}
	want := []string{"b", "c", "d"}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, w := range want {
		if string(rows[i].Row) != w {
			t.Errorf("row %d: got %q, want %q", i, rows[i].Row, w)
		}
	}

	// nil bounds cover the whole table
	rows, _ = s.Scan("t", nil, nil, nil, 100)
	if len(rows) != 5 {
		t.Errorf("whole-table scan: got %d rows, want 5", len(rows))
	}
}

func TestStoreScanLimitAndMore(t *testing.T) {
	s := NewStore()
	for i := 0; i < 10; i++ {
		key := []byte(fmt.Sprintf("row_%02d", i))
		s.Put("t", key, []common.Cell{cell("d", "q", "v")})
	}

	rows, more := s.Scan("t", nil, nil, nil, 4)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if !more {
		t.Error("truncated scan did not report more")
	}

	// exactly the remaining rows, no more beyond them
	rows, more = s.Scan("t", []byte("row_04"), nil, nil, 6)
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	if more {
		t.Error("exact-fit scan reported more")
	}
}

func TestStoreScanUnknownTable(t *testing.T) {
	s := NewStore()
	rows, more := s.Scan("nope", nil, nil, nil, 10)
	if len(rows) != 0 || more {
		t.Errorf("scan of unknown table: rows=%d more=%v", len(rows), more)
	}
}

// --------------------------------------------------------------------------
// Lease Registry Tests
// --------------------------------------------------------------------------

func TestLeaseRegistry(t *testing.T) {
	reg := newLeaseRegistry()

	id1 := reg.open(&scanLease{table: "t"})
	id2 := reg.open(&scanLease{table: "t"})
	if id1 == 0 || id2 == 0 {
		t.Fatal("lease IDs must be non-zero, zero means open a new scanner")
	}
	if id1 == id2 {
		t.Fatal("lease IDs collide")
	}
	if reg.count() != 2 {
		t.Fatalf("count = %d, want 2", reg.count())
	}

	if _, ok := reg.get(id1); !ok {
		t.Error("open lease not found")
	}
	if _, ok := reg.get(9999); ok {
		t.Error("unknown lease found")
	}

	reg.release(id1)
	if _, ok := reg.get(id1); ok {
		t.Error("released lease still found")
	}
	if reg.count() != 1 {
		t.Fatalf("count after release = %d, want 1", reg.count())
	}

	// releasing twice is fine
	reg.release(id1)
	if reg.count() != 1 {
		t.Fatalf("count after double release = %d, want 1", reg.count())
	}
}
