package server

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/kvgrid/kvgrid/rpc/common"
)

func newTestAdapter() *adapter {
	return newAdapter(NewStore(), "srv-test")
}

func TestAdapterMutateAndGet(t *testing.T) {
	a := newTestAdapter()

	resp := a.Handle(common.NewMutateRequest("t", []byte("r1"), []common.Cell{cell("d", "q", "v")}))
	if resp.Err != "" {
		t.Fatalf("mutate failed: %s", resp.Err)
	}

	resp = a.Handle(common.NewGetRequest("t", []byte("r1"), nil))
	if resp.Err != "" {
		t.Fatalf("get failed: %s", resp.Err)
	}
	if len(resp.Rows) != 1 || !bytes.Equal(resp.Rows[0].Row, []byte("r1")) {
		t.Fatalf("unexpected get rows: %v", resp.Rows)
	}
	if len(resp.Rows[0].Cells) != 1 {
		t.Fatalf("get returned %d cells, want 1", len(resp.Rows[0].Cells))
	}

	// a missing row keeps its key with no cells
	resp = a.Handle(common.NewGetRequest("t", []byte("r2"), nil))
	if resp.Err != "" {
		t.Fatalf("get failed: %s", resp.Err)
	}
	if len(resp.Rows) != 1 || !bytes.Equal(resp.Rows[0].Row, []byte("r2")) {
		t.Fatalf("unexpected get rows: %v", resp.Rows)
	}
	if len(resp.Rows[0].Cells) != 0 {
		t.Fatalf("missing row carries cells: %v", resp.Rows[0].Cells)
	}
}

func TestAdapterRejectsEmptyMutation(t *testing.T) {
	a := newTestAdapter()

	resp := a.Handle(common.NewMutateRequest("t", []byte("r1"), nil))
	if resp.Err == "" {
		t.Fatal("empty mutation accepted")
	}
}

func TestAdapterMultiGetStaysAligned(t *testing.T) {
	a := newTestAdapter()
	a.Handle(common.NewMutateRequest("t", []byte("r1"), []common.Cell{cell("d", "q", "1")}))
	a.Handle(common.NewMutateRequest("t", []byte("r3"), []common.Cell{cell("d", "q", "3")}))

	keys := [][]byte{[]byte("r3"), []byte("r2"), []byte("r1")}
	resp := a.Handle(common.NewMultiGetRequest("t", keys, nil))
	if resp.Err != "" {
		t.Fatalf("multiGet failed: %s", resp.Err)
	}
	if len(resp.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(resp.Rows))
	}
	for i, key := range keys {
		if !bytes.Equal(resp.Rows[i].Row, key) {
			t.Errorf("slot %d: got %q, want %q", i, resp.Rows[i].Row, key)
		}
	}
	if len(resp.Rows[1].Cells) != 0 {
		t.Error("missing row r2 carries cells")
	}
}

func TestAdapterScanPaging(t *testing.T) {
	a := newTestAdapter()
	for i := 0; i < 10; i++ {
		key := []byte(fmt.Sprintf("row_%02d", i))
		a.Handle(common.NewMutateRequest("t", key, []common.Cell{cell("d", "q", "v")}))
	}

	// open a lease with batch 4
	resp := a.Handle(common.NewScanRequest("t", nil, nil, nil, 4, 0))
	if resp.Err != "" {
		t.Fatalf("scan open failed: %s", resp.Err)
	}
	if !resp.More || resp.ScannerID == 0 {
		t.Fatalf("first batch: more=%v id=%d", resp.More, resp.ScannerID)
	}
	if len(resp.Rows) != 4 {
		t.Fatalf("first batch: got %d rows, want 4", len(resp.Rows))
	}
	id := resp.ScannerID

	var keys [][]byte
	keys = append(keys, rowsOf(resp)...)

	for resp.More {
		resp = a.Handle(common.NewScanRequest("t", nil, nil, nil, 0, id))
		if resp.Err != "" {
			t.Fatalf("scan continue failed: %s", resp.Err)
		}
		keys = append(keys, rowsOf(resp)...)
	}

	if len(keys) != 10 {
		t.Fatalf("scanned %d rows, want 10", len(keys))
	}
	for i, key := range keys {
		want := fmt.Sprintf("row_%02d", i)
		if string(key) != want {
			t.Errorf("row %d: got %q, want %q", i, key, want)
		}
	}

	// the lease was released on exhaustion
	if a.leases.count() != 0 {
		t.Errorf("open leases after exhaustion: %d", a.leases.count())
	}
}

func rowsOf(resp *common.Message) [][]byte {
	var keys [][]byte
	for _, r := range resp.Rows {
		keys = append(keys, r.Row)
	}
	return keys
}

func TestAdapterScanUnknownLease(t *testing.T) {
	a := newTestAdapter()

	resp := a.Handle(common.NewScanRequest("t", nil, nil, nil, 0, 12345))
	if resp.Err == "" {
		t.Fatal("continuing an unknown lease did not fail")
	}
}

func TestAdapterScanClose(t *testing.T) {
	a := newTestAdapter()
	for i := 0; i < 10; i++ {
		key := []byte(fmt.Sprintf("row_%02d", i))
		a.Handle(common.NewMutateRequest("t", key, []common.Cell{cell("d", "q", "v")}))
	}

	resp := a.Handle(common.NewScanRequest("t", nil, nil, nil, 2, 0))
	if resp.ScannerID == 0 {
		t.Fatal("no lease opened")
	}

	closeResp := a.Handle(common.NewScanCloseRequest("t", resp.ScannerID))
	if closeResp.Err != "" {
		t.Fatalf("scan close failed: %s", closeResp.Err)
	}
	if a.leases.count() != 0 {
		t.Errorf("open leases after close: %d", a.leases.count())
	}

	// closing again is a no-op
	closeResp = a.Handle(common.NewScanCloseRequest("t", resp.ScannerID))
	if closeResp.Err != "" {
		t.Fatalf("second scan close failed: %s", closeResp.Err)
	}
}

func TestAdapterLocate(t *testing.T) {
	a := newTestAdapter()

	resp := a.Handle(common.NewLocateRequest("t"))
	if resp.Err != "" {
		t.Fatalf("locate failed: %s", resp.Err)
	}
	if len(resp.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(resp.Regions))
	}
	reg := resp.Regions[0]
	if reg.Server != "srv-test" {
		t.Errorf("advertised server: got %q, want srv-test", reg.Server)
	}
	if reg.Start != nil || reg.Stop != nil {
		t.Errorf("standalone server must own the whole keyspace, got [%q, %q)", reg.Start, reg.Stop)
	}
}

func TestAdapterUnsupportedType(t *testing.T) {
	a := newTestAdapter()

	resp := a.Handle(&common.Message{MsgType: common.MsgTUnknown})
	if resp.MsgType != common.MsgTError || resp.Err == "" {
		t.Fatalf("unsupported type: got %v / %q", resp.MsgType, resp.Err)
	}
}
