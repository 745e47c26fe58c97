package client

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/kvgrid/kvgrid/rpc/transport"
	"github.com/kvgrid/kvgrid/rpc/transport/inmem"
)

// --------------------------------------------------------------------------
// Put / Get Tests
// --------------------------------------------------------------------------

func TestPutThenGet(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	c := newTestClient(t, net, singleLocator("srv-a"))
	defer c.Close()

	tbl, err := c.Table("t")
	if err != nil {
		t.Fatalf("failed to open table: %v", err)
	}
	ctx := context.Background()

	put := NewPut([]byte("row1")).
		AddColumn("d", "name", []byte("alice")).
		AddColumn("d", "city", []byte("berlin"))
	if err := tbl.Put(ctx, put); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	res, err := tbl.Get(ctx, NewGet([]byte("row1")))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if res.Empty() {
		t.Fatal("get returned an empty result for an existing row")
	}
	if !bytes.Equal(res.Row(), []byte("row1")) {
		t.Errorf("row key: got %q, want row1", res.Row())
	}
	if got := res.Value("d", "name"); !bytes.Equal(got, []byte("alice")) {
		t.Errorf("d:name = %q, want alice", got)
	}
	if got := res.Value("d", "city"); !bytes.Equal(got, []byte("berlin")) {
		t.Errorf("d:city = %q, want berlin", got)
	}
	if got := res.Value("d", "missing"); got != nil {
		t.Errorf("d:missing = %q, want nil", got)
	}

	for _, cell := range res.Cells() {
		if cell.Timestamp == 0 {
			t.Errorf("cell %s:%s has no server-assigned timestamp", cell.Family, cell.Qualifier)
		}
	}
}

func TestPutRejectsEmptyMutation(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	c := newTestClient(t, net, singleLocator("srv-a"))
	defer c.Close()

	tbl, _ := c.Table("t")
	if err := tbl.Put(context.Background(), NewPut([]byte("row1"))); err != ErrEmptyMutation {
		t.Fatalf("got %v, want ErrEmptyMutation", err)
	}
}

func TestPutFailureIsRemoteWriteError(t *testing.T) {
	net := inmem.NewNetwork()
	c := newTestClient(t, net, singleLocator("srv-down"))
	defer c.Close()

	tbl, _ := c.Table("t")
	err := tbl.Put(context.Background(),
		NewPut([]byte("row1")).AddColumn("d", "q", []byte("v")))

	var writeErr *RemoteWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("got %T (%v), want *RemoteWriteError", err, err)
	}
	if writeErr.Table != "t" || !bytes.Equal(writeErr.Row, []byte("row1")) {
		t.Errorf("error carries table %q row %q", writeErr.Table, writeErr.Row)
	}
	if !errors.Is(err, transport.ErrConnection) {
		t.Errorf("cause not preserved: %v", err)
	}
}

func TestGetMissingRowReturnsEmptyResult(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	c := newTestClient(t, net, singleLocator("srv-a"))
	defer c.Close()

	tbl, _ := c.Table("t")
	res, err := tbl.Get(context.Background(), NewGet([]byte("no-such-row")))
	if err != nil {
		t.Fatalf("get of a missing row must not fail: %v", err)
	}
	if res == nil {
		t.Fatal("get of a missing row returned a nil result")
	}
	if !res.Empty() {
		t.Errorf("missing row is not empty: %v", res.Cells())
	}
	if !bytes.Equal(res.Row(), []byte("no-such-row")) {
		t.Errorf("row key: got %q, want no-such-row", res.Row())
	}
}

func TestGetProjection(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	c := newTestClient(t, net, singleLocator("srv-a"))
	defer c.Close()

	tbl, _ := c.Table("t")
	ctx := context.Background()

	put := NewPut([]byte("row1")).
		AddColumn("d", "a", []byte("1")).
		AddColumn("d", "b", []byte("2")).
		AddColumn("m", "a", []byte("3"))
	if err := tbl.Put(ctx, put); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	res, err := tbl.Get(ctx, NewGet([]byte("row1")).AddColumn("d", "b"))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(res.Cells()) != 1 {
		t.Fatalf("projection returned %d cells, want 1", len(res.Cells()))
	}
	if got := res.Value("d", "b"); !bytes.Equal(got, []byte("2")) {
		t.Errorf("d:b = %q, want 2", got)
	}
}

// --------------------------------------------------------------------------
// MultiGet Tests
// --------------------------------------------------------------------------

func TestMultiGetMirrorsInputOrderAcrossServers(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	newTestServer(t, net, "srv-b")
	// rows below "m" live on srv-a, the rest on srv-b
	c := newTestClient(t, net, splitLocator("m", "srv-a", "srv-b"))
	defer c.Close()

	tbl, _ := c.Table("t")
	ctx := context.Background()

	keys := []string{"zebra", "apple", "melon", "banana", "quince", "cherry"}
	for _, k := range keys {
		put := NewPut([]byte(k)).AddColumn("d", "v", []byte("val-"+k))
		if err := tbl.Put(ctx, put); err != nil {
			t.Fatalf("put %s failed: %v", k, err)
		}
	}

	// interleave ownership and include a missing row
	gets := []*Get{
		NewGet([]byte("zebra")),
		NewGet([]byte("apple")),
		NewGet([]byte("missing")),
		NewGet([]byte("melon")),
		NewGet([]byte("banana")),
		NewGet([]byte("quince")),
		NewGet([]byte("cherry")),
	}
	results := tbl.MultiGet(ctx, gets)
	if len(results) != len(gets) {
		t.Fatalf("got %d results, want %d", len(results), len(gets))
	}

	for i, g := range gets {
		br := results[i]
		if br.Err != nil {
			t.Fatalf("slot %d (%s) errored: %v", i, g.Row(), br.Err)
		}
		if !bytes.Equal(br.Result.Row(), g.Row()) {
			t.Errorf("slot %d: got row %q, want %q", i, br.Result.Row(), g.Row())
		}
		if string(g.Row()) == "missing" {
			if !br.Result.Empty() {
				t.Errorf("slot %d: missing row is not empty", i)
			}
			continue
		}
		want := []byte("val-" + string(g.Row()))
		if got := br.Result.Value("d", "v"); !bytes.Equal(got, want) {
			t.Errorf("slot %d: got %q, want %q", i, got, want)
		}
	}
}

func TestMultiGetPartialFailure(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	newTestServer(t, net, "srv-b")
	c := newTestClient(t, net, splitLocator("m", "srv-a", "srv-b"))
	defer c.Close()

	tbl, _ := c.Table("t")
	ctx := context.Background()

	for _, k := range []string{"apple", "zebra"} {
		put := NewPut([]byte(k)).AddColumn("d", "v", []byte(k))
		if err := tbl.Put(ctx, put); err != nil {
			t.Fatalf("put %s failed: %v", k, err)
		}
	}

	// take srv-b down; only its slots may fail
	net.RemoveServer("srv-b")

	results := tbl.MultiGet(ctx, []*Get{
		NewGet([]byte("apple")), // srv-a
		NewGet([]byte("zebra")), // srv-b, down
		NewGet([]byte("cherry")), // srv-a
	})

	if results[0].Err != nil {
		t.Errorf("slot 0 served by a healthy server errored: %v", results[0].Err)
	}
	if results[2].Err != nil {
		t.Errorf("slot 2 served by a healthy server errored: %v", results[2].Err)
	}
	if results[1].Err == nil {
		t.Error("slot 1 served by the downed server did not error")
	} else if !errors.Is(results[1].Err, transport.ErrConnection) {
		t.Errorf("slot 1: cause not preserved: %v", results[1].Err)
	}
	if got := results[0].Result.Value("d", "v"); !bytes.Equal(got, []byte("apple")) {
		t.Errorf("slot 0: got %q, want apple", got)
	}
}

func TestMultiGetHonorsPerGetProjection(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	c := newTestClient(t, net, singleLocator("srv-a"))
	defer c.Close()

	tbl, _ := c.Table("t")
	ctx := context.Background()

	put := NewPut([]byte("row1")).
		AddColumn("d", "a", []byte("1")).
		AddColumn("d", "b", []byte("2")).
		AddColumn("m", "c", []byte("3"))
	if err := tbl.Put(ctx, put); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	// three reads of the same row land on one server: two with disjoint
	// projections and one asking for the whole row
	results := tbl.MultiGet(ctx, []*Get{
		NewGet([]byte("row1")).AddColumn("d", "a"),
		NewGet([]byte("row1")).AddColumn("d", "b"),
		NewGet([]byte("row1")),
	})
	for i, br := range results {
		if br.Err != nil {
			t.Fatalf("slot %d errored: %v", i, br.Err)
		}
	}

	if cells := results[0].Result.Cells(); len(cells) != 1 {
		t.Errorf("slot 0 projected to d:a but carries %d cells: %v", len(cells), cells)
	}
	if got := results[0].Result.Value("d", "b"); got != nil {
		t.Errorf("slot 0 projected to d:a but received d:b = %q", got)
	}

	if cells := results[1].Result.Cells(); len(cells) != 1 {
		t.Errorf("slot 1 projected to d:b but carries %d cells: %v", len(cells), cells)
	}
	if got := results[1].Result.Value("d", "a"); got != nil {
		t.Errorf("slot 1 projected to d:b but received d:a = %q", got)
	}

	// the whole-row sibling still sees everything
	if cells := results[2].Result.Cells(); len(cells) != 3 {
		t.Errorf("whole-row slot carries %d cells, want 3: %v", len(cells), cells)
	}
}

func TestMultiGetEmptyInput(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	c := newTestClient(t, net, singleLocator("srv-a"))
	defer c.Close()

	tbl, _ := c.Table("t")
	if results := tbl.MultiGet(context.Background(), nil); len(results) != 0 {
		t.Fatalf("got %d results for empty input", len(results))
	}
}
