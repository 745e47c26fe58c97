package region

import (
	"errors"
	"testing"

	"github.com/kvgrid/kvgrid/rpc/common"
	"github.com/kvgrid/kvgrid/rpc/serializer"
	"github.com/kvgrid/kvgrid/rpc/transport/inmem"
)

// three contiguous regions: [nil, g) [g, p) [p, nil)
func threeRegions() []common.RegionDesc {
	return []common.RegionDesc{
		{Stop: []byte("g"), Server: "srv-1"},
		{Start: []byte("g"), Stop: []byte("p"), Server: "srv-2"},
		{Start: []byte("p"), Server: "srv-3"},
	}
}

// --------------------------------------------------------------------------
// Static Locator Tests
// --------------------------------------------------------------------------

func TestStaticLocate(t *testing.T) {
	loc := NewStaticLocator(threeRegions())

	tests := []struct {
		row    string
		server string
	}{
		{"", "srv-1"},       // beginning of the table
		{"apple", "srv-1"},
		{"f", "srv-1"},
		{"g", "srv-2"},      // boundary keys belong to the right region
		{"melon", "srv-2"},
		{"p", "srv-3"},
		{"zebra", "srv-3"},
	}
	for _, tc := range tests {
		reg, err := loc.Locate("t", []byte(tc.row))
		if err != nil {
			t.Fatalf("Locate(%q) failed: %v", tc.row, err)
		}
		if reg.Server != tc.server {
			t.Errorf("Locate(%q) = %s, want %s", tc.row, reg.Server, tc.server)
		}
	}
}

func TestStaticLocateNoRegion(t *testing.T) {
	// a gap: [nil, g) and [p, nil) with nothing in between
	loc := NewStaticLocator([]common.RegionDesc{
		{Stop: []byte("g"), Server: "srv-1"},
		{Start: []byte("p"), Server: "srv-3"},
	})

	if _, err := loc.Locate("t", []byte("m")); !errors.Is(err, ErrNoRegion) {
		t.Fatalf("Locate in a gap: got %v, want ErrNoRegion", err)
	}
}

func TestStaticLocateRange(t *testing.T) {
	loc := NewStaticLocator(threeRegions())

	tests := []struct {
		name        string
		start, stop string
		servers     []string
	}{
		{"whole table", "", "", []string{"srv-1", "srv-2", "srv-3"}},
		{"within one region", "a", "b", []string{"srv-1"}},
		{"spanning a boundary", "f", "h", []string{"srv-1", "srv-2"}},
		{"stop on boundary excluded", "a", "g", []string{"srv-1"}},
		{"start on boundary", "g", "h", []string{"srv-2"}},
		{"open end", "m", "", []string{"srv-2", "srv-3"}},
	}
	for _, tc := range tests {
		var start, stop []byte
		if tc.start != "" {
			start = []byte(tc.start)
		}
		if tc.stop != "" {
			stop = []byte(tc.stop)
		}

		regions, err := loc.LocateRange("t", start, stop)
		if err != nil {
			t.Fatalf("%s: LocateRange failed: %v", tc.name, err)
		}
		if len(regions) != len(tc.servers) {
			t.Fatalf("%s: got %d regions, want %d", tc.name, len(regions), len(tc.servers))
		}
		for i, reg := range regions {
			if reg.Server != tc.servers[i] {
				t.Errorf("%s: region %d = %s, want %s", tc.name, i, reg.Server, tc.servers[i])
			}
		}
	}
}

// --------------------------------------------------------------------------
// RPC Locator Tests
// --------------------------------------------------------------------------

// locatorService answers Locate requests with a fixed region list and counts
// the calls it served
type locatorService struct {
	regions []common.RegionDesc
	calls   int
	s       serializer.ISerializer
}

func (svc *locatorService) handle(req []byte) []byte {
	svc.calls++
	resp, err := svc.s.Serialize(*common.NewLocateResponse(svc.regions, nil))
	if err != nil {
		panic(err)
	}
	return resp
}

func TestRPCLocatorResolvesAndCaches(t *testing.T) {
	s := serializer.NewBinarySerializer()
	svc := &locatorService{regions: threeRegions(), s: s}

	net := inmem.NewNetwork()
	net.AddServer("locator", svc.handle)

	loc := NewRPCLocator("locator", net.ClientTransport(), s)

	reg, err := loc.Locate("t", []byte("melon"))
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if reg.Server != "srv-2" {
		t.Errorf("Locate = %s, want srv-2", reg.Server)
	}

	// later lookups are served from the cache
	if _, err := loc.Locate("t", []byte("a")); err != nil {
		t.Fatalf("second Locate failed: %v", err)
	}
	if _, err := loc.LocateRange("t", nil, nil); err != nil {
		t.Fatalf("LocateRange failed: %v", err)
	}
	if svc.calls != 1 {
		t.Errorf("served %d remote calls, want 1 (cache miss only)", svc.calls)
	}

	// invalidation forces a fresh resolve
	loc.Invalidate("t")
	if _, err := loc.Locate("t", []byte("a")); err != nil {
		t.Fatalf("Locate after Invalidate failed: %v", err)
	}
	if svc.calls != 2 {
		t.Errorf("served %d remote calls after invalidate, want 2", svc.calls)
	}
}

func TestRPCLocatorPerTableCache(t *testing.T) {
	s := serializer.NewBinarySerializer()
	svc := &locatorService{regions: threeRegions(), s: s}

	net := inmem.NewNetwork()
	net.AddServer("locator", svc.handle)

	loc := NewRPCLocator("locator", net.ClientTransport(), s)

	if _, err := loc.Locate("t1", []byte("a")); err != nil {
		t.Fatalf("Locate t1 failed: %v", err)
	}
	if _, err := loc.Locate("t2", []byte("a")); err != nil {
		t.Fatalf("Locate t2 failed: %v", err)
	}
	if svc.calls != 2 {
		t.Errorf("served %d remote calls, want one per table", svc.calls)
	}

	// invalidating one table keeps the other cached
	loc.Invalidate("t1")
	if _, err := loc.Locate("t2", []byte("a")); err != nil {
		t.Fatalf("Locate t2 after foreign invalidate failed: %v", err)
	}
	if svc.calls != 2 {
		t.Errorf("served %d remote calls, want still 2", svc.calls)
	}
}

func TestRPCLocatorUnreachableEndpoint(t *testing.T) {
	net := inmem.NewNetwork()
	loc := NewRPCLocator("nowhere", net.ClientTransport(), serializer.NewBinarySerializer())

	if _, err := loc.Locate("t", []byte("a")); err == nil {
		t.Fatal("Locate against an unreachable endpoint should fail")
	}
}
