package client

import (
	"context"
	"fmt"
	"testing"

	"github.com/kvgrid/kvgrid/region"
	"github.com/kvgrid/kvgrid/rpc/common"
	"github.com/kvgrid/kvgrid/rpc/serializer"
	"github.com/kvgrid/kvgrid/rpc/server"
	"github.com/kvgrid/kvgrid/rpc/transport/inmem"
)

// --------------------------------------------------------------------------
// Test Harness
// --------------------------------------------------------------------------

// newTestServer starts an in-process region server on the given endpoint
// name. The handler is wired into the network directly, no server transport
// is needed.
func newTestServer(tb testing.TB, net *inmem.Network, endpoint string) *server.RegionServer {
	tb.Helper()
	srv := server.NewRegionServer(
		common.ServerConfig{Endpoint: endpoint},
		nil,
		serializer.NewBinarySerializer(),
	)
	net.AddServer(endpoint, srv.Handler())
	return srv
}

// newTestClient creates a Client sending into the given network
func newTestClient(tb testing.TB, net *inmem.Network, loc region.Locator) *Client {
	tb.Helper()
	cfg := common.ClientConfig{
		ThreadPoolSize: 4,
		TimeoutSecond:  5,
		Transport:      common.ClientTransportConfig{RetryCount: 1},
	}
	c, err := NewWithCollaborators(cfg, net.ClientTransport(), serializer.NewBinarySerializer(), loc)
	if err != nil {
		tb.Fatalf("failed to create client: %v", err)
	}
	return c
}

// splitLocator returns a static locator splitting the keyspace between two
// servers at the given boundary key
func splitLocator(boundary string, serverA, serverB string) region.Locator {
	return region.NewStaticLocator([]common.RegionDesc{
		{Stop: []byte(boundary), Server: serverA},
		{Start: []byte(boundary), Server: serverB},
	})
}

// singleLocator returns a static locator routing everything to one server
func singleLocator(endpoint string) region.Locator {
	return region.NewStaticLocator([]common.RegionDesc{{Server: endpoint}})
}

// rowKey returns a zero-padded row key so lexicographic and numeric order
// agree
func rowKey(i int) []byte {
	return []byte(fmt.Sprintf("row_%04d", i))
}

// --------------------------------------------------------------------------
// Lifecycle Tests
// --------------------------------------------------------------------------

func TestClientCloseIsIdempotent(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	c := newTestClient(t, net, singleLocator("srv-a"))

	if err := c.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}

func TestTableAfterClientClose(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	c := newTestClient(t, net, singleLocator("srv-a"))

	tbl, err := c.Table("t")
	if err != nil {
		t.Fatalf("failed to open table: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if _, err := c.Table("t"); err != ErrClientClosed {
		t.Errorf("Table after Close: got %v, want ErrClientClosed", err)
	}
	if err := tbl.Put(context.Background(), NewPut([]byte("r")).AddColumn("d", "q", []byte("v"))); err != ErrClientClosed {
		t.Errorf("Put after client Close: got %v, want ErrClientClosed", err)
	}
}

func TestTableCloseIsIdempotent(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	c := newTestClient(t, net, singleLocator("srv-a"))
	defer c.Close()

	tbl, err := c.Table("t")
	if err != nil {
		t.Fatalf("failed to open table: %v", err)
	}
	if err := tbl.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := tbl.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	if _, err := tbl.Get(context.Background(), NewGet([]byte("r"))); err != ErrTableClosed {
		t.Errorf("Get after table Close: got %v, want ErrTableClosed", err)
	}
}

func TestOperationsHonorContextCancellation(t *testing.T) {
	net := inmem.NewNetwork()
	newTestServer(t, net, "srv-a")
	c := newTestClient(t, net, singleLocator("srv-a"))
	defer c.Close()

	tbl, err := c.Table("t")
	if err != nil {
		t.Fatalf("failed to open table: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := tbl.Put(ctx, NewPut([]byte("r")).AddColumn("d", "q", []byte("v"))); err != context.Canceled {
		t.Errorf("Put with cancelled context: got %v, want context.Canceled", err)
	}
	if _, err := tbl.Get(ctx, NewGet([]byte("r"))); err != context.Canceled {
		t.Errorf("Get with cancelled context: got %v, want context.Canceled", err)
	}
}

func TestNewRequiresLocatorEndpoint(t *testing.T) {
	if _, err := New(NewConfiguration()); err == nil {
		t.Fatal("New without locator endpoint should fail")
	}
}

// --------------------------------------------------------------------------
// Configuration Tests
// --------------------------------------------------------------------------

func TestConfigurationDefaults(t *testing.T) {
	conf := NewConfiguration()
	conf.Set(ConfLocatorEndpoint, "localhost:7000")

	cfg := conf.toClientConfig()
	if cfg.LocatorEndpoint != "localhost:7000" {
		t.Errorf("locator endpoint: got %q", cfg.LocatorEndpoint)
	}
	if cfg.ThreadPoolSize != defaultThreadPoolSize {
		t.Errorf("thread pool size: got %d, want default %d", cfg.ThreadPoolSize, defaultThreadPoolSize)
	}
	if cfg.TimeoutSecond != defaultTimeoutSeconds {
		t.Errorf("timeout: got %d, want default %d", cfg.TimeoutSecond, defaultTimeoutSeconds)
	}
	if cfg.Transport.RetryCount != defaultRetryCount {
		t.Errorf("retry count: got %d, want default %d", cfg.Transport.RetryCount, defaultRetryCount)
	}
}

func TestConfigurationOverridesAndFallbacks(t *testing.T) {
	conf := NewConfiguration()
	conf.SetInt(ConfThreadPoolSize, 16)
	conf.Set(ConfRetryCount, "not-a-number")

	if got := conf.GetInt(ConfThreadPoolSize, 1); got != 16 {
		t.Errorf("GetInt: got %d, want 16", got)
	}
	if got := conf.GetInt(ConfRetryCount, 7); got != 7 {
		t.Errorf("GetInt with unparsable value: got %d, want fallback 7", got)
	}
	if got := conf.Get("some.unknown.key", "fallback"); got != "fallback" {
		t.Errorf("Get unknown key: got %q, want fallback", got)
	}

	cfg := conf.toClientConfig()
	if cfg.ThreadPoolSize != 16 {
		t.Errorf("thread pool size: got %d, want 16", cfg.ThreadPoolSize)
	}
}
