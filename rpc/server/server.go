package server

import (
	"fmt"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
	"github.com/kvgrid/kvgrid/rpc/common"
	"github.com/kvgrid/kvgrid/rpc/serializer"
	"github.com/kvgrid/kvgrid/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("server")

// RegionServer serves the table operations of the row-key ranges it owns
// against an in-memory sorted store. A standalone region server also answers
// Locate requests with itself as the owner of the whole keyspace, so it can
// double as the cluster locator for single-server setups.
type RegionServer struct {
	config     common.ServerConfig
	transport  transport.IServerTransport
	serializer serializer.ISerializer
	store      *Store
	adapter    *adapter
}

// NewRegionServer creates a new region server
//
// Usage:
//
//	s := server.NewRegionServer(
//		config,
//		tcp.NewTCPDefaultServerTransport(config.MaxWorkersPerConn),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRegionServer(
	config common.ServerConfig,
	t transport.IServerTransport,
	s serializer.ISerializer,
) *RegionServer {
	store := NewStore()

	Logger.Infof("Created region server")
	Logger.Infof(config.String())

	return &RegionServer{
		config:     config,
		transport:  t,
		serializer: s,
		store:      store,
		adapter:    newAdapter(store, config.Advertise()),
	}
}

// Handler returns the raw request handler of the server. It is registered
// on the server transport by Serve; tests wire it into an in-process
// transport directly.
func (s *RegionServer) Handler() transport.ServerHandleFunc {
	return func(reqBytes []byte) []byte {
		req := &common.Message{}
		if err := s.serializer.Deserialize(reqBytes, req); err != nil {
			Logger.Errorf("Failed to deserialize request: %v", err)
			return s.mustSerialize(common.NewErrorResponse(fmt.Sprintf("malformed request: %v", err)))
		}

		metrics.GetOrCreateCounter(fmt.Sprintf(`kvgrid_server_requests_total{type=%q}`, req.MsgType.String())).Inc()

		resp := s.adapter.Handle(req)
		if resp.Err != "" {
			metrics.GetOrCreateCounter(`kvgrid_server_request_errors_total`).Inc()
		}

		return s.mustSerialize(resp)
	}
}

// Serve starts the metrics endpoint (if configured) and listens for requests.
// It blocks until the transport fails.
func (s *RegionServer) Serve() error {
	if s.config.MetricsEndpoint != "" {
		go s.serveMetrics()
	}

	s.transport.RegisterHandler(s.Handler())
	return s.transport.Listen(s.config)
}

// OpenLeases returns the number of currently open scan leases
func (s *RegionServer) OpenLeases() int {
	return s.adapter.leases.count()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// mustSerialize serializes a response message; a response that cannot be
// serialized is replaced by a plain error response
func (s *RegionServer) mustSerialize(msg *common.Message) []byte {
	b, err := s.serializer.Serialize(*msg)
	if err == nil {
		return b
	}

	Logger.Errorf("Failed to serialize response: %v", err)
	b, err = s.serializer.Serialize(*common.NewErrorResponse("internal serialization error"))
	if err != nil {
		// The serializer cannot even encode a flat error message
		Logger.Panicf("Failed to serialize error response: %v", err)
	}
	return b
}

// serveMetrics exposes Prometheus metrics over HTTP
func (s *RegionServer) serveMetrics() {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	Logger.Infof("Serving metrics on %s/metrics", s.config.MetricsEndpoint)
	if err := http.ListenAndServe(s.config.MetricsEndpoint, mux); err != nil {
		Logger.Errorf("Metrics endpoint failed: %v", err)
	}
}
