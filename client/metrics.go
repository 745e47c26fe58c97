package client

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

// countOp bumps the per-operation request counter
func countOp(op string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`kvgrid_client_requests_total{op=%q}`, op)).Inc()
}

// countOpError bumps the per-operation error counter
func countOpError(op string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`kvgrid_client_errors_total{op=%q}`, op)).Inc()
}
