package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
)

// InitMetrics creates the Prometheus middleware for the Fiber app.
// The returned middleware exposes request counters and latency histograms
// and serves the scrape endpoint once registered at /metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}
