package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dcfaria/GeoServer/client/internal/types"
)

var (
	styleOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geoserver_style_client",
			Name:      "operations_total",
			Help:      "Style operations by outcome (success, rejected, validation, conflict, operation, error).",
		},
		[]string{"operation", "outcome"},
	)

	requestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geoserver_style_client",
			Name:      "request_duration_seconds",
			Help:      "Latency of GeoServer REST requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)
)

func recordOperation(op string, ok bool, err error) {
	styleOperationsTotal.WithLabelValues(op, outcome(ok, err)).Inc()
}

func outcome(ok bool, err error) string {
	switch {
	case err == nil && ok:
		return "success"
	case err == nil:
		return "rejected"
	}
	if k := types.KindOf(err); k != 0 {
		return k.String()
	}
	return "error"
}

func observeRequest(method string, statusCode int, elapsed time.Duration) {
	requestDurationSeconds.WithLabelValues(method, strconv.Itoa(statusCode)).Observe(elapsed.Seconds())
}
