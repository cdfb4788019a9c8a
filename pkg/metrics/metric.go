package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_annotator_query_total",
		Help: "Number of annotator and speed lookup queries by operation and result",
	}, []string{"op", "result"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "route_annotator_query_duration_seconds",
		Help:    "Latency of annotator and speed lookup queries",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10us to ~80ms
	}, []string{"op"})

	unmatchedPairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_annotator_unmatched_pairs_total",
		Help: "Route pairs answered with no way or no recorded speed",
	}, []string{"op"})

	loadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_annotator_load_total",
		Help: "Number of extract and csv loads by kind and result",
	}, []string{"kind", "result"})

	loadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "route_annotator_load_duration_seconds",
		Help:    "Duration of extract and csv loads",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10), // 10ms to ~44min
	}, []string{"kind"})

	tagCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_annotator_tag_cache_lookups_total",
		Help: "Way tag cache lookups by outcome",
	}, []string{"outcome"})
)

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// ObserveQuery records one query of op that started at start.
func ObserveQuery(op string, start time.Time, err error) {
	queryTotal.WithLabelValues(op, result(err)).Inc()
	queryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func AddUnmatched(op string, n int) {
	if n > 0 {
		unmatchedPairs.WithLabelValues(op).Add(float64(n))
	}
}

// ObserveLoad records a finished load of kind ("osm", "segment_csv", "way_csv").
func ObserveLoad(kind string, start time.Time, err error) {
	loadTotal.WithLabelValues(kind, result(err)).Inc()
	loadDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func TagCacheHit(hit bool) {
	if hit {
		tagCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	tagCacheLookups.WithLabelValues("miss").Inc()
}
