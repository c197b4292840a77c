package endpoint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskfacets_endpoint_requests_total",
		Help: "The total number of queries sent to the search endpoint",
	}, []string{"kind"})
	searchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskfacets_endpoint_errors_total",
		Help: "The total number of failed search endpoint calls",
	}, []string{"kind"})
	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slaskfacets_endpoint_duration_seconds",
		Help:    "Time spent waiting for the search endpoint",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskfacets_facet_cache_hits_total",
		Help: "The total number of isolated facet queries served from cache",
	})
)
