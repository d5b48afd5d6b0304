// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kyon_catalog_scans_total",
		Help: "Content scans by outcome",
	}, []string{"outcome"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kyon_catalog_scan_duration_seconds",
		Help:    "Time spent scanning the content root",
		Buckets: prometheus.DefBuckets,
	})

	IndexedPosts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kyon_catalog_posts",
		Help: "Posts in the current snapshot, drafts included",
	})

	ScanWarnings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kyon_catalog_warnings",
		Help: "Warnings recorded by the last scan",
	})

	// Compiler
	CompilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kyon_compiles_total",
		Help: "Document compiles by kind and outcome",
	}, []string{"kind", "outcome"})

	CompileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kyon_compile_cache_hits_total",
		Help: "Compiled documents served from the compile cache",
	})

	// Queries
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kyon_searches_total",
		Help: "Search requests by whether a free-text query was present",
	}, []string{"scored"})
)
