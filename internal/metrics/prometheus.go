package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters for the tile-build pipeline, grounded on the
// promauto.NewCounterVec pattern the pack's h3-spatial-cache example
// uses for its cache/HTTP counters (internal/core/observability).
var (
	meshesBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tilebuilder_meshes_built_total",
			Help: "Meshes emitted by QuadKeyBuilder, by element builder layer.",
		},
		[]string{"layer"},
	)

	elementsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tilebuilder_elements_processed_total",
			Help: "Elements dispatched to element builders during a tile build.",
		},
		[]string{"kind"},
	)

	styleCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tilebuilder_style_cache_results_total",
			Help: "StyleProvider cache results by outcome.",
		},
		[]string{"outcome"},
	)

	tileBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tilebuilder_tile_build_duration_seconds",
			Help:    "Duration of one QuadKeyBuilder.Build call.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
	)
)

// IncMeshBuilt records one mesh emitted for the named builder layer.
func IncMeshBuilt(layer string) {
	meshesBuilt.WithLabelValues(layer).Inc()
}

// IncElementProcessed records one element dispatched during a build,
// tagged by its concrete Element variant ("node", "way", "area",
// "relation").
func IncElementProcessed(kind string) {
	elementsProcessed.WithLabelValues(kind).Inc()
}

// IncStyleCacheHit/IncStyleCacheMiss record a StyleProvider cache lookup
// outcome (spec §4.3).
func IncStyleCacheHit()  { styleCacheResults.WithLabelValues("hit").Inc() }
func IncStyleCacheMiss() { styleCacheResults.WithLabelValues("miss").Inc() }

// ObserveTileBuild records how long one Build call for a quadkey took.
func ObserveTileBuild(seconds float64) {
	tileBuildDuration.Observe(seconds)
}
