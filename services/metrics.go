package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// itineraryMetrics holds the Prometheus metrics of the itinerary pipeline.
type itineraryMetrics struct {
	generated           prometheus.Counter
	generationFallbacks *prometheus.CounterVec
	weatherFallbacks    prometheus.Counter
	weatherCacheHits    prometheus.Counter
	upstreamDuration    *prometheus.HistogramVec
}

// Singleton pattern for metrics (avoid double registration in tests).
var (
	metricsInstance *itineraryMetrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func getMetrics() *itineraryMetrics {
	metricsOnce.Do(func() {
		factory := promauto.With(defaultRegistry)
		metricsInstance = &itineraryMetrics{
			generated: factory.NewCounter(prometheus.CounterOpts{
				Name: "itinerary_generated_total",
				Help: "Total number of itinerary documents produced by the generator",
			}),
			generationFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "itinerary_generation_fallbacks_total",
				Help: "Itineraries that used the built-in plan because the model output was unusable",
			}, []string{"reason"}),
			weatherFallbacks: factory.NewCounter(prometheus.CounterOpts{
				Name: "itinerary_weather_provider_fallbacks_total",
				Help: "Weather lookups answered by the fallback provider",
			}),
			weatherCacheHits: factory.NewCounter(prometheus.CounterOpts{
				Name: "itinerary_weather_cache_hits_total",
				Help: "Weather lookups served from the cache",
			}),
			upstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "itinerary_upstream_request_duration_seconds",
				Help:    "Latency of calls to weather and LLM providers",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			}, []string{"provider"}),
		}
	})
	return metricsInstance
}

// resetMetricsForTesting swaps in a fresh registry. Only called from tests.
func resetMetricsForTesting() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	defaultRegistry = reg
	metricsInstance = nil
	metricsOnce = sync.Once{}
	return reg
}
