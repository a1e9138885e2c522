package webservices

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the prometheus metrics of the tile server
type Metrics struct {
	reg            *prometheus.Registry
	renders        *prometheus.CounterVec
	renderFailures *prometheus.CounterVec
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	noData         prometheus.Counter
	renderDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		reg: reg,
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vtrender_tile_renders_total",
			Help: "Tiles rendered, by style and format.",
		}, []string{"style", "format"}),
		renderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vtrender_tile_render_failures_total",
			Help: "Failed tile renders, by error kind.",
		}, []string{"kind"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vtrender_tile_cache_hits_total",
			Help: "Tiles served from the rendered tile cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vtrender_tile_cache_misses_total",
			Help: "Tiles not found in the rendered tile cache.",
		}),
		noData: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vtrender_tile_no_data_total",
			Help: "Tiles requested that no tile store has data for.",
		}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vtrender_tile_render_duration_seconds",
			Help:    "Time taken to render a tile.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.renders, m.renderFailures, m.cacheHits, m.cacheMisses, m.noData, m.renderDuration)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
