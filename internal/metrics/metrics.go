// Package metrics exposes build and holiday-source counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the coursekit metrics. All methods are safe for concurrent
// use and tolerate a nil receiver, so callers can run without metrics.
type Collector struct {
	holidayFetches *prometheus.CounterVec
	builds         prometheus.Counter
	buildDuration  prometheus.Histogram
	visiblePosts   prometheus.Gauge
	skippedFiles   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewCollector creates the metrics and registers them with reg. A
// *prometheus.Registry is used as the gatherer for Handler when possible.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		holidayFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coursekit_holiday_fetch_total",
			Help: "Holiday years resolved, by outcome (live or fallback)",
		}, []string{"outcome"}),
		builds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coursekit_builds_total",
			Help: "Total number of site builds",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coursekit_build_duration_seconds",
			Help:    "Site build duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		visiblePosts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coursekit_visible_posts",
			Help: "Materials visible in the last build",
		}),
		skippedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coursekit_skipped_files",
			Help: "Content files skipped as invalid in the last build",
		}),
		gatherer: prometheus.DefaultGatherer,
	}

	reg.MustRegister(c.holidayFetches, c.builds, c.buildDuration, c.visiblePosts, c.skippedFiles)
	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c
}

// RecordHolidayFetch counts one resolved holiday year.
func (c *Collector) RecordHolidayFetch(outcome string) {
	if c == nil {
		return
	}
	c.holidayFetches.WithLabelValues(outcome).Inc()
}

// RecordBuild records a finished site build.
func (c *Collector) RecordBuild(d time.Duration, visible, skipped int) {
	if c == nil {
		return
	}
	c.builds.Inc()
	c.buildDuration.Observe(d.Seconds())
	c.visiblePosts.Set(float64(visible))
	c.skippedFiles.Set(float64(skipped))
}

// Handler serves the registered metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
