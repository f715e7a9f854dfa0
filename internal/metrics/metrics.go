// Package metrics exposes the latest hours report as Prometheus metrics.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/huangsam/githours/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "githours"

var (
	contributorHoursDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "contributor_hours"),
		"Estimated active work hours per contributor.",
		[]string{"contributor"}, nil)
	contributorCommitsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "contributor_commits"),
		"Commits per contributor after normalization.",
		[]string{"contributor"}, nil)
	contributorSessionsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "contributor_sessions"),
		"Work sessions per contributor.",
		[]string{"contributor"}, nil)
	totalHoursDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "total_hours"),
		"Estimated active work hours across all contributors.",
		nil, nil)
	totalCommitsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "total_commits"),
		"Commits in the combined stream.",
		nil, nil)
	anomaliesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "skipped_gaps"),
		"Negative commit gaps skipped in the last refresh.",
		nil, nil)
	lastRefreshDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "last_refresh_timestamp_seconds"),
		"Unix time of the last successful refresh.",
		nil, nil)
)

// Collector holds the last successful report and renders it on scrape.
type Collector struct {
	mu          sync.RWMutex
	report      schema.HoursReport
	lastRefresh time.Time
	hasReport   bool

	refreshDuration prometheus.Histogram
	refreshErrors   prometheus.Counter
}

var _ prometheus.Collector = &Collector{} // Compile-time check

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Time spent computing a report.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		refreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Refreshes that failed.",
		}),
	}
}

// Update replaces the exported report.
func (c *Collector) Update(report schema.HoursReport, at time.Time, took time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = report
	c.lastRefresh = at
	c.hasReport = true
	c.refreshDuration.Observe(took.Seconds())
}

// RecordError counts a failed refresh. The previous report stays exported.
func (c *Collector) RecordError() {
	c.refreshErrors.Inc()
}

// Ready reports whether at least one refresh succeeded.
func (c *Collector) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasReport
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- contributorHoursDesc
	ch <- contributorCommitsDesc
	ch <- contributorSessionsDesc
	ch <- totalHoursDesc
	ch <- totalCommitsDesc
	ch <- anomaliesDesc
	ch <- lastRefreshDesc
	c.refreshDuration.Describe(ch)
	c.refreshErrors.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.refreshDuration.Collect(ch)
	c.refreshErrors.Collect(ch)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasReport {
		return
	}
	for _, row := range c.report.Contributors {
		ch <- prometheus.MustNewConstMetric(contributorHoursDesc, prometheus.GaugeValue, row.Hours, row.Contributor)
		ch <- prometheus.MustNewConstMetric(contributorCommitsDesc, prometheus.GaugeValue, float64(row.Commits), row.Contributor)
		ch <- prometheus.MustNewConstMetric(contributorSessionsDesc, prometheus.GaugeValue, float64(row.Sessions), row.Contributor)
	}
	ch <- prometheus.MustNewConstMetric(totalHoursDesc, prometheus.GaugeValue, c.report.TotalHours)
	ch <- prometheus.MustNewConstMetric(totalCommitsDesc, prometheus.GaugeValue, float64(c.report.TotalCommits))
	ch <- prometheus.MustNewConstMetric(anomaliesDesc, prometheus.GaugeValue, float64(c.report.Anomalies))
	ch <- prometheus.MustNewConstMetric(lastRefreshDesc, prometheus.GaugeValue, float64(c.lastRefresh.Unix()))
}

// NewHandler registers the collector on a fresh registry and returns the
// scrape handler.
func NewHandler(c *Collector) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(c)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
