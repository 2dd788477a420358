// Package metrics records lock activity as Prometheus metrics.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bashhack/softlock/pkg/errors"
	"github.com/bashhack/softlock/pkg/lock"
)

const metricsNamespace = "softlock"

// Collector is a prometheus.Collector that counts lock events. It is a
// lock.Observer, so it can be handed to lock.WithObserver.
type Collector struct {
	acquisitions  prometheus.Counter
	timeouts      prometheus.Counter
	staleReclaims prometheus.Counter
	releases      prometheus.Counter
	waitTime      prometheus.Histogram
	heldTime      prometheus.Histogram
}

var _ lock.Observer = (*Collector)(nil)

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		acquisitions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "acquisitions_total",
				Help:      "The number of times the lock was acquired.",
			},
		),
		timeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "timeouts_total",
				Help:      "The number of acquisitions that gave up after the timeout.",
			},
		),
		staleReclaims: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "stale_reclaims_total",
				Help:      "The number of lock files removed because their owner had died.",
			},
		),
		releases: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "releases_total",
				Help:      "The number of times the lock was released.",
			},
		),
		waitTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "wait_seconds",
				Help:      "The time spent waiting for the lock, whether acquired or timed out.",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
			},
		),
		heldTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "held_seconds",
				Help:      "The time the lock was held before release.",
				Buckets:   []float64{0.01, 0.1, 1, 10, 60, 300, 1800, 3600},
			},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.acquisitions.Describe(ch)
	c.timeouts.Describe(ch)
	c.staleReclaims.Describe(ch)
	c.releases.Describe(ch)
	c.waitTime.Describe(ch)
	c.heldTime.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.acquisitions.Collect(ch)
	c.timeouts.Collect(ch)
	c.staleReclaims.Collect(ch)
	c.releases.Collect(ch)
	c.waitTime.Collect(ch)
	c.heldTime.Collect(ch)
}

// LockAcquired is part of the lock.Observer interface.
func (c *Collector) LockAcquired(_ string, waited time.Duration, _ int) {
	c.acquisitions.Inc()
	c.waitTime.Observe(waited.Seconds())
}

// LockTimedOut is part of the lock.Observer interface.
func (c *Collector) LockTimedOut(_ string, waited time.Duration) {
	c.timeouts.Inc()
	c.waitTime.Observe(waited.Seconds())
}

// StaleLockRemoved is part of the lock.Observer interface.
func (c *Collector) StaleLockRemoved(string, int) {
	c.staleReclaims.Inc()
}

// LockReleased is part of the lock.Observer interface.
func (c *Collector) LockReleased(_ string, held time.Duration) {
	c.releases.Inc()
	c.heldTime.Observe(held.Seconds())
}

// WriteTextfile writes everything g gathers to path in the text format read
// by node_exporter's textfile collector. The file is replaced atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create metrics directory")
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	return nil
}
