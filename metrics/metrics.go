// Package metrics exports progress streams as Prometheus gauges.
//
// The collector is a plain downstream consumer: point one arm of a
// [progress.Fanout] at it and the current completed count, expected
// total and completion state of each labelled operation become scrapable
// without any extra bookkeeping in the producer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meigma/progress"
)

// Option configures a Collector.
type Option func(*Collector)

// WithNamespace sets the metric namespace prefix. The default is
// "progress".
func WithNamespace(ns string) Option {
	return func(c *Collector) {
		if ns != "" {
			c.namespace = ns
		}
	}
}

// Collector owns the progress metric families and hands out per-operation
// trackers writing into them.
type Collector struct {
	namespace string

	completed *prometheus.GaugeVec
	expected  *prometheus.GaugeVec
	complete  *prometheus.GaugeVec
}

// NewCollector builds the metric families and registers them with reg.
func NewCollector(reg prometheus.Registerer, opts ...Option) (*Collector, error) {
	c := &Collector{namespace: "progress"}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	labels := []string{"operation"}
	c.completed = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Name:      "completed_units",
		Help:      "Work units completed so far by the operation.",
	}, labels)
	c.expected = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Name:      "expected_total_units",
		Help:      "Current belief about the operation's total work units.",
	}, labels)
	c.complete = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Name:      "complete",
		Help:      "1 once the operation has reported completion, else 0.",
	}, labels)

	for _, m := range []*prometheus.GaugeVec{c.completed, c.expected, c.complete} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Observe returns a tracker mirroring one operation's stream into the
// collector's metrics under the given label. The tracker is safe for
// concurrent use.
func (c *Collector) Observe(operation string) progress.Tracker {
	completed := c.completed.WithLabelValues(operation)
	expected := c.expected.WithLabelValues(operation)
	complete := c.complete.WithLabelValues(operation)

	return progress.TrackerFunc(func(s progress.Snapshot) {
		completed.Set(float64(s.Completed()))
		expected.Set(float64(s.ExpectedTotal()))
		if s.Complete() {
			complete.Set(1)
		} else {
			complete.Set(0)
		}
	})
}

// Forget drops the metric series for an operation label, for registries
// hosting many short-lived operations.
func (c *Collector) Forget(operation string) {
	labels := prometheus.Labels{"operation": operation}
	c.completed.Delete(labels)
	c.expected.Delete(labels)
	c.complete.Delete(labels)
}
