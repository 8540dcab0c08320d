// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package list

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks the nodes held by one or more lists. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Nodes              prometheus.Gauge
	Bytes              prometheus.Gauge
	Pushes             prometheus.Counter
	Pops               prometheus.Counter
	AllocationFailures prometheus.Counter
}

// NewMetrics creates the metrics for lists labeled with name.
func NewMetrics(name string) *Metrics {
	labels := prometheus.Labels{"list": name}
	return &Metrics{
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "list",
			Name:        "nodes",
			Help:        "Number of nodes currently linked",
			ConstLabels: labels,
		}),
		Bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "list",
			Name:        "bytes",
			Help:        "Bytes charged for linked nodes and their payloads",
			ConstLabels: labels,
		}),
		Pushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "list",
			Name:        "pushes_total",
			Help:        "Number of nodes inserted",
			ConstLabels: labels,
		}),
		Pops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "list",
			Name:        "pops_total",
			Help:        "Number of nodes removed",
			ConstLabels: labels,
		}),
		AllocationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "list",
			Name:        "allocation_failures_total",
			Help:        "Number of insertions refused for lack of node storage",
			ConstLabels: labels,
		}),
	}
}

// Collectors returns the metrics for registration with a
// prometheus.Registerer.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Nodes, m.Bytes, m.Pushes, m.Pops, m.AllocationFailures}
}

func (m *Metrics) pushed(bytes int64) {
	if m == nil {
		return
	}
	m.Nodes.Inc()
	m.Bytes.Add(float64(bytes))
	m.Pushes.Inc()
}

func (m *Metrics) popped(bytes int64) {
	if m == nil {
		return
	}
	m.Nodes.Dec()
	m.Bytes.Sub(float64(bytes))
	m.Pops.Inc()
}

func (m *Metrics) allocationFailed() {
	if m == nil {
		return
	}
	m.AllocationFailures.Inc()
}
