// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus counters for menu rendering.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup results recorded by Recorder.Lookup.
const (
	LookupHit      = "cache_hit"
	LookupStore    = "store"
	LookupNotFound = "not_found"
	LookupError    = "error"
)

// Recorder holds the application's counters on a private registry.
type Recorder struct {
	registry *prometheus.Registry
	renders  *prometheus.CounterVec
	lookups  *prometheus.CounterVec
	problems *prometheus.CounterVec
	nodes    *prometheus.HistogramVec
}

// New creates a Recorder with its own registry, including Go runtime
// and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		registry: reg,
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navmenu_renders_total",
			Help: "Menu trees built, by menu name and whether any item was active.",
		}, []string{"menu", "active"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navmenu_lookups_total",
			Help: "Menu lookups by result.",
		}, []string{"result"}),
		problems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navmenu_malformed_references_total",
			Help: "Malformed node references recovered while building or auditing menus.",
		}, []string{"menu", "kind"}),
		nodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "navmenu_menu_nodes",
			Help:    "Number of nodes per rendered menu.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"menu"}),
	}
	reg.MustRegister(r.renders, r.lookups, r.problems, r.nodes)
	return r
}

// Render records one built tree.
func (r *Recorder) Render(menu string, nodeCount int, active bool) {
	if r == nil {
		return
	}
	label := "false"
	if active {
		label = "true"
	}
	r.renders.WithLabelValues(menu, label).Inc()
	r.nodes.WithLabelValues(menu).Observe(float64(nodeCount))
}

// Lookup records the outcome of one menu lookup.
func (r *Recorder) Lookup(result string) {
	if r == nil {
		return
	}
	r.lookups.WithLabelValues(result).Inc()
}

// Problem records one malformed reference.
func (r *Recorder) Problem(menu, kind string) {
	if r == nil {
		return
	}
	r.problems.WithLabelValues(menu, kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
