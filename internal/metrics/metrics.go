// Package metrics owns the Prometheus collectors of the tracking engine.
// They live in a private registry so embedding applications decide whether
// and where to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "events_total",
		Help:      "Process events handled by the correlator, by kind.",
	}, []string{"kind"})

	childrenAttached = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "children_attached_total",
		Help:      "Child processes attached to a tracked tree.",
	})

	childrenFiltered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "children_filtered_total",
		Help:      "Child processes rejected by a filter rule.",
	})

	resolutions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "resolutions_total",
		Help:      "Placeholder roots resolved to a real process.",
	})

	terminations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "terminations_total",
		Help:      "Kill requests issued against tracked trees, by result.",
	}, []string{"result"})

	roots = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "warden",
		Name:      "roots",
		Help:      "Roots currently registered across all managers.",
	})

	contained = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "contained_failures_total",
		Help:      "Per-root failures recovered inside event fan-out.",
	})
)

func init() {
	registry.MustRegister(events, childrenAttached, childrenFiltered, resolutions, terminations, roots, contained)
}

// Registry returns the registry holding every warden collector.
func Registry() *prometheus.Registry {
	return registry
}

// ObserveEvent counts one handled event of kind ("start" or "stop").
func ObserveEvent(kind string) {
	events.WithLabelValues(kind).Inc()
}

// ChildAttached counts one attached child.
func ChildAttached() {
	childrenAttached.Inc()
}

// ChildFiltered counts one filtered candidate.
func ChildFiltered() {
	childrenFiltered.Inc()
}

// Resolved counts one placeholder resolution.
func Resolved() {
	resolutions.Inc()
}

// Terminated counts one kill request; failed selects the result label.
func Terminated(failed bool) {
	if failed {
		terminations.WithLabelValues("error").Inc()
		return
	}
	terminations.WithLabelValues("ok").Inc()
}

// RootsChanged adjusts the registered-roots gauge by delta.
func RootsChanged(delta int) {
	roots.Add(float64(delta))
}

// Contained counts one failure recovered inside fan-out.
func Contained() {
	contained.Inc()
}
