// Package telemetry exports choreography progress as Prometheus metrics and
// serves them together with a JSON status view over HTTP.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gwillem/hanoiarm/pkg/choreo"
	"github.com/gwillem/hanoiarm/pkg/hanoi"
)

const namespace = "hanoi"

// Metrics implements choreo.Observer.
type Metrics struct {
	registry *prometheus.Registry

	waypoints   *prometheus.CounterVec
	blocked     *prometheus.CounterVec
	relocations prometheus.Counter
	cycles      prometheus.Counter
	pegHeight   *prometheus.GaugeVec
	targetZ     prometheus.Gauge
	gripper     prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		waypoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waypoints_total",
			Help:      "Waypoints published, by phase.",
		}, []string{"phase", "category"}),
		blocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settle_seconds_total",
			Help:      "Time spent waiting for the arm to settle, by motion category.",
		}, []string{"category"}),
		relocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relocations_total",
			Help:      "Disks moved from one peg to another.",
		}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed solves.",
		}),
		pegHeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peg_disks",
			Help:      "Disks currently resting on each peg.",
		}, []string{"peg"}),
		targetZ: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "target_height_meters",
			Help:      "Height of the last commanded pose.",
		}),
		gripper: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gripper_width_meters",
			Help:      "Last commanded jaw opening.",
		}),
	}
	m.registry.MustRegister(
		m.waypoints,
		m.blocked,
		m.relocations,
		m.cycles,
		m.pegHeight,
		m.targetZ,
		m.gripper,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe seeds the peg gauges from s.
func (m *Metrics) Observe(s hanoi.State) {
	for _, p := range hanoi.AllPegs() {
		m.pegHeight.WithLabelValues(p.String()).Set(float64(s.Height(p)))
	}
}

// Waypoint implements choreo.Observer.
func (m *Metrics) Waypoint(w choreo.Waypoint, delay time.Duration) {
	cat := w.Phase.Category().String()
	m.waypoints.WithLabelValues(w.Phase.String(), cat).Inc()
	m.blocked.WithLabelValues(cat).Add(delay.Seconds())
	m.targetZ.Set(w.Position.Z)
	m.gripper.Set(w.Gripper)
}

// Relocated implements choreo.Observer.
func (m *Metrics) Relocated(_ hanoi.Move, s hanoi.State) {
	m.relocations.Inc()
	m.Observe(s)
}

// CycleDone implements choreo.Observer.
func (m *Metrics) CycleDone(int) {
	m.cycles.Inc()
}
