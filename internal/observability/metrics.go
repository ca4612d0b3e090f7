// -*- tab-width:2 -*-

package observability

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	netlat "github.com/jayalane/go-netlat"
)

// SimCollector bundles Prometheus metrics for one or more simulations
// and satisfies netlat.Observer so a Simulation drives it directly.
type SimCollector struct {
	gatherer prometheus.Gatherer

	Injected  *prometheus.CounterVec
	Delivered *prometheus.CounterVec
	Dropped   *prometheus.CounterVec
	Latency   *prometheus.HistogramVec
	QueueWait *prometheus.HistogramVec

	BytesSent    *prometheus.CounterVec
	PendingEvent prometheus.Gauge
	SimTime      prometheus.Gauge
}

var _ netlat.Observer = (*SimCollector)(nil)

// latencyBuckets spans metro links to a lunar round trip, in seconds.
var latencyBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// NewSimCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	injected, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netlat_packets_injected_total",
		Help: "Packets created, by protocol tag.",
	}, []string{"protocol"}), "netlat_packets_injected_total")
	if err != nil {
		return nil, err
	}

	delivered, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netlat_packets_delivered_total",
		Help: "Packets that reached their destination, by protocol tag.",
	}, []string{"protocol"}), "netlat_packets_delivered_total")
	if err != nil {
		return nil, err
	}

	dropped, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netlat_packets_dropped_total",
		Help: "Packets discarded for lack of a route, by protocol tag.",
	}, []string{"protocol"}), "netlat_packets_dropped_total")
	if err != nil {
		return nil, err
	}

	latency, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "netlat_packet_latency_seconds",
		Help:    "End-to-end simulated latency of delivered packets.",
		Buckets: latencyBuckets,
	}, []string{"protocol"}), "netlat_packet_latency_seconds")
	if err != nil {
		return nil, err
	}

	wait, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "netlat_link_queue_wait_seconds",
		Help:    "Simulated time a packet waited for its link to free up.",
		Buckets: latencyBuckets,
	}, []string{"link"}), "netlat_link_queue_wait_seconds")
	if err != nil {
		return nil, err
	}

	bytesSent, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netlat_link_bytes_total",
		Help: "Bytes serialized onto each link.",
	}, []string{"link"}), "netlat_link_bytes_total")
	if err != nil {
		return nil, err
	}

	pending, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netlat_pending_events",
		Help: "Events still queued when the last run stopped.",
	}), "netlat_pending_events")
	if err != nil {
		return nil, err
	}

	simTime, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netlat_sim_time_seconds",
		Help: "Simulated clock when the last run stopped.",
	}), "netlat_sim_time_seconds")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:     gatherer,
		Injected:     injected,
		Delivered:    delivered,
		Dropped:      dropped,
		Latency:      latency,
		QueueWait:    wait,
		BytesSent:    bytesSent,
		PendingEvent: pending,
		SimTime:      simTime,
	}, nil
}

// PacketInjected implements netlat.Observer.
func (c *SimCollector) PacketInjected(p netlat.Packet) {
	if c == nil {
		return
	}

	c.Injected.WithLabelValues(p.Protocol.String()).Inc()
}

// PacketDelivered implements netlat.Observer.
func (c *SimCollector) PacketDelivered(done netlat.Completion) {
	if c == nil {
		return
	}

	label := done.Packet.Protocol.String()
	c.Delivered.WithLabelValues(label).Inc()
	c.Latency.WithLabelValues(label).Observe(float64(done.Latency))
}

// PacketDropped implements netlat.Observer.
func (c *SimCollector) PacketDropped(d netlat.Drop) {
	if c == nil {
		return
	}

	c.Dropped.WithLabelValues(d.Packet.Protocol.String()).Inc()
}

// LinkReserved implements netlat.Observer.
func (c *SimCollector) LinkReserved(l netlat.Link, r netlat.Reservation, p netlat.Packet) {
	if c == nil {
		return
	}

	c.QueueWait.WithLabelValues(l.Name()).Observe(float64(r.Wait()))
	c.BytesSent.WithLabelValues(l.Name()).Add(float64(p.Size))
}

// RunFinished implements netlat.Observer.
func (c *SimCollector) RunFinished(now netlat.Seconds, pending int) {
	if c == nil {
		return
	}

	c.PendingEvent.Set(float64(pending))
	c.SimTime.Set(float64(now))
}

// WriteText dumps every gathered metric family in the Prometheus text
// exposition format.
func (c *SimCollector) WriteText(w io.Writer) error {
	families, err := c.gather().Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric family %s: %w", mf.GetName(), err)
		}
	}

	return nil
}

// Handler serves the gathered metrics for scraping.
func (c *SimCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gather(), promhttp.HandlerOpts{})
}

func (c *SimCollector) gather() prometheus.Gatherer {
	if c.gatherer == nil {
		return prometheus.DefaultGatherer
	}

	return c.gatherer
}

// register adds col to reg, or hands back the collector already
// registered under the same descriptor when it has the same type.
func register[T prometheus.Collector](reg prometheus.Registerer, col T, name string) (T, error) {
	err := reg.Register(col)
	if err == nil {
		return col, nil
	}

	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return col, err
	}

	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return col, fmt.Errorf("collector %s already registered with incompatible type", name)
	}

	return existing, nil
}
