// -*- tab-width:2 -*-

package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	netlat "github.com/jayalane/go-netlat"
)

// SpanObserver turns the rare, interesting simulation events into
// events on one span: drops and the end of each run. Per-packet
// traffic stays in the metrics.
type SpanObserver struct {
	span trace.Span
}

var _ netlat.Observer = (*SpanObserver)(nil)

// NewSpanObserver records onto span.
func NewSpanObserver(span trace.Span) *SpanObserver {
	return &SpanObserver{span: span}
}

// PacketInjected implements netlat.Observer.
func (o *SpanObserver) PacketInjected(netlat.Packet) {}

// PacketDelivered implements netlat.Observer.
func (o *SpanObserver) PacketDelivered(netlat.Completion) {}

// LinkReserved implements netlat.Observer.
func (o *SpanObserver) LinkReserved(netlat.Link, netlat.Reservation, netlat.Packet) {}

// PacketDropped implements netlat.Observer.
func (o *SpanObserver) PacketDropped(d netlat.Drop) {
	o.span.AddEvent("packet dropped", trace.WithAttributes(
		attribute.Int64("netlat.packet", int64(d.Packet.ID)),
		attribute.String("netlat.protocol", d.Packet.Protocol.String()),
		attribute.Int("netlat.node", int(d.Node)),
		attribute.Float64("netlat.at", float64(d.At)),
	))
}

// RunFinished implements netlat.Observer.
func (o *SpanObserver) RunFinished(now netlat.Seconds, pending int) {
	o.span.AddEvent("run finished", trace.WithAttributes(
		attribute.Float64("netlat.now", float64(now)),
		attribute.Int("netlat.pending", pending),
	))
}
