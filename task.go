// -*- tab-width:2 -*-

package netlat

// this file is the per-event work: delivering, holding and forwarding

import (
	count "github.com/jayalane/go-counter"
)

func (s *Simulation) dispatch(e *Event) {
	switch e.Kind {
	case Arrival:
		s.handleArrival(e)
	case TransmissionComplete:
		s.handleTransmissionComplete(e)
	default:
		panic("unknown event kind " + e.Kind.String())
	}
}

// handleArrival finalizes a packet at its destination, or holds it for
// the node's processing delay before it moves on.
func (s *Simulation) handleArrival(e *Event) {
	if e.Node == e.Packet.Destination {
		s.deliver(e.Packet)

		return
	}

	n, err := s.topo.node(e.Node)
	if err != nil {
		// links only join known nodes
		panic(err)
	}

	ml.Ln("Packet", e.Packet.String(), "at", n.Name(), "time", s.now)
	s.schedule(&Event{
		At:     s.now + n.localDelay(),
		Kind:   TransmissionComplete,
		Node:   e.Node,
		Packet: e.Packet,
	})
}

// handleTransmissionComplete hands the packet to the next link. With
// no route left the packet is recorded as a drop where it stands.
func (s *Simulation) handleTransmissionComplete(e *Event) {
	if !s.forward(e.Node, e.Packet) {
		ml.Ln("Packet", e.Packet.String(), "stranded at", s.NodeName(e.Node), "time", s.now)
	}
}

func (s *Simulation) deliver(p Packet) {
	c := Completion{Packet: p, Latency: s.now - p.CreatedAt, At: s.now}
	s.completed = append(s.completed, c)

	count.IncrSuffix("packet_delivered", p.Protocol.String())
	count.MarkDistribution("latency_ms", c.Latency.Millis())
	ml.Ln("Delivered", p.String(), "at", s.NodeName(p.Destination), "latency ms", c.Latency.Millis())

	if s.observer != nil {
		s.observer.PacketDelivered(c)
	}

	if protocol, size, ok := ReplyFor(p.Protocol); ok {
		s.newPacket(p.Destination, p.Source, size, protocol, p.ID)
	}
}
