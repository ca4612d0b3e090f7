// -*- tab-width:2 -*-

package netlat

import (
	"fmt"

	count "github.com/jayalane/go-counter"
)

// Inject creates a packet from -> to stamped at the current time and
// sends it onto its first link. A packet with no route is dropped and
// logged, which is not an error; unknown ids and sizes outside
// [0, MaxPacketSize] are.
func (s *Simulation) Inject(from, to NodeID, size int, protocol Protocol) (PacketID, error) {
	if size < 0 || size > MaxPacketSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrInvalidSize, size)
	}

	if _, err := s.topo.node(from); err != nil {
		return 0, err
	}

	if _, err := s.topo.node(to); err != nil {
		return 0, err
	}

	p := s.newPacket(from, to, size, protocol, 0)

	return p.ID, nil
}

func (s *Simulation) newPacket(from, to NodeID, size int, protocol Protocol, replyTo PacketID) Packet {
	s.nextID++
	p := Packet{
		ID:          s.nextID,
		Source:      from,
		Destination: to,
		Size:        size,
		CreatedAt:   s.now,
		Protocol:    protocol,
		ReplyTo:     replyTo,
	}

	count.Incr("packet_injected")

	if s.observer != nil {
		s.observer.PacketInjected(p)
	}

	if !s.forward(from, p) {
		ml.La("No route for", p.String(), "from", s.NodeName(from), "to", s.NodeName(to), "dropping")
	}

	return p
}

// forward puts p on the link from at toward its destination and
// schedules the arrival at the far end. It reports false and records a
// drop when there is no route.
func (s *Simulation) forward(at NodeID, p Packet) bool {
	hop, ok := s.router.nextHop(at, p.Destination)
	if !ok {
		s.drop(at, p)

		return false
	}

	l := s.topo.link(at, hop)
	r := l.reserve(s.now, p.Size)

	count.MarkDistribution("queue_wait_ms-"+l.Name(), r.Wait().Millis())

	if s.observer != nil {
		s.observer.LinkReserved(*l, r, p)
	}

	s.schedule(&Event{At: r.Arrival, Kind: Arrival, Node: hop, Packet: p})

	return true
}

func (s *Simulation) drop(at NodeID, p Packet) {
	d := Drop{Packet: p, Node: at, At: s.now}
	s.drops = append(s.drops, d)

	count.IncrSuffix("packet_dropped_no_route", p.Protocol.String())

	if s.observer != nil {
		s.observer.PacketDropped(d)
	}
}
