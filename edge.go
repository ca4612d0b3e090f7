// -*- tab-width:2 -*-

package netlat

import (
	"fmt"

	count "github.com/jayalane/go-counter"
)

// NearestServer picks the candidate with the lowest propagation
// latency along the routed path from from. Ties go to the earlier
// candidate. ErrNoRoute means none is reachable.
func NearestServer(s *Simulation, from NodeID, candidates []NodeID) (NodeID, Seconds, error) {
	if _, err := s.topo.node(from); err != nil {
		return 0, 0, err
	}

	best := NodeID(0)
	bestLatency := Seconds(0)
	found := false

	for _, c := range candidates {
		if _, err := s.topo.node(c); err != nil {
			return 0, 0, err
		}

		lat, ok := s.PathLatency(from, c)
		if !ok {
			continue
		}

		if !found || lat < bestLatency {
			best, bestLatency, found = c, lat, true
		}
	}

	if !found {
		return 0, 0, fmt.Errorf("%w: from %d to any of %v", ErrNoRoute, from, candidates)
	}

	count.IncrSuffix("edge_selected", s.NodeName(best))

	return best, bestLatency, nil
}

// CacheRequests holds the two requests of a cache comparison.
type CacheRequests struct {
	Origin PacketID
	Edge   PacketID
}

// CompareCache sends the same cache request from client to origin and
// to edge; run the simulation and compare the two cache responses.
func CompareCache(s *Simulation, client, origin, edge NodeID, size int) (CacheRequests, error) {
	o, err := s.Inject(client, origin, size, CacheRequest)
	if err != nil {
		return CacheRequests{}, err
	}

	e, err := s.Inject(client, edge, size, CacheRequest)
	if err != nil {
		return CacheRequests{}, err
	}

	return CacheRequests{Origin: o, Edge: e}, nil
}

// ResponseTo finds the completion of the automatic reply to req.
func ResponseTo(completions []Completion, req PacketID) (Completion, bool) {
	for _, c := range completions {
		if c.Packet.ReplyTo == req {
			return c, true
		}
	}

	return Completion{}, false
}
