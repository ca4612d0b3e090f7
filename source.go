// -*- tab-width:2 -*-

package netlat

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	count "github.com/jayalane/go-counter"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidRate is returned for a TrafficSource without a positive Rate.
var ErrInvalidRate = errors.New("traffic rate must be positive")

// MaxPacketSize is the largest size in bytes Inject takes.
const MaxPacketSize = math.MaxInt32

// TrafficSource injects a Poisson stream of packets between two nodes.
// The same Seed gives the same stream.
type TrafficSource struct {
	Name     string
	From     NodeID
	To       NodeID
	Rate     float64 // packets per second
	Sizes    SizeQuantile
	Protocol Protocol
	Seed     uint64
}

// Emission is one packet a TrafficSource plans to send.
type Emission struct {
	At   Seconds
	Size int
}

// Schedule draws the source's packets in [start, end) without touching
// a simulation. Gaps are exponential, so arrivals are Poisson.
func (src *TrafficSource) Schedule(start, end Seconds) ([]Emission, error) {
	if src.Rate <= 0 {
		return nil, fmt.Errorf("%w: source %s rate %v", ErrInvalidRate, src.Name, src.Rate)
	}

	sizes := src.Sizes
	if sizes == nil {
		sizes = FixedSize(HandshakeReplySize)
	}

	rng := rand.NewSource(src.Seed)
	gaps := distuv.Exponential{Rate: src.Rate, Src: rng}
	pick := distuv.Uniform{Min: 0, Max: 1, Src: rng}

	var plan []Emission

	for t := start + Seconds(gaps.Rand()); t < end; t += Seconds(gaps.Rand()) {
		size := sizes(pick.Rand())
		if math.IsNaN(size) || size < 0 || size > MaxPacketSize {
			return nil, fmt.Errorf("%w: source %s drew %v bytes", ErrInvalidSize, src.Name, size)
		}

		plan = append(plan, Emission{At: t, Size: int(size)})
	}

	return plan, nil
}

// Drive injects the scheduled packets, advancing the simulation to
// each injection time first.
func (src *TrafficSource) Drive(s *Simulation, start, end Seconds) ([]PacketID, error) {
	return DriveAll(s, []*TrafficSource{src}, start, end)
}

// DriveAll runs several sources over the same window side by side.
// Packets go in time order; equal times keep the order of sources.
func DriveAll(s *Simulation, sources []*TrafficSource, start, end Seconds) ([]PacketID, error) {
	type planned struct {
		Emission
		src *TrafficSource
	}

	var all []planned

	for _, src := range sources {
		plan, err := src.Schedule(start, end)
		if err != nil {
			return nil, err
		}

		for _, e := range plan {
			all = append(all, planned{Emission: e, src: src})
		}
	}

	slices.SortStableFunc(all, func(a, b planned) int { return cmp.Compare(a.At, b.At) })

	ids := make([]PacketID, 0, len(all))

	for _, p := range all {
		s.AdvanceTo(p.At)

		id, err := s.Inject(p.src.From, p.src.To, p.Size, p.src.Protocol)
		if err != nil {
			return ids, err
		}

		ids = append(ids, id)

		count.IncrSuffix("source_generated", p.src.Name)
	}

	ml.La("Sources", len(sources), "generated", len(ids), "packets")

	return ids, nil
}

// Burst injects n packets of size bytes from -> to at the current time.
// On one link they serialize, so each waits for all earlier ones.
func Burst(s *Simulation, from, to NodeID, n, size int) ([]PacketID, error) {
	ids := make([]PacketID, 0, n)

	for range n {
		id, err := s.Inject(from, to, size, Data)
		if err != nil {
			return ids, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// OpenHandshake sends a SYN from client to server; the replies follow on
// their own.
func OpenHandshake(s *Simulation, client, server NodeID) (PacketID, error) {
	return s.Inject(client, server, HandshakeReplySize, Syn)
}
