// -*- tab-width:2 -*-

package netlat

import (
	"fmt"
	"strings"

	count "github.com/jayalane/go-counter"
)

// Medium is the physical medium of a link.
type Medium int

const (
	// Fiber is glass with refractive index FiberRefractiveIndex laid
	// along padded, non-great-circle routes.
	Fiber Medium = iota
	// Vacuum is free-space line of sight.
	Vacuum
)

func (m Medium) String() string {
	switch m {
	case Fiber:
		return "fiber"
	case Vacuum:
		return "vacuum"
	default:
		return fmt.Sprintf("Medium(%d)", int(m))
	}
}

// SignalSpeed is the propagation speed in m/s.
func (m Medium) SignalSpeed() float64 {
	if m == Vacuum {
		return SpeedOfLight
	}

	return SpeedInFiber
}

// PathFactor is the multiplier from great-circle distance to the
// real-world length of the medium.
func (m Medium) PathFactor() float64 {
	if m == Vacuum {
		return 1
	}

	return PathInefficiencyFactor
}

// ParseMedium maps "fiber" or "vacuum" to a Medium. Empty means fiber.
func ParseMedium(s string) (Medium, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fiber":
		return Fiber, nil
	case "vacuum", "free-space", "freespace":
		return Vacuum, nil
	default:
		return Fiber, fmt.Errorf("%w: %q", ErrUnknownMedium, s)
	}
}

// Link is a directed edge with a fixed propagation latency and a
// single FIFO transmit queue.
type Link struct {
	From      NodeID
	To        NodeID
	Medium    Medium
	Distance  float64 // real-world length in meters
	Latency   Seconds // one-way propagation
	Bandwidth float64 // bits per second

	// queueHorizon is when the link is free to start its next
	// transmission. It never decreases within a run.
	queueHorizon Seconds
}

// Reservation describes one slot granted on a link.
type Reservation struct {
	Requested    Seconds
	Start        Seconds
	Transmission Seconds
	Arrival      Seconds
}

// Wait is the time the packet queued behind earlier transmissions.
func (r Reservation) Wait() Seconds {
	return r.Start - r.Requested
}

func newLink(from, to NodeID, greatCircle, bandwidth float64, medium Medium, now Seconds) *Link {
	distance := greatCircle * medium.PathFactor()

	return &Link{
		From:         from,
		To:           to,
		Medium:       medium,
		Distance:     distance,
		Latency:      Seconds(distance / medium.SignalSpeed()),
		Bandwidth:    bandwidth,
		queueHorizon: now,
	}
}

// Name is "from->to", used as a counter and metric label.
func (l *Link) Name() string {
	return fmt.Sprintf("%d->%d", l.From, l.To)
}

// QueueHorizon returns when the link becomes free to transmit.
func (l *Link) QueueHorizon() Seconds {
	return l.queueHorizon
}

// TransmissionTime is the time to serialize size bytes at the link's
// bandwidth.
func (l *Link) TransmissionTime(size int) Seconds {
	return Seconds(float64(size*bitsPerByte) / l.Bandwidth)
}

// reserve grants the next transmit slot at or after at. Only the
// transmission occupies the link; propagation delays the arrival.
func (l *Link) reserve(at Seconds, size int) Reservation {
	tx := l.TransmissionTime(size)
	start := max(at, l.queueHorizon)
	l.queueHorizon = start + tx

	count.IncrSuffix("link_reservation", l.Name())

	return Reservation{
		Requested:    at,
		Start:        start,
		Transmission: tx,
		Arrival:      start + l.Latency + tx,
	}
}
