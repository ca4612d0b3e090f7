// -*- tab-width:2 -*-

package netlat

import (
	"fmt"
	"strings"
)

// PacketID is unique within one simulation run; ids start at 1.
type PacketID uint64

// Protocol tags a packet with what its arrival triggers.
type Protocol int

const (
	// Data is plain payload with no reply.
	Data Protocol = iota
	// Syn opens a handshake.
	Syn
	// SynAck answers a Syn.
	SynAck
	// Ack closes a handshake.
	Ack
	// CacheRequest asks a cache for content.
	CacheRequest
	// CacheResponse carries cached content back.
	CacheResponse
)

var protocolNames = [...]string{
	Data:          "data",
	Syn:           "syn",
	SynAck:        "syn-ack",
	Ack:           "ack",
	CacheRequest:  "cache-request",
	CacheResponse: "cache-response",
}

func (p Protocol) String() string {
	if p >= 0 && int(p) < len(protocolNames) {
		return protocolNames[p]
	}

	return fmt.Sprintf("Protocol(%d)", int(p))
}

// ParseProtocol is the inverse of String. Empty means Data.
func ParseProtocol(s string) (Protocol, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" || name == "standard" {
		return Data, nil
	}

	for i, n := range protocolNames {
		if n == name {
			return Protocol(i), nil
		}
	}

	return Data, fmt.Errorf("%w: %q", ErrUnknownProtocol, s)
}

// Packet is immutable once injected.
type Packet struct {
	ID          PacketID
	Source      NodeID
	Destination NodeID
	Size        int // bytes
	CreatedAt   Seconds
	Protocol    Protocol
	// ReplyTo is the packet whose arrival triggered this one, 0 if
	// it was injected by a caller.
	ReplyTo PacketID
}

func (p Packet) String() string {
	return fmt.Sprintf("%s#%d %d->%d %dB", p.Protocol, p.ID, p.Source, p.Destination, p.Size)
}

// EventKind says what happens when an event fires.
type EventKind int

const (
	// Arrival is the packet reaching Node off a link.
	Arrival EventKind = iota
	// TransmissionComplete is Node being ready to hand the packet to
	// its next link.
	TransmissionComplete
)

func (k EventKind) String() string {
	switch k {
	case Arrival:
		return "arrival"
	case TransmissionComplete:
		return "transmission-complete"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one scheduled occurrence.
type Event struct {
	At     Seconds
	Kind   EventKind
	Node   NodeID
	Packet Packet
}

// Completion records a packet that reached its destination.
type Completion struct {
	Packet  Packet
	Latency Seconds
	At      Seconds
}

// Drop records a packet that had no route onward from Node.
type Drop struct {
	Packet Packet
	Node   NodeID
	At     Seconds
}
