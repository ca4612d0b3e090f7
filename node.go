// -*- tab-width:2 -*-

package netlat

import (
	"fmt"
)

// NodeID identifies a server or a client; ids are unique across both.
type NodeID int

// NodeKind tells servers from clients.
type NodeKind int

const (
	// KindClient is an end host with no forwarding cost.
	KindClient NodeKind = iota
	// KindServer is a forwarding node with a processing delay.
	KindServer
)

func (k NodeKind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Server is a node that pays ProcessingDelay for every packet it
// forwards. Bandwidth is its egress capacity in bits per second.
type Server struct {
	ID              NodeID
	Location        Coordinate
	ProcessingDelay Seconds
	Bandwidth       float64
}

// Client is an end host.
type Client struct {
	ID       NodeID
	Location Coordinate
}

// Node is the read-only view of a node in the topology.
type Node struct {
	ID              NodeID
	Kind            NodeKind
	Location        Coordinate
	ProcessingDelay Seconds
	Bandwidth       float64
}

// Name returns the display name, or "Node <id>" when the coordinate
// has none.
func (n *Node) Name() string {
	if n.Location.Name != "" {
		return n.Location.Name
	}

	return fmt.Sprintf("Node %d", n.ID)
}

// localDelay is the time a packet spends at n before it may be handed
// to the next link.
func (n *Node) localDelay() Seconds {
	if n.Kind == KindServer {
		return n.ProcessingDelay
	}

	return 0
}
