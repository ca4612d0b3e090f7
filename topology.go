// -*- tab-width:2 -*-

package netlat

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrNodeNotFound is returned for ids that were never added.
	ErrNodeNotFound = errors.New("node not found")
	// ErrDuplicateNode is the panic value wrapped when an id is reused.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrNoRoute is returned by helpers that need a path.
	ErrNoRoute = errors.New("no route")
	// ErrUnknownProtocol is returned by ParseProtocol.
	ErrUnknownProtocol = errors.New("unknown protocol")
	// ErrUnknownMedium is returned by ParseMedium.
	ErrUnknownMedium = errors.New("unknown medium")
	// ErrInvalidBandwidth is returned for a link whose bandwidth is not
	// a positive number.
	ErrInvalidBandwidth = errors.New("link bandwidth must be positive")
	// ErrInvalidSize is returned for a packet size below zero or above
	// MaxPacketSize.
	ErrInvalidSize = errors.New("packet size out of range")
)

// topology holds the nodes and the directed links in insertion order.
type topology struct {
	nodes map[NodeID]*Node
	links []*Link
	out   map[NodeID][]*Link
}

func newTopology() *topology {
	return &topology{
		nodes: make(map[NodeID]*Node),
		out:   make(map[NodeID][]*Link),
	}
}

func (t *topology) add(n *Node) {
	if _, ok := t.nodes[n.ID]; ok {
		panic(fmt.Errorf("%w: %d", ErrDuplicateNode, n.ID))
	}

	t.nodes[n.ID] = n
}

func (t *topology) node(id NodeID) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}

	return n, nil
}

func (t *topology) connect(l *Link) {
	t.links = append(t.links, l)
	t.out[l.From] = append(t.out[l.From], l)
}

// link returns the first link from -> to in insertion order.
func (t *topology) link(from, to NodeID) *Link {
	for _, l := range t.out[from] {
		if l.To == to {
			return l
		}
	}

	return nil
}

// AddServer adds a server. Reusing an id panics.
func (s *Simulation) AddServer(srv Server) {
	s.topo.add(&Node{
		ID:              srv.ID,
		Kind:            KindServer,
		Location:        srv.Location,
		ProcessingDelay: srv.ProcessingDelay,
		Bandwidth:       srv.Bandwidth,
	})
	s.router.invalidate()
	ml.Ls("Added server", srv.ID, srv.Location.Name)
}

// AddClient adds a client. Reusing an id panics.
func (s *Simulation) AddClient(c Client) {
	s.topo.add(&Node{
		ID:       c.ID,
		Kind:     KindClient,
		Location: c.Location,
	})
	s.router.invalidate()
	ml.Ls("Added client", c.ID, c.Location.Name)
}

// Connect adds a fiber link from -> to. Links are one-way; call it
// twice for a bidirectional path.
func (s *Simulation) Connect(from, to NodeID, bandwidth float64) (Link, error) {
	return s.ConnectMedium(from, to, bandwidth, Fiber)
}

// ConnectMedium adds a link from -> to over medium and returns a
// snapshot of it. The link's queue starts free at the current sim time.
func (s *Simulation) ConnectMedium(from, to NodeID, bandwidth float64, medium Medium) (Link, error) {
	if !(bandwidth > 0) || math.IsInf(bandwidth, 1) {
		return Link{}, fmt.Errorf("%w: %d->%d bandwidth %v", ErrInvalidBandwidth, from, to, bandwidth)
	}

	a, err := s.topo.node(from)
	if err != nil {
		return Link{}, err
	}

	b, err := s.topo.node(to)
	if err != nil {
		return Link{}, err
	}

	l := newLink(from, to, SurfaceDistance(a.Location, b.Location), bandwidth, medium, s.now)
	s.topo.connect(l)
	s.router.invalidate()

	ml.Ls("Linked", a.Name(), "->", b.Name(), "medium", medium,
		"km", l.Distance/1000, "min rtt ms", (2 * l.Latency).Millis()) //nolint:mnd

	return *l, nil
}

// Node returns a copy of the node with the given id.
func (s *Simulation) Node(id NodeID) (Node, error) {
	n, err := s.topo.node(id)
	if err != nil {
		return Node{}, err
	}

	return *n, nil
}

// Location returns the coordinate of a node.
func (s *Simulation) Location(id NodeID) (Coordinate, error) {
	n, err := s.topo.node(id)
	if err != nil {
		return Coordinate{}, err
	}

	return n.Location, nil
}

// NodeName returns the display name of a node, or "Node <id>" for an
// unknown id so reporting never fails.
func (s *Simulation) NodeName(id NodeID) string {
	n, err := s.topo.node(id)
	if err != nil {
		return fmt.Sprintf("Node %d", id)
	}

	return n.Name()
}

// Distance is the great-circle distance in meters between two nodes.
func (s *Simulation) Distance(from, to NodeID) (float64, error) {
	a, err := s.topo.node(from)
	if err != nil {
		return 0, err
	}

	b, err := s.topo.node(to)
	if err != nil {
		return 0, err
	}

	return SurfaceDistance(a.Location, b.Location), nil
}

// Nodes returns copies of every node, servers and clients, by id.
func (s *Simulation) Nodes() []Node {
	nodes := make([]Node, 0, len(s.topo.nodes))
	for _, n := range s.topo.nodes {
		nodes = append(nodes, *n)
	}

	slices.SortFunc(nodes, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })

	return nodes
}

// Links returns snapshots of every link in insertion order.
func (s *Simulation) Links() []Link {
	links := make([]Link, len(s.topo.links))
	for i, l := range s.topo.links {
		links[i] = *l
	}

	return links
}

// Link returns a snapshot of the first link from -> to.
func (s *Simulation) Link(from, to NodeID) (Link, bool) {
	l := s.topo.link(from, to)
	if l == nil {
		return Link{}, false
	}

	return *l, true
}

// TotalServerBandwidth sums every server's egress bandwidth.
func (s *Simulation) TotalServerBandwidth() float64 {
	total := 0.0

	for _, n := range s.topo.nodes {
		if n.Kind == KindServer {
			total += n.Bandwidth
		}
	}

	return total
}
