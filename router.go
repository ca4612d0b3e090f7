// -*- tab-width:2 -*-

package netlat

type routeKey struct {
	from NodeID
	to   NodeID
}

type route struct {
	hop NodeID
	ok  bool
}

// router finds shortest-hop paths over the directed links. Ties go to
// the link added first. Results are memoised until the topology
// changes.
type router struct {
	topo *topology
	memo map[routeKey]route
}

func newRouter(t *topology) *router {
	return &router{topo: t, memo: make(map[routeKey]route)}
}

func (r *router) invalidate() {
	clear(r.memo)
}

// nextHop returns the first neighbor of from on a shortest-hop path to
// to. A node has no next hop to itself.
func (r *router) nextHop(from, to NodeID) (NodeID, bool) {
	key := routeKey{from: from, to: to}
	if rt, ok := r.memo[key]; ok {
		return rt.hop, rt.ok
	}

	hop, ok := r.search(from, to)
	r.memo[key] = route{hop: hop, ok: ok}

	return hop, ok
}

type hopState struct {
	node  NodeID
	first NodeID
}

func (r *router) search(from, to NodeID) (NodeID, bool) {
	queue := []hopState{{node: from}}
	visited := map[NodeID]bool{from: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.node == to {
			return cur.first, cur.node != from
		}

		for _, l := range r.topo.out[cur.node] {
			if visited[l.To] {
				continue
			}

			visited[l.To] = true
			first := cur.first

			if cur.node == from {
				first = l.To
			}

			queue = append(queue, hopState{node: l.To, first: first})
		}
	}

	return 0, false
}

// path returns every node from from to to, both included, along the
// same path nextHop follows.
func (r *router) path(from, to NodeID) ([]NodeID, bool) {
	if from == to {
		return nil, false
	}

	nodes := []NodeID{from}

	for cur := from; cur != to; {
		hop, ok := r.nextHop(cur, to)
		if !ok {
			return nil, false
		}

		nodes = append(nodes, hop)
		cur = hop
	}

	return nodes, true
}

// NextHop returns the neighbor a packet at from should be sent to on
// its way to to, and false when to is unreachable.
func (s *Simulation) NextHop(from, to NodeID) (NodeID, bool) {
	return s.router.nextHop(from, to)
}

// Path returns the node sequence a packet from from to to would
// follow, and false when there is none.
func (s *Simulation) Path(from, to NodeID) ([]NodeID, bool) {
	return s.router.path(from, to)
}

// PathLatency sums the propagation latency of the links on Path.
func (s *Simulation) PathLatency(from, to NodeID) (Seconds, bool) {
	nodes, ok := s.router.path(from, to)
	if !ok {
		return 0, false
	}

	total := Seconds(0)

	for i := 1; i < len(nodes); i++ {
		total += s.topo.link(nodes[i-1], nodes[i]).Latency
	}

	return total, true
}
