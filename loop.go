// -*- tab-width:2 -*-

package netlat

// Observer is told about everything the simulation does. All calls
// happen on the goroutine driving the simulation.
type Observer interface {
	PacketInjected(p Packet)
	PacketDelivered(c Completion)
	PacketDropped(d Drop)
	LinkReserved(l Link, r Reservation, p Packet)
	RunFinished(now Seconds, pending int)
}

// Simulation owns all mutable state of one run: the topology, link
// queues, pending events, the clock and the results. It is not safe
// for concurrent use; independent Simulations share nothing.
type Simulation struct {
	name      string
	topo      *topology
	router    *router
	events    *eventQueue
	now       Seconds
	nextID    PacketID
	completed []Completion
	drops     []Drop
	observer  Observer
}

// NewSimulation returns an empty simulation at time 0. It calls Init,
// so InitWithLogger has to come first to take effect.
func NewSimulation(name string) *Simulation {
	Init()

	topo := newTopology()

	return &Simulation{
		name:   name,
		topo:   topo,
		router: newRouter(topo),
		events: newEventQueue(),
	}
}

// Name returns the name given to NewSimulation.
func (s *Simulation) Name() string {
	return s.name
}

// SetObserver installs o; nil removes it.
func (s *Simulation) SetObserver(o Observer) {
	s.observer = o
}

// Now returns the current sim time.
func (s *Simulation) Now() Seconds {
	return s.now
}

// Pending returns the number of scheduled events not yet processed.
func (s *Simulation) Pending() int {
	return s.events.size()
}

// NextEventTime returns the time of the earliest pending event, and
// false if there is none.
func (s *Simulation) NextEventTime() (Seconds, bool) {
	e := s.events.peek()
	if e == nil {
		return 0, false
	}

	return e.At, true
}

// Completed returns the delivered packets in delivery order.
func (s *Simulation) Completed() []Completion {
	return append([]Completion(nil), s.completed...)
}

// Drops returns the packets discarded for lack of a route.
func (s *Simulation) Drops() []Drop {
	return append([]Drop(nil), s.drops...)
}

// Run processes pending events in time order until the next one is
// later than horizon or none are left. Events past the horizon stay
// queued, so a later Run with a larger horizon picks them up.
func (s *Simulation) Run(horizon Seconds) {
	ml.Ls("Run start", s.name, "now", s.now, "horizon", horizon, "pending", s.events.size())

	for {
		next := s.events.peek()
		if next == nil || next.At > horizon {
			break
		}

		e := s.events.pop()
		s.now = e.At
		s.dispatch(e)
	}

	ml.Ls("Run stop", s.name, "now", s.now, "pending", s.events.size())

	if s.observer != nil {
		s.observer.RunFinished(s.now, s.events.size())
	}
}

// AdvanceTo runs up to t and then moves the clock to t, so packets
// injected next are stamped at t. It never moves the clock back.
func (s *Simulation) AdvanceTo(t Seconds) {
	s.Run(t)

	if t > s.now {
		s.now = t
	}
}

// Reset starts an independent run on the same topology: clock, events,
// results and link queues go back to zero.
func (s *Simulation) Reset() {
	s.now = 0
	s.nextID = 0
	s.events.reset()
	s.completed = nil
	s.drops = nil

	for _, l := range s.topo.links {
		l.queueHorizon = 0
	}
}

func (s *Simulation) schedule(e *Event) {
	s.events.push(e)
}
