// -*- tab-width:2 -*-

package netlat

import (
	"math"
	"os"
	"testing"

	ll "github.com/jayalane/go-lll"
)

func TestMain(m *testing.M) {
	ll.SetWriter(os.Stdout)
	Init()
	os.Exit(m.Run())
}

const (
	tenGbps     = 10_000_000_000.0
	floatTol    = 1e-12
	latencyTol  = 1e-9
	testHorizon = Seconds(10)
)

// equatorAt returns a point on the equator km kilometers east of 0,0.
func equatorAt(name string, km float64) Coordinate {
	return Coordinate{
		Latitude:  0,
		Longitude: km * 1000 / EarthRadius * 180 / math.Pi,
		Name:      name,
	}
}

// pair builds two clients km apart joined both ways at bandwidth.
func pair(t *testing.T, km, bandwidth float64) *Simulation {
	t.Helper()

	s := NewSimulation(t.Name())
	s.AddClient(Client{ID: 1, Location: equatorAt("A", 0)})
	s.AddClient(Client{ID: 2, Location: equatorAt("B", km)})

	mustConnect(t, s, 1, 2, bandwidth)
	mustConnect(t, s, 2, 1, bandwidth)

	return s
}

func mustConnect(t *testing.T, s *Simulation, from, to NodeID, bandwidth float64) Link {
	t.Helper()

	l, err := s.Connect(from, to, bandwidth)
	if err != nil {
		t.Fatalf("Connect(%d, %d): %v", from, to, err)
	}

	return l
}

func mustInject(t *testing.T, s *Simulation, from, to NodeID, size int, p Protocol) PacketID {
	t.Helper()

	id, err := s.Inject(from, to, size, p)
	if err != nil {
		t.Fatalf("Inject(%d, %d): %v", from, to, err)
	}

	return id
}
