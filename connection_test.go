// -*- tab-width:2 -*-

package netlat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandshakesRebuildsChains(t *testing.T) {
	s := pair(t, 2000, tenGbps)

	_, err := OpenHandshake(s, 1, 2)
	require.NoError(t, err)
	_, err = Burst(s, 1, 2, 3, 1500)
	require.NoError(t, err)
	s.Run(testHorizon)

	hs := Handshakes(s.Completed())
	require.Len(t, hs, 1)

	h := hs[0]
	assert.True(t, h.Complete)
	assert.Equal(t, NodeID(1), h.Client)
	assert.Equal(t, NodeID(2), h.Server)

	l, _ := s.Link(1, 2)
	rtt := 2 * l.Latency

	// one RTT for the client, one and a half for the server, plus the
	// small serialization and queueing terms
	assert.InDelta(t, float64(rtt), float64(h.ClientReady), 1e-5)
	assert.InDelta(t, float64(rtt*3/2), float64(h.ServerReady), 1e-5)
	assert.Less(t, h.ClientReady, h.ServerReady)
}

func TestHandshakesIncomplete(t *testing.T) {
	s := NewSimulation(t.Name())
	s.AddClient(Client{ID: 1, Location: equatorAt("A", 0)})
	s.AddClient(Client{ID: 2, Location: equatorAt("B", 100)})
	mustConnect(t, s, 1, 2, tenGbps)

	_, err := OpenHandshake(s, 1, 2)
	require.NoError(t, err)
	s.Run(testHorizon)

	hs := Handshakes(s.Completed())
	require.Len(t, hs, 1)
	assert.False(t, hs[0].Complete)
	assert.Equal(t, Seconds(0), hs[0].ClientReady)
}

func TestHandshakesNone(t *testing.T) {
	assert.Empty(t, Handshakes(completions(Data, 1, 2)))
}
