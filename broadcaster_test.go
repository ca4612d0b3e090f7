// -*- tab-width:2 -*-

package netlat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterFansOut(t *testing.T) {
	s := pair(t, 100, tenGbps)
	s.AddClient(Client{ID: 3})

	a, b := &recorder{}, &recorder{}
	bc := NewBroadcaster(a, nil, b)
	require.Equal(t, 2, bc.Len())
	s.SetObserver(bc)

	_, err := OpenHandshake(s, 1, 2)
	require.NoError(t, err)
	mustInject(t, s, 1, 3, 64, Data)
	s.Run(testHorizon)

	for _, r := range []*recorder{a, b} {
		assert.Equal(t, 4, r.injected)
		assert.Equal(t, 3, r.delivered)
		assert.Equal(t, 1, r.dropped)
		assert.Len(t, r.reserved, 3)
		assert.Equal(t, 1, r.runs)
	}
}

func TestBroadcasterSubscribeNil(t *testing.T) {
	bc := NewBroadcaster()
	bc.Subscribe(nil)

	assert.Zero(t, bc.Len())
	assert.NotPanics(t, func() { bc.RunFinished(0, 0) })
}
