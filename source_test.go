// -*- tab-width:2 -*-

package netlat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrafficSourceIsSeeded(t *testing.T) {
	run := func(seed uint64) []Completion {
		s := pair(t, 500, tenGbps)
		src := &TrafficSource{
			Name: "poisson", From: 1, To: 2, Rate: 200,
			Sizes: UniformSizes(64, 9000), Protocol: Data, Seed: seed,
		}

		ids, err := src.Drive(s, 0, 1)
		require.NoError(t, err)
		require.NotEmpty(t, ids)

		s.Run(testHorizon)
		require.Len(t, s.Completed(), len(ids))

		return s.Completed()
	}

	a, b := run(7), run(7)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, run(8))

	// about Rate * window packets
	assert.InDelta(t, 200, len(a), 60)

	for i := 1; i < len(a); i++ {
		assert.GreaterOrEqual(t, a[i].Packet.CreatedAt, a[i-1].Packet.CreatedAt)
		assert.Less(t, float64(a[i].Packet.CreatedAt), 1.0)
	}
}

func TestTrafficSourceErrors(t *testing.T) {
	s := pair(t, 10, tenGbps)

	_, err := (&TrafficSource{Name: "idle", From: 1, To: 2}).Drive(s, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = (&TrafficSource{Name: "lost", From: 1, To: 9, Rate: 10}).Drive(s, 0, 1)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestScheduleRejectsBadSizes(t *testing.T) {
	for name, sizes := range map[string]SizeQuantile{
		"negative": UniformSizes(-50_000, -1000),
		"nan":      func(float64) float64 { return math.NaN() },
		"huge":     func(float64) float64 { return math.Inf(1) },
	} {
		src := &TrafficSource{Name: name, Rate: 100, Sizes: sizes, Seed: 1}

		_, err := src.Schedule(0, 1)
		assert.ErrorIs(t, err, ErrInvalidSize, name)
	}
}

func TestScheduleStaysInWindow(t *testing.T) {
	src := &TrafficSource{Name: "plan", Rate: 1000, Sizes: FixedSize(1500), Seed: 3}

	plan, err := src.Schedule(2, 3)
	require.NoError(t, err)
	require.NotEmpty(t, plan)

	for i, e := range plan {
		assert.GreaterOrEqual(t, float64(e.At), 2.0)
		assert.Less(t, float64(e.At), 3.0)
		assert.Equal(t, 1500, e.Size)

		if i > 0 {
			assert.Greater(t, e.At, plan[i-1].At)
		}
	}

	again, err := src.Schedule(2, 3)
	require.NoError(t, err)
	assert.Equal(t, plan, again)
}

func TestDriveAllInterleavesSources(t *testing.T) {
	s := pair(t, 500, tenGbps)
	forward := &TrafficSource{Name: "forward", From: 1, To: 2, Rate: 50, Seed: 1}
	back := &TrafficSource{Name: "back", From: 2, To: 1, Rate: 50, Seed: 2}

	pf, err := forward.Schedule(0, 1)
	require.NoError(t, err)
	pb, err := back.Schedule(0, 1)
	require.NoError(t, err)

	ids, err := DriveAll(s, []*TrafficSource{forward, back}, 0, 1)
	require.NoError(t, err)
	require.Len(t, ids, len(pf)+len(pb))

	s.Run(testHorizon)
	done := s.Completed()
	require.Len(t, done, len(ids))

	// back's first packet is stamped at its own time, not after forward
	var firstBack Seconds = -1
	for _, c := range done {
		if c.Packet.Source == 2 && (firstBack < 0 || c.Packet.CreatedAt < firstBack) {
			firstBack = c.Packet.CreatedAt
		}
	}

	assert.InDelta(t, float64(pb[0].At), float64(firstBack), floatTol)
}
