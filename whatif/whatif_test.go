// -*- tab-width:2 -*-

package whatif

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	netlat "github.com/jayalane/go-netlat"
)

const tol = 1e-6

func TestEarthMoonRange(t *testing.T) {
	r := EarthMoonRange()

	tests := []struct {
		name   string
		hop    Hop
		km     float64
		oneWay float64
	}{
		{"perigee", r.Min, 355_191.6, 1.1847916467598394},
		{"average", r.Avg, 376_291.6, 1.2551736708466494},
		{"apogee", r.Max, 397_391.6, 1.3255556949334597},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.km, tt.hop.SurfaceKm, tol)
			assert.InDelta(t, tt.oneWay, float64(tt.hop.OneWay), tol)
			assert.InDelta(t, 2*tt.oneWay, float64(tt.hop.RTT), tol)
		})
	}
}

func TestHandshakeWindow(t *testing.T) {
	r := EarthMoonRange()
	hs := r.Handshake()

	assert.Equal(t, r.Min.RTT, hs.ClientReadyMin)
	assert.Equal(t, r.Max.RTT, hs.ClientReadyMax)
	assert.InDelta(t, 1.5*float64(r.Min.RTT), float64(hs.ServerReadyMin), tol)
	assert.InDelta(t, 1.5*float64(r.Max.RTT), float64(hs.ServerReadyMax), tol)
	assert.Greater(t, float64(hs.ServerReadyMin), 3.0, "lunar handshakes take seconds")
}

func TestOrbitalSweep(t *testing.T) {
	sweep := OrbitalSweep(27, 3)
	require.Len(t, sweep, 10)

	assert.InDelta(t, 0, sweep[0].Day, 0)
	assert.InDelta(t, 27, sweep[len(sweep)-1].Day, 0)
	assert.InDelta(t, SurfaceDistanceKm(EarthMoonPerigeeKm), sweep[0].SurfaceKm, tol, "cycle starts at perigee")

	lo, hi := RTTSwing(sweep)
	assert.InDelta(t, 2.369583293519679, float64(lo), tol)
	assert.InDelta(t, 2.6456754181578765, float64(hi), tol)
}

func TestOrbitalSweepBadStep(t *testing.T) {
	assert.Len(t, OrbitalSweep(27, 0), 1)
	assert.Empty(t, OrbitalSweep(-1, 3))
}

func TestCenterDistanceStaysInRange(t *testing.T) {
	for day := 0.0; day < 60; day += 0.25 {
		d := CenterDistanceKm(day)
		assert.GreaterOrEqual(t, d, EarthMoonPerigeeKm-tol)
		assert.LessOrEqual(t, d, EarthMoonApogeeKm+tol)
	}

	assert.InDelta(t, EarthMoonApogeeKm, CenterDistanceKm(AnomalisticMonthDays/2), tol)
}

func TestRTTSwingEmpty(t *testing.T) {
	lo, hi := RTTSwing(nil)
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestVisible(t *testing.T) {
	assert.True(t, Visible(0, 0), "sub-Earth point")
	assert.False(t, Visible(180, 0), "far side")
	assert.False(t, Visible(95, 0), "limb site without libration")
	assert.True(t, Visible(95, SiderealMonthDays/4), "limb site at peak libration")
	assert.True(t, Visible(-270, 0), "longitudes wrap")
}

func TestLineOfSight(t *testing.T) {
	cov := LineOfSight(LunarSiteLongitudeDeg, 28, 24)

	assert.Equal(t, 672, cov.Samples)
	assert.Equal(t, 185, cov.VisibleSamples)
	assert.InDelta(t, 27.529761904761905, cov.DirectUptimePct, tol)
	assert.InDelta(t, 1.2543960376257568, float64(cov.DirectAvgOneWay), tol)
	assert.InDelta(t, 1.2940833225818211, float64(cov.RelayAvgOneWay), tol)
	assert.InDelta(t, 0.040027691423778246, float64(cov.RelayPenalty), tol)
	assert.InDelta(t, RelayUptimePct, cov.RelayUptimePct, 0)
}

func TestLineOfSightNeverVisible(t *testing.T) {
	cov := LineOfSight(180, 28, 24)

	assert.Zero(t, cov.VisibleSamples)
	assert.Zero(t, cov.DirectUptimePct)
	assert.True(t, math.IsInf(float64(cov.DirectAvgOneWay), 1))
}

func TestLineOfSightNoSamples(t *testing.T) {
	cov := LineOfSight(0, 0, 24)

	assert.Zero(t, cov.Samples)
	assert.Zero(t, cov.RelayAvgOneWay)
}

func TestProtocolStartup(t *testing.T) {
	hop := HopAt(EarthMoonAvgKm)
	got := ProtocolStartup(hop)
	require.Len(t, got, 4)

	wantRTTs := []float64{4, 3, 2, 1}
	for i, p := range got {
		assert.InDelta(t, wantRTTs[i], p.RTTs, 0, p.Name)
		assert.InDelta(t, wantRTTs[i]*float64(hop.RTT), float64(p.Time), tol, p.Name)
	}

	assert.Equal(t, "QUIC (0-RTT)", got[3].Name)
	assert.InDelta(t, 451.25517367084666, float64(DTNDelivery(hop)), tol)
}

func TestProtocolStartupDoesNotShareTable(t *testing.T) {
	first := ProtocolStartup(HopAt(EarthMoonAvgKm))
	first[0].Name = "changed"

	assert.Equal(t, "TCP + TLS 1.2", ProtocolStartup(HopAt(EarthMoonAvgKm))[0].Name)
}

func TestVacuumRTT(t *testing.T) {
	a := netlat.Coordinate{Latitude: 0, Longitude: 0}
	b := netlat.Coordinate{Latitude: 0, Longitude: 180}

	want := 2 * math.Pi * netlat.EarthRadius / netlat.SpeedOfLight
	assert.InDelta(t, want, float64(VacuumRTT(a, b)), tol)
	assert.Zero(t, VacuumRTT(a, a))
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf))

	out := buf.String()
	for _, want := range []string{
		"Surface distance (min/avg/max): 355192 / 376292 / 397392 km",
		"RTT swing:",
		"Without relay: uptime 27.5%",
		"With relay: uptime 99.8%",
		"QUIC (0-RTT)",
		"DTN/LTP",
	} {
		assert.Contains(t, out, want)
	}
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestWriteReportStopsOnError(t *testing.T) {
	assert.ErrorIs(t, WriteReport(failingWriter{}), errWrite)
}
