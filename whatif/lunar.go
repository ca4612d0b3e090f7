// -*- tab-width:2 -*-

// Package whatif has closed-form latency tables for links the event
// simulation does not model well: the Earth-Moon hop, its monthly
// swing, far-side outages and protocol startup costs at lunar RTTs.
package whatif

import (
	"math"

	netlat "github.com/jayalane/go-netlat"
)

// Mean radii and distances, NASA fact sheet values.
const (
	EarthRadiusKm      = 6_371.0
	MoonRadiusKm       = 1_737.4
	EarthMoonAvgKm     = 384_400.0
	EarthMoonPerigeeKm = 363_300.0
	EarthMoonApogeeKm  = 405_500.0

	AnomalisticMonthDays = 27.55455
	SiderealMonthDays    = 27.321661

	// LibrationAmplitudeDeg is the east-west wobble of the sub-Earth point.
	LibrationAmplitudeDeg = 7.9
	// LunarSiteLongitudeDeg puts the site just past the eastern limb.
	LunarSiteLongitudeDeg = 95.0

	RelayExtraPathKm = 12_000.0
	RelayUptimePct   = 99.8

	metersPerKm = 1_000.0
	fullCircle  = 360.0
	halfCircle  = 180.0
	horizonDeg  = 90.0
)

// SurfaceDistanceKm is the surface-to-surface gap for a center-to-center
// Earth-Moon distance.
func SurfaceDistanceKm(centerKm float64) float64 {
	return centerKm - EarthRadiusKm - MoonRadiusKm
}

// OneWay is the light time across km in vacuum.
func OneWay(km float64) netlat.Seconds {
	return netlat.Seconds(km * metersPerKm / netlat.SpeedOfLight)
}

// Hop is one distance with its light times.
type Hop struct {
	SurfaceKm float64
	OneWay    netlat.Seconds
	RTT       netlat.Seconds
}

// HopAt fills a Hop for a center-to-center distance.
func HopAt(centerKm float64) Hop {
	km := SurfaceDistanceKm(centerKm)
	ow := OneWay(km)

	return Hop{SurfaceKm: km, OneWay: ow, RTT: 2 * ow} //nolint:mnd
}

// EarthMoon is the hop at perigee, on average and at apogee.
type EarthMoon struct {
	Min Hop
	Avg Hop
	Max Hop
}

// EarthMoonRange returns the perigee, average and apogee hops.
func EarthMoonRange() EarthMoon {
	return EarthMoon{
		Min: HopAt(EarthMoonPerigeeKm),
		Avg: HopAt(EarthMoonAvgKm),
		Max: HopAt(EarthMoonApogeeKm),
	}
}

// HandshakeWindow bounds when each side of a TCP handshake may send:
// the client after one RTT, the server after one and a half.
type HandshakeWindow struct {
	ClientReadyMin netlat.Seconds
	ClientReadyMax netlat.Seconds
	ServerReadyMin netlat.Seconds
	ServerReadyMax netlat.Seconds
}

// Handshake derives the window from the RTT range of r.
func (r EarthMoon) Handshake() HandshakeWindow {
	const serverRTTs = 1.5

	return HandshakeWindow{
		ClientReadyMin: r.Min.RTT,
		ClientReadyMax: r.Max.RTT,
		ServerReadyMin: r.Min.RTT * serverRTTs,
		ServerReadyMax: r.Max.RTT * serverRTTs,
	}
}

// CenterDistanceKm models the monthly perigee to apogee cycle, starting
// at perigee on day 0.
func CenterDistanceKm(day float64) float64 {
	average := (EarthMoonApogeeKm + EarthMoonPerigeeKm) / 2   //nolint:mnd
	amplitude := (EarthMoonApogeeKm - EarthMoonPerigeeKm) / 2 //nolint:mnd

	return average - amplitude*math.Cos(2*math.Pi*day/AnomalisticMonthDays)
}

// OrbitSample is the hop on one day of the cycle.
type OrbitSample struct {
	Day float64
	Hop
}

// OrbitalSweep samples days 0 through last every step days. A non
// positive step samples day 0 only.
func OrbitalSweep(last, step float64) []OrbitSample {
	var out []OrbitSample

	for day := 0.0; day <= last; day += step {
		out = append(out, OrbitSample{Day: day, Hop: HopAt(CenterDistanceKm(day))})

		if step <= 0 {
			break
		}
	}

	return out
}

// RTTSwing returns the smallest and largest RTT in samples.
func RTTSwing(samples []OrbitSample) (lo, hi netlat.Seconds) {
	for i, s := range samples {
		if i == 0 || s.RTT < lo {
			lo = s.RTT
		}

		if s.RTT > hi {
			hi = s.RTT
		}
	}

	return lo, hi
}

// SubEarthLongitudeDeg is the libration offset of the point facing
// Earth on day.
func SubEarthLongitudeDeg(day float64) float64 {
	return LibrationAmplitudeDeg * math.Sin(2*math.Pi*day/SiderealMonthDays)
}

func normalizeDegrees(d float64) float64 {
	for d > halfCircle {
		d -= fullCircle
	}

	for d < -halfCircle {
		d += fullCircle
	}

	return d
}

// Visible reports whether a site at longitude sees Earth on day.
func Visible(longitudeDeg, day float64) bool {
	return math.Abs(normalizeDegrees(longitudeDeg-SubEarthLongitudeDeg(day))) <= horizonDeg
}

// Coverage compares a direct link that only works in line of sight to
// a relay that always works but adds path.
type Coverage struct {
	Samples         int
	VisibleSamples  int
	DirectUptimePct float64
	DirectAvgOneWay netlat.Seconds // +Inf when never visible
	RelayUptimePct  float64
	RelayAvgOneWay  netlat.Seconds
	RelayPenalty    netlat.Seconds
}

// LineOfSight samples a site at longitudeDeg every 1/perDay days over
// days days.
func LineOfSight(longitudeDeg float64, days, perDay int) Coverage {
	total := days * perDay
	penalty := OneWay(RelayExtraPathKm)
	cov := Coverage{
		Samples:         total,
		RelayUptimePct:  RelayUptimePct,
		RelayPenalty:    penalty,
		DirectAvgOneWay: netlat.Seconds(math.Inf(1)),
	}

	if total <= 0 {
		return cov
	}

	var direct, relay netlat.Seconds

	for i := range total {
		day := float64(i) / float64(perDay)
		ow := OneWay(SurfaceDistanceKm(CenterDistanceKm(day)))

		if Visible(longitudeDeg, day) {
			cov.VisibleSamples++
			direct += ow
		}

		relay += ow + penalty
	}

	cov.DirectUptimePct = float64(cov.VisibleSamples) / float64(total) * 100 //nolint:mnd
	if cov.VisibleSamples > 0 {
		cov.DirectAvgOneWay = direct / netlat.Seconds(cov.VisibleSamples)
	}

	cov.RelayAvgOneWay = relay / netlat.Seconds(total)

	return cov
}

// VacuumRTT is the free-space round trip between two points on the
// Earth's surface along the great circle.
func VacuumRTT(a, b netlat.Coordinate) netlat.Seconds {
	return 2 * netlat.Seconds(netlat.SurfaceDistance(a, b)/netlat.SpeedOfLight) //nolint:mnd
}
