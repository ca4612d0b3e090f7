// -*- tab-width:2 -*-

package whatif

import (
	"fmt"
	"io"
)

const (
	sweepLastDay = 27
	sweepStep    = 3
	losDays      = 28
	hoursPerDay  = 24
)

// WriteReport prints every table: the lunar hop, the monthly sweep,
// line-of-sight coverage and protocol startup.
func WriteReport(w io.Writer) error {
	pw := &printer{w: w}

	r := EarthMoonRange()
	hs := r.Handshake()

	pw.printf("=== Earth -> Moon ===\n")
	pw.printf("Surface distance (min/avg/max): %.0f / %.0f / %.0f km\n",
		r.Min.SurfaceKm, r.Avg.SurfaceKm, r.Max.SurfaceKm)
	pw.printf("One-way light time (min/avg/max): %.0f / %.0f / %.0f ms\n",
		r.Min.OneWay.Millis(), r.Avg.OneWay.Millis(), r.Max.OneWay.Millis())
	pw.printf("RTT (min/avg/max): %.0f / %.0f / %.0f ms\n",
		r.Min.RTT.Millis(), r.Avg.RTT.Millis(), r.Max.RTT.Millis())
	pw.printf("TCP handshake window: client ready %.0f-%.0f ms, server ready %.0f-%.0f ms\n",
		hs.ClientReadyMin.Millis(), hs.ClientReadyMax.Millis(),
		hs.ServerReadyMin.Millis(), hs.ServerReadyMax.Millis())

	sweep := OrbitalSweep(sweepLastDay, sweepStep)
	pw.printf("\n--- Orbital sweep ---\n")
	pw.printf("Day | Surface Distance (km) | One-way (ms) | RTT (ms)\n")

	for _, s := range sweep {
		pw.printf("%3.0f | %21.0f | %12.0f | %8.0f\n", s.Day, s.SurfaceKm, s.OneWay.Millis(), s.RTT.Millis())
	}

	lo, hi := RTTSwing(sweep)
	pw.printf("RTT swing: %.0f ms -> %.0f ms (delta %.0f ms)\n", lo.Millis(), hi.Millis(), (hi - lo).Millis())

	cov := LineOfSight(LunarSiteLongitudeDeg, losDays, hoursPerDay)
	pw.printf("\n--- Line of sight, site at %.1f degrees, %d days hourly ---\n", LunarSiteLongitudeDeg, losDays)
	pw.printf("Without relay: uptime %.1f%% | avg one-way when visible: %.0f ms\n",
		cov.DirectUptimePct, cov.DirectAvgOneWay.Millis())
	pw.printf("With relay: uptime %.1f%% | avg one-way: %.0f ms\n", cov.RelayUptimePct, cov.RelayAvgOneWay.Millis())
	pw.printf("Relay adds ~%.0f ms one-way\n", cov.RelayPenalty.Millis())

	pw.printf("\n--- Protocol startup at average distance ---\n")
	pw.printf("%-14s | %6s | %9s\n", "Protocol", "RTTs", "Time (ms)")

	for _, p := range ProtocolStartup(r.Avg) {
		pw.printf("%-14s | %6.1f | %9.0f  (%s)\n", p.Name, p.RTTs, p.Time.Millis(), p.Note)
	}

	pw.printf("%-14s | %6s | %9.0f  (contact wait plus one-way)\n", "DTN/LTP", "-", DTNDelivery(r.Avg).Millis())

	return pw.err
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintf(p.w, format, args...)
}
