// -*- tab-width:2 -*-

// Package main runs the Pretoria, Johannesburg and New York latency
// demo, or a scenario file, and prints what physics costs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // for profiling
	"os"
	"slices"
	"text/tabwriter"

	count "github.com/jayalane/go-counter"
	ll "github.com/jayalane/go-lll"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	netlat "github.com/jayalane/go-netlat"
	"github.com/jayalane/go-netlat/internal/observability"
	"github.com/jayalane/go-netlat/scenario"
	"github.com/jayalane/go-netlat/whatif"
)

// Node ids and sizes of the built-in demo.
const (
	pretoria     = netlat.NodeID(100)
	johannesburg = netlat.NodeID(1)
	newYork      = netlat.NodeID(5)
	jhbEdge      = netlat.NodeID(2)

	linkBandwidth = 10_000_000_000.0

	burstPackets = 10
	burstSize    = 10_000_000 // bytes, enough to clog the link
	cacheReqSize = 512
)

type options struct {
	scenario     string
	horizon      float64
	results      string
	metrics      bool
	logLevel     string
	tracing      string
	otlpEndpoint string
	whatIf       bool
	debugAddr    string
}

func main() {
	var opts options

	flag.StringVar(&opts.scenario, "scenario", "", "YAML or JSON scenario file; empty runs the built-in demo")
	flag.Float64Var(&opts.horizon, "horizon", 2.0, "simulated seconds to run the built-in demo") //nolint:mnd
	flag.StringVar(&opts.results, "results", "", "write results to this .yaml or .json file")
	flag.BoolVar(&opts.metrics, "metrics", false, "dump Prometheus metrics after the run")
	flag.StringVar(&opts.logLevel, "log", "none", "go-lll level: none, state, network or all")
	flag.StringVar(&opts.tracing, "tracing", "off", "span exporter: off, stdout or otlp")
	flag.StringVar(&opts.otlpEndpoint, "otlp-endpoint", "localhost:4317", "OTLP gRPC collector address")
	flag.BoolVar(&opts.whatIf, "whatif", false, "also print the Earth-Moon what-if tables")
	flag.StringVar(&opts.debugAddr, "debug-addr", "", "serve pprof and /metrics on this address, e.g. :6060")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "netlat:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	ll.SetWriter(os.Stdout)

	logger := ll.Init("NETLAT", opts.logLevel)
	netlat.InitWithLogger(logger)
	count.SetResolution(count.HighRes)

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Exporter: opts.tracing,
		Endpoint: opts.otlpEndpoint,
	}, logger)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, logger)

	reg := prometheus.NewRegistry()

	collector, err := observability.NewSimCollector(reg)
	if err != nil {
		return err
	}

	if opts.debugAddr != "" {
		http.Handle("/metrics", collector.Handler())

		go func() {
			fmt.Println(http.ListenAndServe(opts.debugAddr, nil)) //nolint:gosec
		}()
	}

	ctx, span := otel.Tracer(observability.TracerName).Start(ctx, "netlat")
	defer span.End()

	observer := netlat.NewBroadcaster(collector, observability.NewSpanObserver(span))

	var s *netlat.Simulation

	if opts.scenario != "" {
		s, err = runScenario(ctx, opts.scenario, observer)
	} else {
		s, err = runDemo(netlat.Seconds(opts.horizon), observer, out)
	}

	if err != nil {
		return err
	}

	report(s, out)

	if opts.whatIf {
		fmt.Fprintln(out)

		if err := whatif.WriteReport(out); err != nil {
			return err
		}
	}

	count.LogCounters()

	if opts.metrics {
		fmt.Fprintln(out, "\n=== Metrics ===")

		if err := collector.WriteText(out); err != nil {
			return err
		}
	}

	if opts.results != "" {
		if err := scenario.WriteResults(opts.results, s); err != nil {
			return err
		}

		fmt.Fprintln(out, "Results written to", opts.results)
	}

	return nil
}

func runScenario(ctx context.Context, path string, o netlat.Observer) (*netlat.Simulation, error) {
	cfg, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}

	s, err := scenario.Build(cfg)
	if err != nil {
		return nil, err
	}

	s.SetObserver(o)

	if err := scenario.Run(ctx, s, cfg); err != nil {
		return nil, err
	}

	return s, nil
}

var demoServers = []netlat.Server{
	{
		ID:              johannesburg,
		Location:        netlat.Coordinate{Latitude: -26.2041, Longitude: 28.0473, Name: "Johannesburg"},
		ProcessingDelay: 0.0005,
		Bandwidth:       100_000_000_000.0,
	},
	{
		ID:              newYork,
		Location:        netlat.Coordinate{Latitude: 40.7128, Longitude: -74.0060, Name: "New York"},
		ProcessingDelay: 0.0006,
		Bandwidth:       200_000_000_000.0,
	},
	{
		ID:              jhbEdge,
		Location:        netlat.Coordinate{Latitude: -26.2041, Longitude: 28.0473, Name: "Johannesburg Edge"},
		ProcessingDelay: 0.0002,
		Bandwidth:       40_000_000_000.0,
	},
}

// buildDemo is the reference topology: a Pretoria client behind a
// Johannesburg server that reaches New York, plus a local edge cache.
func buildDemo() (*netlat.Simulation, error) {
	s := netlat.NewSimulation("pretoria-demo")

	for _, srv := range demoServers {
		s.AddServer(srv)
	}

	s.AddClient(netlat.Client{
		ID:       pretoria,
		Location: netlat.Coordinate{Latitude: -25.7479, Longitude: 28.2293, Name: "Pretoria"},
	})

	for _, l := range [][2]netlat.NodeID{
		{pretoria, johannesburg},
		{johannesburg, newYork},
		{newYork, johannesburg},
		{johannesburg, pretoria},
		{pretoria, jhbEdge},
		{jhbEdge, pretoria},
	} {
		if _, err := s.Connect(l[0], l[1], linkBandwidth); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func runDemo(horizon netlat.Seconds, o netlat.Observer, out io.Writer) (*netlat.Simulation, error) {
	s, err := buildDemo()
	if err != nil {
		return nil, err
	}

	s.SetObserver(o)

	fmt.Fprintln(out, "=== TCP handshake overhead ===")
	fmt.Fprintf(out, "SYN %s -> %s\n", s.NodeName(pretoria), s.NodeName(newYork))

	if _, err := netlat.OpenHandshake(s, pretoria, newYork); err != nil {
		return nil, err
	}

	fmt.Fprintln(out, "\n=== Queuing and bufferbloat ===")
	fmt.Fprintf(out, "%d packets of %d bytes at once %s -> %s\n",
		burstPackets, burstSize, s.NodeName(pretoria), s.NodeName(johannesburg))

	burst, err := netlat.Burst(s, pretoria, johannesburg, burstPackets, burstSize)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out, "\n=== Edge cache ===")

	edge, lat, err := netlat.NearestServer(s, pretoria, []netlat.NodeID{newYork, jhbEdge})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "Nearest cache for %s: %s (%.3f ms one-way)\n", s.NodeName(pretoria), s.NodeName(edge), lat.Millis())

	reqs, err := netlat.CompareCache(s, pretoria, newYork, jhbEdge, cacheReqSize)
	if err != nil {
		return nil, err
	}

	s.Run(horizon)

	if pending := s.Pending(); pending > 0 {
		fmt.Fprintf(out, "%d events still pending at horizon %.3f s\n", pending, float64(horizon))
	}

	printBurst(s, burst, out)
	printCache(s, reqs, out)

	return s, nil
}

func printBurst(s *netlat.Simulation, burst []netlat.PacketID, out io.Writer) {
	want := make(map[netlat.PacketID]bool, len(burst))
	for _, id := range burst {
		want[id] = true
	}

	var first, last netlat.Completion

	for _, c := range s.Completed() {
		if !want[c.Packet.ID] {
			continue
		}

		if first.Packet.ID == 0 {
			first = c
		}

		last = c
	}

	if first.Packet.ID == 0 {
		fmt.Fprintln(out, "Burst not delivered before the horizon")

		return
	}

	fmt.Fprintf(out, "First of burst: %.3f ms, last: %.3f ms; the pipe was fat, the queue was long\n",
		first.Latency.Millis(), last.Latency.Millis())
}

func printCache(s *netlat.Simulation, reqs netlat.CacheRequests, out io.Writer) {
	done := s.Completed()

	origin, okO := netlat.ResponseTo(done, reqs.Origin)
	edge, okE := netlat.ResponseTo(done, reqs.Edge)

	if !okO || !okE {
		fmt.Fprintln(out, "Cache responses not delivered before the horizon")

		return
	}

	fmt.Fprintf(out, "Origin %s answered at %.3f ms, edge %s at %.3f ms\n",
		s.NodeName(newYork), origin.At.Millis(), s.NodeName(jhbEdge), edge.At.Millis())
}

func report(s *netlat.Simulation, out io.Writer) {
	fmt.Fprintln(out, "\n=== Links ===")

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd
	fmt.Fprintln(tw, "Link\tMedium\tDistance (km)\tLatency (ms)\tRTT (ms)\tBandwidth (Gbps)")

	for _, l := range s.Links() {
		fmt.Fprintf(tw, "%s -> %s\t%s\t%.0f\t%.3f\t%.3f\t%.1f\n",
			s.NodeName(l.From), s.NodeName(l.To), l.Medium, l.Distance/1000, //nolint:mnd
			l.Latency.Millis(), 2*l.Latency.Millis(), l.Bandwidth/1e9) //nolint:mnd
	}

	_ = tw.Flush()

	done := s.Completed()
	sum := netlat.Summarize(done)

	fmt.Fprintln(out, "\n=== Summary ===")
	fmt.Fprintf(out, "Delivered %d, dropped %d, pending %d\n", sum.Delivered, len(s.Drops()), s.Pending())
	fmt.Fprintf(out, "Aggregate server bandwidth: %.0f Gbps\n", s.TotalServerBandwidth()/1e9) //nolint:mnd

	if sum.Delivered > 0 {
		fmt.Fprintf(out, "Latency ms: mean %.3f sd %.3f min %.3f p50 %.3f p99 %.3f max %.3f\n",
			sum.Mean.Millis(), sum.StdDev.Millis(), sum.Min.Millis(), sum.P50.Millis(), sum.P99.Millis(), sum.Max.Millis())
	}

	by := netlat.SummarizeByProtocol(done)
	protocols := make([]netlat.Protocol, 0, len(by))

	for p := range by {
		protocols = append(protocols, p)
	}

	slices.Sort(protocols)

	for _, p := range protocols {
		fmt.Fprintf(out, "  %-14s %4d  mean %.3f ms\n", p, by[p].Delivered, by[p].Mean.Millis())
	}

	for _, h := range netlat.Handshakes(done) {
		fmt.Fprintf(out, "\nHandshake %s -> %s: client ready %.3f ms, server ready %.3f ms",
			s.NodeName(h.Client), s.NodeName(h.Server), h.ClientReady.Millis(), h.ServerReady.Millis())

		if !h.Complete {
			fmt.Fprint(out, " (incomplete)")
		}

		fmt.Fprintln(out)
	}

	takeaway(s, out)
}

// takeaway compares the demo's worst path with what light in vacuum
// could do over the same ground.
func takeaway(s *netlat.Simulation, out io.Writer) {
	from, errF := s.Location(pretoria)
	to, errT := s.Location(newYork)

	if err := errors.Join(errF, errT); err != nil {
		return
	}

	fmt.Fprintln(out, "\n=== Physics takeaway ===")
	fmt.Fprintf(out, "Distance %s -> %s: %.0f km\n", from.Name, to.Name, netlat.SurfaceDistance(from, to)/1000) //nolint:mnd
	fmt.Fprintf(out, "Minimum RTT in vacuum: %.2f ms\n", whatif.VacuumRTT(from, to).Millis())

	if lat, ok := s.PathLatency(pretoria, newYork); ok {
		fmt.Fprintf(out, "Routed fiber RTT before queuing or handshakes: %.2f ms\n", 2*lat.Millis())
	}
}
