// -*- tab-width:2 -*-

package scenario

import (
	"context"
	"fmt"
	"sync"

	count "github.com/jayalane/go-counter"
	ll "github.com/jayalane/go-lll"
	netlat "github.com/jayalane/go-netlat"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jayalane/go-netlat/scenario"

var (
	ml     *ll.Lll
	mlOnce sync.Once
)

func logger() *ll.Lll {
	mlOnce.Do(func() {
		netlat.Init()
		ml = ll.Init("SCENARIO", "none")
	})

	return ml
}

// Run plays every phase of c against s in order. Each phase ends with
// the clock at its horizon, so the next one starts there. The context
// is checked between phases; a phase already started runs to its end.
func Run(ctx context.Context, s *netlat.Simulation, c *Config) error {
	tracer := otel.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "scenario "+c.Name,
		trace.WithAttributes(attribute.Int("netlat.phases", len(c.Phases))))
	defer span.End()

	for i := range c.Phases {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cancelled")

			return err
		}

		if err := runPhase(ctx, tracer, s, &c.Phases[i]); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			return err
		}
	}

	span.SetAttributes(
		attribute.Int("netlat.delivered", len(s.Completed())),
		attribute.Int("netlat.dropped", len(s.Drops())),
	)

	return nil
}

func runPhase(ctx context.Context, tracer trace.Tracer, s *netlat.Simulation, p *Phase) error {
	_, span := tracer.Start(ctx, "phase "+p.Name,
		trace.WithAttributes(
			attribute.Float64("netlat.start", float64(s.Now())),
			attribute.Float64("netlat.horizon", p.Horizon),
		))
	defer span.End()

	delivered := len(s.Completed())
	horizon := netlat.Seconds(p.Horizon)

	if horizon < s.Now() {
		return fmt.Errorf("%w: phase %q horizon %v is before now %v", ErrInvalidConfig, p.Name, horizon, s.Now())
	}

	injected, err := inject(s, p)
	if err != nil {
		return err
	}

	generated, err := driveSources(s, p, horizon)
	if err != nil {
		return err
	}

	s.AdvanceTo(horizon)

	count.Incr("scenario_phase")
	logger().La("Phase", p.Name, "injected", injected+generated, "delivered",
		len(s.Completed())-delivered, "pending", s.Pending())

	span.SetAttributes(
		attribute.Int("netlat.injected", injected+generated),
		attribute.Int("netlat.delivered", len(s.Completed())-delivered),
		attribute.Int("netlat.pending", s.Pending()),
	)

	return nil
}

// inject sends the phase's fixed packets at the current time.
func inject(s *netlat.Simulation, p *Phase) (int, error) {
	n := 0

	for _, inj := range p.Injections {
		protocol, err := netlat.ParseProtocol(inj.Protocol)
		if err != nil {
			return n, err
		}

		for range max(inj.Count, 1) {
			if _, err := s.Inject(netlat.NodeID(inj.From), netlat.NodeID(inj.To), inj.Size, protocol); err != nil {
				return n, fmt.Errorf("phase %q: %w", p.Name, err)
			}

			n++
		}
	}

	return n, nil
}

// driveSources runs the phase's Poisson sources from now to horizon.
func driveSources(s *netlat.Simulation, p *Phase, horizon netlat.Seconds) (int, error) {
	if len(p.Sources) == 0 {
		return 0, nil
	}

	sources := make([]*netlat.TrafficSource, 0, len(p.Sources))

	for _, sc := range p.Sources {
		protocol, err := netlat.ParseProtocol(sc.Protocol)
		if err != nil {
			return 0, err
		}

		sizes, err := sc.Sizes.Quantile()
		if err != nil {
			return 0, err
		}

		sources = append(sources, &netlat.TrafficSource{
			Name:     sc.Name,
			From:     netlat.NodeID(sc.From),
			To:       netlat.NodeID(sc.To),
			Rate:     sc.Rate,
			Sizes:    sizes,
			Protocol: protocol,
			Seed:     sc.Seed,
		})
	}

	ids, err := netlat.DriveAll(s, sources, s.Now(), horizon)
	if err != nil {
		return len(ids), fmt.Errorf("phase %q: %w", p.Name, err)
	}

	return len(ids), nil
}
