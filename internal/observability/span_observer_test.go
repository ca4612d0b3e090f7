// -*- tab-width:2 -*-

package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	netlat "github.com/jayalane/go-netlat"
)

func TestSpanObserverRecordsDropsAndRuns(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))

	_, span := tp.Tracer(TracerName).Start(context.Background(), "demo")

	s := handshakePair(t, nil)
	s.SetObserver(NewSpanObserver(span))

	_, err := netlat.OpenHandshake(s, 1, 2)
	require.NoError(t, err)
	_, err = s.Inject(1, 3, 64, netlat.Data)
	require.NoError(t, err)
	s.Run(10)
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)

	names := make([]string, 0, len(spans[0].Events))
	for _, e := range spans[0].Events {
		names = append(names, e.Name)
	}

	assert.Equal(t, []string{"packet dropped", "run finished"}, names)
}
