// -*- tab-width:2 -*-

package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	netlat "github.com/jayalane/go-netlat"
)

const tenGbps = 10_000_000_000.0

// handshakePair is two clients on the equator about 1000 km apart with
// links both ways and a third client nobody can reach.
func handshakePair(t *testing.T, c *SimCollector) *netlat.Simulation {
	t.Helper()

	s := netlat.NewSimulation(t.Name())
	s.SetObserver(c)
	s.AddClient(netlat.Client{ID: 1, Location: netlat.Coordinate{Latitude: 0, Longitude: 0, Name: "A"}})
	s.AddClient(netlat.Client{ID: 2, Location: netlat.Coordinate{Latitude: 0, Longitude: 9, Name: "B"}})
	s.AddClient(netlat.Client{ID: 3, Location: netlat.Coordinate{Latitude: 45, Longitude: 45, Name: "island"}})

	_, err := s.Connect(1, 2, tenGbps)
	require.NoError(t, err)
	_, err = s.Connect(2, 1, tenGbps)
	require.NoError(t, err)

	return s
}

func TestCollectorCountsHandshake(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	require.NoError(t, err)

	s := handshakePair(t, c)
	_, err = netlat.OpenHandshake(s, 1, 2)
	require.NoError(t, err)
	s.Run(10)

	for _, p := range []string{"syn", "syn-ack", "ack"} {
		assert.InDelta(t, 1, testutil.ToFloat64(c.Injected.WithLabelValues(p)), 0, p)
		assert.InDelta(t, 1, testutil.ToFloat64(c.Delivered.WithLabelValues(p)), 0, p)
		assert.Equal(t, uint64(1), histogramSampleCount(t, reg, "netlat_packet_latency_seconds",
			map[string]string{"protocol": p}), p)
	}

	assert.InDelta(t, 128, testutil.ToFloat64(c.BytesSent.WithLabelValues("1->2")), 0)
	assert.InDelta(t, 64, testutil.ToFloat64(c.BytesSent.WithLabelValues("2->1")), 0)
	assert.Equal(t, uint64(2), histogramSampleCount(t, reg, "netlat_link_queue_wait_seconds",
		map[string]string{"link": "1->2"}))

	assert.InDelta(t, 0, testutil.ToFloat64(c.PendingEvent), 0)
	assert.InDelta(t, float64(s.Now()), testutil.ToFloat64(c.SimTime), 1e-12)
}

func TestCollectorCountsDrops(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	require.NoError(t, err)

	s := handshakePair(t, c)
	_, err = s.Inject(1, 3, 100, netlat.Data)
	require.NoError(t, err)
	s.Run(10)

	assert.InDelta(t, 1, testutil.ToFloat64(c.Dropped.WithLabelValues("data")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.Injected.WithLabelValues("data")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(c.Delivered.WithLabelValues("data")), 0)
}

func TestCollectorReportsPendingAtHorizon(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	require.NoError(t, err)

	s := handshakePair(t, c)
	_, err = s.Inject(1, 2, 100, netlat.Data)
	require.NoError(t, err)
	s.Run(0)

	assert.InDelta(t, 1, testutil.ToFloat64(c.PendingEvent), 0)
}

func TestNewSimCollectorReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewSimCollector(reg)
	require.NoError(t, err)
	second, err := NewSimCollector(reg)
	require.NoError(t, err)

	first.Injected.WithLabelValues("data").Inc()
	assert.InDelta(t, 1, testutil.ToFloat64(second.Injected.WithLabelValues("data")), 0)
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *SimCollector
	assert.NotPanics(t, func() {
		c.PacketInjected(netlat.Packet{})
		c.PacketDelivered(netlat.Completion{})
		c.PacketDropped(netlat.Drop{})
		c.LinkReserved(netlat.Link{}, netlat.Reservation{}, netlat.Packet{})
		c.RunFinished(0, 0)
	})
}

func TestWriteTextAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	require.NoError(t, err)

	s := handshakePair(t, c)
	_, err = netlat.OpenHandshake(s, 1, 2)
	require.NoError(t, err)
	s.Run(10)

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	for _, metric := range []string{
		"netlat_packets_injected_total",
		"netlat_packets_delivered_total",
		"netlat_packet_latency_seconds",
		"netlat_link_queue_wait_seconds",
		"netlat_link_bytes_total",
		"netlat_pending_events",
		"netlat_sim_time_seconds",
	} {
		assert.Contains(t, buf.String(), metric)
		assert.Contains(t, rr.Body.String(), metric)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	require.NoError(t, err)

	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
