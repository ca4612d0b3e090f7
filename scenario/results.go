// -*- tab-width:2 -*-

package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	netlat "github.com/jayalane/go-netlat"
	"gopkg.in/yaml.v3"
)

// PacketRecord is a packet flattened for YAML and JSON.
type PacketRecord struct {
	ID          uint64  `yaml:"id" json:"id"`
	Source      int     `yaml:"source" json:"source"`
	Destination int     `yaml:"destination" json:"destination"`
	Size        int     `yaml:"size" json:"size"`
	Protocol    string  `yaml:"protocol" json:"protocol"`
	CreatedAt   float64 `yaml:"created_at" json:"created_at"`
	ReplyTo     uint64  `yaml:"reply_to,omitempty" json:"reply_to,omitempty"`
}

func packetRecord(p netlat.Packet) PacketRecord {
	return PacketRecord{
		ID:          uint64(p.ID),
		Source:      int(p.Source),
		Destination: int(p.Destination),
		Size:        p.Size,
		Protocol:    p.Protocol.String(),
		CreatedAt:   float64(p.CreatedAt),
		ReplyTo:     uint64(p.ReplyTo),
	}
}

// CompletionRecord is one delivered packet.
type CompletionRecord struct {
	PacketRecord `yaml:",inline"`
	DeliveredAt  float64 `yaml:"delivered_at" json:"delivered_at"`
	LatencyMs    float64 `yaml:"latency_ms" json:"latency_ms"`
}

// DropRecord is one packet that found no route.
type DropRecord struct {
	PacketRecord `yaml:",inline"`
	Node         int     `yaml:"node" json:"node"`
	DroppedAt    float64 `yaml:"dropped_at" json:"dropped_at"`
}

// LinkRecord is a link with its derived numbers.
type LinkRecord struct {
	From         int     `yaml:"from" json:"from"`
	To           int     `yaml:"to" json:"to"`
	Medium       string  `yaml:"medium" json:"medium"`
	DistanceKm   float64 `yaml:"distance_km" json:"distance_km"`
	LatencyMs    float64 `yaml:"latency_ms" json:"latency_ms"`
	Bandwidth    float64 `yaml:"bandwidth" json:"bandwidth"`
	QueueHorizon float64 `yaml:"queue_horizon" json:"queue_horizon"`
}

// SummaryRecord is a netlat.Summary in milliseconds.
type SummaryRecord struct {
	Delivered int     `yaml:"delivered" json:"delivered"`
	MeanMs    float64 `yaml:"mean_ms" json:"mean_ms"`
	StdDevMs  float64 `yaml:"stddev_ms" json:"stddev_ms"`
	MinMs     float64 `yaml:"min_ms" json:"min_ms"`
	MaxMs     float64 `yaml:"max_ms" json:"max_ms"`
	P50Ms     float64 `yaml:"p50_ms" json:"p50_ms"`
	P99Ms     float64 `yaml:"p99_ms" json:"p99_ms"`
}

func summaryRecord(s netlat.Summary) SummaryRecord {
	return SummaryRecord{
		Delivered: s.Delivered,
		MeanMs:    s.Mean.Millis(),
		StdDevMs:  s.StdDev.Millis(),
		MinMs:     s.Min.Millis(),
		MaxMs:     s.Max.Millis(),
		P50Ms:     s.P50.Millis(),
		P99Ms:     s.P99.Millis(),
	}
}

// Results is everything a finished run leaves behind.
type Results struct {
	Name       string                   `yaml:"name" json:"name"`
	Now        float64                  `yaml:"now" json:"now"`
	Pending    int                      `yaml:"pending" json:"pending"`
	Summary    SummaryRecord            `yaml:"summary" json:"summary"`
	ByProtocol map[string]SummaryRecord `yaml:"by_protocol,omitempty" json:"by_protocol,omitempty"`
	Links      []LinkRecord             `yaml:"links" json:"links"`
	Completed  []CompletionRecord       `yaml:"completed" json:"completed"`
	Drops      []DropRecord             `yaml:"drops,omitempty" json:"drops,omitempty"`
}

const metersPerKm = 1000.0

// Collect snapshots s into Results.
func Collect(s *netlat.Simulation) Results {
	done := s.Completed()

	r := Results{
		Name:    s.Name(),
		Now:     float64(s.Now()),
		Pending: s.Pending(),
		Summary: summaryRecord(netlat.Summarize(done)),
	}

	if by := netlat.SummarizeByProtocol(done); len(by) > 0 {
		r.ByProtocol = make(map[string]SummaryRecord, len(by))
		for p, sum := range by {
			r.ByProtocol[p.String()] = summaryRecord(sum)
		}
	}

	for _, l := range s.Links() {
		r.Links = append(r.Links, LinkRecord{
			From:         int(l.From),
			To:           int(l.To),
			Medium:       l.Medium.String(),
			DistanceKm:   l.Distance / metersPerKm,
			LatencyMs:    l.Latency.Millis(),
			Bandwidth:    l.Bandwidth,
			QueueHorizon: float64(l.QueueHorizon()),
		})
	}

	for _, c := range done {
		r.Completed = append(r.Completed, CompletionRecord{
			PacketRecord: packetRecord(c.Packet),
			DeliveredAt:  float64(c.At),
			LatencyMs:    c.Latency.Millis(),
		})
	}

	for _, d := range s.Drops() {
		r.Drops = append(r.Drops, DropRecord{
			PacketRecord: packetRecord(d.Packet),
			Node:         int(d.Node),
			DroppedAt:    float64(d.At),
		})
	}

	return r
}

// Marshal encodes r in format.
func (r Results) Marshal(format Format) ([]byte, error) {
	switch format {
	case YAML:
		return yaml.Marshal(r)
	case JSON:
		return json.MarshalIndent(r, "", "\t")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteResults stores the results of s to path, as YAML or JSON by
// the extension.
func WriteResults(path string, s *netlat.Simulation) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := Collect(s).Marshal(format)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec,mnd
		return fmt.Errorf("write results %s: %w", path, err)
	}

	return nil
}
