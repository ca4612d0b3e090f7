// -*- tab-width:2 -*-

package netlat

// This file turns completions into the numbers a report prints

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	medianQuantile = 0.5
	tailQuantile   = 0.99
)

// Summary aggregates end-to-end latencies, all in seconds.
type Summary struct {
	Delivered int
	Mean      Seconds
	StdDev    Seconds
	Min       Seconds
	Max       Seconds
	P50       Seconds
	P99       Seconds
}

// Summarize computes a Summary; the zero Summary for no completions.
func Summarize(completions []Completion) Summary {
	if len(completions) == 0 {
		return Summary{}
	}

	lat := make([]float64, len(completions))
	for i, c := range completions {
		lat[i] = float64(c.Latency)
	}

	slices.Sort(lat)

	sum := Summary{
		Delivered: len(lat),
		Mean:      Seconds(stat.Mean(lat, nil)),
		Min:       Seconds(floats.Min(lat)),
		Max:       Seconds(floats.Max(lat)),
		P50:       Seconds(stat.Quantile(medianQuantile, stat.Empirical, lat, nil)),
		P99:       Seconds(stat.Quantile(tailQuantile, stat.Empirical, lat, nil)),
	}

	if len(lat) > 1 {
		sum.StdDev = Seconds(stat.StdDev(lat, nil))
	}

	return sum
}

// SummarizeByProtocol groups completions by protocol tag first.
func SummarizeByProtocol(completions []Completion) map[Protocol]Summary {
	groups := make(map[Protocol][]Completion)
	for _, c := range completions {
		groups[c.Packet.Protocol] = append(groups[c.Packet.Protocol], c)
	}

	out := make(map[Protocol]Summary, len(groups))
	for p, cs := range groups {
		out[p] = Summarize(cs)
	}

	return out
}
