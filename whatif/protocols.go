// -*- tab-width:2 -*-

package whatif

import (
	netlat "github.com/jayalane/go-netlat"
)

// DTNContactWait is the average wait for the next scheduled contact.
const DTNContactWait = netlat.Seconds(7.5 * 60) //nolint:mnd

// Startup is the time to the first response byte for one protocol.
type Startup struct {
	Name string
	RTTs float64
	Time netlat.Seconds
	Note string
}

var profiles = []Startup{
	{Name: "TCP + TLS 1.2", RTTs: 4, Note: "most expensive startup path"},
	{Name: "TCP + TLS 1.3", RTTs: 3, Note: "saves one RTT vs TLS 1.2"},
	{Name: "QUIC (1-RTT)", RTTs: 2, Note: "transport and crypto combined"},
	{Name: "QUIC (0-RTT)", RTTs: 1, Note: "fastest interactive startup, replay caveats"},
}

// ProtocolStartup prices each startup profile at hop's RTT.
func ProtocolStartup(hop Hop) []Startup {
	out := make([]Startup, len(profiles))
	for i, p := range profiles {
		p.Time = netlat.Seconds(p.RTTs) * hop.RTT
		out[i] = p
	}

	return out
}

// DTNDelivery is a bundle waiting for a contact and then crossing once.
func DTNDelivery(hop Hop) netlat.Seconds {
	return DTNContactWait + hop.OneWay
}
