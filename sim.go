// -*- tab-width:2 -*-

// Package netlat provides a discrete event simulation of packet
// latency across a geographically distributed network.
package netlat

import (
	"sync"

	count "github.com/jayalane/go-counter"
	ll "github.com/jayalane/go-lll"
)

var (
	ml     *ll.Lll
	mlOnce sync.Once
)

// Physical constants shared by the link and geo models.
const (
	// SpeedOfLight is in m/s, in vacuum.
	SpeedOfLight         = 299_792_458.0
	FiberRefractiveIndex = 1.47
	SpeedInFiber         = SpeedOfLight / FiberRefractiveIndex
	// PathInefficiencyFactor pads great-circle distance since cables
	// do not follow great circles.
	PathInefficiencyFactor = 1.3
	// EarthRadius is the mean radius in meters.
	EarthRadius = 6_371_000.0
)

// Sizes of the scripted automatic replies, in bytes.
const (
	HandshakeReplySize = 64
	CacheResponseSize  = 1024
)

const (
	bitsPerByte      = 8
	initialQueueSize = 1024
	millisPerSecond  = 1000.0
)

// Seconds is the internal sim time type.
type Seconds float64

// Millis converts sim time to milliseconds for display.
func (s Seconds) Millis() float64 {
	return float64(s) * millisPerSecond
}

// Init must be called before any simulation stuff
// it inits the logger and the counters.
func Init() {
	mlOnce.Do(func() {
		ml = ll.Init("NETLAT", "none")
		count.InitCounters()
	})
}

// InitWithLogger is an init where you can
// pass in the go-lll logger.
func InitWithLogger(l *ll.Lll) {
	mlOnce.Do(func() {
		ml = l
		count.InitCounters()
	})
}
