// -*- tab-width:2 -*-

package netlat

import (
	count "github.com/jayalane/go-counter"
)

// This file is a one to all fan out for observers.

// Broadcaster passes every notification to each subscriber in the
// order they subscribed.
type Broadcaster struct {
	subscribers []Observer
}

var _ Observer = (*Broadcaster)(nil)

// NewBroadcaster creates a Broadcaster; nil observers are skipped.
func NewBroadcaster(observers ...Observer) *Broadcaster {
	b := &Broadcaster{}
	for _, o := range observers {
		b.Subscribe(o)
	}

	return b
}

// Subscribe adds o; nil is ignored.
func (b *Broadcaster) Subscribe(o Observer) {
	if o == nil {
		return
	}

	b.subscribers = append(b.subscribers, o)
}

// Len returns the number of subscribers.
func (b *Broadcaster) Len() int {
	return len(b.subscribers)
}

// PacketInjected implements Observer.
func (b *Broadcaster) PacketInjected(p Packet) {
	for _, o := range b.subscribers {
		o.PacketInjected(p)
	}
}

// PacketDelivered implements Observer.
func (b *Broadcaster) PacketDelivered(c Completion) {
	for _, o := range b.subscribers {
		o.PacketDelivered(c)
	}
}

// PacketDropped implements Observer.
func (b *Broadcaster) PacketDropped(d Drop) {
	for _, o := range b.subscribers {
		o.PacketDropped(d)
	}
}

// LinkReserved implements Observer.
func (b *Broadcaster) LinkReserved(l Link, r Reservation, p Packet) {
	for _, o := range b.subscribers {
		o.LinkReserved(l, r, p)
	}
}

// RunFinished implements Observer.
func (b *Broadcaster) RunFinished(now Seconds, pending int) {
	count.Incr("broadcaster_run_finished")

	for _, o := range b.subscribers {
		o.RunFinished(now, pending)
	}
}
