// -*- tab-width:2 -*-

package netlat

// reply is the scripted answer to an arriving packet.
type reply struct {
	protocol Protocol
	size     int
}

// replies is the whole protocol model: one level of request/reply,
// at most one reply per arrival.
var replies = map[Protocol]reply{
	Syn:          {protocol: SynAck, size: HandshakeReplySize},
	SynAck:       {protocol: Ack, size: HandshakeReplySize},
	CacheRequest: {protocol: CacheResponse, size: CacheResponseSize},
}

// ReplyFor returns the protocol and size of the automatic reply to an
// arrival tagged p, and false if p triggers nothing.
func ReplyFor(p Protocol) (Protocol, int, bool) {
	r, ok := replies[p]

	return r.protocol, r.size, ok
}
