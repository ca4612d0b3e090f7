// -*- tab-width:2 -*-

package netlat

// Handshake is one SYN / SYN-ACK / ACK exchange rebuilt from the
// completions. The client may send data once it has the SYN-ACK, the
// server once it has the ACK.
type Handshake struct {
	Client      NodeID
	Server      NodeID
	SynID       PacketID
	Opened      Seconds // SYN creation time
	ClientReady Seconds // SYN-ACK arrival minus Opened, about one RTT
	ServerReady Seconds // ACK arrival minus Opened, about 1.5 RTT
	Complete    bool
}

// Handshakes finds every delivered SYN and follows its replies by
// ReplyTo. Chains missing a reply come back with Complete false and
// the missing readiness left at zero.
func Handshakes(completions []Completion) []Handshake {
	byReplyTo := make(map[PacketID]Completion, len(completions))
	for _, c := range completions {
		if c.Packet.ReplyTo != 0 {
			byReplyTo[c.Packet.ReplyTo] = c
		}
	}

	var out []Handshake

	for _, c := range completions {
		if c.Packet.Protocol != Syn {
			continue
		}

		h := Handshake{
			Client: c.Packet.Source,
			Server: c.Packet.Destination,
			SynID:  c.Packet.ID,
			Opened: c.Packet.CreatedAt,
		}

		if synAck, ok := byReplyTo[c.Packet.ID]; ok && synAck.Packet.Protocol == SynAck {
			h.ClientReady = synAck.At - h.Opened

			if ack, ok := byReplyTo[synAck.Packet.ID]; ok && ack.Packet.Protocol == Ack {
				h.ServerReady = ack.At - h.Opened
				h.Complete = true
			}
		}

		out = append(out, h)
	}

	return out
}
