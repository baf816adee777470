package lidgren

import (
	"fmt"
	"net/netip"
	"time"
)

// ackEntrySize is the wire size of one (type id, sequence) pair within an
// Acknowledge system message payload.
const ackEntrySize = 3

// Connection tracks the per-peer reassembly and reliable-ordered channel
// state needed to drive one remote endpoint. It is not safe for concurrent
// use: the server loop owns every Connection and drives it from a single
// goroutine, matching the single-threaded cooperative model the protocol was
// designed around (original_source/src/lidgren/connected_client.rs).
type Connection struct {
	Remote netip.AddrPort

	LastActivity time.Time

	receivers map[uint8]*ReliableOrderedReceiver
	senders   map[uint8]*ReliableOrderedSender
	reasm     *Reassembler

	nextFragmentGroup uint32
}

// NewConnection returns a Connection for remote, with empty channel state.
func NewConnection(remote netip.AddrPort, now time.Time) *Connection {
	return &Connection{
		Remote:       remote,
		LastActivity: now,
		receivers:    make(map[uint8]*ReliableOrderedReceiver),
		senders:      make(map[uint8]*ReliableOrderedSender),
		reasm:        NewReassembler(),
	}
}

func (c *Connection) receiver(channel uint8) *ReliableOrderedReceiver {
	r, ok := c.receivers[channel]
	if !ok {
		r = NewReliableOrderedReceiver()
		c.receivers[channel] = r
	}
	return r
}

// Sender returns (creating if needed) the reliable-ordered sender for
// channel, so the caller can Enqueue application messages on it.
func (c *Connection) Sender(channel uint8) *ReliableOrderedSender {
	s, ok := c.senders[channel]
	if !ok {
		s = NewReliableOrderedSender(channel)
		c.senders[channel] = s
	}
	return s
}

// HandleFrame processes one parsed frame from this connection's peer. For
// UserReliableOrdered frames it runs fragment reassembly (if flagged) and
// the reliable-ordered receiver, returning every application payload that
// becomes ready for delivery, in order, plus the single-record Acknowledge
// payload to send back immediately if the frame was accepted (nil if it
// wasn't — e.g. too far ahead of the window). Acknowledgements are never
// batched: one record goes out per accepted frame, as the protocol requires.
// For Acknowledge frames it feeds the contained (type, sequence) pairs back
// into the matching sender.
func (c *Connection) HandleFrame(h Header, payload []byte, now time.Time) (delivered [][]byte, ack []byte, err error) {
	c.LastActivity = now

	if h.Type == Acknowledge {
		c.handleAcknowledge(payload)
		return nil, nil, nil
	}

	if !h.Type.IsReliableOrdered() {
		if h.Fragment {
			msg, ok, err := c.reasm.Feed(payload, now)
			if err != nil {
				return nil, nil, fmt.Errorf("lidgren: reassemble unordered fragment: %w", err)
			}
			if !ok {
				return nil, nil, nil
			}
			return [][]byte{msg}, nil, nil
		}
		return [][]byte{payload}, nil, nil
	}

	channel := h.Type.Channel

	// Fragment chunks travel over the same reliable-ordered sequence as any
	// other message on this channel — tag the payload with the fragment
	// flag so it survives the receiver's reordering, then reassemble in
	// delivery order once it comes back out.
	tagged := make([]byte, len(payload)+1)
	if h.Fragment {
		tagged[0] = 1
	}
	copy(tagged[1:], payload)

	deliveredTagged, accepted := c.receiver(channel).Handle(h.Sequence, tagged)
	if accepted {
		typ := UserReliableOrdered(channel)
		ack = []byte{typ.ID(), byte(h.Sequence), byte(h.Sequence >> 8)}
	}

	var out [][]byte
	for _, dt := range deliveredTagged {
		isFragment := dt[0] != 0
		body := dt[1:]
		if !isFragment {
			out = append(out, body)
			continue
		}
		msg, ok, err := c.reasm.Feed(body, now)
		if err != nil {
			return nil, nil, fmt.Errorf("lidgren: reassemble fragment on channel %d: %w", channel, err)
		}
		if ok {
			out = append(out, msg)
		}
	}
	return out, ack, nil
}

func (c *Connection) handleAcknowledge(payload []byte) {
	for len(payload) >= ackEntrySize {
		typeID := payload[0]
		seq := uint16(payload[1]) | uint16(payload[2])<<8
		payload = payload[ackEntrySize:]

		typ, err := FromID(typeID)
		if err != nil || !typ.IsReliableOrdered() {
			continue
		}
		if s, ok := c.senders[typ.Channel]; ok {
			s.ReceivedAcknowledge(seq)
		}
	}
}

// NextFragmentGroup returns a fresh fragment group id for splitting an
// outgoing message, cycling through 1..65535 and never returning 0.
func (c *Connection) NextFragmentGroup() uint32 {
	c.nextFragmentGroup = c.nextFragmentGroup%0xFFFF + 1
	return c.nextFragmentGroup
}

// CleanupFragments discards fragment groups that have been incomplete for
// longer than FragmentTimeout.
func (c *Connection) CleanupFragments(now time.Time) int {
	return c.reasm.Cleanup(now)
}
