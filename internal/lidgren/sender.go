package lidgren

import (
	"container/list"
	"time"
)

// ResendInterval is the minimum time between retransmits of an
// unacknowledged reliable-ordered message, matching the original's
// TIME_BETWEEN_RESENDS.
const ResendInterval = 400 * time.Millisecond

type enqueuedMessage struct {
	data         []byte
	isFragment   bool
	lastSent     time.Time
	sentCount    int
	acknowledged bool
}

// ReliableOrderedSender frames and tracks outgoing UserReliableOrdered
// messages: it holds up to windowSize messages in flight, retransmitting any
// that go unacknowledged for longer than ResendInterval, and queues the rest
// until window space frees up. Grounded in
// original_source/src/lidgren/channel_sender/reliable_ordered.rs.
type ReliableOrderedSender struct {
	channel     uint8
	queue       *list.List // of queuedEntry
	window      [windowSize]*enqueuedMessage
	oldest      uint16
	latest      uint16
	initialized bool
}

type queuedEntry struct {
	data       []byte
	isFragment bool
}

// NewReliableOrderedSender returns a sender for the given reliable-ordered
// channel number, with an empty send window.
func NewReliableOrderedSender(channel uint8) *ReliableOrderedSender {
	return &ReliableOrderedSender{channel: channel, queue: list.New()}
}

// Enqueue queues a message for eventual transmission on this channel.
func (s *ReliableOrderedSender) Enqueue(data []byte, isFragment bool) {
	s.queue.PushBack(queuedEntry{data: data, isFragment: isFragment})
}

func (s *ReliableOrderedSender) freeSlots() int {
	if !s.initialized {
		return windowSize
	}
	inFlight := createRelativeIndex((s.latest+1)%sequenceSpace, s.oldest)
	return windowSize - inFlight
}

// OutgoingFrame is one frame ready to be written to the wire.
type OutgoingFrame struct {
	Sequence uint16
	Fragment bool
	Payload  []byte
}

// SendMessages advances the window: it retransmits messages that have been
// unacknowledged for longer than ResendInterval, then admits as many queued
// messages as there is window space for, returning every frame that should
// be written to the socket this tick.
func (s *ReliableOrderedSender) SendMessages(now time.Time) []OutgoingFrame {
	var out []OutgoingFrame

	if s.initialized {
		for i := 0; i < windowSize; i++ {
			slot := (int(s.oldest) + i) % sequenceSpace % windowSize
			m := s.window[slot]
			if m == nil || m.acknowledged {
				continue
			}
			if now.Sub(m.lastSent) >= ResendInterval {
				seq := uint16((int(s.oldest) + i) % sequenceSpace)
				out = append(out, OutgoingFrame{Sequence: seq, Fragment: m.isFragment, Payload: m.data})
				m.lastSent = now
				m.sentCount++
			}
		}
	}

	for s.freeSlots() > 0 && s.queue.Len() > 0 {
		e := s.queue.Remove(s.queue.Front()).(queuedEntry)

		var seq uint16
		if !s.initialized {
			seq = 0
			s.initialized = true
			s.oldest = 0
			s.latest = sequenceSpace - 1 // so the first advance below lands on 0
		}
		seq = (s.latest + 1) % sequenceSpace
		s.latest = seq

		m := &enqueuedMessage{data: e.data, isFragment: e.isFragment, lastSent: now, sentCount: 1}
		s.window[seq%windowSize] = m
		out = append(out, OutgoingFrame{Sequence: seq, Fragment: e.isFragment, Payload: e.data})
	}

	return out
}

// createRelativeIndex mirrors the original's helper: the distance from base
// to seq going forward, in [0, sequenceSpace).
func createRelativeIndex(seq, base uint16) int {
	return (int(seq) - int(base) + sequenceSpace) % sequenceSpace
}

// ReceivedAcknowledge marks seq as acknowledged. If seq is the oldest
// in-flight message, the window's floor advances past it and past any
// subsequent already-acknowledged slots (cascade clearing), matching the
// original's received_acknowledge.
func (s *ReliableOrderedSender) ReceivedAcknowledge(seq uint16) {
	if !s.initialized {
		return
	}

	distFromOldest := createRelativeIndex(seq, s.oldest)
	windowSpan := createRelativeIndex((s.latest+1)%sequenceSpace, s.oldest)

	if distFromOldest < windowSpan {
		if distFromOldest == 0 {
			s.window[seq%windowSize] = nil
			s.oldest = (s.oldest + 1) % sequenceSpace
			for createRelativeIndex(s.latest, s.oldest)+1 > 0 {
				slot := s.oldest % windowSize
				m := s.window[slot]
				if m == nil || !m.acknowledged {
					break
				}
				s.window[slot] = nil
				s.oldest = (s.oldest + 1) % sequenceSpace
			}
			return
		}
		if m := s.window[seq%windowSize]; m != nil {
			m.acknowledged = true
		}
		return
	}

	// seq is outside the in-flight window: it repeats an acknowledgement for a
	// message already cleared, or is ahead of anything sent so far. Neither
	// moves the window.
	distFromLatest := createRelativeIndex(seq, s.latest)
	if distFromLatest == 0 {
		if m := s.window[seq%windowSize]; m != nil {
			m.acknowledged = true
		}
	}
}
