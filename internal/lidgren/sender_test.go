package lidgren_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ecconia/logicworldd/internal/lidgren"
)

func TestReliableOrderedSenderEmitsQueued(t *testing.T) {
	s := lidgren.NewReliableOrderedSender(0)
	s.Enqueue([]byte("a"), false)
	s.Enqueue([]byte("b"), false)

	now := time.Now()
	frames := s.SendMessages(now)
	require.Len(t, frames, 2)
	require.Equal(t, uint16(0), frames[0].Sequence)
	require.Equal(t, uint16(1), frames[1].Sequence)
}

func TestReliableOrderedSenderRetransmitsAfterTimeout(t *testing.T) {
	s := lidgren.NewReliableOrderedSender(0)
	s.Enqueue([]byte("a"), false)

	t0 := time.Now()
	frames := s.SendMessages(t0)
	require.Len(t, frames, 1)

	// Before the resend interval elapses, nothing new is sent.
	frames = s.SendMessages(t0.Add(100 * time.Millisecond))
	require.Empty(t, frames)

	// After it elapses, the unacknowledged message is retransmitted.
	frames = s.SendMessages(t0.Add(lidgren.ResendInterval + time.Millisecond))
	require.Len(t, frames, 1)
	require.Equal(t, uint16(0), frames[0].Sequence)
}

func TestReliableOrderedSenderAckAdvancesWindow(t *testing.T) {
	s := lidgren.NewReliableOrderedSender(0)
	s.Enqueue([]byte("a"), false)
	s.Enqueue([]byte("b"), false)
	t0 := time.Now()
	s.SendMessages(t0)

	s.ReceivedAcknowledge(0)
	s.ReceivedAcknowledge(1)

	// Both acknowledged: no retransmits even well past the resend interval.
	frames := s.SendMessages(t0.Add(2 * lidgren.ResendInterval))
	require.Empty(t, frames)
}

func TestReliableOrderedSenderFreesWindowSpaceOnAck(t *testing.T) {
	s := lidgren.NewReliableOrderedSender(0)
	for i := 0; i < 64; i++ {
		s.Enqueue([]byte{byte(i)}, false)
	}
	s.Enqueue([]byte("overflow"), false)

	t0 := time.Now()
	frames := s.SendMessages(t0)
	require.Len(t, frames, 64, "window holds at most 64 in-flight messages")

	s.ReceivedAcknowledge(0)
	frames = s.SendMessages(t0)
	require.Len(t, frames, 1)
	require.Equal(t, []byte("overflow"), frames[0].Payload)
}
